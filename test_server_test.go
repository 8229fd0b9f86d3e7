package tcp

import (
	"io"
	"net"
	"os"
	"sync"
	"testing"
	"time"
)

// testServer accepts connections and reports everything read from each of them.
type testServer struct {
	ln       net.Listener
	received chan []byte
	wg       sync.WaitGroup
}

// startTestServer listens on address and reads every accepted connection until EOF.
// It is closed when the test finishes.
func startTestServer(t testing.TB, network, address string) *testServer {
	t.Helper()
	ln, err := net.Listen(network, address)
	if err != nil {
		t.Fatalf("listen %s %s: %v", network, address, err)
	}
	s := &testServer{ln: ln, received: make(chan []byte, 64)}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

// startTestServerIPv6 starts a server on [::1], skipping the test when IPv6
// loopback is unavailable.
func startTestServerIPv6(t testing.TB) *testServer {
	t.Helper()
	ln, err := net.Listen("tcp6", "[::1]:0")
	if err != nil {
		t.Skipf("Skipping IPv6 test: %v", err)
	}
	ln.Close()
	return startTestServer(t, "tcp6", "[::1]:0")
}

func (s *testServer) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			data, _ := io.ReadAll(conn)
			conn.Close()
			s.received <- data
		}()
	}
}

// Port returns the port the server listens on.
func (s *testServer) Port() uint16 {
	return uint16(s.ln.Addr().(*net.TCPAddr).Port)
}

// Next waits for the payload of the next finished connection.
func (s *testServer) Next(t testing.TB) []byte {
	t.Helper()
	select {
	case data := <-s.received:
		return data
	case <-time.After(5 * time.Second):
		t.Fatal("test server received nothing")
		return nil
	}
}

// Close stops accepting and waits for the handlers to finish.
func (s *testServer) Close() {
	s.ln.Close()
	s.wg.Wait()
}

// deadPort returns a loopback port nothing listens on.
func deadPort(t testing.TB) uint16 {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	ln.Close()
	return port
}

var timeoutAddrs = []string{
	"10.255.255.1:80",
	"10.0.0.0:1",
	"192.0.2.1:80",
}

var (
	addrTimeout     string
	addrTimeoutOnce sync.Once
)

// blackholeAddr returns an address whose connect times out, skipping the
// test when the network answers every candidate.
func blackholeAddr(t testing.TB) (string, uint16) {
	t.Helper()
	addrTimeoutOnce.Do(func() {
		for _, addr := range timeoutAddrs {
			conn, err := net.DialTimeout("tcp", addr, time.Millisecond*50)
			if err == nil {
				conn.Close()
				continue
			}
			if os.IsTimeout(err) {
				addrTimeout = addr
				return
			}
		}
	})
	if addrTimeout == "" {
		t.Skip("no blackholed address available")
	}
	host, port, err := SplitHostPort(addrTimeout)
	if err != nil {
		t.Fatal(err)
	}
	return host, port
}
