package main

import (
	"io"
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// sink accepts connections and records every payload it reads.
type sink struct {
	ln net.Listener

	mu       sync.Mutex
	payloads [][]byte
	wg       sync.WaitGroup
}

func startSink(t *testing.T) *sink {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	s := &sink{ln: ln}
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

func (s *sink) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			data, _ := io.ReadAll(conn)
			s.mu.Lock()
			s.payloads = append(s.payloads, data)
			s.mu.Unlock()
		}()
	}
}

func (s *sink) Addr() string {
	return s.ln.Addr().String()
}

// Received returns the payloads read so far.
func (s *sink) Received() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.payloads...)
}

// Count returns the number of finished connections.
func (s *sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

func (s *sink) Close() {
	s.ln.Close()
	s.wg.Wait()
}

// deadAddr returns a loopback address nobody listens on.
func deadAddr(t *testing.T) string {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
}
