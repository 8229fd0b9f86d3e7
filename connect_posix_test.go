//go:build linux || darwin || freebsd || netbsd || openbsd

package tcp

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestConnectWithTimeoutAlive(t *testing.T) {
	srv := startTestServer(t, "tcp4", "127.0.0.1:0")
	h := openTCP4(t)

	sa, err := sockaddr(FamilyIPv4, "127.0.0.1", srv.Port())
	require.NoError(t, err)
	err = ConnectWithTimeout(h, sa, 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, 0, ConnectCode(err))

	blocking, err := h.isBlocking()
	require.NoError(t, err)
	require.True(t, blocking)
}

func TestConnectUsesPackageTimeout(t *testing.T) {
	srv := startTestServer(t, "tcp4", "127.0.0.1:0")
	h := openTCP4(t)

	sa, err := sockaddr(FamilyIPv4, "127.0.0.1", srv.Port())
	require.NoError(t, err)
	require.NoError(t, Connect(h, sa))
}

func TestConnectWithTimeoutRefused(t *testing.T) {
	h := openTCP4(t)

	sa, err := sockaddr(FamilyIPv4, "127.0.0.1", deadPort(t))
	require.NoError(t, err)
	startedAt := time.Now()
	err = ConnectWithTimeout(h, sa, 2*time.Second)
	require.Less(t, time.Since(startedAt), 2*time.Second+200*time.Millisecond)

	var errConnect *ErrConnect
	require.True(t, errors.As(err, &errConnect), "got %v", err)
	require.True(t, errors.Is(err, unix.ECONNREFUSED), "got %v", err)
	require.False(t, errConnect.Timeout())
	require.Equal(t, 1, ConnectCode(err))
}

func TestConnectWithTimeoutBlackhole(t *testing.T) {
	host, port := blackholeAddr(t)
	h := openTCP4(t)

	sa, err := sockaddr(FamilyIPv4, host, port)
	require.NoError(t, err)
	timeout := 500 * time.Millisecond
	startedAt := time.Now()
	err = ConnectWithTimeout(h, sa, timeout)
	elapsed := time.Since(startedAt)

	require.Less(t, elapsed, timeout+200*time.Millisecond)
	require.GreaterOrEqual(t, elapsed, timeout-10*time.Millisecond)
	var errConnect *ErrConnect
	require.True(t, errors.As(err, &errConnect), "got %v", err)
	require.True(t, errConnect.Timeout())
	require.Equal(t, 1, ConnectCode(err))
}

func TestConnectWithTimeoutFatal(t *testing.T) {
	sa, err := sockaddr(FamilyIPv4, "127.0.0.1", 80)
	require.NoError(t, err)
	// The blocking mode of an invalid descriptor cannot be changed
	err = ConnectWithTimeout(InvalidHandle, sa, time.Second)
	require.Error(t, err)
	require.Equal(t, -1, ConnectCode(err))
}

func TestPollTimeoutMS(t *testing.T) {
	require.Equal(t, 1, pollTimeoutMS(time.Microsecond))
	require.Equal(t, 1, pollTimeoutMS(time.Millisecond))
	require.Equal(t, 1500, pollTimeoutMS(1500*time.Millisecond))
	require.Equal(t, 0, pollTimeoutMS(0))
}
