package ports

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func occupy(t *testing.T, port int) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
	require.NoError(t, err)
	return ln
}

func TestFinderReturnsPreferredPort(t *testing.T) {
	port := freePort(t)

	found, err := NewFinder([]int{port}, 5).Find()
	require.NoError(t, err)
	assert.Equal(t, port, found)
}

func TestFinderSkipsBusyPort(t *testing.T) {
	busy := freePort(t)
	ln := occupy(t, busy)
	defer ln.Close()

	open := freePort(t)

	found, err := NewFinder([]int{busy, open}, 5).Find()
	require.NoError(t, err)
	assert.Equal(t, open, found)
}

func TestFinderExhaustsAttemptBudget(t *testing.T) {
	busy := freePort(t)
	ln := occupy(t, busy)
	defer ln.Close()

	_, err := NewFinder([]int{busy}, 1).Find()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no available port")
}

func TestAvailableReportsBusyPort(t *testing.T) {
	busy := freePort(t)
	ln := occupy(t, busy)
	defer ln.Close()

	f := NewFinder(nil, 0)
	assert.False(t, f.Available(busy))
}

func TestAvailableDetectsLoopbackOnlyListener(t *testing.T) {
	busy := freePort(t)
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(busy)))
	require.NoError(t, err)
	defer ln.Close()

	f := NewFinder(nil, 0)
	assert.False(t, f.Available(busy))
}

func TestFinderDialTimeoutConfigured(t *testing.T) {
	f := NewFinder(nil, 0)
	assert.Equal(t, time.Second, f.dialTimeout)
}
