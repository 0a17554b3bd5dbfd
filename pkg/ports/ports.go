package ports

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Finder probes for a listenable TCP port, trying a preferred list first and
// then scanning upward from the highest preferred port.
type Finder struct {
	preferred   []int
	maxAttempts int
	dialTimeout time.Duration
}

// NewFinder builds a finder. With no preferred ports it falls back to the
// usual local development set.
func NewFinder(preferred []int, maxAttempts int) *Finder {
	if len(preferred) == 0 {
		preferred = []int{8080, 8000, 5000, 5001, 3000}
	}
	if maxAttempts <= 0 {
		maxAttempts = 20
	}
	return &Finder{
		preferred:   preferred,
		maxAttempts: maxAttempts,
		dialTimeout: time.Second,
	}
}

// Available reports whether the port can be bound on localhost. A listener
// bound to a single interface can slip past the wildcard bind test, so a
// short dial probe runs first: a completed connection means the port is busy.
func (f *Finder) Available(port int) bool {
	if conn, err := net.DialTimeout("tcp", net.JoinHostPort("localhost", strconv.Itoa(port)), f.dialTimeout); err == nil {
		_ = conn.Close()
		return false
	}
	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

// Find returns the first available port, preferring the configured list and
// then incrementing from the highest preferred port. It errors out once the
// attempt budget is exhausted.
func (f *Finder) Find() (int, error) {
	attempts := 0
	base := 0
	for _, port := range f.preferred {
		if port > base {
			base = port
		}
		attempts++
		if f.Available(port) {
			return port, nil
		}
		if attempts >= f.maxAttempts {
			return 0, fmt.Errorf("no available port after %d attempts", attempts)
		}
	}

	for port := base + 1; attempts < f.maxAttempts; port++ {
		attempts++
		if f.Available(port) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port after %d attempts", attempts)
}
