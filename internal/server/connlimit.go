package server

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/lawnchairsociety/dragogauntlet/internal/config"
)

// ConnLimiter caps game sockets per address and in total.
type ConnLimiter struct {
	mu         sync.Mutex
	ipCounts   map[string]int
	totalCount int
	maxPerIP   int
	maxTotal   int
}

// NewConnLimiter takes its limits from the server section. Zero disables a
// limit.
func NewConnLimiter(cfg config.ServerConfig) *ConnLimiter {
	return &ConnLimiter{
		ipCounts: make(map[string]int),
		maxPerIP: cfg.MaxPerIP,
		maxTotal: cfg.MaxConnections,
	}
}

// TryAcquire takes a slot for ip, or reports false when a limit is reached.
func (c *ConnLimiter) TryAcquire(ip string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxTotal > 0 && c.totalCount >= c.maxTotal {
		return false
	}
	if c.maxPerIP > 0 && c.ipCounts[ip] >= c.maxPerIP {
		return false
	}

	c.ipCounts[ip]++
	c.totalCount++
	return true
}

// Release returns a slot taken by TryAcquire.
func (c *ConnLimiter) Release(ip string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ipCounts[ip] > 0 {
		c.ipCounts[ip]--
		if c.ipCounts[ip] == 0 {
			delete(c.ipCounts, ip)
		}
	}
	if c.totalCount > 0 {
		c.totalCount--
	}
}

// Stats returns the open socket count and the number of distinct addresses.
func (c *ConnLimiter) Stats() (total int, addresses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCount, len(c.ipCounts)
}

// extractIP strips the port from an ip:port address.
func extractIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// clientIP returns the caller's address, preferring the first
// X-Forwarded-For entry, then X-Real-IP, then the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return extractIP(r.RemoteAddr)
}
