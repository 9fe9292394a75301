package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const sweepInterval = 5 * time.Minute

type visitor struct {
	connections int
	tokens      int
	lastRefill  time.Time
}

// IPRateLimiter caps simultaneous spectator connections per IP and the
// rate of frames each IP may send.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time

	maxConnsPerIP int
	msgRate       int
	msgWindow     time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewIPRateLimiter creates a rate limiter and starts its sweeper.
//   - maxConnsPerIP: max simultaneous WebSocket connections per IP
//   - msgRate: max messages allowed per msgWindow
//   - msgWindow: time window for message rate
func NewIPRateLimiter(maxConnsPerIP, msgRate int, msgWindow time.Duration) *IPRateLimiter {
	rl := newIPRateLimiter(maxConnsPerIP, msgRate, msgWindow, time.Now)
	go rl.sweepLoop()
	return rl
}

func newIPRateLimiter(maxConnsPerIP, msgRate int, msgWindow time.Duration, now func() time.Time) *IPRateLimiter {
	return &IPRateLimiter{
		visitors:      make(map[string]*visitor),
		now:           now,
		maxConnsPerIP: maxConnsPerIP,
		msgRate:       msgRate,
		msgWindow:     msgWindow,
		stop:          make(chan struct{}),
	}
}

// Stop ends the background sweeper.
func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// ConnectAllowed reserves a connection slot for ip. A false return means
// the IP is at its limit and nothing was reserved.
func (rl *IPRateLimiter) ConnectAllowed(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &visitor{
			connections: 1,
			tokens:      rl.msgRate,
			lastRefill:  rl.now(),
		}
		return true
	}
	if v.connections >= rl.maxConnsPerIP {
		return false
	}
	v.connections++
	return true
}

// Disconnect releases a slot taken by ConnectAllowed.
func (rl *IPRateLimiter) Disconnect(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.visitors[ip]; ok && v.connections > 0 {
		v.connections--
	}
}

// Connections returns the number of open slots held by ip.
func (rl *IPRateLimiter) Connections(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if v, ok := rl.visitors[ip]; ok {
		return v.connections
	}
	return 0
}

// MessageAllowed spends one token from ip's bucket. The bucket refills
// msgRate tokens per whole msgWindow elapsed, capped at msgRate.
func (rl *IPRateLimiter) MessageAllowed(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &visitor{
			tokens:     rl.msgRate - 1,
			lastRefill: now,
		}
		return true
	}

	if elapsed := now.Sub(v.lastRefill); elapsed >= rl.msgWindow {
		windows := int(elapsed / rl.msgWindow)
		v.tokens = min(v.tokens+windows*rl.msgRate, rl.msgRate)
		v.lastRefill = v.lastRefill.Add(time.Duration(windows) * rl.msgWindow)
	}

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *IPRateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

// sweep drops visitors with no open connections.
func (rl *IPRateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.visitors {
		if v.connections <= 0 {
			delete(rl.visitors, ip)
		}
	}
}

// RealIP extracts the client IP from the request.
// Checks X-Forwarded-For (for reverse proxies) then RemoteAddr.
func RealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
