package http

import (
	"container/list"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/modlrn/go-backend/pkg/e"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL     = 10 * time.Minute
	limiterMaxVisitors = 10_000
)

var errTooManyRequests = e.Wrap("rate limit", e.ErrTooManyRequests)

type visitor struct {
	ip       string
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter ограничивает частоту запросов с одного IP (token bucket на адрес).
// Адреса хранятся в LRU: в хвосте самые давние, так что чистка и вытеснение не обходят всю карту.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*list.Element
	lru      *list.List
	limit    rate.Limit
	burst    int
	maxSize  int
	now      func() time.Time
}

func NewIPRateLimiter(perMinute, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*list.Element),
		lru:      list.New(),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		maxSize:  limiterMaxVisitors,
		now:      time.Now,
	}
}

func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneIdle(now)

	var v *visitor
	if el, found := l.visitors[ip]; found {
		l.lru.MoveToFront(el)
		v = el.Value.(*visitor)
	} else {
		if l.lru.Len() >= l.maxSize {
			l.remove(l.lru.Back())
		}
		v = &visitor{ip: ip, limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = l.lru.PushFront(v)
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

// pruneIdle снимает с хвоста адреса, не появлявшиеся дольше limiterIdleTTL.
func (l *IPRateLimiter) pruneIdle(now time.Time) {
	for el := l.lru.Back(); el != nil; el = l.lru.Back() {
		if now.Sub(el.Value.(*visitor).lastSeen) <= limiterIdleTTL {
			return
		}
		l.remove(el)
	}
}

func (l *IPRateLimiter) remove(el *list.Element) {
	l.lru.Remove(el)
	delete(l.visitors, el.Value.(*visitor).ip)
}

func (l *IPRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Middleware отвечает 429, когда лимит адреса исчерпан.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			WriteError(w, errTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP берет адрес из RemoteAddr. Для доверенных прокси его уже подменил TrustedRealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
