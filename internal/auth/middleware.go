package auth

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/pocketguard/backend/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/ryanuber/go-glob"
	"golang.org/x/time/rate"
)

// Middleware rejects requests without a valid session with a bare 401.
//
// Requests whose path matches one of the public glob patterns pass without a session.
// For all others, the user is loaded and stored in the context. If loading the user
// fails for another reason than the user not existing, the request is aborted with abort.
func (s *Sessions) Middleware(public []string, abort func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, pattern := range public {
			if glob.Glob(pattern, c.Request.URL.Path) {
				c.Next()
				return
			}
		}

		token, err := c.Cookie(s.cookie)
		if err != nil || token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		id, err := s.Parse(token)
		if err != nil {
			log.Debug().Str("request-id", requestid.Get(c)).Err(err).Msg("session rejected")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		var user models.User
		err = models.DB.WithContext(c.Request.Context()).First(&user, "id = ?", id).Error
		if errors.Is(err, models.ErrResourceNotFound) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		} else if err != nil {
			abort(c, err)
			return
		}

		c.Set(string(models.ContextUser), user)
		c.Next()
	}
}

// User returns the authenticated user of the request.
func User(c *gin.Context) models.User {
	return c.MustGet(string(models.ContextUser)).(models.User)
}

// RateLimit limits requests per client IP with a token bucket.
func RateLimit(perMinute, burst int) gin.HandlerFunc {
	limiter := newIPLimiter(perMinute, burst, time.Now)

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "too many requests, please try again later"})
			return
		}

		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client IP. Buckets of clients that
// have been idle for expiresIn are removed.
type ipLimiter struct {
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	expiresIn   time.Duration
	visitors    map[string]*visitor
	lastCleanup time.Time
	now         func() time.Time
}

func newIPLimiter(perMinute, burst int, now func() time.Time) *ipLimiter {
	// An idle bucket is full again after this time, removing it changes nothing
	expiresIn := time.Duration(float64(burst) / float64(perMinute) * float64(time.Minute))

	return &ipLimiter{
		limit:       rate.Limit(float64(perMinute) / 60.0),
		burst:       burst,
		expiresIn:   max(expiresIn, time.Minute),
		visitors:    make(map[string]*visitor),
		lastCleanup: now(),
		now:         now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastCleanup) > l.expiresIn {
		l.cleanup(now)
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

func (l *ipLimiter) cleanup(now time.Time) {
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.expiresIn {
			delete(l.visitors, ip)
		}
	}
	l.lastCleanup = now
}
