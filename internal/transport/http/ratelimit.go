package http

import "golang.org/x/time/rate"

// invocationLimiter throttles the commands of a single connection.
// A nil limiter allows everything.
type invocationLimiter struct {
	limiter *rate.Limiter
}

func newInvocationLimiter(perSecond float64, burst int) *invocationLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &invocationLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *invocationLimiter) allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}
