package http

import "time"

// rateLimiter counts inbound messages of one connection per minute. It is
// only touched by the connection's read loop and reset goroutine.
type rateLimiter struct {
	limit   int
	counter int
	reset   *time.Ticker
	resetCh chan struct{}
}

func newRateLimiter(limit int) *rateLimiter {
	if limit <= 0 {
		return &rateLimiter{limit: 0}
	}
	return &rateLimiter{
		limit:   limit,
		reset:   time.NewTicker(time.Minute),
		resetCh: make(chan struct{}, 1),
	}
}

func (r *rateLimiter) allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}
	select {
	case <-r.resetCh:
		r.counter = 0
	default:
	}
	r.counter++
	return r.counter <= r.limit
}

func (r *rateLimiter) startReset(stop <-chan struct{}) {
	if r == nil || r.reset == nil {
		return
	}
	go func() {
		for {
			select {
			case <-r.reset.C:
				select {
				case r.resetCh <- struct{}{}:
				default:
				}
			case <-stop:
				r.reset.Stop()
				return
			}
		}
	}()
}
