package geolib

import (
	"context"
	"errors"
	"sync"
	"time"
)

type circuitBreakerState uint8

const (
	circuitBreakerStateClosed circuitBreakerState = iota
	circuitBreakerStateHalfOpened
	circuitBreakerStateOpened
)

// circuitBreaker protects a single upstream. In CLOSED state all calls
// pass. After openThreshold failures in a row (a failure counter is
// reset if nothing has failed for resetFailuresTimeout) it goes into
// OPEN and rejects calls immediately. After halfOpenTimeout it goes
// into HALF_OPEN where exactly one probe is allowed: success closes
// the breaker, failure opens it again.
//
// Cancelled calls are neither failures nor successes: a provider which
// has lost a race is cancelled and this says nothing about upstream.
type circuitBreaker struct {
	mutex sync.Mutex
	now   func() time.Time

	state           circuitBreakerState
	failuresCount   uint32
	lastFailureTime time.Time
	openedTime      time.Time
	probeInFlight   bool

	openThreshold        uint32
	halfOpenTimeout      time.Duration
	resetFailuresTimeout time.Duration
}

func (c *circuitBreaker) Do(callback func() error) error {
	if err := c.acquire(); err != nil {
		return err
	}

	err := callback()

	c.release(err)

	return err
}

func (c *circuitBreaker) acquire() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()

	switch c.state {
	case circuitBreakerStateOpened:
		if now.Sub(c.openedTime) < c.halfOpenTimeout {
			return ErrCircuitBreakerOpened
		}

		c.state = circuitBreakerStateHalfOpened
		c.probeInFlight = true
	case circuitBreakerStateHalfOpened:
		if c.probeInFlight {
			return ErrCircuitBreakerOpened
		}

		c.probeInFlight = true
	default:
		if c.failuresCount > 0 && now.Sub(c.lastFailureTime) > c.resetFailuresTimeout {
			c.failuresCount = 0
		}
	}

	return nil
}

func (c *circuitBreaker) release(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ignored := errors.Is(err, context.Canceled)

	if c.state == circuitBreakerStateHalfOpened {
		c.probeInFlight = false

		switch {
		case ignored:
		case err != nil:
			c.open()
		default:
			c.close()
		}

		return
	}

	switch {
	case ignored:
	case err == nil:
		c.failuresCount = 0
	default:
		c.failuresCount++
		c.lastFailureTime = c.now()

		if c.state == circuitBreakerStateClosed && c.failuresCount >= c.openThreshold {
			c.open()
		}
	}
}

func (c *circuitBreaker) open() {
	c.state = circuitBreakerStateOpened
	c.openedTime = c.now()
	c.failuresCount = 0
}

func (c *circuitBreaker) close() {
	c.state = circuitBreakerStateClosed
	c.failuresCount = 0
}

func newCircuitBreaker(openThreshold uint32,
	halfOpenTimeout, resetFailuresTimeout time.Duration) *circuitBreaker {
	if openThreshold == 0 {
		openThreshold = 1
	}

	return &circuitBreaker{
		now:                  time.Now,
		openThreshold:        openThreshold,
		halfOpenTimeout:      halfOpenTimeout,
		resetFailuresTimeout: resetFailuresTimeout,
	}
}
