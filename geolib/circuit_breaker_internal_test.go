package geolib

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type CircuitBreakerTestSuite struct {
	suite.Suite

	cb  *circuitBreaker
	now time.Time
}

func (suite *CircuitBreakerTestSuite) SetupTest() {
	suite.now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.cb = newCircuitBreaker(2, 200*time.Millisecond, 500*time.Millisecond)
	suite.cb.now = func() time.Time {
		return suite.now
	}
}

func (suite *CircuitBreakerTestSuite) CallbackOk() error {
	return nil
}

func (suite *CircuitBreakerTestSuite) CallbackErr() error {
	return io.EOF
}

func (suite *CircuitBreakerTestSuite) CallbackCancelled() error {
	return fmt.Errorf("request has failed: %w", context.Canceled)
}

func (suite *CircuitBreakerTestSuite) TestOk() {
	for i := 0; i < 5; i++ {
		suite.NoError(suite.cb.Do(suite.CallbackOk))
	}

	suite.EqualValues(circuitBreakerStateClosed, suite.cb.state)
}

func (suite *CircuitBreakerTestSuite) TestSomeFailuresButStillClosed() {
	suite.ErrorIs(suite.cb.Do(suite.CallbackErr), io.EOF)
	suite.EqualValues(1, suite.cb.failuresCount)
	suite.EqualValues(circuitBreakerStateClosed, suite.cb.state)

	suite.NoError(suite.cb.Do(suite.CallbackOk))
	suite.EqualValues(0, suite.cb.failuresCount)
	suite.EqualValues(circuitBreakerStateClosed, suite.cb.state)
}

func (suite *CircuitBreakerTestSuite) TestFailuresAreReset() {
	suite.Error(suite.cb.Do(suite.CallbackErr))

	suite.now = suite.now.Add(time.Second)

	suite.Error(suite.cb.Do(suite.CallbackErr))
	suite.EqualValues(1, suite.cb.failuresCount)
	suite.EqualValues(circuitBreakerStateClosed, suite.cb.state)
}

func (suite *CircuitBreakerTestSuite) TestOpened() {
	suite.Error(suite.cb.Do(suite.CallbackErr))
	suite.Error(suite.cb.Do(suite.CallbackErr))
	suite.EqualValues(circuitBreakerStateOpened, suite.cb.state)

	called := false
	err := suite.cb.Do(func() error {
		called = true

		return nil
	})

	suite.ErrorIs(err, ErrCircuitBreakerOpened)
	suite.False(called)
}

func (suite *CircuitBreakerTestSuite) TestHalfOpenedRecovers() {
	suite.Error(suite.cb.Do(suite.CallbackErr))
	suite.Error(suite.cb.Do(suite.CallbackErr))

	suite.now = suite.now.Add(300 * time.Millisecond)

	suite.NoError(suite.cb.Do(suite.CallbackOk))
	suite.EqualValues(circuitBreakerStateClosed, suite.cb.state)
	suite.NoError(suite.cb.Do(suite.CallbackOk))
}

func (suite *CircuitBreakerTestSuite) TestHalfOpenedFails() {
	suite.Error(suite.cb.Do(suite.CallbackErr))
	suite.Error(suite.cb.Do(suite.CallbackErr))

	suite.now = suite.now.Add(300 * time.Millisecond)

	suite.ErrorIs(suite.cb.Do(suite.CallbackErr), io.EOF)
	suite.EqualValues(circuitBreakerStateOpened, suite.cb.state)
	suite.ErrorIs(suite.cb.Do(suite.CallbackOk), ErrCircuitBreakerOpened)
}

func (suite *CircuitBreakerTestSuite) TestHalfOpenedAllowsSingleProbe() {
	suite.Error(suite.cb.Do(suite.CallbackErr))
	suite.Error(suite.cb.Do(suite.CallbackErr))

	suite.now = suite.now.Add(300 * time.Millisecond)

	err := suite.cb.Do(func() error {
		suite.ErrorIs(suite.cb.Do(suite.CallbackOk), ErrCircuitBreakerOpened)

		return nil
	})

	suite.NoError(err)
	suite.EqualValues(circuitBreakerStateClosed, suite.cb.state)
}

func (suite *CircuitBreakerTestSuite) TestCancelledIsIgnored() {
	for i := 0; i < 5; i++ {
		suite.ErrorIs(suite.cb.Do(suite.CallbackCancelled), context.Canceled)
	}

	suite.EqualValues(0, suite.cb.failuresCount)
	suite.EqualValues(circuitBreakerStateClosed, suite.cb.state)
}

func TestCircuitBreaker(t *testing.T) {
	suite.Run(t, &CircuitBreakerTestSuite{})
}
