package geolib_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/9seconds/geoprobe/geolib"
)

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) Lookup(ctx context.Context, ip string) (geolib.GeoResult, error) {
	args := m.Called(ctx, ip)

	if fn, ok := args.Get(0).(func(context.Context, string) (geolib.GeoResult, error)); ok {
		return fn(ctx, ip)
	}

	return args.Get(0).(geolib.GeoResult), args.Error(1)
}

func (m *ProviderMock) Name() string {
	return m.Called().String(0)
}

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) LookupError(ip, provider string, err error) {
	m.Called(ip, provider, err)
}

func (m *LoggerMock) ResolveError(ip string, err error) {
	m.Called(ip, err)
}

func (m *LoggerMock) ResolveInfo(ip, source string) {
	m.Called(ip, source)
}

// newProviderMock returns a provider which answers after a delay. If
// context is closed before, it returns a context error.
func newProviderMock(name string, delay time.Duration, result geolib.GeoResult, err error) *ProviderMock {
	prov := &ProviderMock{}

	prov.On("Name").Return(name).Maybe()
	prov.On("Lookup", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, _ string) (geolib.GeoResult, error) {
			timer := time.NewTimer(delay)
			defer timer.Stop()

			select {
			case <-ctx.Done():
				return geolib.GeoResult{}, ctx.Err()
			case <-timer.C:
				return result, err
			}
		}, nil).
		Maybe()

	return prov
}
