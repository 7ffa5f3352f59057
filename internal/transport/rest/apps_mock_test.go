package rest

import (
	"context"
	"sync"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

var _ appAuthenticator = &appAuthenticatorMock{}

type appAuthenticatorMock struct {
	AuthenticateFunc func(ctx context.Context, rawKey string) (domain.Application, error)

	calls struct {
		Authenticate []struct {
			Ctx    context.Context
			RawKey string
		}
	}
	lockAuthenticate sync.RWMutex
}

func (mock *appAuthenticatorMock) Authenticate(ctx context.Context, rawKey string) (domain.Application, error) {
	if mock.AuthenticateFunc == nil {
		panic("appAuthenticatorMock.AuthenticateFunc: method is nil but appAuthenticator.Authenticate was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		RawKey string
	}{Ctx: ctx, RawKey: rawKey}
	mock.lockAuthenticate.Lock()
	mock.calls.Authenticate = append(mock.calls.Authenticate, callInfo)
	mock.lockAuthenticate.Unlock()
	return mock.AuthenticateFunc(ctx, rawKey)
}

func (mock *appAuthenticatorMock) AuthenticateCalls() []struct {
	Ctx    context.Context
	RawKey string
} {
	mock.lockAuthenticate.RLock()
	calls := mock.calls.Authenticate
	mock.lockAuthenticate.RUnlock()
	return calls
}
