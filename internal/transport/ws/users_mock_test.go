package ws

import (
	"context"
	"sync"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

var _ userAuthenticator = &userAuthenticatorMock{}

type userAuthenticatorMock struct {
	AuthenticateFunc func(ctx context.Context, token string) (domain.User, error)

	calls struct {
		Authenticate []struct {
			Ctx   context.Context
			Token string
		}
	}
	lockAuthenticate sync.RWMutex
}

func (mock *userAuthenticatorMock) Authenticate(ctx context.Context, token string) (domain.User, error) {
	if mock.AuthenticateFunc == nil {
		panic("userAuthenticatorMock.AuthenticateFunc: method is nil but userAuthenticator.Authenticate was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Token string
	}{Ctx: ctx, Token: token}
	mock.lockAuthenticate.Lock()
	mock.calls.Authenticate = append(mock.calls.Authenticate, callInfo)
	mock.lockAuthenticate.Unlock()
	return mock.AuthenticateFunc(ctx, token)
}

func (mock *userAuthenticatorMock) AuthenticateCalls() []struct {
	Ctx   context.Context
	Token string
} {
	mock.lockAuthenticate.RLock()
	calls := mock.calls.Authenticate
	mock.lockAuthenticate.RUnlock()
	return calls
}
