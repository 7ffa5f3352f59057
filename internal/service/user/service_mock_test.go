package user

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

var _ userRepo = &userRepoMock{}

type userRepoMock struct {
	GetBySubjectFunc func(ctx context.Context, subject string) (domain.User, error)
	UpsertFunc       func(ctx context.Context, u domain.User) (domain.User, error)
	SetAdminFunc     func(ctx context.Context, id uuid.UUID, admin bool) error

	calls struct {
		GetBySubject []struct {
			Ctx     context.Context
			Subject string
		}
		Upsert []struct {
			Ctx context.Context
			U   domain.User
		}
		SetAdmin []struct {
			Ctx   context.Context
			Id    uuid.UUID
			Admin bool
		}
	}
	lockGetBySubject sync.RWMutex
	lockUpsert       sync.RWMutex
	lockSetAdmin     sync.RWMutex
}

func (mock *userRepoMock) GetBySubject(ctx context.Context, subject string) (domain.User, error) {
	if mock.GetBySubjectFunc == nil {
		panic("userRepoMock.GetBySubjectFunc: method is nil but userRepo.GetBySubject was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Subject string
	}{Ctx: ctx, Subject: subject}
	mock.lockGetBySubject.Lock()
	mock.calls.GetBySubject = append(mock.calls.GetBySubject, callInfo)
	mock.lockGetBySubject.Unlock()
	return mock.GetBySubjectFunc(ctx, subject)
}

func (mock *userRepoMock) GetBySubjectCalls() []struct {
	Ctx     context.Context
	Subject string
} {
	mock.lockGetBySubject.RLock()
	calls := mock.calls.GetBySubject
	mock.lockGetBySubject.RUnlock()
	return calls
}

func (mock *userRepoMock) Upsert(ctx context.Context, u domain.User) (domain.User, error) {
	if mock.UpsertFunc == nil {
		panic("userRepoMock.UpsertFunc: method is nil but userRepo.Upsert was just called")
	}
	callInfo := struct {
		Ctx context.Context
		U   domain.User
	}{Ctx: ctx, U: u}
	mock.lockUpsert.Lock()
	mock.calls.Upsert = append(mock.calls.Upsert, callInfo)
	mock.lockUpsert.Unlock()
	return mock.UpsertFunc(ctx, u)
}

func (mock *userRepoMock) UpsertCalls() []struct {
	Ctx context.Context
	U   domain.User
} {
	mock.lockUpsert.RLock()
	calls := mock.calls.Upsert
	mock.lockUpsert.RUnlock()
	return calls
}

func (mock *userRepoMock) SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error {
	if mock.SetAdminFunc == nil {
		panic("userRepoMock.SetAdminFunc: method is nil but userRepo.SetAdmin was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Id    uuid.UUID
		Admin bool
	}{Ctx: ctx, Id: id, Admin: admin}
	mock.lockSetAdmin.Lock()
	mock.calls.SetAdmin = append(mock.calls.SetAdmin, callInfo)
	mock.lockSetAdmin.Unlock()
	return mock.SetAdminFunc(ctx, id, admin)
}

func (mock *userRepoMock) SetAdminCalls() []struct {
	Ctx   context.Context
	Id    uuid.UUID
	Admin bool
} {
	mock.lockSetAdmin.RLock()
	calls := mock.calls.SetAdmin
	mock.lockSetAdmin.RUnlock()
	return calls
}

var _ tokenVerifier = &tokenVerifierMock{}

type tokenVerifierMock struct {
	VerifyIdentityTokenFunc func(token string) (domain.Identity, error)

	calls struct {
		VerifyIdentityToken []struct{ Token string }
	}
	lockVerifyIdentityToken sync.RWMutex
}

func (mock *tokenVerifierMock) VerifyIdentityToken(token string) (domain.Identity, error) {
	if mock.VerifyIdentityTokenFunc == nil {
		panic("tokenVerifierMock.VerifyIdentityTokenFunc: method is nil but tokenVerifier.VerifyIdentityToken was just called")
	}
	callInfo := struct{ Token string }{Token: token}
	mock.lockVerifyIdentityToken.Lock()
	mock.calls.VerifyIdentityToken = append(mock.calls.VerifyIdentityToken, callInfo)
	mock.lockVerifyIdentityToken.Unlock()
	return mock.VerifyIdentityTokenFunc(token)
}

func (mock *tokenVerifierMock) VerifyIdentityTokenCalls() []struct{ Token string } {
	mock.lockVerifyIdentityToken.RLock()
	calls := mock.calls.VerifyIdentityToken
	mock.lockVerifyIdentityToken.RUnlock()
	return calls
}

var _ notifier = &notifierMock{}

type notifierMock struct {
	PermissionsChangedFunc func(ctx context.Context, eventID uuid.UUID) error

	calls struct {
		PermissionsChanged []struct {
			Ctx     context.Context
			EventID uuid.UUID
		}
	}
	lockPermissionsChanged sync.RWMutex
}

func (mock *notifierMock) PermissionsChanged(ctx context.Context, eventID uuid.UUID) error {
	if mock.PermissionsChangedFunc == nil {
		panic("notifierMock.PermissionsChangedFunc: method is nil but notifier.PermissionsChanged was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		EventID uuid.UUID
	}{Ctx: ctx, EventID: eventID}
	mock.lockPermissionsChanged.Lock()
	mock.calls.PermissionsChanged = append(mock.calls.PermissionsChanged, callInfo)
	mock.lockPermissionsChanged.Unlock()
	return mock.PermissionsChangedFunc(ctx, eventID)
}

func (mock *notifierMock) PermissionsChangedCalls() []struct {
	Ctx     context.Context
	EventID uuid.UUID
} {
	mock.lockPermissionsChanged.RLock()
	calls := mock.calls.PermissionsChanged
	mock.lockPermissionsChanged.RUnlock()
	return calls
}

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	calls struct {
		RunInTx []struct {
			Ctx context.Context
			Fn  func(ctx context.Context) error
		}
	}
	lockRunInTx sync.RWMutex
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mock.RunInTxFunc == nil {
		panic("txManagerMock.RunInTxFunc: method is nil but txManager.RunInTx was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Fn  func(ctx context.Context) error
	}{Ctx: ctx, Fn: fn}
	mock.lockRunInTx.Lock()
	mock.calls.RunInTx = append(mock.calls.RunInTx, callInfo)
	mock.lockRunInTx.Unlock()
	return mock.RunInTxFunc(ctx, fn)
}

func (mock *txManagerMock) RunInTxCalls() []struct {
	Ctx context.Context
	Fn  func(ctx context.Context) error
} {
	mock.lockRunInTx.RLock()
	calls := mock.calls.RunInTx
	mock.lockRunInTx.RUnlock()
	return calls
}
