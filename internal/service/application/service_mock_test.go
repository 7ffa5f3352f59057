package application

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

var _ appRepo = &appRepoMock{}

type appRepoMock struct {
	CreateFunc          func(ctx context.Context, a domain.Application) error
	GetByIDFunc         func(ctx context.Context, id uuid.UUID) (domain.Application, error)
	GetByNameFunc       func(ctx context.Context, name string) (domain.Application, error)
	ListFunc            func(ctx context.Context) ([]domain.Application, error)
	SetKeyHashFunc      func(ctx context.Context, id uuid.UUID, hash *string) error
	SetCapabilitiesFunc func(ctx context.Context, id uuid.UUID, readLog bool, writeLinks bool) error

	calls struct {
		Create []struct {
			Ctx context.Context
			A   domain.Application
		}
		GetByID []struct {
			Ctx context.Context
			Id  uuid.UUID
		}
		GetByName []struct {
			Ctx  context.Context
			Name string
		}
		List []struct{ Ctx context.Context }
		SetKeyHash []struct {
			Ctx  context.Context
			Id   uuid.UUID
			Hash *string
		}
		SetCapabilities []struct {
			Ctx        context.Context
			Id         uuid.UUID
			ReadLog    bool
			WriteLinks bool
		}
	}
	lockCreate          sync.RWMutex
	lockGetByID         sync.RWMutex
	lockGetByName       sync.RWMutex
	lockList            sync.RWMutex
	lockSetKeyHash      sync.RWMutex
	lockSetCapabilities sync.RWMutex
}

func (mock *appRepoMock) Create(ctx context.Context, a domain.Application) error {
	if mock.CreateFunc == nil {
		panic("appRepoMock.CreateFunc: method is nil but appRepo.Create was just called")
	}
	callInfo := struct {
		Ctx context.Context
		A   domain.Application
	}{Ctx: ctx, A: a}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, a)
}

func (mock *appRepoMock) CreateCalls() []struct {
	Ctx context.Context
	A   domain.Application
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *appRepoMock) GetByID(ctx context.Context, id uuid.UUID) (domain.Application, error) {
	if mock.GetByIDFunc == nil {
		panic("appRepoMock.GetByIDFunc: method is nil but appRepo.GetByID was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Id  uuid.UUID
	}{Ctx: ctx, Id: id}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, callInfo)
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *appRepoMock) GetByIDCalls() []struct {
	Ctx context.Context
	Id  uuid.UUID
} {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}

func (mock *appRepoMock) GetByName(ctx context.Context, name string) (domain.Application, error) {
	if mock.GetByNameFunc == nil {
		panic("appRepoMock.GetByNameFunc: method is nil but appRepo.GetByName was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Name string
	}{Ctx: ctx, Name: name}
	mock.lockGetByName.Lock()
	mock.calls.GetByName = append(mock.calls.GetByName, callInfo)
	mock.lockGetByName.Unlock()
	return mock.GetByNameFunc(ctx, name)
}

func (mock *appRepoMock) GetByNameCalls() []struct {
	Ctx  context.Context
	Name string
} {
	mock.lockGetByName.RLock()
	calls := mock.calls.GetByName
	mock.lockGetByName.RUnlock()
	return calls
}

func (mock *appRepoMock) List(ctx context.Context) ([]domain.Application, error) {
	if mock.ListFunc == nil {
		panic("appRepoMock.ListFunc: method is nil but appRepo.List was just called")
	}
	callInfo := struct{ Ctx context.Context }{Ctx: ctx}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx)
}

func (mock *appRepoMock) ListCalls() []struct{ Ctx context.Context } {
	mock.lockList.RLock()
	calls := mock.calls.List
	mock.lockList.RUnlock()
	return calls
}

func (mock *appRepoMock) SetKeyHash(ctx context.Context, id uuid.UUID, hash *string) error {
	if mock.SetKeyHashFunc == nil {
		panic("appRepoMock.SetKeyHashFunc: method is nil but appRepo.SetKeyHash was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Id   uuid.UUID
		Hash *string
	}{Ctx: ctx, Id: id, Hash: hash}
	mock.lockSetKeyHash.Lock()
	mock.calls.SetKeyHash = append(mock.calls.SetKeyHash, callInfo)
	mock.lockSetKeyHash.Unlock()
	return mock.SetKeyHashFunc(ctx, id, hash)
}

func (mock *appRepoMock) SetKeyHashCalls() []struct {
	Ctx  context.Context
	Id   uuid.UUID
	Hash *string
} {
	mock.lockSetKeyHash.RLock()
	calls := mock.calls.SetKeyHash
	mock.lockSetKeyHash.RUnlock()
	return calls
}

func (mock *appRepoMock) SetCapabilities(ctx context.Context, id uuid.UUID, readLog bool, writeLinks bool) error {
	if mock.SetCapabilitiesFunc == nil {
		panic("appRepoMock.SetCapabilitiesFunc: method is nil but appRepo.SetCapabilities was just called")
	}
	callInfo := struct {
		Ctx        context.Context
		Id         uuid.UUID
		ReadLog    bool
		WriteLinks bool
	}{Ctx: ctx, Id: id, ReadLog: readLog, WriteLinks: writeLinks}
	mock.lockSetCapabilities.Lock()
	mock.calls.SetCapabilities = append(mock.calls.SetCapabilities, callInfo)
	mock.lockSetCapabilities.Unlock()
	return mock.SetCapabilitiesFunc(ctx, id, readLog, writeLinks)
}

func (mock *appRepoMock) SetCapabilitiesCalls() []struct {
	Ctx        context.Context
	Id         uuid.UUID
	ReadLog    bool
	WriteLinks bool
} {
	mock.lockSetCapabilities.RLock()
	calls := mock.calls.SetCapabilities
	mock.lockSetCapabilities.RUnlock()
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
