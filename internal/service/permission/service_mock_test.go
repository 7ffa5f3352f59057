package permission

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

var _ permissionRepo = &permissionRepoMock{}

type permissionRepoMock struct {
	EnsureGroupFunc    func(ctx context.Context, name string) (domain.PermissionGroup, error)
	GroupByNameFunc    func(ctx context.Context, name string) (domain.PermissionGroup, error)
	UpsertGrantFunc    func(ctx context.Context, g domain.GroupGrant) error
	DeleteGrantFunc    func(ctx context.Context, groupID uuid.UUID, eventID uuid.UUID) error
	AddMemberFunc      func(ctx context.Context, groupID uuid.UUID, userID uuid.UUID) error
	RemoveMemberFunc   func(ctx context.Context, groupID uuid.UUID, userID uuid.UUID) error
	EventsForGroupFunc func(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)

	calls struct {
		EnsureGroup []struct {
			Ctx  context.Context
			Name string
		}
		GroupByName []struct {
			Ctx  context.Context
			Name string
		}
		UpsertGrant []struct {
			Ctx context.Context
			G   domain.GroupGrant
		}
		DeleteGrant []struct {
			Ctx     context.Context
			GroupID uuid.UUID
			EventID uuid.UUID
		}
		AddMember []struct {
			Ctx     context.Context
			GroupID uuid.UUID
			UserID  uuid.UUID
		}
		RemoveMember []struct {
			Ctx     context.Context
			GroupID uuid.UUID
			UserID  uuid.UUID
		}
		EventsForGroup []struct {
			Ctx     context.Context
			GroupID uuid.UUID
		}
	}
	lockEnsureGroup    sync.RWMutex
	lockGroupByName    sync.RWMutex
	lockUpsertGrant    sync.RWMutex
	lockDeleteGrant    sync.RWMutex
	lockAddMember      sync.RWMutex
	lockRemoveMember   sync.RWMutex
	lockEventsForGroup sync.RWMutex
}

func (mock *permissionRepoMock) EnsureGroup(ctx context.Context, name string) (domain.PermissionGroup, error) {
	if mock.EnsureGroupFunc == nil {
		panic("permissionRepoMock.EnsureGroupFunc: method is nil but permissionRepo.EnsureGroup was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Name string
	}{Ctx: ctx, Name: name}
	mock.lockEnsureGroup.Lock()
	mock.calls.EnsureGroup = append(mock.calls.EnsureGroup, callInfo)
	mock.lockEnsureGroup.Unlock()
	return mock.EnsureGroupFunc(ctx, name)
}

func (mock *permissionRepoMock) EnsureGroupCalls() []struct {
	Ctx  context.Context
	Name string
} {
	mock.lockEnsureGroup.RLock()
	calls := mock.calls.EnsureGroup
	mock.lockEnsureGroup.RUnlock()
	return calls
}

func (mock *permissionRepoMock) GroupByName(ctx context.Context, name string) (domain.PermissionGroup, error) {
	if mock.GroupByNameFunc == nil {
		panic("permissionRepoMock.GroupByNameFunc: method is nil but permissionRepo.GroupByName was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Name string
	}{Ctx: ctx, Name: name}
	mock.lockGroupByName.Lock()
	mock.calls.GroupByName = append(mock.calls.GroupByName, callInfo)
	mock.lockGroupByName.Unlock()
	return mock.GroupByNameFunc(ctx, name)
}

func (mock *permissionRepoMock) GroupByNameCalls() []struct {
	Ctx  context.Context
	Name string
} {
	mock.lockGroupByName.RLock()
	calls := mock.calls.GroupByName
	mock.lockGroupByName.RUnlock()
	return calls
}

func (mock *permissionRepoMock) UpsertGrant(ctx context.Context, g domain.GroupGrant) error {
	if mock.UpsertGrantFunc == nil {
		panic("permissionRepoMock.UpsertGrantFunc: method is nil but permissionRepo.UpsertGrant was just called")
	}
	callInfo := struct {
		Ctx context.Context
		G   domain.GroupGrant
	}{Ctx: ctx, G: g}
	mock.lockUpsertGrant.Lock()
	mock.calls.UpsertGrant = append(mock.calls.UpsertGrant, callInfo)
	mock.lockUpsertGrant.Unlock()
	return mock.UpsertGrantFunc(ctx, g)
}

func (mock *permissionRepoMock) UpsertGrantCalls() []struct {
	Ctx context.Context
	G   domain.GroupGrant
} {
	mock.lockUpsertGrant.RLock()
	calls := mock.calls.UpsertGrant
	mock.lockUpsertGrant.RUnlock()
	return calls
}

func (mock *permissionRepoMock) DeleteGrant(ctx context.Context, groupID uuid.UUID, eventID uuid.UUID) error {
	if mock.DeleteGrantFunc == nil {
		panic("permissionRepoMock.DeleteGrantFunc: method is nil but permissionRepo.DeleteGrant was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		GroupID uuid.UUID
		EventID uuid.UUID
	}{Ctx: ctx, GroupID: groupID, EventID: eventID}
	mock.lockDeleteGrant.Lock()
	mock.calls.DeleteGrant = append(mock.calls.DeleteGrant, callInfo)
	mock.lockDeleteGrant.Unlock()
	return mock.DeleteGrantFunc(ctx, groupID, eventID)
}

func (mock *permissionRepoMock) DeleteGrantCalls() []struct {
	Ctx     context.Context
	GroupID uuid.UUID
	EventID uuid.UUID
} {
	mock.lockDeleteGrant.RLock()
	calls := mock.calls.DeleteGrant
	mock.lockDeleteGrant.RUnlock()
	return calls
}

func (mock *permissionRepoMock) AddMember(ctx context.Context, groupID uuid.UUID, userID uuid.UUID) error {
	if mock.AddMemberFunc == nil {
		panic("permissionRepoMock.AddMemberFunc: method is nil but permissionRepo.AddMember was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		GroupID uuid.UUID
		UserID  uuid.UUID
	}{Ctx: ctx, GroupID: groupID, UserID: userID}
	mock.lockAddMember.Lock()
	mock.calls.AddMember = append(mock.calls.AddMember, callInfo)
	mock.lockAddMember.Unlock()
	return mock.AddMemberFunc(ctx, groupID, userID)
}

func (mock *permissionRepoMock) AddMemberCalls() []struct {
	Ctx     context.Context
	GroupID uuid.UUID
	UserID  uuid.UUID
} {
	mock.lockAddMember.RLock()
	calls := mock.calls.AddMember
	mock.lockAddMember.RUnlock()
	return calls
}

func (mock *permissionRepoMock) RemoveMember(ctx context.Context, groupID uuid.UUID, userID uuid.UUID) error {
	if mock.RemoveMemberFunc == nil {
		panic("permissionRepoMock.RemoveMemberFunc: method is nil but permissionRepo.RemoveMember was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		GroupID uuid.UUID
		UserID  uuid.UUID
	}{Ctx: ctx, GroupID: groupID, UserID: userID}
	mock.lockRemoveMember.Lock()
	mock.calls.RemoveMember = append(mock.calls.RemoveMember, callInfo)
	mock.lockRemoveMember.Unlock()
	return mock.RemoveMemberFunc(ctx, groupID, userID)
}

func (mock *permissionRepoMock) RemoveMemberCalls() []struct {
	Ctx     context.Context
	GroupID uuid.UUID
	UserID  uuid.UUID
} {
	mock.lockRemoveMember.RLock()
	calls := mock.calls.RemoveMember
	mock.lockRemoveMember.RUnlock()
	return calls
}

func (mock *permissionRepoMock) EventsForGroup(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	if mock.EventsForGroupFunc == nil {
		panic("permissionRepoMock.EventsForGroupFunc: method is nil but permissionRepo.EventsForGroup was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		GroupID uuid.UUID
	}{Ctx: ctx, GroupID: groupID}
	mock.lockEventsForGroup.Lock()
	mock.calls.EventsForGroup = append(mock.calls.EventsForGroup, callInfo)
	mock.lockEventsForGroup.Unlock()
	return mock.EventsForGroupFunc(ctx, groupID)
}

func (mock *permissionRepoMock) EventsForGroupCalls() []struct {
	Ctx     context.Context
	GroupID uuid.UUID
} {
	mock.lockEventsForGroup.RLock()
	calls := mock.calls.EventsForGroup
	mock.lockEventsForGroup.RUnlock()
	return calls
}

var _ userRepo = &userRepoMock{}

type userRepoMock struct {
	GetBySubjectFunc func(ctx context.Context, subject string) (domain.User, error)

	calls struct {
		GetBySubject []struct {
			Ctx     context.Context
			Subject string
		}
	}
	lockGetBySubject sync.RWMutex
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

var _ eventRepo = &eventRepoMock{}

type eventRepoMock struct {
	SetDefaultRoleFunc func(ctx context.Context, id uuid.UUID, role domain.Capability) error

	calls struct {
		SetDefaultRole []struct {
			Ctx  context.Context
			Id   uuid.UUID
			Role domain.Capability
		}
	}
	lockSetDefaultRole sync.RWMutex
}

func (mock *eventRepoMock) SetDefaultRole(ctx context.Context, id uuid.UUID, role domain.Capability) error {
	if mock.SetDefaultRoleFunc == nil {
		panic("eventRepoMock.SetDefaultRoleFunc: method is nil but eventRepo.SetDefaultRole was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Id   uuid.UUID
		Role domain.Capability
	}{Ctx: ctx, Id: id, Role: role}
	mock.lockSetDefaultRole.Lock()
	mock.calls.SetDefaultRole = append(mock.calls.SetDefaultRole, callInfo)
	mock.lockSetDefaultRole.Unlock()
	return mock.SetDefaultRoleFunc(ctx, id, role)
}

func (mock *eventRepoMock) SetDefaultRoleCalls() []struct {
	Ctx  context.Context
	Id   uuid.UUID
	Role domain.Capability
} {
	mock.lockSetDefaultRole.RLock()
	calls := mock.calls.SetDefaultRole
	mock.lockSetDefaultRole.RUnlock()
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
