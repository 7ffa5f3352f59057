package journal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

var _ entryRepo = &entryRepoMock{}

type entryRepoMock struct {
	ListByEventFunc     func(ctx context.Context, eventID uuid.UUID) ([]domain.LogEntry, error)
	InsertFunc          func(ctx context.Context, e domain.LogEntry) error
	UpdateFieldsFunc    func(ctx context.Context, e domain.LogEntry, fields []string) error
	EventIDForEntryFunc func(ctx context.Context, entryID uuid.UUID) (uuid.UUID, error)

	calls struct {
		ListByEvent []struct {
			Ctx     context.Context
			EventID uuid.UUID
		}
		Insert []struct {
			Ctx context.Context
			E   domain.LogEntry
		}
		UpdateFields []struct {
			Ctx    context.Context
			E      domain.LogEntry
			Fields []string
		}
		EventIDForEntry []struct {
			Ctx     context.Context
			EntryID uuid.UUID
		}
	}
	lockListByEvent     sync.RWMutex
	lockInsert          sync.RWMutex
	lockUpdateFields    sync.RWMutex
	lockEventIDForEntry sync.RWMutex
}

func (mock *entryRepoMock) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.LogEntry, error) {
	if mock.ListByEventFunc == nil {
		panic("entryRepoMock.ListByEventFunc: method is nil but entryRepo.ListByEvent was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		EventID uuid.UUID
	}{Ctx: ctx, EventID: eventID}
	mock.lockListByEvent.Lock()
	mock.calls.ListByEvent = append(mock.calls.ListByEvent, callInfo)
	mock.lockListByEvent.Unlock()
	return mock.ListByEventFunc(ctx, eventID)
}

func (mock *entryRepoMock) ListByEventCalls() []struct {
	Ctx     context.Context
	EventID uuid.UUID
} {
	mock.lockListByEvent.RLock()
	calls := mock.calls.ListByEvent
	mock.lockListByEvent.RUnlock()
	return calls
}

func (mock *entryRepoMock) Insert(ctx context.Context, e domain.LogEntry) error {
	if mock.InsertFunc == nil {
		panic("entryRepoMock.InsertFunc: method is nil but entryRepo.Insert was just called")
	}
	callInfo := struct {
		Ctx context.Context
		E   domain.LogEntry
	}{Ctx: ctx, E: e}
	mock.lockInsert.Lock()
	mock.calls.Insert = append(mock.calls.Insert, callInfo)
	mock.lockInsert.Unlock()
	return mock.InsertFunc(ctx, e)
}

func (mock *entryRepoMock) InsertCalls() []struct {
	Ctx context.Context
	E   domain.LogEntry
} {
	mock.lockInsert.RLock()
	calls := mock.calls.Insert
	mock.lockInsert.RUnlock()
	return calls
}

func (mock *entryRepoMock) UpdateFields(ctx context.Context, e domain.LogEntry, fields []string) error {
	if mock.UpdateFieldsFunc == nil {
		panic("entryRepoMock.UpdateFieldsFunc: method is nil but entryRepo.UpdateFields was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		E      domain.LogEntry
		Fields []string
	}{Ctx: ctx, E: e, Fields: fields}
	mock.lockUpdateFields.Lock()
	mock.calls.UpdateFields = append(mock.calls.UpdateFields, callInfo)
	mock.lockUpdateFields.Unlock()
	return mock.UpdateFieldsFunc(ctx, e, fields)
}

func (mock *entryRepoMock) UpdateFieldsCalls() []struct {
	Ctx    context.Context
	E      domain.LogEntry
	Fields []string
} {
	mock.lockUpdateFields.RLock()
	calls := mock.calls.UpdateFields
	mock.lockUpdateFields.RUnlock()
	return calls
}

func (mock *entryRepoMock) EventIDForEntry(ctx context.Context, entryID uuid.UUID) (uuid.UUID, error) {
	if mock.EventIDForEntryFunc == nil {
		panic("entryRepoMock.EventIDForEntryFunc: method is nil but entryRepo.EventIDForEntry was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		EntryID uuid.UUID
	}{Ctx: ctx, EntryID: entryID}
	mock.lockEventIDForEntry.Lock()
	mock.calls.EventIDForEntry = append(mock.calls.EventIDForEntry, callInfo)
	mock.lockEventIDForEntry.Unlock()
	return mock.EventIDForEntryFunc(ctx, entryID)
}

func (mock *entryRepoMock) EventIDForEntryCalls() []struct {
	Ctx     context.Context
	EntryID uuid.UUID
} {
	mock.lockEventIDForEntry.RLock()
	calls := mock.calls.EventIDForEntry
	mock.lockEventIDForEntry.RUnlock()
	return calls
}

var _ historyRepo = &historyRepoMock{}

type historyRepoMock struct {
	AppendFunc              func(ctx context.Context, rec domain.HistoryRecord) error
	ListByEntryFunc         func(ctx context.Context, entryID uuid.UUID) ([]domain.HistoryRecord, error)
	EntryIDsEditedSinceFunc func(ctx context.Context, eventID uuid.UUID, since time.Time) ([]uuid.UUID, error)

	calls struct {
		Append []struct {
			Ctx context.Context
			Rec domain.HistoryRecord
		}
		ListByEntry []struct {
			Ctx     context.Context
			EntryID uuid.UUID
		}
		EntryIDsEditedSince []struct {
			Ctx     context.Context
			EventID uuid.UUID
			Since   time.Time
		}
	}
	lockAppend              sync.RWMutex
	lockListByEntry         sync.RWMutex
	lockEntryIDsEditedSince sync.RWMutex
}

func (mock *historyRepoMock) Append(ctx context.Context, rec domain.HistoryRecord) error {
	if mock.AppendFunc == nil {
		panic("historyRepoMock.AppendFunc: method is nil but historyRepo.Append was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Rec domain.HistoryRecord
	}{Ctx: ctx, Rec: rec}
	mock.lockAppend.Lock()
	mock.calls.Append = append(mock.calls.Append, callInfo)
	mock.lockAppend.Unlock()
	return mock.AppendFunc(ctx, rec)
}

func (mock *historyRepoMock) AppendCalls() []struct {
	Ctx context.Context
	Rec domain.HistoryRecord
} {
	mock.lockAppend.RLock()
	calls := mock.calls.Append
	mock.lockAppend.RUnlock()
	return calls
}

func (mock *historyRepoMock) ListByEntry(ctx context.Context, entryID uuid.UUID) ([]domain.HistoryRecord, error) {
	if mock.ListByEntryFunc == nil {
		panic("historyRepoMock.ListByEntryFunc: method is nil but historyRepo.ListByEntry was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		EntryID uuid.UUID
	}{Ctx: ctx, EntryID: entryID}
	mock.lockListByEntry.Lock()
	mock.calls.ListByEntry = append(mock.calls.ListByEntry, callInfo)
	mock.lockListByEntry.Unlock()
	return mock.ListByEntryFunc(ctx, entryID)
}

func (mock *historyRepoMock) ListByEntryCalls() []struct {
	Ctx     context.Context
	EntryID uuid.UUID
} {
	mock.lockListByEntry.RLock()
	calls := mock.calls.ListByEntry
	mock.lockListByEntry.RUnlock()
	return calls
}

func (mock *historyRepoMock) EntryIDsEditedSince(ctx context.Context, eventID uuid.UUID, since time.Time) ([]uuid.UUID, error) {
	if mock.EntryIDsEditedSinceFunc == nil {
		panic("historyRepoMock.EntryIDsEditedSinceFunc: method is nil but historyRepo.EntryIDsEditedSince was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		EventID uuid.UUID
		Since   time.Time
	}{Ctx: ctx, EventID: eventID, Since: since}
	mock.lockEntryIDsEditedSince.Lock()
	mock.calls.EntryIDsEditedSince = append(mock.calls.EntryIDsEditedSince, callInfo)
	mock.lockEntryIDsEditedSince.Unlock()
	return mock.EntryIDsEditedSinceFunc(ctx, eventID, since)
}

func (mock *historyRepoMock) EntryIDsEditedSinceCalls() []struct {
	Ctx     context.Context
	EventID uuid.UUID
	Since   time.Time
} {
	mock.lockEntryIDsEditedSince.RLock()
	calls := mock.calls.EntryIDsEditedSince
	mock.lockEntryIDsEditedSince.RUnlock()
	return calls
}

var _ tagRepo = &tagRepoMock{}

type tagRepoMock struct {
	ListByEventFunc func(ctx context.Context, eventID uuid.UUID) ([]domain.Tag, error)
	UpsertFunc      func(ctx context.Context, t domain.Tag) error

	calls struct {
		ListByEvent []struct {
			Ctx     context.Context
			EventID uuid.UUID
		}
		Upsert []struct {
			Ctx context.Context
			T   domain.Tag
		}
	}
	lockListByEvent sync.RWMutex
	lockUpsert      sync.RWMutex
}

func (mock *tagRepoMock) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Tag, error) {
	if mock.ListByEventFunc == nil {
		panic("tagRepoMock.ListByEventFunc: method is nil but tagRepo.ListByEvent was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		EventID uuid.UUID
	}{Ctx: ctx, EventID: eventID}
	mock.lockListByEvent.Lock()
	mock.calls.ListByEvent = append(mock.calls.ListByEvent, callInfo)
	mock.lockListByEvent.Unlock()
	return mock.ListByEventFunc(ctx, eventID)
}

func (mock *tagRepoMock) ListByEventCalls() []struct {
	Ctx     context.Context
	EventID uuid.UUID
} {
	mock.lockListByEvent.RLock()
	calls := mock.calls.ListByEvent
	mock.lockListByEvent.RUnlock()
	return calls
}

func (mock *tagRepoMock) Upsert(ctx context.Context, t domain.Tag) error {
	if mock.UpsertFunc == nil {
		panic("tagRepoMock.UpsertFunc: method is nil but tagRepo.Upsert was just called")
	}
	callInfo := struct {
		Ctx context.Context
		T   domain.Tag
	}{Ctx: ctx, T: t}
	mock.lockUpsert.Lock()
	mock.calls.Upsert = append(mock.calls.Upsert, callInfo)
	mock.lockUpsert.Unlock()
	return mock.UpsertFunc(ctx, t)
}

func (mock *tagRepoMock) UpsertCalls() []struct {
	Ctx context.Context
	T   domain.Tag
} {
	mock.lockUpsert.RLock()
	calls := mock.calls.Upsert
	mock.lockUpsert.RUnlock()
	return calls
}

var _ sectionRepo = &sectionRepoMock{}

type sectionRepoMock struct {
	ListByEventFunc func(ctx context.Context, eventID uuid.UUID) ([]domain.Section, error)
	InsertFunc      func(ctx context.Context, s domain.Section) error

	calls struct {
		ListByEvent []struct {
			Ctx     context.Context
			EventID uuid.UUID
		}
		Insert []struct {
			Ctx context.Context
			S   domain.Section
		}
	}
	lockListByEvent sync.RWMutex
	lockInsert      sync.RWMutex
}

func (mock *sectionRepoMock) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Section, error) {
	if mock.ListByEventFunc == nil {
		panic("sectionRepoMock.ListByEventFunc: method is nil but sectionRepo.ListByEvent was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		EventID uuid.UUID
	}{Ctx: ctx, EventID: eventID}
	mock.lockListByEvent.Lock()
	mock.calls.ListByEvent = append(mock.calls.ListByEvent, callInfo)
	mock.lockListByEvent.Unlock()
	return mock.ListByEventFunc(ctx, eventID)
}

func (mock *sectionRepoMock) ListByEventCalls() []struct {
	Ctx     context.Context
	EventID uuid.UUID
} {
	mock.lockListByEvent.RLock()
	calls := mock.calls.ListByEvent
	mock.lockListByEvent.RUnlock()
	return calls
}

func (mock *sectionRepoMock) Insert(ctx context.Context, s domain.Section) error {
	if mock.InsertFunc == nil {
		panic("sectionRepoMock.InsertFunc: method is nil but sectionRepo.Insert was just called")
	}
	callInfo := struct {
		Ctx context.Context
		S   domain.Section
	}{Ctx: ctx, S: s}
	mock.lockInsert.Lock()
	mock.calls.Insert = append(mock.calls.Insert, callInfo)
	mock.lockInsert.Unlock()
	return mock.InsertFunc(ctx, s)
}

func (mock *sectionRepoMock) InsertCalls() []struct {
	Ctx context.Context
	S   domain.Section
} {
	mock.lockInsert.RLock()
	calls := mock.calls.Insert
	mock.lockInsert.RUnlock()
	return calls
}

var _ eventRepo = &eventRepoMock{}

type eventRepoMock struct {
	ListFunc       func(ctx context.Context) ([]domain.Event, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (domain.Event, error)
	GetByNameFunc  func(ctx context.Context, name string) (domain.Event, error)
	EntryTypesFunc func(ctx context.Context, eventID uuid.UUID) ([]domain.EntryType, error)

	calls struct {
		List []struct{ Ctx context.Context }
		GetByID []struct {
			Ctx context.Context
			Id  uuid.UUID
		}
		GetByName []struct {
			Ctx  context.Context
			Name string
		}
		EntryTypes []struct {
			Ctx     context.Context
			EventID uuid.UUID
		}
	}
	lockList       sync.RWMutex
	lockGetByID    sync.RWMutex
	lockGetByName  sync.RWMutex
	lockEntryTypes sync.RWMutex
}

func (mock *eventRepoMock) List(ctx context.Context) ([]domain.Event, error) {
	if mock.ListFunc == nil {
		panic("eventRepoMock.ListFunc: method is nil but eventRepo.List was just called")
	}
	callInfo := struct{ Ctx context.Context }{Ctx: ctx}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx)
}

func (mock *eventRepoMock) ListCalls() []struct{ Ctx context.Context } {
	mock.lockList.RLock()
	calls := mock.calls.List
	mock.lockList.RUnlock()
	return calls
}

func (mock *eventRepoMock) GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	if mock.GetByIDFunc == nil {
		panic("eventRepoMock.GetByIDFunc: method is nil but eventRepo.GetByID was just called")
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

func (mock *eventRepoMock) GetByIDCalls() []struct {
	Ctx context.Context
	Id  uuid.UUID
} {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}

func (mock *eventRepoMock) GetByName(ctx context.Context, name string) (domain.Event, error) {
	if mock.GetByNameFunc == nil {
		panic("eventRepoMock.GetByNameFunc: method is nil but eventRepo.GetByName was just called")
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

func (mock *eventRepoMock) GetByNameCalls() []struct {
	Ctx  context.Context
	Name string
} {
	mock.lockGetByName.RLock()
	calls := mock.calls.GetByName
	mock.lockGetByName.RUnlock()
	return calls
}

func (mock *eventRepoMock) EntryTypes(ctx context.Context, eventID uuid.UUID) ([]domain.EntryType, error) {
	if mock.EntryTypesFunc == nil {
		panic("eventRepoMock.EntryTypesFunc: method is nil but eventRepo.EntryTypes was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		EventID uuid.UUID
	}{Ctx: ctx, EventID: eventID}
	mock.lockEntryTypes.Lock()
	mock.calls.EntryTypes = append(mock.calls.EntryTypes, callInfo)
	mock.lockEntryTypes.Unlock()
	return mock.EntryTypesFunc(ctx, eventID)
}

func (mock *eventRepoMock) EntryTypesCalls() []struct {
	Ctx     context.Context
	EventID uuid.UUID
} {
	mock.lockEntryTypes.RLock()
	calls := mock.calls.EntryTypes
	mock.lockEntryTypes.RUnlock()
	return calls
}

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunInTxFunc      func(ctx context.Context, fn func(ctx context.Context) error) error
	RunInEventTxFunc func(ctx context.Context, eventID uuid.UUID, fn func(ctx context.Context) error) error

	calls struct {
		RunInTx []struct {
			Ctx context.Context
			Fn  func(ctx context.Context) error
		}
		RunInEventTx []struct {
			Ctx     context.Context
			EventID uuid.UUID
			Fn      func(ctx context.Context) error
		}
	}
	lockRunInTx      sync.RWMutex
	lockRunInEventTx sync.RWMutex
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

func (mock *txManagerMock) RunInEventTx(ctx context.Context, eventID uuid.UUID, fn func(ctx context.Context) error) error {
	if mock.RunInEventTxFunc == nil {
		panic("txManagerMock.RunInEventTxFunc: method is nil but txManager.RunInEventTx was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		EventID uuid.UUID
		Fn      func(ctx context.Context) error
	}{Ctx: ctx, EventID: eventID, Fn: fn}
	mock.lockRunInEventTx.Lock()
	mock.calls.RunInEventTx = append(mock.calls.RunInEventTx, callInfo)
	mock.lockRunInEventTx.Unlock()
	return mock.RunInEventTxFunc(ctx, eventID, fn)
}

func (mock *txManagerMock) RunInEventTxCalls() []struct {
	Ctx     context.Context
	EventID uuid.UUID
	Fn      func(ctx context.Context) error
} {
	mock.lockRunInEventTx.RLock()
	calls := mock.calls.RunInEventTx
	mock.lockRunInEventTx.RUnlock()
	return calls
}
