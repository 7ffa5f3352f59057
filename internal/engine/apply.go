package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/eventlog"
	"github.com/heartmarshall/streamlog-backend/internal/service/journal"
	"github.com/heartmarshall/streamlog-backend/internal/video"
)

// TypingFields are the inputs a Typing command may report.
var TypingFields = []string{
	domain.FieldParent,
	domain.FieldStartTime,
	domain.FieldEndTime,
	domain.FieldEntryType,
	domain.FieldDescription,
	domain.FieldMediaLinks,
	domain.FieldSubmitterOrWinner,
	domain.FieldNotesToEditor,
	"clear",
}

// Submit runs cmd against an event on behalf of p. Rejected commands change
// nothing and broadcast nothing. Once accepted, a command completes even if
// ctx is cancelled while it runs.
func (e *Engine) Submit(ctx context.Context, eventID uuid.UUID, p Principal, cmd Command) (Result, error) {
	if p.User == nil && p.App == nil {
		return Result{}, fmt.Errorf("engine.Submit: %w", domain.ErrUnauthorized)
	}

	val, err := e.do(ctx, eventID, cmd.commandName(), func(ctx context.Context, w *worker) (any, error) {
		res, err := w.apply(ctx, p, cmd)
		if err != nil && w.fatal == nil && errors.Is(err, eventlog.ErrCorrupt) {
			return nil, w.halt(err)
		}
		return res, err
	})
	if err != nil {
		return Result{}, fmt.Errorf("engine.Submit %s: %w", cmd.commandName(), err)
	}
	return val.(Result), nil
}

func (w *worker) apply(ctx context.Context, p Principal, cmd Command) (Result, error) {
	if p.App != nil {
		u, ok := cmd.(IntegrationUpdate)
		if !ok {
			return Result{}, fmt.Errorf("applications may only update video fields: %w", domain.ErrForbidden)
		}
		return w.integrationUpdate(ctx, p, u)
	}

	c, err := w.engine.resolver.Resolve(ctx, p.User.ID, w.eventID)
	if err != nil {
		return Result{}, err
	}

	switch cmd := cmd.(type) {
	case CreateEntries:
		return w.createEntries(ctx, p, c, cmd)
	case UpdateEntry:
		return w.updateEntry(ctx, p, c, cmd)
	case DeleteEntry:
		return w.deleteEntry(ctx, p, c, cmd)
	case Typing:
		return w.typing(p, c, cmd)
	case SaveTag:
		return w.saveTag(ctx, p, c, cmd)
	case RemoveTag:
		return w.removeTag(ctx, p, c, cmd)
	case ReplaceTag:
		return w.replaceTag(ctx, p, c, cmd)
	case CopyTags:
		return w.copyTags(ctx, p, cmd)
	case AddSection:
		return w.addSection(ctx, p, c, cmd)
	default:
		return Result{}, fmt.Errorf("%s is not available to users: %w", cmd.commandName(), domain.ErrForbidden)
	}
}

func need(c, required domain.Capability, action string) error {
	if !c.AtLeast(required) {
		return fmt.Errorf("%s requires %s capability: %w", action, required, domain.ErrForbidden)
	}
	return nil
}

// commit persists cs, applies it to the store, advances the sequence and
// broadcasts the messages build returns.
func (w *worker) commit(ctx context.Context, p Principal, cs journal.ChangeSet, build func() []Message) (Result, error) {
	at := w.engine.now().UTC()
	if err := w.persist(ctx, p.actor(), cs, at); err != nil {
		return Result{}, err
	}

	for _, sec := range cs.Sections {
		w.store.CommitSection(sec)
	}
	for _, t := range cs.Tags {
		w.store.CommitTag(t)
	}
	res := Result{Tags: cs.Tags, Sections: cs.Sections}
	for _, ch := range cs.Entries {
		if err := w.store.Commit(ch.Entry); err != nil {
			return Result{}, w.halt(err)
		}
		res.Entries = append(res.Entries, ch.Entry)
	}

	w.seq++
	res.Seq = w.seq
	w.broadcast(build(), uuid.Nil)
	return res, nil
}

// ---------------------------------------------------------------------------
// Entries
// ---------------------------------------------------------------------------

func (w *worker) createEntries(ctx context.Context, p Principal, c domain.Capability, cmd CreateEntries) (Result, error) {
	if err := need(c, domain.CapabilityEdit, "creating entries"); err != nil {
		return Result{}, err
	}
	count := cmd.Count
	if count == 0 {
		count = 1
	}
	if count < 1 || count > w.engine.cfg.MaxCreateCount {
		return Result{}, domain.NewValidationError("count", fmt.Sprintf("must be between 1 and %d", w.engine.cfg.MaxCreateCount))
	}

	now := w.engine.now().UTC().Truncate(time.Microsecond)
	var cs journal.ChangeSet
	for i := range count {
		// Copies are spaced so creation order survives the round trip.
		e := cmd.Entry.Build(w.engine.newID(), w.eventID, now.Add(time.Duration(i)*time.Microsecond))
		if err := video.CheckEditTransition(domain.VideoEditStateNoVideo, e.VideoEditState, c); err != nil {
			return Result{}, err
		}
		prepared, err := w.store.PrepareCreate(e)
		if err != nil {
			return Result{}, err
		}
		cs.Entries = append(cs.Entries, journal.EntryChange{Entry: prepared, Created: true})
	}

	return w.commit(ctx, p, cs, func() []Message {
		msgs := make([]Message, 0, len(cs.Entries))
		for _, ch := range cs.Entries {
			msgs = append(msgs, w.message(TypeEntryCreated, EntryPayload{Entry: ch.Entry, Editor: p.editor()}))
		}
		return msgs
	})
}

func (w *worker) updateEntry(ctx context.Context, p Principal, c domain.Capability, cmd UpdateEntry) (Result, error) {
	if err := need(c, domain.CapabilityEdit, "editing entries"); err != nil {
		return Result{}, err
	}
	if cmd.Patch.IsEmpty() {
		return Result{}, domain.NewValidationError("patch", "no fields to update")
	}
	if err := video.CheckInteractivePatch(&cmd.Patch); err != nil {
		return Result{}, err
	}

	prev, next, err := w.store.PrepareUpdate(cmd.ID, &cmd.Patch)
	if err != nil {
		return Result{}, err
	}
	if cmd.Patch.VideoEditState != nil {
		if err := video.CheckEditTransition(prev.VideoEditState, next.VideoEditState, c); err != nil {
			return Result{}, err
		}
	}
	return w.commitUpdate(ctx, p, prev, next, cmd.Patch.Fields())
}

func (w *worker) integrationUpdate(ctx context.Context, p Principal, cmd IntegrationUpdate) (Result, error) {
	if !p.App.WriteLinks {
		return Result{}, fmt.Errorf("application lacks write_links: %w", domain.ErrForbidden)
	}
	if err := video.CheckIntegrationPatch(&cmd.Patch); err != nil {
		return Result{}, err
	}
	prev, next, err := w.store.PrepareUpdate(cmd.EntryID, &cmd.Patch)
	if err != nil {
		return Result{}, err
	}
	return w.commitUpdate(ctx, p, prev, next, cmd.Patch.Fields())
}

func (w *worker) commitUpdate(ctx context.Context, p Principal, prev, next domain.LogEntry, fields []string) (Result, error) {
	cs := journal.ChangeSet{Entries: []journal.EntryChange{{Entry: next, Fields: fields}}}
	return w.commit(ctx, p, cs, func() []Message {
		payload := EntryPayload{Entry: next, Fields: fields, Editor: p.editor()}
		if !sameParent(prev.Parent, next.Parent) {
			return []Message{w.message(TypeEntryReparented, ReparentedPayload{EntryPayload: payload, PreviousParent: prev.Parent})}
		}
		return []Message{w.message(TypeEntryUpdated, payload)}
	})
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (w *worker) deleteEntry(ctx context.Context, p Principal, c domain.Capability, cmd DeleteEntry) (Result, error) {
	if err := need(c, domain.CapabilitySupervisor, "deleting entries"); err != nil {
		return Result{}, err
	}
	deleted, err := w.store.PrepareDelete(cmd.ID, p.User.ID)
	if err != nil {
		return Result{}, err
	}

	cs := journal.ChangeSet{Entries: []journal.EntryChange{{Entry: deleted, Fields: []string{domain.FieldDeletedBy}}}}
	return w.commit(ctx, p, cs, func() []Message {
		return []Message{w.message(TypeEntryDeleted, EntryPayload{Entry: deleted, Editor: p.editor()})}
	})
}

func (w *worker) typing(p Principal, c domain.Capability, cmd Typing) (Result, error) {
	if err := need(c, domain.CapabilityEdit, "typing"); err != nil {
		return Result{}, err
	}
	if !slices.Contains(TypingFields, cmd.Field) {
		return Result{}, domain.NewValidationError("field", fmt.Sprintf("unknown field %q", cmd.Field))
	}
	if cmd.Entry != nil {
		if e, ok := w.store.Entry(*cmd.Entry); !ok || e.IsDeleted() {
			return Result{}, fmt.Errorf("entry %s: %w", *cmd.Entry, domain.ErrNotFound)
		}
	}

	msg := w.message(TypeTyping, TypingPayload{Editor: p.editor(), Entry: cmd.Entry, Field: cmd.Field, Value: cmd.Value})
	w.broadcast([]Message{msg}, p.ConnID)
	return Result{Seq: w.seq}, nil
}

// ---------------------------------------------------------------------------
// Tags and sections
// ---------------------------------------------------------------------------

func (w *worker) saveTag(ctx context.Context, p Principal, c domain.Capability, cmd SaveTag) (Result, error) {
	if err := need(c, domain.CapabilityEdit, "editing tags"); err != nil {
		return Result{}, err
	}
	t := cmd.Tag
	if t.ID == uuid.Nil {
		t.ID = w.engine.newID()
	} else if _, ok := w.store.Tag(t.ID); !ok {
		return Result{}, fmt.Errorf("tag %s: %w", t.ID, domain.ErrNotFound)
	}
	t.EventID = w.eventID
	t.Name = strings.TrimSpace(t.Name)
	t.Deleted = false

	prev, err := w.store.PrepareTag(t)
	if err != nil {
		return Result{}, err
	}

	typ := TypeTagUpdated
	if prev == nil {
		typ = TypeTagAdded
	}
	return w.commit(ctx, p, journal.ChangeSet{Tags: []domain.Tag{t}}, func() []Message {
		return []Message{w.message(typ, TagPayload{Tag: t})}
	})
}

func (w *worker) removeTag(ctx context.Context, p Principal, c domain.Capability, cmd RemoveTag) (Result, error) {
	if err := need(c, domain.CapabilitySupervisor, "removing tags"); err != nil {
		return Result{}, err
	}
	removed, err := w.store.PrepareTagRemoval(cmd.ID)
	if err != nil {
		return Result{}, err
	}
	return w.commit(ctx, p, journal.ChangeSet{Tags: []domain.Tag{removed}}, func() []Message {
		return []Message{w.message(TypeTagRemoved, TagPayload{Tag: removed})}
	})
}

func (w *worker) replaceTag(ctx context.Context, p Principal, c domain.Capability, cmd ReplaceTag) (Result, error) {
	if err := need(c, domain.CapabilitySupervisor, "replacing tags"); err != nil {
		return Result{}, err
	}
	removed, updated, err := w.store.PrepareTagReplace(cmd.From, cmd.To)
	if err != nil {
		return Result{}, err
	}

	cs := journal.ChangeSet{Tags: []domain.Tag{removed}}
	for _, e := range updated {
		cs.Entries = append(cs.Entries, journal.EntryChange{Entry: e, Fields: []string{domain.FieldTags}})
	}
	return w.commit(ctx, p, cs, func() []Message {
		msgs := make([]Message, 0, len(updated)+1)
		for _, e := range updated {
			msgs = append(msgs, w.message(TypeEntryUpdated, EntryPayload{
				Entry:  e,
				Fields: []string{domain.FieldTags},
				Editor: p.editor(),
			}))
		}
		return append(msgs, w.message(TypeTagRemoved, TagPayload{Tag: removed}))
	})
}

func (w *worker) copyTags(ctx context.Context, p Principal, cmd CopyTags) (Result, error) {
	if !p.User.IsAdmin {
		return Result{}, fmt.Errorf("copying tags requires an administrator: %w", domain.ErrForbidden)
	}
	if cmd.FromEvent == w.eventID {
		return Result{}, domain.NewValidationError("from_event", "must be a different event")
	}

	src, err := w.engine.journal.ListTags(ctx, cmd.FromEvent)
	if err != nil {
		return Result{}, err
	}
	copies := w.store.PrepareTagCopies(src, w.engine.newID)
	if len(copies) == 0 {
		return Result{Seq: w.seq}, nil
	}

	return w.commit(ctx, p, journal.ChangeSet{Tags: copies}, func() []Message {
		msgs := make([]Message, 0, len(copies))
		for _, t := range copies {
			msgs = append(msgs, w.message(TypeTagAdded, TagPayload{Tag: t}))
		}
		return msgs
	})
}

func (w *worker) addSection(ctx context.Context, p Principal, c domain.Capability, cmd AddSection) (Result, error) {
	if err := need(c, domain.CapabilitySupervisor, "adding sections"); err != nil {
		return Result{}, err
	}
	sec, err := w.store.PrepareSection(domain.Section{ID: w.engine.newID(), Name: cmd.Name, StartTime: cmd.StartTime.UTC()})
	if err != nil {
		return Result{}, err
	}
	return w.commit(ctx, p, journal.ChangeSet{Sections: []domain.Section{sec}}, func() []Message {
		return []Message{w.message(TypeSectionAdded, SectionPayload{Section: sec})}
	})
}
