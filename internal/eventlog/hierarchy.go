package eventlog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrCorrupt is returned when the parent/children index is inconsistent.
// It is fatal for the owning event.
var ErrCorrupt = errors.New("hierarchy index corrupt")

// hierarchy is the parent→children index kept in step with entry parent pointers.
type hierarchy struct {
	parent   map[uuid.UUID]uuid.UUID
	children map[uuid.UUID]map[uuid.UUID]struct{}
}

func newHierarchy() *hierarchy {
	return &hierarchy{
		parent:   make(map[uuid.UUID]uuid.UUID),
		children: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// set records child's parent (nil detaches it), updating both directions.
func (h *hierarchy) set(child uuid.UUID, parent *uuid.UUID) {
	if old, ok := h.parent[child]; ok {
		if kids := h.children[old]; kids != nil {
			delete(kids, child)
			if len(kids) == 0 {
				delete(h.children, old)
			}
		}
		delete(h.parent, child)
	}
	if parent == nil {
		return
	}
	h.parent[child] = *parent
	kids := h.children[*parent]
	if kids == nil {
		kids = make(map[uuid.UUID]struct{})
		h.children[*parent] = kids
	}
	kids[child] = struct{}{}
}

func (h *hierarchy) childrenOf(id uuid.UUID) []uuid.UUID {
	kids := h.children[id]
	out := make([]uuid.UUID, 0, len(kids))
	for k := range kids {
		out = append(out, k)
	}
	return out
}

// ancestors walks upward from id. The walk is bounded by the number of
// parent links; exceeding it means a cycle slipped into the index.
func (h *hierarchy) ancestors(id uuid.UUID, visit func(uuid.UUID) bool) error {
	limit := len(h.parent) + 1
	cur := id
	for steps := 0; ; steps++ {
		p, ok := h.parent[cur]
		if !ok {
			return nil
		}
		if steps >= limit {
			return fmt.Errorf("ancestor walk from %s exceeded %d steps: %w", id, limit, ErrCorrupt)
		}
		if !visit(p) {
			return nil
		}
		cur = p
	}
}

// wouldCycle reports whether making newParent the parent of child creates a cycle.
func (h *hierarchy) wouldCycle(child, newParent uuid.UUID) (bool, error) {
	if child == newParent {
		return true, nil
	}
	found := false
	err := h.ancestors(newParent, func(a uuid.UUID) bool {
		if a == child {
			found = true
			return false
		}
		return true
	})
	return found, err
}
