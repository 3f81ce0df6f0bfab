package core

import (
	"context"
	"errors"
)

// IDField is the record key holding the service-assigned overlay id.
const IDField = "_id"

// RequiredFields must all be present as keys when an overlay is created.
var RequiredFields = []string{"name", "type", "content", "position", "size"}

var (
	ErrNotFound     = errors.New("overlay not found")
	ErrInvalidInput = errors.New("invalid input")
)

type (
	// Overlay is an open record: the known fields (name, type, content,
	// position, size) live next to any caller-supplied extras.
	Overlay map[string]any

	OverlayStore interface {
		List(ctx context.Context) ([]Overlay, error)
		FindID(ctx context.Context, id string) (Overlay, error)
		Create(ctx context.Context, overlay Overlay) (Overlay, error)
		Update(ctx context.Context, id string, overlay Overlay) (Overlay, error)
		Delete(ctx context.Context, id string) error
		Len() int
	}

	ChangeAction string

	// OverlayChange describes one successful mutation. Seq increases by one
	// per change, in the order the changes were applied to the store.
	OverlayChange struct {
		Seq     uint64       `json:"seq"`
		Action  ChangeAction `json:"action"`
		ID      string       `json:"id"`
		Overlay Overlay      `json:"overlay,omitempty"`
	}

	ChangeNotifier interface {
		NotifyChange(ctx context.Context, change OverlayChange)
	}
)

const (
	ChangeCreated ChangeAction = "created"
	ChangeUpdated ChangeAction = "updated"
	ChangeDeleted ChangeAction = "deleted"
)

// ID returns the overlay id, or "" when it is absent or not a string.
func (o Overlay) ID() string {
	id, _ := o[IDField].(string)
	return id
}

// MissingFields lists the required keys absent from o, in RequiredFields order.
func (o Overlay) MissingFields() []string {
	var missing []string
	for _, field := range RequiredFields {
		if _, ok := o[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

// Clone returns a deep copy of o. Nested JSON objects and arrays are copied
// so the clone shares no mutable state with o.
func (o Overlay) Clone() Overlay {
	if o == nil {
		return nil
	}
	out := make(Overlay, len(o))
	for k, v := range o {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = cloneValue(inner)
		}
		return m
	case Overlay:
		return val.Clone()
	case []any:
		s := make([]any, len(val))
		for i, inner := range val {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return val
	}
}
