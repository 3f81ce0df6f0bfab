package stores

import (
	"context"
	"overlay-server/core"
	"sync"
)

type notifyingStore struct {
	core.OverlayStore
	notifier core.ChangeNotifier

	// mu serializes each mutation with its notification so listeners see
	// changes in the order they were applied.
	mu  sync.Mutex
	seq uint64
}

// WithNotifier wraps store so every successful mutation is reported to
// notifier. Failed operations report nothing.
func WithNotifier(store core.OverlayStore, notifier core.ChangeNotifier) core.OverlayStore {
	if notifier == nil {
		return store
	}
	return &notifyingStore{OverlayStore: store, notifier: notifier}
}

func (s *notifyingStore) Create(ctx context.Context, overlay core.Overlay) (core.Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.OverlayStore.Create(ctx, overlay)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, core.OverlayChange{
		Action:  core.ChangeCreated,
		ID:      created.ID(),
		Overlay: created.Clone(),
	})
	return created, nil
}

func (s *notifyingStore) Update(ctx context.Context, id string, overlay core.Overlay) (core.Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.OverlayStore.Update(ctx, id, overlay)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, core.OverlayChange{
		Action:  core.ChangeUpdated,
		ID:      id,
		Overlay: updated.Clone(),
	})
	return updated, nil
}

func (s *notifyingStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.OverlayStore.Delete(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, core.OverlayChange{
		Action: core.ChangeDeleted,
		ID:     id,
	})
	return nil
}

// notify must be called with s.mu held.
func (s *notifyingStore) notify(ctx context.Context, change core.OverlayChange) {
	s.seq++
	change.Seq = s.seq
	s.notifier.NotifyChange(ctx, change)
}
