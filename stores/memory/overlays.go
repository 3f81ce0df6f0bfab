package memory

import (
	"context"
	"fmt"
	"overlay-server/core"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type overlayStore struct {
	mu       sync.RWMutex
	overlays []core.Overlay
}

// NewOverlayStore returns an empty store preloaded with seed. Seed records
// keep their own ids and are not validated.
func NewOverlayStore(seed ...core.Overlay) core.OverlayStore {
	s := &overlayStore{
		overlays: make([]core.Overlay, 0, len(seed)),
	}
	for _, overlay := range seed {
		s.overlays = append(s.overlays, overlay.Clone())
	}
	return s
}

func (s *overlayStore) List(ctx context.Context) ([]core.Overlay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	overlays := make([]core.Overlay, 0, len(s.overlays))
	for _, overlay := range s.overlays {
		overlays = append(overlays, overlay.Clone())
	}

	logrus.Debugf("Listed %d overlays", len(overlays))
	return overlays, nil
}

func (s *overlayStore) FindID(ctx context.Context, id string) (core.Overlay, error) {
	log := logrus.WithField("overlay_id", id)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		log.Debug("Overlay retrieved successfully")
		return s.overlays[i].Clone(), nil
	}

	log.Warn("Overlay with specified ID not found")
	return nil, fmt.Errorf("overlay with id %s: %w", id, core.ErrNotFound)
}

func (s *overlayStore) Create(ctx context.Context, overlay core.Overlay) (core.Overlay, error) {
	if overlay == nil {
		return nil, fmt.Errorf("overlay payload is empty: %w", core.ErrInvalidInput)
	}
	if missing := overlay.MissingFields(); len(missing) > 0 {
		logrus.WithField("missing", strings.Join(missing, ",")).Warn("Rejected overlay with missing fields")
		return nil, fmt.Errorf("missing %s: %w", strings.Join(missing, ", "), core.ErrInvalidInput)
	}

	stored := overlay.Clone()
	id := ulid.Make().String()
	stored[core.IDField] = id

	s.mu.Lock()
	s.overlays = append(s.overlays, stored)
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"overlay_id": id,
		"type":       stored["type"],
	}).Info("Overlay created successfully")

	return stored.Clone(), nil
}

func (s *overlayStore) Update(ctx context.Context, id string, overlay core.Overlay) (core.Overlay, error) {
	if overlay == nil {
		return nil, fmt.Errorf("overlay payload is empty: %w", core.ErrInvalidInput)
	}
	log := logrus.WithField("overlay_id", id)

	stored := overlay.Clone()
	stored[core.IDField] = id

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		log.Warn("Overlay to update not found")
		return nil, fmt.Errorf("overlay with id %s: %w", id, core.ErrNotFound)
	}
	s.overlays[i] = stored
	s.mu.Unlock()

	log.WithField("fields", len(stored)).Info("Overlay replaced successfully")
	return stored.Clone(), nil
}

func (s *overlayStore) Delete(ctx context.Context, id string) error {
	log := logrus.WithField("overlay_id", id)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		log.Warn("Overlay to delete not found")
		return fmt.Errorf("overlay with id %s: %w", id, core.ErrNotFound)
	}
	s.overlays = append(s.overlays[:i], s.overlays[i+1:]...)

	log.Info("Overlay deleted successfully")
	return nil
}

func (s *overlayStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.overlays)
}

// indexOf must be called with s.mu held.
func (s *overlayStore) indexOf(id string) int {
	for i, overlay := range s.overlays {
		if overlay.ID() == id {
			return i
		}
	}
	return -1
}
