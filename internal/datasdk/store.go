// Package datasdk is the persistence collaborator of the dashboards: it owns the request records and
// pushes the complete dataset to every registered listener after each successful change.
package datasdk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/waste-pickup/internal/model"
)

var (
	ErrMissingBackendID = errors.New("backend id is required")
	ErrNotFound         = errors.New("request not found")
	ErrInvalidRecord    = errors.New("invalid request record")
)

// Listener receives full-dataset replacements.
type Listener interface {
	OnDataChanged(snapshot []*model.WasteRequest)
}

type Repository interface {
	List(ctx context.Context) ([]*model.WasteRequest, error)
	Insert(ctx context.Context, req *model.WasteRequest) error
	Update(ctx context.Context, req *model.WasteRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Store struct {
	repo Repository
	log  zerolog.Logger

	mu        sync.Mutex
	listeners []Listener
}

func NewStore(repo Repository, log zerolog.Logger) *Store {
	return &Store{repo: repo, log: log}
}

// Init registers the listener and delivers the current dataset to it. The listener stays registered
// even when the initial load fails, so it still receives later notifications.
func (s *Store) Init(ctx context.Context, listener Listener) error {
	s.mu.Lock()
	s.listeners = append(s.listeners, listener)
	s.mu.Unlock()

	snapshot, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load requests: %w", err)
	}
	listener.OnDataChanged(snapshot)
	return nil
}

func (s *Store) Detach(listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.listeners {
		if l == listener {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *Store) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Create persists a copy of req under a fresh backend id. The caller's record is left untouched;
// the id only becomes visible through the next change notification.
func (s *Store) Create(ctx context.Context, req *model.WasteRequest) error {
	if req == nil || !req.Status.Valid() {
		return ErrInvalidRecord
	}
	stored := req.Clone()
	stored.BackendID = uuid.New()
	if err := s.repo.Insert(ctx, stored); err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	s.notify(ctx)
	return nil
}

func (s *Store) Update(ctx context.Context, req *model.WasteRequest) error {
	if req == nil || req.BackendID == uuid.Nil {
		return ErrMissingBackendID
	}
	if !req.Status.Valid() {
		return ErrInvalidRecord
	}
	if err := s.repo.Update(ctx, req); err != nil {
		return translate(err)
	}
	s.notify(ctx)
	return nil
}

func (s *Store) Delete(ctx context.Context, req *model.WasteRequest) error {
	if req == nil || req.BackendID == uuid.Nil {
		return ErrMissingBackendID
	}
	if err := s.repo.Delete(ctx, req.BackendID); err != nil {
		return translate(err)
	}
	s.notify(ctx)
	return nil
}

// Refresh re-pushes the stored dataset without a change.
func (s *Store) Refresh(ctx context.Context) {
	s.notify(ctx)
}

// notify loads the dataset once and hands every listener its own copy. A failed load drops the
// notification; listeners keep their previous snapshot.
func (s *Store) notify(ctx context.Context) {
	snapshot, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("load requests for change notification")
		return
	}

	s.mu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for i, listener := range listeners {
		if i == len(listeners)-1 {
			listener.OnDataChanged(snapshot)
			continue
		}
		listener.OnDataChanged(model.CloneAll(snapshot))
	}
	s.log.Debug().Int("records", len(snapshot)).Int("listeners", len(listeners)).Msg("change notification sent")
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
