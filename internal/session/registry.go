// Package session keeps one dashboard per browser session and wires it to the store, the branding
// source and the session's websocket hub.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/nurpe/waste-pickup/internal/branding"
	"github.com/nurpe/waste-pickup/internal/datasdk"
	"github.com/nurpe/waste-pickup/internal/service"
	"github.com/nurpe/waste-pickup/internal/view"
	"github.com/nurpe/waste-pickup/internal/ws"
)

type Store interface {
	service.DataSDK
	Init(ctx context.Context, listener datasdk.Listener) error
	Detach(listener datasdk.Listener)
	Refresh(ctx context.Context)
}

type BrandingSource interface {
	OnChange(handler branding.Handler) func()
}

type Session struct {
	ID        uuid.UUID
	Dashboard *service.Dashboard
	Hub       *ws.Hub

	lastSeen       time.Time
	cancelBranding func()
}

type Options struct {
	IdleTimeout time.Duration
	Dashboard   service.DashboardOptions
	CheckOrigin func(r *http.Request) bool
}

type Registry struct {
	store    Store
	branding BrandingSource
	renderer *view.Renderer
	log      zerolog.Logger
	opts     Options
	now      func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	cron     *cron.Cron
}

func NewRegistry(store Store, source BrandingSource, renderer *view.Renderer, log zerolog.Logger, opts Options) *Registry {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 2 * time.Hour
	}
	return &Registry{
		store:    store,
		branding: source,
		renderer: renderer,
		log:      log,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create builds a fresh dashboard and subscribes it to both collaborators. A failed initial load is
// logged; the dashboard still receives later change notifications.
func (r *Registry) Create(ctx context.Context) *Session {
	dashboard := service.NewDashboard(r.store, r.renderer, r.log, r.opts.Dashboard)
	hub := ws.NewHub(r.log, r.opts.CheckOrigin)
	dashboard.SetPublisher(hub)

	s := &Session{
		ID:        uuid.New(),
		Dashboard: dashboard,
		Hub:       hub,
		lastSeen:  r.now(),
	}

	if err := r.store.Init(ctx, dashboard); err != nil {
		r.log.Error().Err(err).Str("session", s.ID.String()).Msg("failed to initialize data store")
	}
	s.cancelBranding = r.branding.OnChange(dashboard.OnConfigChange)

	r.mu.Lock()
	r.sessions[s.ID] = s
	total := len(r.sessions)
	r.mu.Unlock()

	r.log.Debug().Str("session", s.ID.String()).Int("sessions", total).Msg("session created")
	return s
}

// Get returns a live session and marks it as used.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = r.now()
	}
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the configured timeout.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.opts.IdleTimeout)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) && s.Hub.ClientsCount() == 0 {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		r.release(s)
	}
	if len(expired) > 0 {
		r.log.Info().Int("expired", len(expired)).Msg("idle sessions removed")
	}
	return len(expired)
}

func (r *Registry) release(s *Session) {
	r.store.Detach(s.Dashboard)
	if s.cancelBranding != nil {
		s.cancelBranding()
	}
	s.Dashboard.Close()
	s.Hub.CloseAll()
}

// Start schedules the idle sweep and a midnight refresh so that "today" counters roll over.
func (r *Registry) Start() error {
	loc := r.opts.Dashboard.Location
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc("@every 1m", func() { r.Sweep() }); err != nil {
		return err
	}
	if _, err := c.AddFunc("0 0 * * *", func() {
		r.store.Refresh(context.Background())
	}); err != nil {
		return err
	}
	c.Start()

	r.mu.Lock()
	r.cron = c
	r.mu.Unlock()
	return nil
}

// Stop halts the scheduler and releases every session.
func (r *Registry) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	sessions := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		sessions = append(sessions, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	for _, s := range sessions {
		r.release(s)
	}
}
