// Package branding supplies the site strings shown in the page header and on the contact page.
package branding

import (
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	DefaultSiteTitle    = "Nagar Nigam Lucknow"
	DefaultTagline      = "Smart Waste Management System"
	DefaultContactPhone = "+91-522-2234567"
	DefaultContactEmail = "waste@nagarnigamlko.in"
)

// Config holds overrides; empty fields fall back to the defaults.
type Config struct {
	SiteTitle    string `mapstructure:"site_title"`
	Tagline      string `mapstructure:"tagline"`
	ContactPhone string `mapstructure:"contact_phone"`
	ContactEmail string `mapstructure:"contact_email"`
}

type Branding struct {
	SiteTitle    string
	Tagline      string
	ContactPhone string
	ContactEmail string
}

func Default() Branding {
	return Resolve(Config{})
}

func Resolve(cfg Config) Branding {
	return Branding{
		SiteTitle:    orDefault(cfg.SiteTitle, DefaultSiteTitle),
		Tagline:      orDefault(cfg.Tagline, DefaultTagline),
		ContactPhone: orDefault(cfg.ContactPhone, DefaultContactPhone),
		ContactEmail: orDefault(cfg.ContactEmail, DefaultContactEmail),
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

type Handler func(Config)

// Source delivers the branding config to subscribers and re-delivers it whenever the backing file
// changes. A Source without a file always delivers an empty Config.
type Source struct {
	v   *viper.Viper
	log zerolog.Logger

	mu       sync.Mutex
	current  Config
	nextID   int
	handlers map[int]Handler
}

func NewSource(path string, log zerolog.Logger) (*Source, error) {
	s := &Source{log: log, handlers: make(map[int]Handler)}
	if path == "" {
		return s, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	s.v = v
	if err := s.reload(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if err := s.reload(); err != nil {
			log.Error().Err(err).Str("file", e.Name).Msg("reload branding")
			return
		}
		log.Info().Str("file", e.Name).Msg("branding changed")
		s.broadcast()
	})
	v.WatchConfig()
	return s, nil
}

func (s *Source) reload() error {
	var cfg Config
	if err := s.v.Unmarshal(&cfg); err != nil {
		return err
	}
	s.Set(cfg, false)
	return nil
}

// Set replaces the current config, optionally notifying subscribers.
func (s *Source) Set(cfg Config, notify bool) {
	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	if notify {
		s.broadcast()
	}
}

func (s *Source) Current() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// OnChange subscribes handler, calls it once with the current config and returns an unsubscribe func.
func (s *Source) OnChange(handler Handler) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = handler
	current := s.current
	s.mu.Unlock()

	handler(current)
	return func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}
}

func (s *Source) broadcast() {
	s.mu.Lock()
	current := s.current
	handlers := make([]Handler, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(current)
	}
}
