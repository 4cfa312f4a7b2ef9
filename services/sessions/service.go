package sessions

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"moviegate/models"
	"moviegate/services/catalog"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidToken    = errors.New("invalid token")
)

// DefaultSessionTTL is the idle lifetime of a browsing session.
const DefaultSessionTTL = 12 * time.Hour

type entry struct {
	session    models.Session
	controller *catalog.Controller
}

// Service keeps one catalog controller per browsing session, in memory only.
type Service struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	source  catalog.Source
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewService creates the registry and starts the background cleanup loop.
// A ttl <= 0 uses DefaultSessionTTL.
func NewService(source catalog.Source, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	svc := &Service{
		entries: make(map[string]*entry),
		ttl:     ttl,
		source:  source,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go svc.cleanupLoop()
	return svc
}

// Create issues a new session with an empty catalog and no wallet.
func (s *Service) Create(userAgent, ipAddress string) (models.Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return models.Session{}, err
	}

	now := s.now().UTC()
	session := models.Session{
		Token:     id.String(),
		CreatedAt: now,
		LastSeen:  now,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	s.mu.Lock()
	s.entries[session.Token] = &entry{session: session, controller: catalog.New(s.source)}
	s.mu.Unlock()

	log.WithField("ip", ipAddress).Debug("browsing session created")
	return session, nil
}

// Validate checks token, touches the session and returns its controller.
func (s *Service) Validate(token string) (models.Session, *catalog.Controller, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Session{}, nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(token); err != nil {
		return models.Session{}, nil, ErrInvalidToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return models.Session{}, nil, ErrSessionNotFound
	}
	now := s.now()
	if e.session.IsExpiredAt(now, s.ttl) {
		delete(s.entries, token)
		return models.Session{}, nil, ErrSessionExpired
	}
	e.session.LastSeen = now.UTC()
	return e.session, e.controller, nil
}

// Revoke drops a session.
func (s *Service) Revoke(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[token]; !ok {
		return ErrSessionNotFound
	}
	delete(s.entries, token)
	return nil
}

// Cleanup removes all expired sessions and returns how many were dropped.
func (s *Service) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	now := s.now()
	for token, e := range s.entries {
		if e.session.IsExpiredAt(now, s.ttl) {
			delete(s.entries, token)
			count++
		}
	}
	return count
}

// Count returns the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the cleanup loop.
func (s *Service) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Service) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval(s.ttl))
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.Cleanup(); n > 0 {
				log.WithField("count", n).Info("expired browsing sessions removed")
			}
		}
	}
}

func cleanupInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval > time.Hour {
		return time.Hour
	}
	if interval < time.Minute {
		return time.Minute
	}
	return interval
}
