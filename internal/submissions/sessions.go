package submissions

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hhsystems1/Intakeform/internal/intake"
	"github.com/hhsystems1/Intakeform/internal/preview"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("too many live sessions")
)

// Sessions holds one intake form per browser session. Forms live only in
// memory; a restart drops them.
type Sessions struct {
	mu        sync.Mutex
	items     map[string]*session
	route     intake.Route
	deliverer intake.Deliverer
	previews  *preview.Registry
	now       func() time.Time

	maxLive        int
	maxAttachments int
}

type session struct {
	form     *intake.Form
	lastSeen time.Time
}

func NewSessions(route intake.Route, deliverer intake.Deliverer, previews *preview.Registry) *Sessions {
	return &Sessions{
		items:     make(map[string]*session),
		route:     route,
		deliverer: deliverer,
		previews:  previews,
		now:       time.Now,
	}
}

// SetLimits caps the number of live sessions and the attachments each form
// may stage. Zero leaves the corresponding dimension unbounded.
func (s *Sessions) SetLimits(maxLive, maxAttachments int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxLive = maxLive
	s.maxAttachments = maxAttachments
}

// NewForm builds a form wired like the session forms but not registered.
func (s *Sessions) NewForm() *intake.Form {
	s.mu.Lock()
	limit := s.maxAttachments
	s.mu.Unlock()

	form := intake.NewForm(s.route, s.deliverer, s.previews)
	form.SetAttachmentLimit(limit)
	return form
}

func (s *Sessions) Create() (string, *intake.Form, error) {
	id := uuid.NewString()
	form := s.NewForm()

	s.mu.Lock()
	if s.maxLive > 0 && len(s.items) >= s.maxLive {
		s.mu.Unlock()
		form.Close()
		return "", nil, ErrSessionLimit
	}
	s.items[id] = &session{form: form, lastSeen: s.now()}
	s.mu.Unlock()
	return id, form, nil
}

func (s *Sessions) Get(id string) (*intake.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = s.now()
	return sess.form, nil
}

// Delete tears the session down, releasing its preview handles.
func (s *Sessions) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.items[id]
	delete(s.items, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.form.Close()
	return nil
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep tears down sessions idle for longer than ttl. Sessions with a
// submission in flight are kept until it resolves.
func (s *Sessions) Sweep(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)
	var expired []*session

	s.mu.Lock()
	for id, sess := range s.items {
		if sess.lastSeen.Before(cutoff) && sess.form.Status().State != intake.StateInFlight {
			expired = append(expired, sess)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.form.Close()
	}
	return len(expired)
}

// Run sweeps on every tick until ctx is done, then closes every session.
func (s *Sessions) Run(ctx context.Context, ttl, interval time.Duration, onSweep func(n int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.CloseAll()
			return
		case <-ticker.C:
			if n := s.Sweep(ttl); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

func (s *Sessions) CloseAll() {
	s.mu.Lock()
	items := s.items
	s.items = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range items {
		sess.form.Close()
	}
}
