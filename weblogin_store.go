package goKeyless

import (
	"errors"
	"sync"
	"time"
)

type webLoginState uint8

const (
	webLoginSubmitted webLoginState = iota
	webLoginApproved
	webLoginExpired
)

var (
	errWebLoginNotTracked      = errors.New("web login request not tracked locally")
	errWebLoginAlreadyApproved = errors.New("web login request already approved")
	errWebLoginExpired         = errors.New("web login request expired")
)

type webLoginRequest struct {
	state     webLoginState
	expiresAt time.Time
}

// webLoginStore tracks locally-submitted web login requests so repeat
// approvals and post-expiry approvals fail fast without a round trip.
// Entries are short-lived and held in memory only; the server remains the
// source of truth for requests submitted on other devices.
type webLoginStore struct {
	mu       sync.Mutex
	requests map[string]*webLoginRequest
	now      func() time.Time
}

func newWebLoginStore(now func() time.Time) *webLoginStore {
	return &webLoginStore{
		requests: make(map[string]*webLoginRequest),
		now:      now,
	}
}

// Track records a freshly submitted request.
func (s *webLoginStore) Track(approvalToken string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune()
	s.requests[approvalToken] = &webLoginRequest{
		state:     webLoginSubmitted,
		expiresAt: expiresAt,
	}
}

// Check validates that approvalToken may still be approved. Unknown tokens
// are not an error: approval may legitimately originate on another device.
func (s *webLoginStore) Check(approvalToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.requests[approvalToken]
	if !ok {
		return errWebLoginNotTracked
	}
	if request.state == webLoginApproved {
		return errWebLoginAlreadyApproved
	}
	if request.state == webLoginExpired || s.now().After(request.expiresAt) {
		request.state = webLoginExpired
		return errWebLoginExpired
	}
	return nil
}

// MarkApproved records a successful approval so later calls fail with
// AlreadyApproved. Untracked tokens (submitted on another device) are
// tracked from this point on.
func (s *webLoginStore) MarkApproved(approvalToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune()
	request, ok := s.requests[approvalToken]
	if !ok {
		request = &webLoginRequest{expiresAt: s.now()}
		s.requests[approvalToken] = request
	}
	request.state = webLoginApproved
}

// prune drops entries long past expiry. Callers hold mu.
func (s *webLoginStore) prune() {
	cutoff := s.now().Add(-time.Hour)
	for token, request := range s.requests {
		if request.expiresAt.Before(cutoff) {
			delete(s.requests, token)
		}
	}
}
