package goKeyless

import (
	"errors"
	"testing"
	"time"
)

func TestWebLoginStoreLifecycle(t *testing.T) {
	s := newWebLoginStore(time.Now)

	if err := s.Check("unknown"); !errors.Is(err, errWebLoginNotTracked) {
		t.Fatalf("expected errWebLoginNotTracked, got %v", err)
	}

	s.Track("wa-1", time.Now().Add(time.Minute))
	if err := s.Check("wa-1"); err != nil {
		t.Fatalf("expected tracked token to be approvable, got %v", err)
	}

	s.MarkApproved("wa-1")
	if err := s.Check("wa-1"); !errors.Is(err, errWebLoginAlreadyApproved) {
		t.Fatalf("expected errWebLoginAlreadyApproved, got %v", err)
	}
}

func TestWebLoginStoreExpiry(t *testing.T) {
	s := newWebLoginStore(time.Now)

	s.Track("wa-1", time.Now().Add(-time.Second))
	if err := s.Check("wa-1"); !errors.Is(err, errWebLoginExpired) {
		t.Fatalf("expected errWebLoginExpired, got %v", err)
	}

	// Expiry is sticky; the token never becomes approvable again.
	if err := s.Check("wa-1"); !errors.Is(err, errWebLoginExpired) {
		t.Fatalf("expected errWebLoginExpired on repeat, got %v", err)
	}
}

func TestWebLoginStoreApprovedBeatsExpiry(t *testing.T) {
	s := newWebLoginStore(time.Now)

	s.Track("wa-1", time.Now().Add(-time.Second))
	s.MarkApproved("wa-1")
	if err := s.Check("wa-1"); !errors.Is(err, errWebLoginAlreadyApproved) {
		t.Fatalf("expected already-approved to win over expiry, got %v", err)
	}
}

func TestWebLoginStoreMarkApprovedTracksUnknownTokens(t *testing.T) {
	s := newWebLoginStore(time.Now)

	s.MarkApproved("wa-remote")
	if err := s.Check("wa-remote"); !errors.Is(err, errWebLoginAlreadyApproved) {
		t.Fatalf("expected remote approval to be remembered, got %v", err)
	}
}

func TestWebLoginStorePrunesStaleEntries(t *testing.T) {
	s := newWebLoginStore(time.Now)

	s.Track("wa-old", time.Now().Add(-2*time.Hour))
	s.Track("wa-new", time.Now().Add(time.Minute))

	if _, ok := s.requests["wa-old"]; ok {
		t.Fatal("expected entries long past expiry to be pruned")
	}
	if _, ok := s.requests["wa-new"]; !ok {
		t.Fatal("expected live entries to survive pruning")
	}
}
