package store

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemoryPutGetDelete(t *testing.T) {
	m := NewMemory()

	if _, err := m.Get(context.Background(), "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := m.Put(context.Background(), "k", []byte("v1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := m.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, []byte("v1")) {
		t.Fatalf("got %q", got)
	}

	if err := m.Put(context.Background(), "k", []byte("v2")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err = m.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, []byte("v2")) {
		t.Fatal("expected Put to replace the value")
	}

	if err := m.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Get(context.Background(), "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting an absent key is not an error.
	if err := m.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("Delete of absent key failed: %v", err)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()

	value := []byte("original")
	if err := m.Put(context.Background(), "k", value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	value[0] = 'X'

	got, err := m.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, []byte("original")) {
		t.Fatal("Put must copy the caller's slice")
	}

	got[0] = 'Y'
	again, err := m.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(again, []byte("original")) {
		t.Fatal("Get must return a copy")
	}
}

func TestMemoryHonorsContextCancellation(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.Put(ctx, "k", []byte("v")); err == nil {
		t.Fatal("expected Put with cancelled context to fail")
	}
	if _, err := m.Get(ctx, "k"); err == nil {
		t.Fatal("expected Get with cancelled context to fail")
	}
	if err := m.Delete(ctx, "k"); err == nil {
		t.Fatal("expected Delete with cancelled context to fail")
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = m.Put(context.Background(), "shared", []byte("value"))
				_, _ = m.Get(context.Background(), "shared")
				_ = m.Delete(context.Background(), "shared")
			}
		}()
	}
	wg.Wait()
}
