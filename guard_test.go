package appstate

import (
	"errors"
	"testing"
)

func TestMutationGuardFailsFast(t *testing.T) {
	var g mutationGuard
	release, err := g.acquire()
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := g.acquire(); !errors.Is(err, ErrConcurrentMutation) {
		t.Fatalf("expected ErrConcurrentMutation, got %v", err)
	}
	release()
	if g.held() {
		t.Fatalf("expected guard released")
	}
	again, err := g.acquire()
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again()
}

func TestMutationGuardReleaseIsIdempotent(t *testing.T) {
	g := mutationGuard{allowConcurrent: true}
	outer, _ := g.acquire()
	inner, _ := g.acquire()
	inner()
	inner()
	if !g.held() {
		t.Fatalf("expected outer acquisition still held")
	}
	outer()
	if g.held() {
		t.Fatalf("expected guard released")
	}
}

func TestMutationGuardAllowConcurrent(t *testing.T) {
	g := mutationGuard{allowConcurrent: true}
	first, err := g.acquire()
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	second, err := g.acquire()
	if err != nil {
		t.Fatalf("expected nested acquire to succeed, got %v", err)
	}
	second()
	first()
}
