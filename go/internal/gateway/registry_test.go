package gateway

import "testing"

func TestRegistryBindResolveDrop(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Resolve("c1"); ok {
		t.Fatalf("empty registry must not resolve")
	}

	r.Bind("c1", "p1")
	playerID, ok := r.Resolve("c1")
	if !ok || playerID != "p1" {
		t.Fatalf("expected p1, got %q (ok=%v)", playerID, ok)
	}

	// Rebinding the same connection replaces the identity.
	r.Bind("c1", "p2")
	playerID, _ = r.Resolve("c1")
	if playerID != "p2" {
		t.Fatalf("expected rebound identity p2, got %q", playerID)
	}

	playerID, ok = r.Drop("c1")
	if !ok || playerID != "p2" {
		t.Fatalf("expected drop to return p2, got %q (ok=%v)", playerID, ok)
	}
	if _, ok := r.Resolve("c1"); ok {
		t.Fatalf("dropped connection must not resolve")
	}
	if _, ok := r.Drop("c1"); ok {
		t.Fatalf("double drop must report no binding")
	}
}

func TestRegistryConnectionsAreIndependent(t *testing.T) {
	r := NewRegistry()
	r.Bind("c1", "p1")
	r.Bind("c2", "p2")

	r.Drop("c1")
	if playerID, ok := r.Resolve("c2"); !ok || playerID != "p2" {
		t.Fatalf("dropping c1 must not affect c2, got %q (ok=%v)", playerID, ok)
	}
}
