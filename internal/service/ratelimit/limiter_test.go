package ratelimit

import "testing"

func TestAllowConsumesTokens(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("rankings", 3, 0.0001) {
			t.Fatalf("call %d should pass within capacity", i)
		}
	}
	if l.Allow("rankings", 3, 0.0001) {
		t.Fatalf("capacity exhausted, call should be denied")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0.0001) {
		t.Fatalf("first call on a must pass")
	}
	if l.Allow("a", 1, 0.0001) {
		t.Fatalf("a exhausted")
	}
	if !l.Allow("b", 1, 0.0001) {
		t.Fatalf("b must be unaffected by a")
	}
}
