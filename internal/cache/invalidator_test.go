package cache

import (
	"reflect"
	"testing"
)

func TestInvalidationKeysAreComposite(t *testing.T) {
	got := invalidationKeys("requirements", "acme", "demo")
	want := []string{"requirements", "requirements:acme", "requirements:acme:demo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
}

func TestInvalidationKeysDisambiguateTenants(t *testing.T) {
	// Two tenants with a same-slug project must never share a key.
	a := invalidationKeys("documents", "acme", "demo")
	b := invalidationKeys("documents", "globex", "demo")
	seen := map[string]bool{}
	for _, k := range a[1:] {
		seen[k] = true
	}
	for _, k := range b[1:] {
		if seen[k] {
			t.Fatalf("key %q shared across tenants", k)
		}
	}
}

func TestInvalidationKeysScopeOnly(t *testing.T) {
	got := invalidationKeys("baselines")
	if len(got) != 1 || got[0] != "baselines" {
		t.Fatalf("keys = %v, want [baselines]", got)
	}
}
