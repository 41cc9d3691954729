package graph

import "testing"

func TestPlanRepairsNoDuplicates(t *testing.T) {
	rows := []refRow{
		{HashID: "a", Ref: "URD-001"},
		{HashID: "b", Ref: "URD-002"},
		{HashID: "c", Ref: "SRD-001"},
	}
	if changes := planRepairs(rows); len(changes) != 0 {
		t.Fatalf("expected no changes, got %v", changes)
	}
}

func TestPlanRepairsKeepsFirstHolder(t *testing.T) {
	rows := []refRow{
		{HashID: "a", Ref: "URD-USER-002"},
		{HashID: "b", Ref: "URD-USER-002"},
	}
	changes := planRepairs(rows)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	ch := changes[0]
	if ch.HashID != "b" {
		t.Fatalf("first holder must keep the ref, renumbered %q", ch.HashID)
	}
	if ch.NewRef != "URD-USER-003" {
		t.Fatalf("NewRef = %q, want URD-USER-003", ch.NewRef)
	}
}

func TestPlanRepairsSkipsTakenSuffix(t *testing.T) {
	// URD-USER-003 is already taken, so the duplicate holder of -002
	// jumps to -004.
	rows := []refRow{
		{HashID: "a", Ref: "URD-USER-002"},
		{HashID: "b", Ref: "URD-USER-002"},
		{HashID: "c", Ref: "URD-USER-003"},
	}
	changes := planRepairs(rows)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].NewRef != "URD-USER-004" {
		t.Fatalf("NewRef = %q, want URD-USER-004", changes[0].NewRef)
	}
}

func TestPlanRepairsMultipleGroups(t *testing.T) {
	rows := []refRow{
		{HashID: "a", Ref: "URD-001"},
		{HashID: "b", Ref: "URD-001"},
		{HashID: "c", Ref: "URD-001"},
		{HashID: "d", Ref: "SRD-005"},
		{HashID: "e", Ref: "SRD-005"},
	}
	changes := planRepairs(rows)
	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(changes))
	}
	want := map[string]string{"b": "URD-002", "c": "URD-003", "e": "SRD-006"}
	for _, ch := range changes {
		if want[ch.HashID] != ch.NewRef {
			t.Fatalf("id %s renumbered to %q, want %q", ch.HashID, ch.NewRef, want[ch.HashID])
		}
	}
}

func TestPlanRepairsFloorsIncludeAssigned(t *testing.T) {
	// Numbers handed out earlier in the same plan count as taken for
	// later assignments sharing the prefix.
	rows := []refRow{
		{HashID: "a", Ref: "URD-001"},
		{HashID: "b", Ref: "URD-001"},
		{HashID: "c", Ref: "URD-002"},
		{HashID: "d", Ref: "URD-002"},
	}
	changes := planRepairs(rows)
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if changes[0].NewRef != "URD-003" || changes[1].NewRef != "URD-004" {
		t.Fatalf("got %q then %q, want URD-003 then URD-004", changes[0].NewRef, changes[1].NewRef)
	}
}

func TestPlanRepairsNoNumericSuffix(t *testing.T) {
	// A ref without a -NNN tail acts as its own prefix; renumbered
	// holders get a fresh numeric suffix appended.
	rows := []refRow{
		{HashID: "a", Ref: "IMPORTED"},
		{HashID: "b", Ref: "IMPORTED"},
	}
	changes := planRepairs(rows)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].NewRef != "IMPORTED-001" {
		t.Fatalf("NewRef = %q, want IMPORTED-001", changes[0].NewRef)
	}
}

func TestPlanRepairsIdempotent(t *testing.T) {
	rows := []refRow{
		{HashID: "a", Ref: "URD-002"},
		{HashID: "b", Ref: "URD-002"},
		{HashID: "c", Ref: "URD-002"},
	}
	changes := planRepairs(rows)
	after := []refRow{{HashID: "a", Ref: "URD-002"}}
	for _, ch := range changes {
		after = append(after, refRow{HashID: ch.HashID, Ref: ch.NewRef})
	}
	if again := planRepairs(after); len(again) != 0 {
		t.Fatalf("repair of repaired rows should be empty, got %v", again)
	}
}

func TestPlanRepairsFloorsIncludeTombstones(t *testing.T) {
	// URD-USER-003 is soft-deleted but stays reserved, so the duplicate
	// holder of -002 must jump past it.
	rows := []refRow{
		{HashID: "a", Ref: "URD-USER-002"},
		{HashID: "b", Ref: "URD-USER-002"},
		{HashID: "c", Ref: "URD-USER-003", Deleted: true},
	}
	changes := planRepairs(rows)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].NewRef != "URD-USER-004" {
		t.Fatalf("NewRef = %q, want URD-USER-004 (URD-USER-003 is tombstoned)", changes[0].NewRef)
	}
}

func TestPlanRepairsIgnoresDeletedHolders(t *testing.T) {
	// A tombstoned node sharing a ref with one live node is not a
	// duplicate group; only live holders are renumbered.
	rows := []refRow{
		{HashID: "a", Ref: "URD-001"},
		{HashID: "b", Ref: "URD-001", Deleted: true},
	}
	if changes := planRepairs(rows); len(changes) != 0 {
		t.Fatalf("expected no changes, got %v", changes)
	}
}

func TestPlanRepairsTargetsDistinctHashIDs(t *testing.T) {
	// Duplicate holders share the ref-derived composite id, so each
	// change must carry the hash id of exactly one later holder and
	// never the first holder's.
	rows := []refRow{
		{HashID: "h-1", Ref: "URD-USER-002"},
		{HashID: "h-2", Ref: "URD-USER-002"},
		{HashID: "h-3", Ref: "URD-USER-002"},
	}
	changes := planRepairs(rows)
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	seen := map[string]bool{}
	for _, ch := range changes {
		if ch.HashID == "h-1" {
			t.Fatalf("first holder must keep its ref, got change %+v", ch)
		}
		if seen[ch.HashID] {
			t.Fatalf("hash id %q renumbered twice", ch.HashID)
		}
		seen[ch.HashID] = true
	}
	if !seen["h-2"] || !seen["h-3"] {
		t.Fatalf("changes do not cover both later holders: %+v", changes)
	}
}
