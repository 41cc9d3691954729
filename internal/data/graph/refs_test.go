package graph

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"User Needs", "user-needs"},
		{"  Main  Vehicle  ", "main-vehicle"},
		{"ALREADY-SLUG", "already-slug"},
		{"Traction & Braking (rev. 2)", "traction-braking-rev-2"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDocumentShortCodeFallback(t *testing.T) {
	if got := DocumentShortCode("user-needs", "URD"); got != "URD" {
		t.Fatalf("explicit short code not honored: %q", got)
	}
	if got := DocumentShortCode("user-needs", ""); got != "USERNEEDS" {
		t.Fatalf("fallback short code = %q, want USERNEEDS", got)
	}
	if got := DocumentShortCode("user-needs", "  "); got != "USERNEEDS" {
		t.Fatalf("blank short code should fall back, got %q", got)
	}
}

func TestSectionShortCodeFallback(t *testing.T) {
	if got := SectionShortCode("User Stories", ""); got != "USERSTORIES" {
		t.Fatalf("fallback = %q, want USERSTORIES", got)
	}
	if got := SectionShortCode("User Stories", "USER"); got != "USER" {
		t.Fatalf("explicit = %q, want USER", got)
	}
}

func TestProjectPrefix(t *testing.T) {
	if got := ProjectPrefix("main-rail"); got != "REQ-MAINRAIL" {
		t.Fatalf("ProjectPrefix = %q, want REQ-MAINRAIL", got)
	}
}

func TestRefPrefix(t *testing.T) {
	cases := []struct {
		project, docSlug, docShort, secName, secShort string
		want                                          string
	}{
		{"demo", "", "", "", "", "REQ-DEMO"},
		{"demo", "user-needs", "URD", "", "", "URD"},
		{"demo", "user-needs", "", "", "", "USERNEEDS"},
		{"demo", "user-needs", "URD", "User Stories", "", "URD-USERSTORIES"},
		{"demo", "user-needs", "URD", "User Stories", "USER", "URD-USER"},
	}
	for _, tc := range cases {
		got := RefPrefix(tc.project, tc.docSlug, tc.docShort, tc.secName, tc.secShort)
		if got != tc.want {
			t.Fatalf("RefPrefix(%q, %q, %q, %q, %q) = %q, want %q",
				tc.project, tc.docSlug, tc.docShort, tc.secName, tc.secShort, got, tc.want)
		}
	}
}

func TestComposeAndSplitRef(t *testing.T) {
	ref := ComposeRef("URD-USER", 2)
	if ref != "URD-USER-002" {
		t.Fatalf("ComposeRef = %q, want URD-USER-002", ref)
	}
	prefix, n, ok := SplitRef(ref)
	if !ok || prefix != "URD-USER" || n != 2 {
		t.Fatalf("SplitRef(%q) = (%q, %d, %v)", ref, prefix, n, ok)
	}
}

func TestSplitRefNoSuffix(t *testing.T) {
	for _, ref := range []string{"URD-USER", "URD-42", "FREEFORM", ""} {
		if _, _, ok := SplitRef(ref); ok {
			t.Fatalf("SplitRef(%q) should not match", ref)
		}
	}
}

func TestSplitRefWideSuffix(t *testing.T) {
	// Allocation keeps working past 999: four-digit suffixes split too.
	prefix, n, ok := SplitRef("URD-1042")
	if !ok || prefix != "URD" || n != 1042 {
		t.Fatalf("SplitRef(URD-1042) = (%q, %d, %v)", prefix, n, ok)
	}
}

func TestMaxRefSuffix(t *testing.T) {
	refs := []string{"URD-001", "URD-005", "URD-003", "SRD-900", "URD-USER-100", "garbage"}
	if got := MaxRefSuffix("URD", refs); got != 5 {
		t.Fatalf("MaxRefSuffix(URD) = %d, want 5", got)
	}
	if got := MaxRefSuffix("URD-USER", refs); got != 100 {
		t.Fatalf("MaxRefSuffix(URD-USER) = %d, want 100", got)
	}
	if got := MaxRefSuffix("NOPE", refs); got != 0 {
		t.Fatalf("MaxRefSuffix(NOPE) = %d, want 0", got)
	}
}

func TestRequirementIdentifiers(t *testing.T) {
	if got := RequirementID("acme", "demo", "URD-001"); got != "acme:demo:URD-001" {
		t.Fatalf("RequirementID = %q", got)
	}
	if got := RequirementPath("acme", "demo", "URD-001"); got != "acme/demo/requirements/URD-001.md" {
		t.Fatalf("RequirementPath = %q", got)
	}
	if got := BaselineRef("main-rail", 7); got != "BL-MAINRAIL-007" {
		t.Fatalf("BaselineRef = %q", got)
	}
}
