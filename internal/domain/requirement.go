package domain

import "time"

const (
	CandidateStatusPending  = "pending"
	CandidateStatusAccepted = "accepted"
	CandidateStatusRejected = "rejected"
)

// Requirement is the central entity. ID is the tenant:project:ref
// composite assigned at creation; HashID is an opaque random identifier
// that never changes, even when the requirement is renumbered.
type Requirement struct {
	ID           string `json:"id"`
	HashID       string `json:"hash_id"`
	Ref          string `json:"ref"`
	TenantSlug   string `json:"tenant"`
	ProjectSlug  string `json:"project"`
	DocumentSlug string `json:"document_slug,omitempty"`
	SectionID    string `json:"section_id,omitempty"`

	Title        string `json:"title"`
	Text         string `json:"text"`
	Pattern      string `json:"pattern,omitempty"`
	Verification string `json:"verification,omitempty"`

	QAScore   float64  `json:"qa_score,omitempty"`
	QAVerdict string   `json:"qa_verdict,omitempty"`
	Tags      []string `json:"tags,omitempty"`

	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RequirementCandidate is a pre-acceptance proposal. It becomes a real
// Requirement only when accepted.
type RequirementCandidate struct {
	ID             string    `json:"id"`
	TenantSlug     string    `json:"tenant"`
	ProjectSlug    string    `json:"project"`
	DocumentSlug   string    `json:"document_slug,omitempty"`
	Text           string    `json:"text"`
	Status         string    `json:"status"`
	RequirementRef string    `json:"requirement_ref,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Baseline struct {
	ID          string    `json:"id"`
	Ref         string    `json:"ref"`
	TenantSlug  string    `json:"tenant"`
	ProjectSlug string    `json:"project"`
	Label       string    `json:"label,omitempty"`
	// Frozen copy of the live refs at creation time, not a live query.
	RequirementRefs []string  `json:"requirement_refs"`
	CreatedAt       time.Time `json:"created_at"`
}

const (
	LinkTypeSatisfies  = "satisfies"
	LinkTypeDerives    = "derives"
	LinkTypeVerifies   = "verifies"
	LinkTypeImplements = "implements"
	LinkTypeRefines    = "refines"
	LinkTypeConflicts  = "conflicts"
)

func ValidLinkType(t string) bool {
	switch t {
	case LinkTypeSatisfies, LinkTypeDerives, LinkTypeVerifies,
		LinkTypeImplements, LinkTypeRefines, LinkTypeConflicts:
		return true
	}
	return false
}

type TraceLink struct {
	ID          string    `json:"id"`
	TenantSlug  string    `json:"tenant"`
	ProjectSlug string    `json:"project"`
	SourceRef   string    `json:"source_ref"`
	TargetRef   string    `json:"target_ref"`
	LinkType    string    `json:"link_type"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
