package domain

import "time"

type Tenant struct {
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Project struct {
	TenantSlug         string    `json:"tenant"`
	Slug               string    `json:"slug"`
	Key                string    `json:"key"`
	RequirementCounter int64     `json:"requirement_counter"`
	BaselineCounter    int64     `json:"baseline_counter"`
	CreatedAt          time.Time `json:"created_at"`
}

// Folder placement is mirrored twice: the IN_FOLDER edge and the
// denormalized ParentFolder slug. Both are rewritten together on move.
type Folder struct {
	Slug         string     `json:"slug"`
	Name         string     `json:"name"`
	ParentFolder string     `json:"parent_folder,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

type Document struct {
	Slug         string     `json:"slug"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	ShortCode    string     `json:"short_code"`
	ParentFolder string     `json:"parent_folder,omitempty"`
	// Monotonic allocation hint for requirement refs under this document.
	RequirementCounter int64      `json:"requirement_counter"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty"`
}

type DocumentSection struct {
	ID           string    `json:"id"`
	DocumentSlug string    `json:"document_slug"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ShortCode    string    `json:"short_code"`
	Order        int       `json:"order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
