package domain

import "time"

const (
	BlockKindSystem    = "system"
	BlockKindSubsystem = "subsystem"
	BlockKindComponent = "component"
	BlockKindActor     = "actor"
	BlockKindExternal  = "external"
	BlockKindInterface = "interface"
)

func ValidBlockKind(k string) bool {
	switch k {
	case BlockKindSystem, BlockKindSubsystem, BlockKindComponent,
		BlockKindActor, BlockKindExternal, BlockKindInterface:
		return true
	}
	return false
}

const (
	DiagramViewBlock              = "block"
	DiagramViewInternal           = "internal"
	DiagramViewDeployment         = "deployment"
	DiagramViewRequirementsSchema = "requirements_schema"
)

func ValidDiagramView(v string) bool {
	switch v {
	case DiagramViewBlock, DiagramViewInternal, DiagramViewDeployment, DiagramViewRequirementsSchema:
		return true
	}
	return false
}

type BlockPort struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Direction string `json:"direction"` // in, out, inout
}

// ArchitectureBlock is a reusable definition: identity, ports, and
// document links are shared across every diagram the block appears in.
type ArchitectureBlock struct {
	ID            string      `json:"id"`
	TenantSlug    string      `json:"tenant"`
	ProjectSlug   string      `json:"project"`
	Name          string      `json:"name"`
	Kind          string      `json:"kind"`
	Stereotype    string      `json:"stereotype,omitempty"`
	Description   string      `json:"description,omitempty"`
	Ports         []BlockPort `json:"ports,omitempty"`
	DocumentSlugs []string    `json:"document_slugs,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// BlockPlacement is per-diagram state. It lives on the HAS_BLOCK
// relationship, never on the block node.
type BlockPlacement struct {
	DiagramID string  `json:"diagram_id"`
	PositionX float64 `json:"position_x"`
	PositionY float64 `json:"position_y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`

	BackgroundColor string  `json:"background_color,omitempty"`
	BorderColor     string  `json:"border_color,omitempty"`
	BorderWidth     float64 `json:"border_width,omitempty"`
	BorderStyle     string  `json:"border_style,omitempty"`
	TextColor       string  `json:"text_color,omitempty"`
	FontSize        float64 `json:"font_size,omitempty"`
	FontWeight      string  `json:"font_weight,omitempty"`
	CornerRadius    float64 `json:"corner_radius,omitempty"`
}

// PlacedBlock is a block definition joined with one diagram's placement.
type PlacedBlock struct {
	ArchitectureBlock
	Placement BlockPlacement `json:"placement"`
}

type ArchitectureDiagram struct {
	ID          string    `json:"id"`
	TenantSlug  string    `json:"tenant"`
	ProjectSlug string    `json:"project"`
	Name        string    `json:"name"`
	View        string    `json:"view"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ArchitectureConnector references its endpoint blocks by id value, not
// by graph edge, and is scoped to exactly one diagram.
type ArchitectureConnector struct {
	ID            string    `json:"id"`
	DiagramID     string    `json:"diagram_id"`
	SourceBlockID string    `json:"source_block_id"`
	TargetBlockID string    `json:"target_block_id"`
	SourcePortID  string    `json:"source_port_id,omitempty"`
	TargetPortID  string    `json:"target_port_id,omitempty"`
	Kind          string    `json:"kind,omitempty"`
	Label         string    `json:"label,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
