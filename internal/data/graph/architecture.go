package graph

import (
	"context"
	"encoding/json"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Hollando78/airgen-sub002/internal/domain"
)

func diagramFromProps(props map[string]any) *domain.ArchitectureDiagram {
	if props == nil {
		return nil
	}
	return &domain.ArchitectureDiagram{
		ID:          propStr(props, "id"),
		TenantSlug:  propStr(props, "tenant"),
		ProjectSlug: propStr(props, "project"),
		Name:        propStr(props, "name"),
		View:        propStr(props, "view"),
		CreatedAt:   propTime(props, "createdAt"),
		UpdatedAt:   propTime(props, "updatedAt"),
	}
}

func blockFromProps(props map[string]any) *domain.ArchitectureBlock {
	if props == nil {
		return nil
	}
	return &domain.ArchitectureBlock{
		ID:          propStr(props, "id"),
		TenantSlug:  propStr(props, "tenant"),
		ProjectSlug: propStr(props, "project"),
		Name:        propStr(props, "name"),
		Kind:        propStr(props, "kind"),
		Stereotype:  propStr(props, "stereotype"),
		Description: propStr(props, "description"),
		Ports:       portsFromJSON(propStr(props, "portsJson")),
		CreatedAt:   propTime(props, "createdAt"),
		UpdatedAt:   propTime(props, "updatedAt"),
	}
}

func placementFromProps(diagramID string, props map[string]any) domain.BlockPlacement {
	return domain.BlockPlacement{
		DiagramID:       diagramID,
		PositionX:       propFloat(props, "positionX"),
		PositionY:       propFloat(props, "positionY"),
		Width:           propFloat(props, "width"),
		Height:          propFloat(props, "height"),
		BackgroundColor: propStr(props, "backgroundColor"),
		BorderColor:     propStr(props, "borderColor"),
		BorderWidth:     propFloat(props, "borderWidth"),
		BorderStyle:     propStr(props, "borderStyle"),
		TextColor:       propStr(props, "textColor"),
		FontSize:        propFloat(props, "fontSize"),
		FontWeight:      propStr(props, "fontWeight"),
		CornerRadius:    propFloat(props, "cornerRadius"),
	}
}

func placementProps(pl domain.BlockPlacement) map[string]any {
	return map[string]any{
		"positionX":       pl.PositionX,
		"positionY":       pl.PositionY,
		"width":           pl.Width,
		"height":          pl.Height,
		"backgroundColor": pl.BackgroundColor,
		"borderColor":     pl.BorderColor,
		"borderWidth":     pl.BorderWidth,
		"borderStyle":     pl.BorderStyle,
		"textColor":       pl.TextColor,
		"fontSize":        pl.FontSize,
		"fontWeight":      pl.FontWeight,
		"cornerRadius":    pl.CornerRadius,
	}
}

func connectorFromProps(props map[string]any) *domain.ArchitectureConnector {
	if props == nil {
		return nil
	}
	return &domain.ArchitectureConnector{
		ID:            propStr(props, "id"),
		DiagramID:     propStr(props, "diagramId"),
		SourceBlockID: propStr(props, "sourceBlockId"),
		TargetBlockID: propStr(props, "targetBlockId"),
		SourcePortID:  propStr(props, "sourcePortId"),
		TargetPortID:  propStr(props, "targetPortId"),
		Kind:          propStr(props, "kind"),
		Label:         propStr(props, "label"),
		CreatedAt:     propTime(props, "createdAt"),
	}
}

func portsToJSON(ports []domain.BlockPort) string {
	if len(ports) == 0 {
		return ""
	}
	raw, err := json.Marshal(ports)
	if err != nil {
		return ""
	}
	return string(raw)
}

func portsFromJSON(raw string) []domain.BlockPort {
	if raw == "" {
		return nil
	}
	var ports []domain.BlockPort
	if err := json.Unmarshal([]byte(raw), &ports); err != nil {
		return nil
	}
	return ports
}

func (s *Service) CreateDiagram(ctx context.Context, tenant, project, name, view string) (*domain.ArchitectureDiagram, error) {
	if name == "" {
		return nil, validationf("diagram name required")
	}
	if !domain.ValidDiagramView(view) {
		return nil, validationf("unknown diagram view %q", view)
	}
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetProject(ctx, tx, tenant, project); err != nil {
			return nil, err
		}
		now := s.timestamp()
		res, err := tx.Run(ctx, `
MATCH (:Tenant {slug: $tenant})-[:OWNS]->(p:Project {slug: $project})
CREATE (dg:ArchitectureDiagram {
  id: $id, tenant: $tenant, project: $project,
  name: $name, view: $view, createdAt: $now, updatedAt: $now
})
CREATE (p)-[:HAS_ARCHITECTURE_DIAGRAM]->(dg)
RETURN dg
`, map[string]any{
			"id": s.newID(), "tenant": tenant, "project": project,
			"name": name, "view": view, "now": now,
		})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return diagramFromProps(nodeProps(rec, "dg")), nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "architecture", tenant, project)
	return out.(*domain.ArchitectureDiagram), nil
}

func txGetDiagram(ctx context.Context, tx neo4j.ManagedTransaction, tenant, project, id string) (*domain.ArchitectureDiagram, error) {
	res, err := tx.Run(ctx, `
MATCH (dg:ArchitectureDiagram {tenant: $tenant, project: $project, id: $id})
RETURN dg
`, map[string]any{"tenant": tenant, "project": project, "id": id})
	if err != nil {
		return nil, err
	}
	recs, err := collectRecords(ctx, res)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, notFoundf("diagram %q in %s/%s", id, tenant, project)
	}
	return diagramFromProps(nodeProps(recs[0], "dg")), nil
}

func (s *Service) ListDiagrams(ctx context.Context, tenant, project string) ([]*domain.ArchitectureDiagram, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (dg:ArchitectureDiagram {tenant: $tenant, project: $project})
RETURN dg ORDER BY dg.name
`, map[string]any{"tenant": tenant, "project": project})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		diagrams := make([]*domain.ArchitectureDiagram, 0, len(recs))
		for _, rec := range recs {
			diagrams = append(diagrams, diagramFromProps(nodeProps(rec, "dg")))
		}
		return diagrams, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*domain.ArchitectureDiagram), nil
}

func (s *Service) RenameDiagram(ctx context.Context, tenant, project, id, name string) (*domain.ArchitectureDiagram, error) {
	if name == "" {
		return nil, conflictf("no valid fields supplied for diagram update")
	}
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (dg:ArchitectureDiagram {tenant: $tenant, project: $project, id: $id})
SET dg.name = $name, dg.updatedAt = $now
RETURN dg
`, map[string]any{"tenant": tenant, "project": project, "id": id, "name": name, "now": s.timestamp()})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return nil, notFoundf("diagram %q in %s/%s", id, tenant, project)
		}
		return diagramFromProps(nodeProps(recs[0], "dg")), nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "architecture", tenant, project, id)
	return out.(*domain.ArchitectureDiagram), nil
}

// DeleteDiagram removes the diagram, its placements, and its
// connectors. Block definitions survive; they may be placed elsewhere.
func (s *Service) DeleteDiagram(ctx context.Context, tenant, project, id string) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := run(ctx, tx, `
MATCH (c:ArchitectureConnector {tenant: $tenant, project: $project, diagramId: $id})
DETACH DELETE c
`, map[string]any{"tenant": tenant, "project": project, "id": id}); err != nil {
			return nil, err
		}
		res, err := tx.Run(ctx, `
MATCH (dg:ArchitectureDiagram {tenant: $tenant, project: $project, id: $id})
DETACH DELETE dg
`, map[string]any{"tenant": tenant, "project": project, "id": id})
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		if summary.Counters().NodesDeleted() == 0 {
			return nil, notFoundf("diagram %q in %s/%s", id, tenant, project)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, "architecture", tenant, project, id)
	return nil
}

type CreateBlockInput struct {
	Tenant    string
	Project   string
	DiagramID string

	// When set, no new definition is created: only a placement edge
	// for this diagram. This is the primary branch of the operation.
	ExistingBlockID string

	Name          string
	Kind          string
	Stereotype    string
	Description   string
	Ports         []domain.BlockPort
	DocumentSlugs []string

	Placement domain.BlockPlacement
}

// CreateBlock places a block into a diagram, creating the reusable
// definition first unless ExistingBlockID names one. Geometry and
// styling go onto the HAS_BLOCK edge so other diagrams are unaffected.
func (s *Service) CreateBlock(ctx context.Context, in CreateBlockInput) (*domain.PlacedBlock, error) {
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetDiagram(ctx, tx, in.Tenant, in.Project, in.DiagramID); err != nil {
			return nil, err
		}
		blockID := in.ExistingBlockID
		if blockID == "" {
			if in.Name == "" {
				return nil, validationf("block name required")
			}
			if !domain.ValidBlockKind(in.Kind) {
				return nil, validationf("unknown block kind %q", in.Kind)
			}
			blockID = s.newID()
			now := s.timestamp()
			if err := run(ctx, tx, `
MATCH (:Tenant {slug: $tenant})-[:OWNS]->(p:Project {slug: $project})
CREATE (b:ArchitectureBlock {
  id: $id, tenant: $tenant, project: $project,
  name: $name, kind: $kind, stereotype: $stereotype,
  description: $description, portsJson: $ports,
  createdAt: $now, updatedAt: $now
})
CREATE (p)-[:HAS_ARCHITECTURE_BLOCK]->(b)
`, map[string]any{
				"id": blockID, "tenant": in.Tenant, "project": in.Project,
				"name": in.Name, "kind": in.Kind, "stereotype": in.Stereotype,
				"description": in.Description, "ports": portsToJSON(in.Ports), "now": now,
			}); err != nil {
				return nil, err
			}
			if err := txReplaceLinkedDocuments(ctx, tx, in.Tenant, in.Project, blockID, in.DocumentSlugs); err != nil {
				return nil, err
			}
		} else {
			if _, err := txGetBlock(ctx, tx, in.Tenant, in.Project, blockID); err != nil {
				return nil, err
			}
		}
		res, err := tx.Run(ctx, `
MATCH (dg:ArchitectureDiagram {tenant: $tenant, project: $project, id: $diagram})
MATCH (b:ArchitectureBlock {tenant: $tenant, project: $project, id: $block})
MERGE (dg)-[pl:HAS_BLOCK]->(b)
SET pl += $placement
RETURN b, pl
`, map[string]any{
			"tenant": in.Tenant, "project": in.Project,
			"diagram": in.DiagramID, "block": blockID,
			"placement": placementProps(in.Placement),
		})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		block := blockFromProps(nodeProps(rec, "b"))
		block.DocumentSlugs = in.DocumentSlugs
		return &domain.PlacedBlock{
			ArchitectureBlock: *block,
			Placement:         placementFromProps(in.DiagramID, nodeProps(rec, "pl")),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "architecture", in.Tenant, in.Project, in.DiagramID)
	return out.(*domain.PlacedBlock), nil
}

func txGetBlock(ctx context.Context, tx neo4j.ManagedTransaction, tenant, project, id string) (*domain.ArchitectureBlock, error) {
	res, err := tx.Run(ctx, `
MATCH (b:ArchitectureBlock {tenant: $tenant, project: $project, id: $id})
OPTIONAL MATCH (b)-[:LINKED_DOCUMENT]->(d:Document)
RETURN b, collect(d.slug) AS docs
`, map[string]any{"tenant": tenant, "project": project, "id": id})
	if err != nil {
		return nil, err
	}
	recs, err := collectRecords(ctx, res)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, notFoundf("block %q in %s/%s", id, tenant, project)
	}
	block := blockFromProps(nodeProps(recs[0], "b"))
	if docsVal, ok := recs[0].Get("docs"); ok {
		if items, ok := docsVal.([]any); ok {
			for _, item := range items {
				if slug := asString(item); slug != "" {
					block.DocumentSlugs = append(block.DocumentSlugs, slug)
				}
			}
		}
	}
	return block, nil
}

// txReplaceLinkedDocuments swaps the definition-scoped document
// associations wholesale: delete all, then recreate.
func txReplaceLinkedDocuments(ctx context.Context, tx neo4j.ManagedTransaction, tenant, project, blockID string, docSlugs []string) error {
	if err := run(ctx, tx, `
MATCH (b:ArchitectureBlock {tenant: $tenant, project: $project, id: $id})-[ld:LINKED_DOCUMENT]->(:Document)
DELETE ld
`, map[string]any{"tenant": tenant, "project": project, "id": blockID}); err != nil {
		return err
	}
	if len(docSlugs) == 0 {
		return nil
	}
	return run(ctx, tx, `
MATCH (b:ArchitectureBlock {tenant: $tenant, project: $project, id: $id})
UNWIND $docs AS docSlug
MATCH (d:Document {tenant: $tenant, project: $project, slug: docSlug})
MERGE (b)-[:LINKED_DOCUMENT]->(d)
`, map[string]any{"tenant": tenant, "project": project, "id": blockID, "docs": toAnySlice(docSlugs)})
}

type BlockUpdate struct {
	Name          *string
	Kind          *string
	Stereotype    *string
	Description   *string
	Ports         *[]domain.BlockPort
	DocumentSlugs *[]string
}

// UpdateBlock changes definition-scoped fields, shared by every diagram
// the block appears in.
func (s *Service) UpdateBlock(ctx context.Context, tenant, project, blockID string, patch BlockUpdate) (*domain.ArchitectureBlock, error) {
	updates := map[string]any{}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, validationf("block name required")
		}
		updates["name"] = *patch.Name
	}
	if patch.Kind != nil {
		if !domain.ValidBlockKind(*patch.Kind) {
			return nil, validationf("unknown block kind %q", *patch.Kind)
		}
		updates["kind"] = *patch.Kind
	}
	if patch.Stereotype != nil {
		updates["stereotype"] = *patch.Stereotype
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Ports != nil {
		updates["portsJson"] = portsToJSON(*patch.Ports)
	}
	if len(updates) == 0 && patch.DocumentSlugs == nil {
		return nil, conflictf("no valid fields supplied for block update")
	}
	updates["updatedAt"] = s.timestamp()
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetBlock(ctx, tx, tenant, project, blockID); err != nil {
			return nil, err
		}
		if err := run(ctx, tx, `
MATCH (b:ArchitectureBlock {tenant: $tenant, project: $project, id: $id})
SET b += $updates
`, map[string]any{"tenant": tenant, "project": project, "id": blockID, "updates": updates}); err != nil {
			return nil, err
		}
		if patch.DocumentSlugs != nil {
			if err := txReplaceLinkedDocuments(ctx, tx, tenant, project, blockID, *patch.DocumentSlugs); err != nil {
				return nil, err
			}
		}
		return txGetBlock(ctx, tx, tenant, project, blockID)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "architecture", tenant, project)
	return out.(*domain.ArchitectureBlock), nil
}

// UpdateBlockPlacement rewrites one diagram's geometry/styling for a
// block without touching the definition or other diagrams.
func (s *Service) UpdateBlockPlacement(ctx context.Context, tenant, project, diagramID, blockID string, pl domain.BlockPlacement) (*domain.PlacedBlock, error) {
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (dg:ArchitectureDiagram {tenant: $tenant, project: $project, id: $diagram})-[pl:HAS_BLOCK]->(b:ArchitectureBlock {id: $block})
SET pl += $placement
RETURN b, pl
`, map[string]any{
			"tenant": tenant, "project": project, "diagram": diagramID,
			"block": blockID, "placement": placementProps(pl),
		})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return nil, notFoundf("block %q not placed in diagram %q", blockID, diagramID)
		}
		return &domain.PlacedBlock{
			ArchitectureBlock: *blockFromProps(nodeProps(recs[0], "b")),
			Placement:         placementFromProps(diagramID, nodeProps(recs[0], "pl")),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "architecture", tenant, project, diagramID)
	return out.(*domain.PlacedBlock), nil
}

func (s *Service) ListDiagramBlocks(ctx context.Context, tenant, project, diagramID string) ([]*domain.PlacedBlock, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetDiagram(ctx, tx, tenant, project, diagramID); err != nil {
			return nil, err
		}
		res, err := tx.Run(ctx, `
MATCH (dg:ArchitectureDiagram {tenant: $tenant, project: $project, id: $diagram})-[pl:HAS_BLOCK]->(b:ArchitectureBlock)
OPTIONAL MATCH (b)-[:LINKED_DOCUMENT]->(d:Document)
RETURN b, pl, collect(d.slug) AS docs
ORDER BY b.name
`, map[string]any{"tenant": tenant, "project": project, "diagram": diagramID})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		blocks := make([]*domain.PlacedBlock, 0, len(recs))
		for _, rec := range recs {
			block := blockFromProps(nodeProps(rec, "b"))
			if docsVal, ok := rec.Get("docs"); ok {
				if items, ok := docsVal.([]any); ok {
					for _, item := range items {
						if slug := asString(item); slug != "" {
							block.DocumentSlugs = append(block.DocumentSlugs, slug)
						}
					}
				}
			}
			blocks = append(blocks, &domain.PlacedBlock{
				ArchitectureBlock: *block,
				Placement:         placementFromProps(diagramID, nodeProps(rec, "pl")),
			})
		}
		return blocks, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*domain.PlacedBlock), nil
}

// DeleteBlock with a diagram scope removes only that diagram's
// placement and the connectors referencing the block there. Without a
// scope the definition is removed entirely, cascading to every
// placement and connector across all diagrams.
func (s *Service) DeleteBlock(ctx context.Context, tenant, project, blockID, diagramID string) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetBlock(ctx, tx, tenant, project, blockID); err != nil {
			return nil, err
		}
		if diagramID != "" {
			if _, err := txGetDiagram(ctx, tx, tenant, project, diagramID); err != nil {
				return nil, err
			}
			if err := run(ctx, tx, `
MATCH (c:ArchitectureConnector {tenant: $tenant, project: $project, diagramId: $diagram})
WHERE c.sourceBlockId = $block OR c.targetBlockId = $block
DETACH DELETE c
`, map[string]any{"tenant": tenant, "project": project, "diagram": diagramID, "block": blockID}); err != nil {
				return nil, err
			}
			res, err := tx.Run(ctx, `
MATCH (:ArchitectureDiagram {tenant: $tenant, project: $project, id: $diagram})-[pl:HAS_BLOCK]->(:ArchitectureBlock {id: $block})
DELETE pl
`, map[string]any{"tenant": tenant, "project": project, "diagram": diagramID, "block": blockID})
			if err != nil {
				return nil, err
			}
			summary, err := res.Consume(ctx)
			if err != nil {
				return nil, err
			}
			if summary.Counters().RelationshipsDeleted() == 0 {
				return nil, notFoundf("block %q not placed in diagram %q", blockID, diagramID)
			}
			return nil, nil
		}
		if err := run(ctx, tx, `
MATCH (c:ArchitectureConnector {tenant: $tenant, project: $project})
WHERE c.sourceBlockId = $block OR c.targetBlockId = $block
DETACH DELETE c
`, map[string]any{"tenant": tenant, "project": project, "block": blockID}); err != nil {
			return nil, err
		}
		return nil, run(ctx, tx, `
MATCH (b:ArchitectureBlock {tenant: $tenant, project: $project, id: $block})
DETACH DELETE b
`, map[string]any{"tenant": tenant, "project": project, "block": blockID})
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, "architecture", tenant, project)
	return nil
}

type CreateConnectorInput struct {
	Tenant        string
	Project       string
	DiagramID     string
	SourceBlockID string
	TargetBlockID string
	SourcePortID  string
	TargetPortID  string
	Kind          string
	Label         string
}

// CreateConnector references its endpoints by block id value. Both
// blocks must be placed in the diagram; the ids are validated at write
// time rather than traversed.
func (s *Service) CreateConnector(ctx context.Context, in CreateConnectorInput) (*domain.ArchitectureConnector, error) {
	if in.SourceBlockID == "" || in.TargetBlockID == "" {
		return nil, validationf("connector endpoints required")
	}
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetDiagram(ctx, tx, in.Tenant, in.Project, in.DiagramID); err != nil {
			return nil, err
		}
		for _, blockID := range []string{in.SourceBlockID, in.TargetBlockID} {
			res, err := tx.Run(ctx, `
MATCH (:ArchitectureDiagram {tenant: $tenant, project: $project, id: $diagram})-[:HAS_BLOCK]->(b:ArchitectureBlock {id: $block})
RETURN b.id
`, map[string]any{"tenant": in.Tenant, "project": in.Project, "diagram": in.DiagramID, "block": blockID})
			if err != nil {
				return nil, err
			}
			recs, err := collectRecords(ctx, res)
			if err != nil {
				return nil, err
			}
			if len(recs) == 0 {
				return nil, notFoundf("block %q not placed in diagram %q", blockID, in.DiagramID)
			}
		}
		res, err := tx.Run(ctx, `
MATCH (c:ArchitectureConnector {tenant: $tenant, project: $project, diagramId: $diagram, sourceBlockId: $source, targetBlockId: $target, kind: $kind})
RETURN c.id
`, map[string]any{
			"tenant": in.Tenant, "project": in.Project, "diagram": in.DiagramID,
			"source": in.SourceBlockID, "target": in.TargetBlockID, "kind": in.Kind,
		})
		if err != nil {
			return nil, err
		}
		if recs, err := collectRecords(ctx, res); err != nil {
			return nil, err
		} else if len(recs) > 0 {
			return nil, conflictf("connector already exists in diagram %q", in.DiagramID)
		}
		res, err = tx.Run(ctx, `
MATCH (dg:ArchitectureDiagram {tenant: $tenant, project: $project, id: $diagram})
CREATE (c:ArchitectureConnector {
  id: $id, tenant: $tenant, project: $project, diagramId: $diagram,
  sourceBlockId: $source, targetBlockId: $target,
  sourcePortId: $sourcePort, targetPortId: $targetPort,
  kind: $kind, label: $label, createdAt: $now
})
CREATE (dg)-[:HAS_CONNECTOR]->(c)
RETURN c
`, map[string]any{
			"id": s.newID(), "tenant": in.Tenant, "project": in.Project,
			"diagram": in.DiagramID, "source": in.SourceBlockID, "target": in.TargetBlockID,
			"sourcePort": in.SourcePortID, "targetPort": in.TargetPortID,
			"kind": in.Kind, "label": in.Label, "now": s.timestamp(),
		})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return connectorFromProps(nodeProps(rec, "c")), nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "architecture", in.Tenant, in.Project, in.DiagramID)
	return out.(*domain.ArchitectureConnector), nil
}

func (s *Service) ListConnectors(ctx context.Context, tenant, project, diagramID string) ([]*domain.ArchitectureConnector, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (c:ArchitectureConnector {tenant: $tenant, project: $project, diagramId: $diagram})
RETURN c ORDER BY c.createdAt
`, map[string]any{"tenant": tenant, "project": project, "diagram": diagramID})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		connectors := make([]*domain.ArchitectureConnector, 0, len(recs))
		for _, rec := range recs {
			connectors = append(connectors, connectorFromProps(nodeProps(rec, "c")))
		}
		return connectors, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*domain.ArchitectureConnector), nil
}

func (s *Service) DeleteConnector(ctx context.Context, tenant, project, id string) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (c:ArchitectureConnector {tenant: $tenant, project: $project, id: $id})
DETACH DELETE c
`, map[string]any{"tenant": tenant, "project": project, "id": id})
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		if summary.Counters().NodesDeleted() == 0 {
			return nil, notFoundf("connector %q in %s/%s", id, tenant, project)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, "architecture", tenant, project)
	return nil
}
