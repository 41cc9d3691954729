package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Hollando78/airgen-sub002/internal/domain"
)

func sectionFromProps(props map[string]any) *domain.DocumentSection {
	if props == nil {
		return nil
	}
	return &domain.DocumentSection{
		ID:           propStr(props, "id"),
		DocumentSlug: propStr(props, "documentSlug"),
		Name:         propStr(props, "name"),
		Description:  propStr(props, "description"),
		ShortCode:    propStr(props, "shortCode"),
		Order:        int(propInt(props, "order")),
		CreatedAt:    propTime(props, "createdAt"),
		UpdatedAt:    propTime(props, "updatedAt"),
	}
}

type CreateSectionInput struct {
	Tenant       string
	Project      string
	DocumentSlug string
	Name         string
	Description  string
	ShortCode    string // optional, defaults to uppercased name
	Order        int
}

func (s *Service) CreateSection(ctx context.Context, in CreateSectionInput) (*domain.DocumentSection, error) {
	if in.Name == "" {
		return nil, validationf("section name required")
	}
	shortCode := SectionShortCode(in.Name, in.ShortCode)
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetDocument(ctx, tx, in.Tenant, in.Project, in.DocumentSlug); err != nil {
			return nil, err
		}
		now := s.timestamp()
		res, err := tx.Run(ctx, `
MATCH (d:Document {tenant: $tenant, project: $project, slug: $doc})
CREATE (sec:DocumentSection {
  id: $id, tenant: $tenant, project: $project, documentSlug: $doc,
  name: $name, description: $description, shortCode: $shortCode,
  order: $order, createdAt: $now, updatedAt: $now
})
CREATE (d)-[:HAS_SECTION]->(sec)
RETURN sec
`, map[string]any{
			"id": s.newID(), "tenant": in.Tenant, "project": in.Project,
			"doc": in.DocumentSlug, "name": in.Name, "description": in.Description,
			"shortCode": shortCode, "order": int64(in.Order), "now": now,
		})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return sectionFromProps(nodeProps(rec, "sec")), nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "documents", in.Tenant, in.Project, in.DocumentSlug)
	return out.(*domain.DocumentSection), nil
}

func txGetSection(ctx context.Context, tx neo4j.ManagedTransaction, tenant, project, id string) (*domain.DocumentSection, error) {
	res, err := tx.Run(ctx, `
MATCH (sec:DocumentSection {tenant: $tenant, project: $project, id: $id})
RETURN sec
`, map[string]any{"tenant": tenant, "project": project, "id": id})
	if err != nil {
		return nil, err
	}
	recs, err := collectRecords(ctx, res)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, notFoundf("section %q in %s/%s", id, tenant, project)
	}
	return sectionFromProps(nodeProps(recs[0], "sec")), nil
}

func (s *Service) ListSections(ctx context.Context, tenant, project, docSlug string) ([]*domain.DocumentSection, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (sec:DocumentSection {tenant: $tenant, project: $project, documentSlug: $doc})
RETURN sec ORDER BY sec.order, sec.name
`, map[string]any{"tenant": tenant, "project": project, "doc": docSlug})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		sections := make([]*domain.DocumentSection, 0, len(recs))
		for _, rec := range recs {
			sections = append(sections, sectionFromProps(nodeProps(rec, "sec")))
		}
		return sections, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*domain.DocumentSection), nil
}

type SectionUpdate struct {
	Name        *string
	Description *string
	ShortCode   *string
	Order       *int
}

// UpdateSection applies a partial update. When the effective short code
// changes (via Name or ShortCode) the section's requirements are
// renumbered in the same transaction.
func (s *Service) UpdateSection(ctx context.Context, tenant, project, id string, patch SectionUpdate) (*domain.DocumentSection, error) {
	if patch.Name == nil && patch.Description == nil && patch.ShortCode == nil && patch.Order == nil {
		return nil, conflictf("no valid fields supplied for section update")
	}
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		sec, err := txGetSection(ctx, tx, tenant, project, id)
		if err != nil {
			return nil, err
		}
		name := sec.Name
		if patch.Name != nil {
			name = *patch.Name
		}
		explicitShort := ""
		if patch.ShortCode != nil {
			explicitShort = *patch.ShortCode
		} else if sec.ShortCode != SectionShortCode(sec.Name, "") {
			// Keep a short code that was set explicitly at creation.
			explicitShort = sec.ShortCode
		}
		newShort := SectionShortCode(name, explicitShort)

		updates := map[string]any{"updatedAt": s.timestamp(), "shortCode": newShort}
		if patch.Name != nil {
			updates["name"] = *patch.Name
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.Order != nil {
			updates["order"] = int64(*patch.Order)
		}
		res, err := tx.Run(ctx, `
MATCH (sec:DocumentSection {tenant: $tenant, project: $project, id: $id})
SET sec += $updates
RETURN sec
`, map[string]any{"tenant": tenant, "project": project, "id": id, "updates": updates})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		result := &sectionUpdateResult{section: sectionFromProps(nodeProps(rec, "sec"))}
		if newShort != sec.ShortCode {
			doc, err := txGetDocument(ctx, tx, tenant, project, sec.DocumentSlug)
			if err != nil {
				return nil, err
			}
			renamed, oldPaths, err := s.txRenumberSection(ctx, tx, tenant, project, id, doc.ShortCode+"-"+newShort)
			if err != nil {
				return nil, err
			}
			result.renamed = renamed
			result.oldPaths = oldPaths
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	result := out.(*sectionUpdateResult)
	for _, path := range result.oldPaths {
		s.mirrorRemove(ctx, path)
	}
	for _, req := range result.renamed {
		s.mirrorWrite(ctx, req)
	}
	s.invalidate(ctx, "documents", tenant, project, result.section.DocumentSlug)
	if len(result.renamed) > 0 {
		s.invalidate(ctx, "requirements", tenant, project)
	}
	return result.section, nil
}

type sectionUpdateResult struct {
	section  *domain.DocumentSection
	renamed  []*domain.Requirement
	oldPaths []string
}

func (s *Service) txRenumberSection(ctx context.Context, tx neo4j.ManagedTransaction, tenant, project, sectionID, newPrefix string) ([]*domain.Requirement, []string, error) {
	res, err := tx.Run(ctx, `
MATCH (r:Requirement {tenant: $tenant, project: $project, sectionId: $section})
WHERE NOT coalesce(r.deleted, false)
RETURN r.hashId AS hashId, r.ref AS ref
ORDER BY r.ref
`, map[string]any{"tenant": tenant, "project": project, "section": sectionID})
	if err != nil {
		return nil, nil, err
	}
	recs, err := collectRecords(ctx, res)
	if err != nil {
		return nil, nil, err
	}
	now := s.timestamp()
	rows := make([]map[string]any, 0, len(recs))
	oldPaths := make([]string, 0, len(recs))
	for _, rec := range recs {
		hashVal, _ := rec.Get("hashId")
		refVal, _ := rec.Get("ref")
		oldRef := refVal.(string)
		_, num, ok := SplitRef(oldRef)
		if !ok {
			continue
		}
		newRef := ComposeRef(newPrefix, num)
		if newRef == oldRef {
			continue
		}
		rows = append(rows, map[string]any{
			"hashId":    hashVal.(string),
			"ref":       newRef,
			"id":        RequirementID(tenant, project, newRef),
			"path":      RequirementPath(tenant, project, newRef),
			"updatedAt": now,
		})
		oldPaths = append(oldPaths, RequirementPath(tenant, project, oldRef))
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	res, err = tx.Run(ctx, `
UNWIND $rows AS row
MATCH (r:Requirement {hashId: row.hashId})
SET r.ref = row.ref, r.id = row.id, r.path = row.path, r.updatedAt = row.updatedAt
RETURN r
`, map[string]any{"rows": rows})
	if err != nil {
		return nil, nil, err
	}
	recs, err = collectRecords(ctx, res)
	if err != nil {
		return nil, nil, err
	}
	renamed := make([]*domain.Requirement, 0, len(recs))
	for _, rec := range recs {
		renamed = append(renamed, requirementFromProps(nodeProps(rec, "r")))
	}
	return renamed, oldPaths, nil
}

// DeleteSection removes the section node and its HAS_SECTION and
// HAS_REQUIREMENT edges. Its requirements fall back to document scope
// and keep their refs.
func (s *Service) DeleteSection(ctx context.Context, tenant, project, id string) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		sec, err := txGetSection(ctx, tx, tenant, project, id)
		if err != nil {
			return nil, err
		}
		if err := run(ctx, tx, `
MATCH (r:Requirement {tenant: $tenant, project: $project, sectionId: $id})
SET r.sectionId = ''
`, map[string]any{"tenant": tenant, "project": project, "id": id}); err != nil {
			return nil, err
		}
		if err := run(ctx, tx, `
MATCH (sec:DocumentSection {tenant: $tenant, project: $project, id: $id})
DETACH DELETE sec
`, map[string]any{"tenant": tenant, "project": project, "id": id}); err != nil {
			return nil, err
		}
		return sec, nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, "documents", tenant, project)
	return nil
}
