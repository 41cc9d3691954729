package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Hollando78/airgen-sub002/internal/domain"
)

func documentFromProps(props map[string]any) *domain.Document {
	if props == nil {
		return nil
	}
	return &domain.Document{
		Slug:               propStr(props, "slug"),
		Name:               propStr(props, "name"),
		Description:        propStr(props, "description"),
		ShortCode:          propStr(props, "shortCode"),
		ParentFolder:       propStr(props, "parentFolder"),
		RequirementCounter: propInt(props, "requirementCounter"),
		CreatedAt:          propTime(props, "createdAt"),
		UpdatedAt:          propTime(props, "updatedAt"),
		DeletedAt:          propTimePtr(props, "deletedAt"),
	}
}

type CreateDocumentInput struct {
	Tenant       string
	Project      string
	Name         string
	Slug         string // optional, derived from Name when empty
	ShortCode    string // optional, defaults to uppercased slug
	Description  string
	ParentFolder string
}

func (s *Service) CreateDocument(ctx context.Context, in CreateDocumentInput) (*domain.Document, error) {
	slug := in.Slug
	if slug == "" {
		slug = Slugify(in.Name)
	} else {
		slug = Slugify(slug)
	}
	if slug == "" {
		return nil, validationf("document name or slug required")
	}
	shortCode := DocumentShortCode(slug, in.ShortCode)
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetProject(ctx, tx, in.Tenant, in.Project); err != nil {
			return nil, err
		}
		res, err := tx.Run(ctx, `
MATCH (d:Document {tenant: $tenant, project: $project, slug: $slug})
RETURN d.slug
`, map[string]any{"tenant": in.Tenant, "project": in.Project, "slug": slug})
		if err != nil {
			return nil, err
		}
		if recs, err := collectRecords(ctx, res); err != nil {
			return nil, err
		} else if len(recs) > 0 {
			return nil, conflictf("document %q already exists in %s/%s", slug, in.Tenant, in.Project)
		}
		if in.ParentFolder != "" {
			if _, err := txGetFolder(ctx, tx, in.Tenant, in.Project, in.ParentFolder); err != nil {
				return nil, err
			}
		}
		now := s.timestamp()
		res, err = tx.Run(ctx, `
MATCH (:Tenant {slug: $tenant})-[:OWNS]->(p:Project {slug: $project})
CREATE (d:Document {
  tenant: $tenant, project: $project, slug: $slug, name: $name,
  description: $description, shortCode: $shortCode,
  parentFolder: $parent, requirementCounter: 0,
  createdAt: $now, updatedAt: $now
})
CREATE (p)-[:CONTAINS_DOCUMENT]->(d)
WITH d
OPTIONAL MATCH (pf:Folder {tenant: $tenant, project: $project, slug: $parent})
FOREACH (_ IN CASE WHEN pf IS NULL THEN [] ELSE [1] END | CREATE (d)-[:IN_FOLDER]->(pf))
RETURN d
`, map[string]any{
			"tenant": in.Tenant, "project": in.Project, "slug": slug,
			"name": in.Name, "description": in.Description, "shortCode": shortCode,
			"parent": in.ParentFolder, "now": now,
		})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return documentFromProps(nodeProps(rec, "d")), nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "documents", in.Tenant, in.Project)
	return out.(*domain.Document), nil
}

func txGetDocument(ctx context.Context, tx neo4j.ManagedTransaction, tenant, project, slug string) (*domain.Document, error) {
	res, err := tx.Run(ctx, `
MATCH (d:Document {tenant: $tenant, project: $project, slug: $slug})
WHERE d.deletedAt IS NULL
RETURN d
`, map[string]any{"tenant": tenant, "project": project, "slug": slug})
	if err != nil {
		return nil, err
	}
	recs, err := collectRecords(ctx, res)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, notFoundf("document %q in %s/%s", slug, tenant, project)
	}
	return documentFromProps(nodeProps(recs[0], "d")), nil
}

func (s *Service) GetDocument(ctx context.Context, tenant, project, slug string) (*domain.Document, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return txGetDocument(ctx, tx, tenant, project, slug)
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.Document), nil
}

// ListDocuments filters soft-deleted documents out; pass folder="" for
// all folders, "-" for root-level documents only.
func (s *Service) ListDocuments(ctx context.Context, tenant, project, folder string) ([]*domain.Document, error) {
	query := `
MATCH (d:Document {tenant: $tenant, project: $project})
WHERE d.deletedAt IS NULL
RETURN d ORDER BY d.slug
`
	params := map[string]any{"tenant": tenant, "project": project}
	if folder == "-" {
		query = `
MATCH (d:Document {tenant: $tenant, project: $project, parentFolder: ''})
WHERE d.deletedAt IS NULL
RETURN d ORDER BY d.slug
`
	} else if folder != "" {
		query = `
MATCH (d:Document {tenant: $tenant, project: $project, parentFolder: $folder})
WHERE d.deletedAt IS NULL
RETURN d ORDER BY d.slug
`
		params["folder"] = folder
	}
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		docs := make([]*domain.Document, 0, len(recs))
		for _, rec := range recs {
			docs = append(docs, documentFromProps(nodeProps(rec, "d")))
		}
		return docs, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*domain.Document), nil
}

type DocumentUpdate struct {
	Name        *string
	Description *string
	ShortCode   *string
}

type documentUpdateResult struct {
	doc      *domain.Document
	renamed  []*domain.Requirement
	oldPaths []string
}

// UpdateDocument applies a partial update. Changing the short code
// renumbers every live requirement under the document in the same
// transaction: the ref prefix is swapped, the numeric suffix preserved.
func (s *Service) UpdateDocument(ctx context.Context, tenant, project, slug string, patch DocumentUpdate) (*domain.Document, error) {
	if patch.Name == nil && patch.Description == nil && patch.ShortCode == nil {
		return nil, conflictf("no valid fields supplied for document update")
	}
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		doc, err := txGetDocument(ctx, tx, tenant, project, slug)
		if err != nil {
			return nil, err
		}
		updates := map[string]any{"updatedAt": s.timestamp()}
		if patch.Name != nil {
			updates["name"] = *patch.Name
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		newShort := doc.ShortCode
		if patch.ShortCode != nil {
			newShort = DocumentShortCode(slug, *patch.ShortCode)
			updates["shortCode"] = newShort
		}
		res, err := tx.Run(ctx, `
MATCH (d:Document {tenant: $tenant, project: $project, slug: $slug})
SET d += $updates
RETURN d
`, map[string]any{"tenant": tenant, "project": project, "slug": slug, "updates": updates})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		result := &documentUpdateResult{doc: documentFromProps(nodeProps(rec, "d"))}
		if patch.ShortCode != nil && newShort != doc.ShortCode {
			renamed, oldPaths, err := s.txRenumberDocument(ctx, tx, tenant, project, slug, newShort)
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
	result := out.(*documentUpdateResult)
	for _, path := range result.oldPaths {
		s.mirrorRemove(ctx, path)
	}
	for _, req := range result.renamed {
		s.mirrorWrite(ctx, req)
	}
	s.invalidate(ctx, "documents", tenant, project, slug)
	if len(result.renamed) > 0 {
		s.invalidate(ctx, "requirements", tenant, project)
	}
	return result.doc, nil
}

// txRenumberDocument rewrites the ref prefix of every live requirement
// under the document. Section-scoped requirements keep their section
// segment; numeric suffixes and relative order never change.
func (s *Service) txRenumberDocument(ctx context.Context, tx neo4j.ManagedTransaction, tenant, project, docSlug, newDocShort string) ([]*domain.Requirement, []string, error) {
	res, err := tx.Run(ctx, `
MATCH (sec:DocumentSection {tenant: $tenant, project: $project, documentSlug: $doc})
RETURN sec.id AS id, sec.name AS name, sec.shortCode AS shortCode
`, map[string]any{"tenant": tenant, "project": project, "doc": docSlug})
	if err != nil {
		return nil, nil, err
	}
	recs, err := collectRecords(ctx, res)
	if err != nil {
		return nil, nil, err
	}
	sectionShort := make(map[string]string, len(recs))
	for _, rec := range recs {
		id, _ := rec.Get("id")
		name, _ := rec.Get("name")
		short, _ := rec.Get("shortCode")
		sectionShort[id.(string)] = SectionShortCode(asString(name), asString(short))
	}

	res, err = tx.Run(ctx, `
MATCH (r:Requirement {tenant: $tenant, project: $project, documentSlug: $doc})
WHERE NOT coalesce(r.deleted, false)
RETURN r.hashId AS hashId, r.ref AS ref, coalesce(r.sectionId, '') AS sectionId
ORDER BY r.ref
`, map[string]any{"tenant": tenant, "project": project, "doc": docSlug})
	if err != nil {
		return nil, nil, err
	}
	recs, err = collectRecords(ctx, res)
	if err != nil {
		return nil, nil, err
	}

	now := s.timestamp()
	rows := make([]map[string]any, 0, len(recs))
	oldPaths := make([]string, 0, len(recs))
	for _, rec := range recs {
		hashVal, _ := rec.Get("hashId")
		refVal, _ := rec.Get("ref")
		secVal, _ := rec.Get("sectionId")
		oldRef := refVal.(string)
		_, num, ok := SplitRef(oldRef)
		if !ok {
			continue
		}
		prefix := newDocShort
		if sc := sectionShort[asString(secVal)]; asString(secVal) != "" && sc != "" {
			prefix = newDocShort + "-" + sc
		}
		newRef := ComposeRef(prefix, num)
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

func (s *Service) SoftDeleteDocument(ctx context.Context, tenant, project, slug string) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetDocument(ctx, tx, tenant, project, slug); err != nil {
			return nil, err
		}
		now := s.timestamp()
		return nil, run(ctx, tx, `
MATCH (d:Document {tenant: $tenant, project: $project, slug: $slug})
SET d.deletedAt = $now, d.updatedAt = $now
`, map[string]any{"tenant": tenant, "project": project, "slug": slug, "now": now})
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, "documents", tenant, project, slug)
	return nil
}

// MoveDocument rewrites the IN_FOLDER edge and the parentFolder slug in
// one transaction; newFolder "" moves the document to the project root.
func (s *Service) MoveDocument(ctx context.Context, tenant, project, slug, newFolder string) (*domain.Document, error) {
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetDocument(ctx, tx, tenant, project, slug); err != nil {
			return nil, err
		}
		if newFolder != "" {
			if _, err := txGetFolder(ctx, tx, tenant, project, newFolder); err != nil {
				return nil, err
			}
		}
		res, err := tx.Run(ctx, `
MATCH (d:Document {tenant: $tenant, project: $project, slug: $slug})
OPTIONAL MATCH (d)-[old:IN_FOLDER]->(:Folder)
DELETE old
SET d.parentFolder = $folder, d.updatedAt = $now
WITH d
OPTIONAL MATCH (nf:Folder {tenant: $tenant, project: $project, slug: $folder})
FOREACH (_ IN CASE WHEN nf IS NULL THEN [] ELSE [1] END | CREATE (d)-[:IN_FOLDER]->(nf))
RETURN d
`, map[string]any{
			"tenant": tenant, "project": project, "slug": slug,
			"folder": newFolder, "now": s.timestamp(),
		})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return documentFromProps(nodeProps(rec, "d")), nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "documents", tenant, project, slug)
	return out.(*domain.Document), nil
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
