package graph

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Hollando78/airgen-sub002/internal/domain"
)

func requirementFromProps(props map[string]any) *domain.Requirement {
	if props == nil {
		return nil
	}
	return &domain.Requirement{
		ID:           propStr(props, "id"),
		HashID:       propStr(props, "hashId"),
		Ref:          propStr(props, "ref"),
		TenantSlug:   propStr(props, "tenant"),
		ProjectSlug:  propStr(props, "project"),
		DocumentSlug: propStr(props, "documentSlug"),
		SectionID:    propStr(props, "sectionId"),
		Title:        propStr(props, "title"),
		Text:         propStr(props, "text"),
		Pattern:      propStr(props, "pattern"),
		Verification: propStr(props, "verification"),
		QAScore:      propFloat(props, "qaScore"),
		QAVerdict:    propStr(props, "qaVerdict"),
		Tags:         propStrs(props, "tags"),
		Path:         propStr(props, "path"),
		Deleted:      propBool(props, "deleted"),
		CreatedAt:    propTime(props, "createdAt"),
		UpdatedAt:    propTime(props, "updatedAt"),
	}
}

type CreateRequirementInput struct {
	Tenant       string
	Project      string
	DocumentSlug string // optional
	SectionID    string // optional, requires DocumentSlug
	Title        string
	Text         string
	Pattern      string
	Verification string
	QAScore      float64
	QAVerdict    string
	Tags         []string
}

// CreateRequirement allocates the next human-readable ref and creates
// the node, all inside one write transaction.
//
// The scoped counter is an optimistic hint: after incrementing it, the
// transaction scans existing refs sharing the prefix and bumps past the
// highest allocated suffix. Drift between counter and refs (renumbering,
// imports, manual edits) therefore never produces a duplicate.
func (s *Service) CreateRequirement(ctx context.Context, in CreateRequirementInput) (*domain.Requirement, error) {
	if strings.TrimSpace(in.Title) == "" && strings.TrimSpace(in.Text) == "" {
		return nil, validationf("requirement title or text required")
	}
	if in.SectionID != "" && in.DocumentSlug == "" {
		return nil, validationf("section requires a document")
	}
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return s.txCreateRequirement(ctx, tx, in)
	})
	if err != nil {
		return nil, err
	}
	req := out.(*domain.Requirement)
	s.mirrorWrite(ctx, req)
	s.invalidate(ctx, "requirements", in.Tenant, in.Project)
	return req, nil
}

func (s *Service) txCreateRequirement(ctx context.Context, tx neo4j.ManagedTransaction, in CreateRequirementInput) (*domain.Requirement, error) {
	if _, err := txGetProject(ctx, tx, in.Tenant, in.Project); err != nil {
		return nil, err
	}

	prefix := ProjectPrefix(in.Project)
	counterQuery := `
MATCH (:Tenant {slug: $tenant})-[:OWNS]->(p:Project {slug: $project})
SET p.requirementCounter = coalesce(p.requirementCounter, 0) + 1
RETURN p.requirementCounter AS counter
`
	if in.DocumentSlug != "" {
		doc, err := txGetDocument(ctx, tx, in.Tenant, in.Project, in.DocumentSlug)
		if err != nil {
			return nil, err
		}
		docShort := DocumentShortCode(doc.Slug, doc.ShortCode)
		prefix = docShort
		if in.SectionID != "" {
			sec, err := txGetSection(ctx, tx, in.Tenant, in.Project, in.SectionID)
			if err != nil {
				return nil, err
			}
			if sec.DocumentSlug != in.DocumentSlug {
				return nil, validationf("section %q does not belong to document %q", in.SectionID, in.DocumentSlug)
			}
			prefix = docShort + "-" + SectionShortCode(sec.Name, sec.ShortCode)
		}
		counterQuery = `
MATCH (d:Document {tenant: $tenant, project: $project, slug: $doc})
SET d.requirementCounter = coalesce(d.requirementCounter, 0) + 1
RETURN d.requirementCounter AS counter
`
	}

	res, err := tx.Run(ctx, counterQuery, map[string]any{
		"tenant": in.Tenant, "project": in.Project, "doc": in.DocumentSlug,
	})
	if err != nil {
		return nil, err
	}
	rec, err := res.Single(ctx)
	if err != nil {
		return nil, err
	}
	counterVal, _ := rec.Get("counter")
	num := int(counterVal.(int64))

	// Safety scan: the counter may lag behind actually allocated
	// refs. Take the max existing suffix as the floor.
	maxExisting, err := txMaxRefSuffix(ctx, tx, in.Tenant, in.Project, prefix)
	if err != nil {
		return nil, err
	}
	if maxExisting >= num {
		num = maxExisting + 1
	}

	ref := ComposeRef(prefix, num)
	now := s.timestamp()
	params := map[string]any{
		"id":           RequirementID(in.Tenant, in.Project, ref),
		"hashId":       s.newID(),
		"ref":          ref,
		"tenant":       in.Tenant,
		"project":      in.Project,
		"doc":          in.DocumentSlug,
		"section":      in.SectionID,
		"title":        in.Title,
		"text":         in.Text,
		"pattern":      in.Pattern,
		"verification": in.Verification,
		"qaScore":      in.QAScore,
		"qaVerdict":    in.QAVerdict,
		"tags":         toAnySlice(in.Tags),
		"path":         RequirementPath(in.Tenant, in.Project, ref),
		"now":          now,
	}
	createQuery := `
MATCH (:Tenant {slug: $tenant})-[:OWNS]->(p:Project {slug: $project})
CREATE (r:Requirement {
  id: $id, hashId: $hashId, ref: $ref,
  tenant: $tenant, project: $project,
  documentSlug: $doc, sectionId: $section,
  title: $title, text: $text,
  pattern: $pattern, verification: $verification,
  qaScore: $qaScore, qaVerdict: $qaVerdict,
  tags: $tags, path: $path, deleted: false,
  createdAt: $now, updatedAt: $now
})
CREATE (p)-[:CONTAINS]->(r)
RETURN r
`
	if in.DocumentSlug != "" {
		createQuery = `
MATCH (d:Document {tenant: $tenant, project: $project, slug: $doc})
CREATE (r:Requirement {
  id: $id, hashId: $hashId, ref: $ref,
  tenant: $tenant, project: $project,
  documentSlug: $doc, sectionId: $section,
  title: $title, text: $text,
  pattern: $pattern, verification: $verification,
  qaScore: $qaScore, qaVerdict: $qaVerdict,
  tags: $tags, path: $path, deleted: false,
  createdAt: $now, updatedAt: $now
})
CREATE (d)-[:CONTAINS]->(r)
WITH r
OPTIONAL MATCH (sec:DocumentSection {tenant: $tenant, project: $project, id: $section})
FOREACH (_ IN CASE WHEN sec IS NULL THEN [] ELSE [1] END | CREATE (sec)-[:HAS_REQUIREMENT]->(r))
RETURN r
`
	}
	res, err = tx.Run(ctx, createQuery, params)
	if err != nil {
		return nil, err
	}
	rec, err = res.Single(ctx)
	if err != nil {
		return nil, err
	}
	return requirementFromProps(nodeProps(rec, "r")), nil
}

// txMaxRefSuffix returns the highest numeric suffix among existing refs
// with the given prefix, deleted requirements included: a tombstoned
// ref must never be reissued.
func txMaxRefSuffix(ctx context.Context, tx neo4j.ManagedTransaction, tenant, project, prefix string) (int, error) {
	res, err := tx.Run(ctx, `
MATCH (r:Requirement {tenant: $tenant, project: $project})
WHERE r.ref STARTS WITH $prefix
RETURN r.ref AS ref
`, map[string]any{"tenant": tenant, "project": project, "prefix": prefix + "-"})
	if err != nil {
		return 0, err
	}
	recs, err := collectRecords(ctx, res)
	if err != nil {
		return 0, err
	}
	refs := make([]string, 0, len(recs))
	for _, rec := range recs {
		if v, ok := rec.Get("ref"); ok {
			refs = append(refs, asString(v))
		}
	}
	return MaxRefSuffix(prefix, refs), nil
}

func (s *Service) GetRequirement(ctx context.Context, tenant, project, ref string) (*domain.Requirement, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return txGetRequirement(ctx, tx, tenant, project, ref)
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.Requirement), nil
}

func txGetRequirement(ctx context.Context, tx neo4j.ManagedTransaction, tenant, project, ref string) (*domain.Requirement, error) {
	res, err := tx.Run(ctx, `
MATCH (r:Requirement {tenant: $tenant, project: $project, ref: $ref})
WHERE NOT coalesce(r.deleted, false)
RETURN r
`, map[string]any{"tenant": tenant, "project": project, "ref": ref})
	if err != nil {
		return nil, err
	}
	recs, err := collectRecords(ctx, res)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, notFoundf("requirement %q in %s/%s", ref, tenant, project)
	}
	return requirementFromProps(nodeProps(recs[0], "r")), nil
}

// ListRequirements returns live requirements ordered by ref. limit <= 0
// means no limit.
func (s *Service) ListRequirements(ctx context.Context, tenant, project string, limit, offset int) ([]*domain.Requirement, error) {
	if limit <= 0 {
		limit = 1_000_000
	}
	if offset < 0 {
		offset = 0
	}
	return s.listRequirements(ctx, `
MATCH (r:Requirement {tenant: $tenant, project: $project})
WHERE NOT coalesce(r.deleted, false)
RETURN r ORDER BY r.ref
SKIP $offset LIMIT $limit
`, map[string]any{"tenant": tenant, "project": project, "offset": int64(offset), "limit": int64(limit)})
}

func (s *Service) ListDocumentRequirements(ctx context.Context, tenant, project, docSlug string) ([]*domain.Requirement, error) {
	return s.listRequirements(ctx, `
MATCH (r:Requirement {tenant: $tenant, project: $project, documentSlug: $doc})
WHERE NOT coalesce(r.deleted, false)
RETURN r ORDER BY r.ref
`, map[string]any{"tenant": tenant, "project": project, "doc": docSlug})
}

// SearchRequirements is a case-insensitive substring match over ref,
// title, and text, used for trace-link suggestions.
func (s *Service) SearchRequirements(ctx context.Context, tenant, project, query string, limit int) ([]*domain.Requirement, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, validationf("search query required")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.listRequirements(ctx, `
MATCH (r:Requirement {tenant: $tenant, project: $project})
WHERE NOT coalesce(r.deleted, false)
  AND (toLower(r.ref) CONTAINS $q OR toLower(r.title) CONTAINS $q OR toLower(r.text) CONTAINS $q)
RETURN r ORDER BY r.ref
LIMIT $limit
`, map[string]any{"tenant": tenant, "project": project, "q": q, "limit": int64(limit)})
}

func (s *Service) listRequirements(ctx context.Context, query string, params map[string]any) ([]*domain.Requirement, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		reqs := make([]*domain.Requirement, 0, len(recs))
		for _, rec := range recs {
			reqs = append(reqs, requirementFromProps(nodeProps(rec, "r")))
		}
		return reqs, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*domain.Requirement), nil
}

type RequirementUpdate struct {
	Title        *string
	Text         *string
	Pattern      *string
	Verification *string
	QAScore      *float64
	QAVerdict    *string
	Tags         *[]string
}

func (s *Service) UpdateRequirement(ctx context.Context, tenant, project, ref string, patch RequirementUpdate) (*domain.Requirement, error) {
	updates := map[string]any{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Text != nil {
		updates["text"] = *patch.Text
	}
	if patch.Pattern != nil {
		updates["pattern"] = *patch.Pattern
	}
	if patch.Verification != nil {
		updates["verification"] = *patch.Verification
	}
	if patch.QAScore != nil {
		updates["qaScore"] = *patch.QAScore
	}
	if patch.QAVerdict != nil {
		updates["qaVerdict"] = *patch.QAVerdict
	}
	if patch.Tags != nil {
		updates["tags"] = toAnySlice(*patch.Tags)
	}
	if len(updates) == 0 {
		return nil, conflictf("no valid fields supplied for requirement update")
	}
	updates["updatedAt"] = s.timestamp()
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (r:Requirement {tenant: $tenant, project: $project, ref: $ref})
WHERE NOT coalesce(r.deleted, false)
SET r += $updates
RETURN r
`, map[string]any{"tenant": tenant, "project": project, "ref": ref, "updates": updates})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return nil, notFoundf("requirement %q in %s/%s", ref, tenant, project)
		}
		return requirementFromProps(nodeProps(recs[0], "r")), nil
	})
	if err != nil {
		return nil, err
	}
	req := out.(*domain.Requirement)
	s.mirrorWrite(ctx, req)
	s.invalidate(ctx, "requirements", tenant, project)
	return req, nil
}

// SoftDeleteRequirement tombstones the node. The ref stays reserved so
// the allocator never reissues it.
func (s *Service) SoftDeleteRequirement(ctx context.Context, tenant, project, ref string) error {
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (r:Requirement {tenant: $tenant, project: $project, ref: $ref})
WHERE NOT coalesce(r.deleted, false)
SET r.deleted = true, r.updatedAt = $now
RETURN r.path AS path
`, map[string]any{"tenant": tenant, "project": project, "ref": ref, "now": s.timestamp()})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return nil, notFoundf("requirement %q in %s/%s", ref, tenant, project)
		}
		path, _ := recs[0].Get("path")
		return asString(path), nil
	})
	if err != nil {
		return err
	}
	s.mirrorRemove(ctx, out.(string))
	s.invalidate(ctx, "requirements", tenant, project)
	return nil
}

func toAnySlice(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}
