package graph

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Hollando78/airgen-sub002/internal/domain"
)

func candidateFromProps(props map[string]any) *domain.RequirementCandidate {
	if props == nil {
		return nil
	}
	return &domain.RequirementCandidate{
		ID:             propStr(props, "id"),
		TenantSlug:     propStr(props, "tenant"),
		ProjectSlug:    propStr(props, "project"),
		DocumentSlug:   propStr(props, "documentSlug"),
		Text:           propStr(props, "text"),
		Status:         propStr(props, "status"),
		RequirementRef: propStr(props, "requirementRef"),
		CreatedAt:      propTime(props, "createdAt"),
		UpdatedAt:      propTime(props, "updatedAt"),
	}
}

// CreateCandidates records a batch of proposed requirement texts in
// pending status. Nothing is allocated until a candidate is accepted.
func (s *Service) CreateCandidates(ctx context.Context, tenant, project, documentSlug string, texts []string) ([]*domain.RequirementCandidate, error) {
	rows := make([]any, 0, len(texts))
	now := s.timestamp()
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		rows = append(rows, map[string]any{"id": s.newID(), "text": text})
	}
	if len(rows) == 0 {
		return nil, validationf("at least one non-empty candidate text required")
	}
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetProject(ctx, tx, tenant, project); err != nil {
			return nil, err
		}
		if documentSlug != "" {
			if _, err := txGetDocument(ctx, tx, tenant, project, documentSlug); err != nil {
				return nil, err
			}
		}
		res, err := tx.Run(ctx, `
MATCH (:Tenant {slug: $tenant})-[:OWNS]->(p:Project {slug: $project})
UNWIND $rows AS row
CREATE (c:RequirementCandidate {
  id: row.id, tenant: $tenant, project: $project,
  documentSlug: $doc, text: row.text,
  status: $status, requirementRef: '',
  createdAt: $now, updatedAt: $now
})
CREATE (p)-[:HAS_CANDIDATE]->(c)
RETURN c
`, map[string]any{
			"tenant": tenant, "project": project, "doc": documentSlug,
			"rows": rows, "status": domain.CandidateStatusPending, "now": now,
		})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		candidates := make([]*domain.RequirementCandidate, 0, len(recs))
		for _, rec := range recs {
			candidates = append(candidates, candidateFromProps(nodeProps(rec, "c")))
		}
		return candidates, nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "candidates", tenant, project)
	return out.([]*domain.RequirementCandidate), nil
}

func (s *Service) ListCandidates(ctx context.Context, tenant, project, documentSlug string) ([]*domain.RequirementCandidate, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
MATCH (c:RequirementCandidate {tenant: $tenant, project: $project})
RETURN c ORDER BY c.createdAt, c.id
`
		if documentSlug != "" {
			query = `
MATCH (c:RequirementCandidate {tenant: $tenant, project: $project, documentSlug: $doc})
RETURN c ORDER BY c.createdAt, c.id
`
		}
		res, err := tx.Run(ctx, query, map[string]any{
			"tenant": tenant, "project": project, "doc": documentSlug,
		})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		candidates := make([]*domain.RequirementCandidate, 0, len(recs))
		for _, rec := range recs {
			candidates = append(candidates, candidateFromProps(nodeProps(rec, "c")))
		}
		return candidates, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*domain.RequirementCandidate), nil
}

func txGetCandidate(ctx context.Context, tx neo4j.ManagedTransaction, tenant, project, id string) (*domain.RequirementCandidate, error) {
	res, err := tx.Run(ctx, `
MATCH (c:RequirementCandidate {tenant: $tenant, project: $project, id: $id})
RETURN c
`, map[string]any{"tenant": tenant, "project": project, "id": id})
	if err != nil {
		return nil, err
	}
	recs, err := collectRecords(ctx, res)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, notFoundf("candidate %q in %s/%s", id, tenant, project)
	}
	return candidateFromProps(nodeProps(recs[0], "c")), nil
}

func (s *Service) RejectCandidate(ctx context.Context, tenant, project, id string) (*domain.RequirementCandidate, error) {
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		cand, err := txGetCandidate(ctx, tx, tenant, project, id)
		if err != nil {
			return nil, err
		}
		if cand.Status == domain.CandidateStatusAccepted {
			return nil, conflictf("candidate %q is already accepted", id)
		}
		res, err := tx.Run(ctx, `
MATCH (c:RequirementCandidate {tenant: $tenant, project: $project, id: $id})
SET c.status = $status, c.updatedAt = $now
RETURN c
`, map[string]any{
			"tenant": tenant, "project": project, "id": id,
			"status": domain.CandidateStatusRejected, "now": s.timestamp(),
		})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return candidateFromProps(nodeProps(rec, "c")), nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "candidates", tenant, project)
	return out.(*domain.RequirementCandidate), nil
}

type acceptResult struct {
	candidate   *domain.RequirementCandidate
	requirement *domain.Requirement
}

// AcceptCandidate promotes a pending candidate into a real requirement.
// The ref allocation and the status flip share one transaction: either
// both land or neither does.
func (s *Service) AcceptCandidate(ctx context.Context, tenant, project, id string, in CreateRequirementInput) (*domain.RequirementCandidate, *domain.Requirement, error) {
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		cand, err := txGetCandidate(ctx, tx, tenant, project, id)
		if err != nil {
			return nil, err
		}
		if cand.Status != domain.CandidateStatusPending {
			return nil, conflictf("candidate %q is %s, not pending", id, cand.Status)
		}
		in.Tenant = tenant
		in.Project = project
		if in.DocumentSlug == "" {
			in.DocumentSlug = cand.DocumentSlug
		}
		if strings.TrimSpace(in.Text) == "" {
			in.Text = cand.Text
		}
		if strings.TrimSpace(in.Title) == "" && strings.TrimSpace(in.Text) == "" {
			return nil, validationf("requirement title or text required")
		}
		if in.SectionID != "" && in.DocumentSlug == "" {
			return nil, validationf("section requires a document")
		}
		req, err := s.txCreateRequirement(ctx, tx, in)
		if err != nil {
			return nil, err
		}
		res, err := tx.Run(ctx, `
MATCH (c:RequirementCandidate {tenant: $tenant, project: $project, id: $id})
SET c.status = $status, c.requirementRef = $ref, c.updatedAt = $now
RETURN c
`, map[string]any{
			"tenant": tenant, "project": project, "id": id,
			"status": domain.CandidateStatusAccepted, "ref": req.Ref, "now": s.timestamp(),
		})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return acceptResult{candidate: candidateFromProps(nodeProps(rec, "c")), requirement: req}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	accepted := out.(acceptResult)
	s.mirrorWrite(ctx, accepted.requirement)
	s.invalidate(ctx, "candidates", tenant, project)
	s.invalidate(ctx, "requirements", tenant, project)
	return accepted.candidate, accepted.requirement, nil
}
