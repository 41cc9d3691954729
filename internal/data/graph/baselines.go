package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Hollando78/airgen-sub002/internal/domain"
)

func baselineFromProps(props map[string]any) *domain.Baseline {
	if props == nil {
		return nil
	}
	return &domain.Baseline{
		ID:              propStr(props, "id"),
		Ref:             propStr(props, "ref"),
		TenantSlug:      propStr(props, "tenant"),
		ProjectSlug:     propStr(props, "project"),
		Label:           propStr(props, "label"),
		RequirementRefs: propStrs(props, "requirementRefs"),
		CreatedAt:       propTime(props, "createdAt"),
	}
}

// CreateBaseline freezes the project's live requirement set. The ref
// list is stored as a literal copy on the node; SNAPSHOT_OF edges keep
// the snapshot traversable. Baselines are immutable: no update exists.
func (s *Service) CreateBaseline(ctx context.Context, tenant, project, label string) (*domain.Baseline, error) {
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetProject(ctx, tx, tenant, project); err != nil {
			return nil, err
		}
		res, err := tx.Run(ctx, `
MATCH (:Tenant {slug: $tenant})-[:OWNS]->(p:Project {slug: $project})
SET p.baselineCounter = coalesce(p.baselineCounter, 0) + 1
RETURN p.baselineCounter AS counter
`, map[string]any{"tenant": tenant, "project": project})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		counterVal, _ := rec.Get("counter")
		ref := BaselineRef(project, int(counterVal.(int64)))

		res, err = tx.Run(ctx, `
MATCH (r:Requirement {tenant: $tenant, project: $project})
WHERE NOT coalesce(r.deleted, false)
RETURN r.ref AS ref, r.id AS id
ORDER BY r.ref
`, map[string]any{"tenant": tenant, "project": project})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		refs := make([]any, 0, len(recs))
		ids := make([]any, 0, len(recs))
		for _, r := range recs {
			refVal, _ := r.Get("ref")
			idVal, _ := r.Get("id")
			refs = append(refs, asString(refVal))
			ids = append(ids, asString(idVal))
		}

		res, err = tx.Run(ctx, `
MATCH (:Tenant {slug: $tenant})-[:OWNS]->(p:Project {slug: $project})
CREATE (b:Baseline {
  id: $id, ref: $ref, tenant: $tenant, project: $project,
  label: $label, requirementRefs: $refs, createdAt: $now
})
CREATE (p)-[:HAS_BASELINE]->(b)
WITH b
UNWIND $ids AS reqId
MATCH (r:Requirement {id: reqId})
CREATE (b)-[:SNAPSHOT_OF]->(r)
RETURN DISTINCT b
`, map[string]any{
			"id": s.newID(), "ref": ref, "tenant": tenant, "project": project,
			"label": label, "refs": refs, "ids": ids, "now": s.timestamp(),
		})
		if err != nil {
			return nil, err
		}
		recs, err = collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		if len(recs) > 0 {
			return baselineFromProps(nodeProps(recs[0], "b")), nil
		}
		// Zero live requirements: the UNWIND above matched nothing, so
		// re-read the node created in this transaction.
		res, err = tx.Run(ctx, `MATCH (b:Baseline {ref: $ref, tenant: $tenant, project: $project}) RETURN b`,
			map[string]any{"ref": ref, "tenant": tenant, "project": project})
		if err != nil {
			return nil, err
		}
		rec, err = res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return baselineFromProps(nodeProps(rec, "b")), nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "baselines", tenant, project)
	return out.(*domain.Baseline), nil
}

func (s *Service) ListBaselines(ctx context.Context, tenant, project string) ([]*domain.Baseline, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (b:Baseline {tenant: $tenant, project: $project})
RETURN b ORDER BY b.createdAt DESC
`, map[string]any{"tenant": tenant, "project": project})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		baselines := make([]*domain.Baseline, 0, len(recs))
		for _, rec := range recs {
			baselines = append(baselines, baselineFromProps(nodeProps(rec, "b")))
		}
		return baselines, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*domain.Baseline), nil
}

func (s *Service) GetBaseline(ctx context.Context, tenant, project, ref string) (*domain.Baseline, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (b:Baseline {tenant: $tenant, project: $project, ref: $ref})
RETURN b
`, map[string]any{"tenant": tenant, "project": project, "ref": ref})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return nil, notFoundf("baseline %q in %s/%s", ref, tenant, project)
		}
		return baselineFromProps(nodeProps(recs[0], "b")), nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.Baseline), nil
}
