package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Hollando78/airgen-sub002/internal/domain"
)

func traceLinkFromProps(props map[string]any) *domain.TraceLink {
	if props == nil {
		return nil
	}
	return &domain.TraceLink{
		ID:          propStr(props, "id"),
		TenantSlug:  propStr(props, "tenant"),
		ProjectSlug: propStr(props, "project"),
		SourceRef:   propStr(props, "sourceRef"),
		TargetRef:   propStr(props, "targetRef"),
		LinkType:    propStr(props, "linkType"),
		Description: propStr(props, "description"),
		CreatedAt:   propTime(props, "createdAt"),
	}
}

// CreateTraceLink creates a typed directed link between two
// requirements of the same project. The link is stored twice: a
// TraceLink node for listing and deletion, and a direct LINKS_TO edge
// between the requirement nodes for traversal. Both endpoints are
// resolved inside the transaction; if either is missing nothing is
// created.
func (s *Service) CreateTraceLink(ctx context.Context, tenant, project, sourceRef, targetRef, linkType, description string) (*domain.TraceLink, error) {
	if !domain.ValidLinkType(linkType) {
		return nil, validationf("unknown link type %q", linkType)
	}
	if sourceRef == targetRef {
		return nil, validationf("trace link endpoints must differ")
	}
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetRequirement(ctx, tx, tenant, project, sourceRef); err != nil {
			return nil, err
		}
		if _, err := txGetRequirement(ctx, tx, tenant, project, targetRef); err != nil {
			return nil, err
		}
		res, err := tx.Run(ctx, `
MATCH (l:TraceLink {tenant: $tenant, project: $project, sourceRef: $source, targetRef: $target, linkType: $type})
RETURN l.id
`, map[string]any{"tenant": tenant, "project": project, "source": sourceRef, "target": targetRef, "type": linkType})
		if err != nil {
			return nil, err
		}
		if recs, err := collectRecords(ctx, res); err != nil {
			return nil, err
		} else if len(recs) > 0 {
			return nil, conflictf("trace link %s -[%s]-> %s already exists", sourceRef, linkType, targetRef)
		}
		res, err = tx.Run(ctx, `
MATCH (:Tenant {slug: $tenant})-[:OWNS]->(p:Project {slug: $project})
MATCH (a:Requirement {tenant: $tenant, project: $project, ref: $source})
MATCH (b:Requirement {tenant: $tenant, project: $project, ref: $target})
CREATE (l:TraceLink {
  id: $id, tenant: $tenant, project: $project,
  sourceRef: $source, targetRef: $target,
  linkType: $type, description: $description, createdAt: $now
})
CREATE (p)-[:HAS_TRACE_LINK]->(l)
CREATE (l)-[:FROM_REQUIREMENT]->(a)
CREATE (l)-[:TO_REQUIREMENT]->(b)
CREATE (a)-[:LINKS_TO {linkType: $type, traceLinkId: $id}]->(b)
RETURN l
`, map[string]any{
			"id": s.newID(), "tenant": tenant, "project": project,
			"source": sourceRef, "target": targetRef,
			"type": linkType, "description": description, "now": s.timestamp(),
		})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return traceLinkFromProps(nodeProps(rec, "l")), nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "tracelinks", tenant, project)
	return out.(*domain.TraceLink), nil
}

// ListTraceLinks returns every link in the project, or with ref set,
// the links touching that requirement in either direction.
func (s *Service) ListTraceLinks(ctx context.Context, tenant, project, ref string) ([]*domain.TraceLink, error) {
	query := `
MATCH (l:TraceLink {tenant: $tenant, project: $project})
RETURN l ORDER BY l.createdAt
`
	params := map[string]any{"tenant": tenant, "project": project}
	if ref != "" {
		query = `
MATCH (l:TraceLink {tenant: $tenant, project: $project})
WHERE l.sourceRef = $ref OR l.targetRef = $ref
RETURN l ORDER BY l.createdAt
`
		params["ref"] = ref
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
		links := make([]*domain.TraceLink, 0, len(recs))
		for _, rec := range recs {
			links = append(links, traceLinkFromProps(nodeProps(rec, "l")))
		}
		return links, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*domain.TraceLink), nil
}

// DeleteTraceLink removes the node and the LINKS_TO edge. The graph
// store does not raise on no-op deletes, so the deletion count decides
// between success and NotFound.
func (s *Service) DeleteTraceLink(ctx context.Context, tenant, project, id string) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := run(ctx, tx, `
MATCH (:Requirement)-[e:LINKS_TO {traceLinkId: $id}]->(:Requirement)
DELETE e
`, map[string]any{"id": id}); err != nil {
			return nil, err
		}
		res, err := tx.Run(ctx, `
MATCH (l:TraceLink {tenant: $tenant, project: $project, id: $id})
DETACH DELETE l
`, map[string]any{"tenant": tenant, "project": project, "id": id})
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		if summary.Counters().NodesDeleted() == 0 {
			return nil, notFoundf("trace link %q in %s/%s", id, tenant, project)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, "tracelinks", tenant, project)
	return nil
}
