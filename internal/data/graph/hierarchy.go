package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Hollando78/airgen-sub002/internal/domain"
)

func tenantFromProps(props map[string]any) *domain.Tenant {
	if props == nil {
		return nil
	}
	return &domain.Tenant{
		Slug:      propStr(props, "slug"),
		Name:      propStr(props, "name"),
		CreatedAt: propTime(props, "createdAt"),
	}
}

func projectFromProps(props map[string]any) *domain.Project {
	if props == nil {
		return nil
	}
	return &domain.Project{
		TenantSlug:         propStr(props, "tenant"),
		Slug:               propStr(props, "slug"),
		Key:                propStr(props, "key"),
		RequirementCounter: propInt(props, "requirementCounter"),
		BaselineCounter:    propInt(props, "baselineCounter"),
		CreatedAt:          propTime(props, "createdAt"),
	}
}

// UpsertTenant creates the tenant on first reference and is a no-op on
// subsequent calls apart from refreshing the display name.
func (s *Service) UpsertTenant(ctx context.Context, slug, name string) (*domain.Tenant, error) {
	slug = Slugify(slug)
	if slug == "" {
		return nil, validationf("tenant slug required")
	}
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (t:Tenant {slug: $slug})
ON CREATE SET t.name = $name, t.createdAt = $now
ON MATCH SET t.name = CASE WHEN $name <> '' THEN $name ELSE t.name END
RETURN t
`, map[string]any{"slug": slug, "name": name, "now": s.timestamp()})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return tenantFromProps(nodeProps(rec, "t")), nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.Tenant), nil
}

func (s *Service) GetTenant(ctx context.Context, slug string) (*domain.Tenant, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (t:Tenant {slug: $slug}) RETURN t`, map[string]any{"slug": slug})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return nil, notFoundf("tenant %q", slug)
		}
		return tenantFromProps(nodeProps(recs[0], "t")), nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.Tenant), nil
}

func (s *Service) ListTenants(ctx context.Context) ([]*domain.Tenant, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (t:Tenant) RETURN t ORDER BY t.slug`, nil)
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		tenants := make([]*domain.Tenant, 0, len(recs))
		for _, rec := range recs {
			tenants = append(tenants, tenantFromProps(nodeProps(rec, "t")))
		}
		return tenants, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*domain.Tenant), nil
}

// DeleteTenant removes the tenant and every node scoped to it. Admin
// operation; there is no soft-delete at tenant level.
func (s *Service) DeleteTenant(ctx context.Context, slug string) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (t:Tenant {slug: $slug}) RETURN t.slug`, map[string]any{"slug": slug})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return nil, notFoundf("tenant %q", slug)
		}
		if err := run(ctx, tx, `MATCH (n {tenant: $slug}) DETACH DELETE n`, map[string]any{"slug": slug}); err != nil {
			return nil, err
		}
		if err := run(ctx, tx, `MATCH (t:Tenant {slug: $slug}) DETACH DELETE t`, map[string]any{"slug": slug}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, "tenant", slug)
	return nil
}

// UpsertProject is idempotent and creates the owning tenant on first
// reference. Counters start at zero and are never reset.
func (s *Service) UpsertProject(ctx context.Context, tenant, slug, key string) (*domain.Project, error) {
	tenant = Slugify(tenant)
	slug = Slugify(slug)
	if tenant == "" || slug == "" {
		return nil, validationf("tenant and project slugs required")
	}
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (t:Tenant {slug: $tenant})
ON CREATE SET t.name = $tenant, t.createdAt = $now
MERGE (t)-[:OWNS]->(p:Project {slug: $slug})
ON CREATE SET p.tenant = $tenant,
              p.key = $key,
              p.requirementCounter = 0,
              p.baselineCounter = 0,
              p.createdAt = $now
ON MATCH SET p.key = CASE WHEN $key <> '' THEN $key ELSE p.key END
RETURN p
`, map[string]any{"tenant": tenant, "slug": slug, "key": key, "now": s.timestamp()})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return projectFromProps(nodeProps(rec, "p")), nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.Project), nil
}

func (s *Service) GetProject(ctx context.Context, tenant, slug string) (*domain.Project, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return txGetProject(ctx, tx, tenant, slug)
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.Project), nil
}

func txGetProject(ctx context.Context, tx neo4j.ManagedTransaction, tenant, slug string) (*domain.Project, error) {
	res, err := tx.Run(ctx, `
MATCH (:Tenant {slug: $tenant})-[:OWNS]->(p:Project {slug: $slug})
RETURN p
`, map[string]any{"tenant": tenant, "slug": slug})
	if err != nil {
		return nil, err
	}
	recs, err := collectRecords(ctx, res)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, notFoundf("project %s/%s", tenant, slug)
	}
	return projectFromProps(nodeProps(recs[0], "p")), nil
}

func (s *Service) ListProjects(ctx context.Context, tenant string) ([]*domain.Project, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (:Tenant {slug: $tenant})-[:OWNS]->(p:Project)
RETURN p ORDER BY p.slug
`, map[string]any{"tenant": tenant})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		projects := make([]*domain.Project, 0, len(recs))
		for _, rec := range recs {
			projects = append(projects, projectFromProps(nodeProps(rec, "p")))
		}
		return projects, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*domain.Project), nil
}

// DeleteProject removes the project and all nodes scoped to it.
func (s *Service) DeleteProject(ctx context.Context, tenant, slug string) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetProject(ctx, tx, tenant, slug); err != nil {
			return nil, err
		}
		if err := run(ctx, tx, `
MATCH (n {tenant: $tenant, project: $slug}) DETACH DELETE n
`, map[string]any{"tenant": tenant, "slug": slug}); err != nil {
			return nil, err
		}
		if err := run(ctx, tx, `
MATCH (:Tenant {slug: $tenant})-[:OWNS]->(p:Project {slug: $slug}) DETACH DELETE p
`, map[string]any{"tenant": tenant, "slug": slug}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, "project", tenant, slug)
	return nil
}
