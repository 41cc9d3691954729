package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Hollando78/airgen-sub002/internal/domain"
)

func folderFromProps(props map[string]any) *domain.Folder {
	if props == nil {
		return nil
	}
	return &domain.Folder{
		Slug:         propStr(props, "slug"),
		Name:         propStr(props, "name"),
		ParentFolder: propStr(props, "parentFolder"),
		CreatedAt:    propTime(props, "createdAt"),
		DeletedAt:    propTimePtr(props, "deletedAt"),
	}
}

// CreateFolder adds a folder under the project root or under an
// existing parent folder. Slug is derived from the name and must be
// unique within the project.
func (s *Service) CreateFolder(ctx context.Context, tenant, project, name, parentFolder string) (*domain.Folder, error) {
	slug := Slugify(name)
	if slug == "" {
		return nil, validationf("folder name required")
	}
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetProject(ctx, tx, tenant, project); err != nil {
			return nil, err
		}
		res, err := tx.Run(ctx, `
MATCH (f:Folder {tenant: $tenant, project: $project, slug: $slug})
RETURN f.slug
`, map[string]any{"tenant": tenant, "project": project, "slug": slug})
		if err != nil {
			return nil, err
		}
		if recs, err := collectRecords(ctx, res); err != nil {
			return nil, err
		} else if len(recs) > 0 {
			return nil, conflictf("folder %q already exists in %s/%s", slug, tenant, project)
		}
		if parentFolder != "" {
			if _, err := txGetFolder(ctx, tx, tenant, project, parentFolder); err != nil {
				return nil, err
			}
		}
		res, err = tx.Run(ctx, `
MATCH (:Tenant {slug: $tenant})-[:OWNS]->(p:Project {slug: $project})
CREATE (f:Folder {
  tenant: $tenant, project: $project, slug: $slug, name: $name,
  parentFolder: $parent, createdAt: $now
})
CREATE (p)-[:CONTAINS_FOLDER]->(f)
WITH f
OPTIONAL MATCH (pf:Folder {tenant: $tenant, project: $project, slug: $parent})
FOREACH (_ IN CASE WHEN pf IS NULL THEN [] ELSE [1] END | CREATE (f)-[:IN_FOLDER]->(pf))
RETURN f
`, map[string]any{
			"tenant": tenant, "project": project, "slug": slug,
			"name": name, "parent": parentFolder, "now": s.timestamp(),
		})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return folderFromProps(nodeProps(rec, "f")), nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "folders", tenant, project)
	return out.(*domain.Folder), nil
}

func txGetFolder(ctx context.Context, tx neo4j.ManagedTransaction, tenant, project, slug string) (*domain.Folder, error) {
	res, err := tx.Run(ctx, `
MATCH (f:Folder {tenant: $tenant, project: $project, slug: $slug})
WHERE f.deletedAt IS NULL
RETURN f
`, map[string]any{"tenant": tenant, "project": project, "slug": slug})
	if err != nil {
		return nil, err
	}
	recs, err := collectRecords(ctx, res)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, notFoundf("folder %q in %s/%s", slug, tenant, project)
	}
	return folderFromProps(nodeProps(recs[0], "f")), nil
}

func (s *Service) ListFolders(ctx context.Context, tenant, project string) ([]*domain.Folder, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (f:Folder {tenant: $tenant, project: $project})
WHERE f.deletedAt IS NULL
RETURN f ORDER BY f.slug
`, map[string]any{"tenant": tenant, "project": project})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		folders := make([]*domain.Folder, 0, len(recs))
		for _, rec := range recs {
			folders = append(folders, folderFromProps(nodeProps(rec, "f")))
		}
		return folders, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*domain.Folder), nil
}

// SoftDeleteFolder refuses when the folder still has live children
// unless force is set; children are never cascade-deleted, only left
// pointing at a tombstoned parent.
func (s *Service) SoftDeleteFolder(ctx context.Context, tenant, project, slug string, force bool) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetFolder(ctx, tx, tenant, project, slug); err != nil {
			return nil, err
		}
		res, err := tx.Run(ctx, `
OPTIONAL MATCH (cf:Folder {tenant: $tenant, project: $project, parentFolder: $slug})
  WHERE cf.deletedAt IS NULL
WITH count(cf) AS folders
OPTIONAL MATCH (cd:Document {tenant: $tenant, project: $project, parentFolder: $slug})
  WHERE cd.deletedAt IS NULL
RETURN folders, count(cd) AS documents
`, map[string]any{"tenant": tenant, "project": project, "slug": slug})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		folders, _ := rec.Get("folders")
		documents, _ := rec.Get("documents")
		live := folders.(int64) + documents.(int64)
		if live > 0 && !force {
			return nil, conflictf("folder %q has %d live children", slug, live)
		}
		return nil, run(ctx, tx, `
MATCH (f:Folder {tenant: $tenant, project: $project, slug: $slug})
SET f.deletedAt = $now
`, map[string]any{"tenant": tenant, "project": project, "slug": slug, "now": s.timestamp()})
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, "folders", tenant, project)
	return nil
}

// MoveFolder reparents a folder. The IN_FOLDER edge and the
// denormalized parentFolder slug are rewritten in one transaction.
func (s *Service) MoveFolder(ctx context.Context, tenant, project, slug, newParent string) (*domain.Folder, error) {
	if slug == newParent {
		return nil, validationf("folder cannot be its own parent")
	}
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetFolder(ctx, tx, tenant, project, slug); err != nil {
			return nil, err
		}
		if newParent != "" {
			if _, err := txGetFolder(ctx, tx, tenant, project, newParent); err != nil {
				return nil, err
			}
			// Reject moves under the folder's own subtree.
			res, err := tx.Run(ctx, `
MATCH (np:Folder {tenant: $tenant, project: $project, slug: $parent})
MATCH (f:Folder {tenant: $tenant, project: $project, slug: $slug})
RETURN EXISTS((np)-[:IN_FOLDER*0..]->(f)) AS cyclic
`, map[string]any{"tenant": tenant, "project": project, "slug": slug, "parent": newParent})
			if err != nil {
				return nil, err
			}
			rec, err := res.Single(ctx)
			if err != nil {
				return nil, err
			}
			if cyclic, _ := rec.Get("cyclic"); cyclic.(bool) {
				return nil, conflictf("cannot move folder %q under its own subtree", slug)
			}
		}
		res, err := tx.Run(ctx, `
MATCH (f:Folder {tenant: $tenant, project: $project, slug: $slug})
OPTIONAL MATCH (f)-[old:IN_FOLDER]->(:Folder)
DELETE old
SET f.parentFolder = $parent
WITH f
OPTIONAL MATCH (np:Folder {tenant: $tenant, project: $project, slug: $parent})
FOREACH (_ IN CASE WHEN np IS NULL THEN [] ELSE [1] END | CREATE (f)-[:IN_FOLDER]->(np))
RETURN f
`, map[string]any{"tenant": tenant, "project": project, "slug": slug, "parent": newParent})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return folderFromProps(nodeProps(rec, "f")), nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "folders", tenant, project)
	return out.(*domain.Folder), nil
}
