package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Hollando78/airgen-sub002/internal/domain"
)

type DuplicateGroup struct {
	Ref            string   `json:"ref"`
	RequirementIDs []string `json:"requirement_ids"`
}

// RefChange identifies the renumbered node by its hash id. The
// composite requirement id is derived from the ref, so duplicate
// holders share it and it cannot address one of them.
type RefChange struct {
	HashID string `json:"hash_id"`
	OldRef string `json:"old_ref"`
	NewRef string `json:"new_ref"`
}

type RepairResult struct {
	Fixed   int         `json:"fixed"`
	Changes []RefChange `json:"changes"`
}

type refRow struct {
	HashID  string
	Ref     string
	Deleted bool
}

// planRepairs decides the renumbering for a project's requirements,
// given in encounter order. The first live holder of each duplicated
// ref keeps it; later live holders get prefix-<floor+1>, <floor+2>, ...
// where the floor is the highest suffix already taken by ANY ref with
// that prefix, tombstoned refs and numbers assigned earlier in the same
// plan included. Running the plan on its own output yields no changes.
func planRepairs(rows []refRow) []RefChange {
	groups := make(map[string][]refRow)
	order := make([]string, 0)
	for _, row := range rows {
		if row.Deleted {
			continue
		}
		if _, seen := groups[row.Ref]; !seen {
			order = append(order, row.Ref)
		}
		groups[row.Ref] = append(groups[row.Ref], row)
	}

	// Highest taken suffix per prefix. Deleted rows count: a
	// tombstoned ref stays reserved and must never be reassigned.
	floors := make(map[string]int)
	for _, row := range rows {
		prefix, n, ok := SplitRef(row.Ref)
		if !ok {
			// No numeric suffix: the whole ref acts as the prefix.
			prefix, n = row.Ref, 0
		}
		if n > floors[prefix] {
			floors[prefix] = n
		}
	}

	var changes []RefChange
	for _, ref := range order {
		group := groups[ref]
		if len(group) < 2 {
			continue
		}
		prefix, _, ok := SplitRef(ref)
		if !ok {
			prefix = ref
		}
		for _, row := range group[1:] {
			floors[prefix]++
			changes = append(changes, RefChange{
				HashID: row.HashID,
				OldRef: row.Ref,
				NewRef: ComposeRef(prefix, floors[prefix]),
			})
		}
	}
	return changes
}

// FindDuplicateRefs reports live requirements sharing a ref. A
// non-empty result means the project needs RepairDuplicateRefs.
func (s *Service) FindDuplicateRefs(ctx context.Context, tenant, project string) ([]DuplicateGroup, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (r:Requirement {tenant: $tenant, project: $project})
WHERE NOT coalesce(r.deleted, false)
WITH r.ref AS ref, collect(r.id) AS ids
WHERE size(ids) > 1
RETURN ref, ids ORDER BY ref
`, map[string]any{"tenant": tenant, "project": project})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		groups := make([]DuplicateGroup, 0, len(recs))
		for _, rec := range recs {
			refVal, _ := rec.Get("ref")
			idsVal, _ := rec.Get("ids")
			ids := make([]string, 0)
			if items, ok := idsVal.([]any); ok {
				for _, item := range items {
					ids = append(ids, asString(item))
				}
			}
			groups = append(groups, DuplicateGroup{Ref: asString(refVal), RequirementIDs: ids})
		}
		return groups, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]DuplicateGroup), nil
}

// CheckRefIntegrity returns ErrRepairNeeded when the project contains
// duplicated refs; callers decide when to run the repair.
func (s *Service) CheckRefIntegrity(ctx context.Context, tenant, project string) error {
	groups, err := s.FindDuplicateRefs(ctx, tenant, project)
	if err != nil {
		return err
	}
	if len(groups) > 0 {
		return ErrRepairNeeded
	}
	return nil
}

// RepairDuplicateRefs renumbers all but the first holder of every
// duplicated ref, in one write transaction so concurrent creations
// cannot interleave mid-repair. Idempotent: a second run fixes zero.
func (s *Service) RepairDuplicateRefs(ctx context.Context, tenant, project string) (*RepairResult, error) {
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := txGetProject(ctx, tx, tenant, project); err != nil {
			return nil, err
		}
		res, err := tx.Run(ctx, `
MATCH (r:Requirement {tenant: $tenant, project: $project})
RETURN r.hashId AS hashId, r.ref AS ref, coalesce(r.deleted, false) AS deleted
ORDER BY r.createdAt, r.ref, r.hashId
`, map[string]any{"tenant": tenant, "project": project})
		if err != nil {
			return nil, err
		}
		recs, err := collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		rows := make([]refRow, 0, len(recs))
		for _, rec := range recs {
			hashVal, _ := rec.Get("hashId")
			refVal, _ := rec.Get("ref")
			delVal, _ := rec.Get("deleted")
			deleted, _ := delVal.(bool)
			rows = append(rows, refRow{HashID: asString(hashVal), Ref: asString(refVal), Deleted: deleted})
		}

		changes := planRepairs(rows)
		result := &repairTxResult{result: &RepairResult{Fixed: len(changes), Changes: changes}}
		if len(changes) == 0 {
			return result, nil
		}

		now := s.timestamp()
		updates := make([]map[string]any, 0, len(changes))
		for _, ch := range changes {
			updates = append(updates, map[string]any{
				"hashId":    ch.HashID,
				"ref":       ch.NewRef,
				"id":        RequirementID(tenant, project, ch.NewRef),
				"path":      RequirementPath(tenant, project, ch.NewRef),
				"updatedAt": now,
			})
			result.oldPaths = append(result.oldPaths, RequirementPath(tenant, project, ch.OldRef))
		}
		res, err = tx.Run(ctx, `
UNWIND $rows AS row
MATCH (r:Requirement {hashId: row.hashId})
SET r.ref = row.ref, r.id = row.id, r.path = row.path, r.updatedAt = row.updatedAt
RETURN r
`, map[string]any{"rows": updates})
		if err != nil {
			return nil, err
		}
		recs, err = collectRecords(ctx, res)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			result.renumbered = append(result.renumbered, requirementFromProps(nodeProps(rec, "r")))
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	result := out.(*repairTxResult)
	// Post-commit, best-effort side effects.
	for _, path := range result.oldPaths {
		s.mirrorRemove(ctx, path)
	}
	for _, req := range result.renumbered {
		s.mirrorWrite(ctx, req)
	}
	if result.result.Fixed > 0 {
		s.invalidate(ctx, "requirements", tenant, project)
		s.invalidate(ctx, "documents", tenant, project)
		s.log.Info("repaired duplicate refs", "tenant", tenant, "project", project, "fixed", result.result.Fixed)
	}
	return result.result, nil
}

type repairTxResult struct {
	result     *RepairResult
	renumbered []*domain.Requirement
	oldPaths   []string
}
