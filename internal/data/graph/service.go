package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Hollando78/airgen-sub002/internal/domain"
	"github.com/Hollando78/airgen-sub002/internal/platform/logger"
	"github.com/Hollando78/airgen-sub002/internal/platform/neo4jdb"
)

// Invalidator evicts cached reads after a committed write. Called
// outside the transaction and best-effort only.
type Invalidator interface {
	Invalidate(ctx context.Context, scope string, keys ...string)
}

// Mirror keeps the markdown representation of requirements in sync.
// Invoked after commit; failures are logged, never rolled back.
type Mirror interface {
	Write(ctx context.Context, req *domain.Requirement) error
	Remove(ctx context.Context, path string) error
}

type Deps struct {
	Client *neo4jdb.Client
	Log    *logger.Logger
	Cache  Invalidator
	Mirror Mirror
	Now    func() time.Time
	NewID  func() string
}

// Service is the graph data-service layer. Every public method runs
// inside one read or write transaction obtained from the session
// gateway, and sessions are released on every exit path.
type Service struct {
	client *neo4jdb.Client
	log    *logger.Logger
	cache  Invalidator
	mirror Mirror
	now    func() time.Time
	newID  func() string
}

func NewService(d Deps) *Service {
	s := &Service{
		client: d.Client,
		log:    d.Log.With("service", "GraphService"),
		cache:  d.Cache,
		mirror: d.Mirror,
		now:    d.Now,
		newID:  d.NewID,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.NewString() }
	}
	return s
}

func (s *Service) write(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error) {
	session := s.client.WriteSession(ctx)
	defer session.Close(ctx)
	return session.ExecuteWrite(ctx, work)
}

func (s *Service) read(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error) {
	session := s.client.ReadSession(ctx)
	defer session.Close(ctx)
	return session.ExecuteRead(ctx, work)
}

func (s *Service) invalidate(ctx context.Context, scope string, keys ...string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, scope, keys...)
}

func (s *Service) mirrorWrite(ctx context.Context, req *domain.Requirement) {
	if s.mirror == nil || req == nil {
		return
	}
	if err := s.mirror.Write(ctx, req); err != nil {
		s.log.Warn("markdown mirror write failed (continuing)", "ref", req.Ref, "error", err)
	}
}

func (s *Service) mirrorRemove(ctx context.Context, path string) {
	if s.mirror == nil || path == "" {
		return
	}
	if err := s.mirror.Remove(ctx, path); err != nil {
		s.log.Warn("markdown mirror remove failed (continuing)", "path", path, "error", err)
	}
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// EnsureSchema creates uniqueness constraints. Best-effort; restricted
// users may not be allowed to run schema statements.
func (s *Service) EnsureSchema(ctx context.Context) {
	stmts := []string{
		`CREATE CONSTRAINT tenant_slug_unique IF NOT EXISTS FOR (t:Tenant) REQUIRE t.slug IS UNIQUE`,
		`CREATE CONSTRAINT requirement_id_unique IF NOT EXISTS FOR (r:Requirement) REQUIRE r.id IS UNIQUE`,
		`CREATE CONSTRAINT candidate_id_unique IF NOT EXISTS FOR (c:RequirementCandidate) REQUIRE c.id IS UNIQUE`,
		`CREATE CONSTRAINT baseline_id_unique IF NOT EXISTS FOR (b:Baseline) REQUIRE b.id IS UNIQUE`,
		`CREATE CONSTRAINT trace_link_id_unique IF NOT EXISTS FOR (l:TraceLink) REQUIRE l.id IS UNIQUE`,
		`CREATE CONSTRAINT section_id_unique IF NOT EXISTS FOR (sec:DocumentSection) REQUIRE sec.id IS UNIQUE`,
		`CREATE CONSTRAINT arch_block_id_unique IF NOT EXISTS FOR (b:ArchitectureBlock) REQUIRE b.id IS UNIQUE`,
		`CREATE CONSTRAINT arch_diagram_id_unique IF NOT EXISTS FOR (d:ArchitectureDiagram) REQUIRE d.id IS UNIQUE`,
		`CREATE CONSTRAINT arch_connector_id_unique IF NOT EXISTS FOR (c:ArchitectureConnector) REQUIRE c.id IS UNIQUE`,
		`CREATE INDEX requirement_project_idx IF NOT EXISTS FOR (r:Requirement) ON (r.tenant, r.project)`,
		`CREATE INDEX requirement_ref_idx IF NOT EXISTS FOR (r:Requirement) ON (r.tenant, r.project, r.ref)`,
	}
	session := s.client.WriteSession(ctx)
	defer session.Close(ctx)
	for _, stmt := range stmts {
		if res, err := session.Run(ctx, stmt, nil); err != nil {
			s.log.Warn("neo4j schema init failed (continuing)", "error", err)
		} else {
			_, _ = res.Consume(ctx)
		}
	}
}
