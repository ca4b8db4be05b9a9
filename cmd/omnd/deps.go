package main

import (
	"context"
	"fmt"
	"os"

	"github.com/omnsight/omndapi/internal/application/handlers"
	"github.com/omnsight/omndapi/internal/domain/entities"
	"github.com/omnsight/omndapi/internal/domain/ports"
	"github.com/omnsight/omndapi/internal/domain/services"
	"github.com/omnsight/omndapi/internal/infrastructure/config"
	embedder "github.com/omnsight/omndapi/internal/infrastructure/embedder/openai"
	"github.com/omnsight/omndapi/internal/infrastructure/relationaldb/sqlite"
	"github.com/omnsight/omndapi/internal/infrastructure/vectordb/qdrant"
)

// Deps holds high-level dependencies for commands. Only handlers are
// exposed; services and repositories stay internal.
type Deps struct {
	Config        *config.Config
	Entities      *handlers.EntityHandler
	Relationships *handlers.RelationshipHandler
	Traversal     *handlers.TraversalHandler
	Snapshots     *handlers.SnapshotHandler
}

// actor builds the acting identity from the global flags.
func actor() entities.Identity {
	return entities.Identity{
		Subject: globalSubject,
		Roles:   globalRoles,
	}
}

// withDeps loads config, builds the dependency graph, calls fn, and cleans
// up afterwards.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	graphDB, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer graphDB.Close()

	if err := graphDB.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	vectorDB, err := qdrant.NewRepository(cfg.Qdrant)
	if err != nil {
		return fmt.Errorf("creating qdrant repository: %w", err)
	}
	defer vectorDB.Close()

	if err := vectorDB.EnsureCollection(ctx, embedder.VectorSize); err != nil {
		return fmt.Errorf("ensuring qdrant collection: %w", err)
	}

	emb, err := buildEmbedder(cfg.Embedder)
	if err != nil {
		return err
	}

	entitySvc := services.NewEntityService(graphDB, vectorDB, emb)
	relationshipSvc := services.NewRelationshipService(graphDB)
	traversalSvc := services.NewTraversalService(graphDB)
	snapshotSvc := services.NewSnapshotService(graphDB, entitySvc)

	deps := &Deps{
		Config:        cfg,
		Entities:      handlers.NewEntityHandler(entitySvc),
		Relationships: handlers.NewRelationshipHandler(relationshipSvc),
		Traversal:     handlers.NewTraversalHandler(traversalSvc),
		Snapshots:     handlers.NewSnapshotHandler(snapshotSvc),
	}

	return fn(deps)
}

// buildEmbedder returns the OpenAI embedder when a key is configured and the
// deterministic local fallback otherwise.
func buildEmbedder(cfg config.EmbedderConfig) (ports.Embedder, error) {
	if cfg.APIKey == "" {
		return embedder.MockEmbedder{}, nil
	}
	emb, err := embedder.NewEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return emb, nil
}
