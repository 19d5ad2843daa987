package main

import (
	"context"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"memcortex/internal/graph"
	"memcortex/internal/intelligence"
	"memcortex/pkg/config"
	"memcortex/pkg/logger"
)

// Seeds a small demonstration knowledge graph so the intelligence endpoints
// have something to chew on in a fresh environment.
func main() {
	userID := flag.String("user-id", "demo-user", "User to seed memories for")
	flag.Parse()

	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting graph seeding...", zap.String("user_id", *userID))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	var store graph.Store
	if cfg.GraphBackend == config.BackendMemory {
		store = graph.NewMemStore()
		log.Warn("Seeding the in-memory backend; data is gone when this process exits")
	} else {
		store, err = graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
		if err != nil {
			log.Fatal("Failed to connect to Neo4j", zap.Error(err))
		}
	}
	defer store.Close(context.Background())

	engine := intelligence.NewEngine(store)
	if err := seed(ctx, engine, *userID); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}

	report, err := engine.AnalyzeMemoryIntelligence(ctx, *userID)
	if err != nil {
		log.Fatal("Failed to analyze seeded graph", zap.Error(err))
	}
	log.Info("Seeding completed",
		zap.Int("memories", report.Summary.TotalMemories),
		zap.Float64("health_score", report.Summary.KnowledgeHealthScore),
	)
}

func seed(ctx context.Context, engine *intelligence.Engine, userID string) error {
	memories := []struct {
		id    string
		text  string
		topic string
	}{
		{"seed-auth-1", "Sessions are stored in signed cookies", "auth"},
		{"seed-auth-2", "Auth switched from cookies to JWT tokens", "auth"},
		{"seed-db-1", "Primary datastore is Postgres 16 with pgvector", "database"},
		{"seed-deploy-1", "Deploys go out through the staging environment first", "deployment"},
	}
	for _, m := range memories {
		meta := map[string]any{"topic": m.topic}
		if err := engine.SyncMemory(ctx, m.id, m.text, userID, meta); err != nil {
			return err
		}
	}

	if _, err := engine.LinkMemories(ctx, "seed-auth-2", "seed-auth-1", graph.RelSupersedes, nil); err != nil {
		return err
	}
	if _, err := engine.LinkMemories(ctx, "seed-auth-2", "seed-db-1", graph.RelRelatesTo, nil); err != nil {
		return err
	}
	if _, err := engine.LinkMemories(ctx, "seed-deploy-1", "seed-db-1", graph.RelRelatesTo, nil); err != nil {
		return err
	}

	for _, c := range []struct{ name, kind string }{
		{"auth-service", "Service"},
		{"postgres", "Database"},
	} {
		if _, err := engine.CreateComponent(ctx, c.name, c.kind, nil); err != nil {
			return err
		}
	}
	if _, err := engine.LinkComponentDependency(ctx, "auth-service", "postgres", ""); err != nil {
		return err
	}
	if _, err := engine.LinkMemoryToComponent(ctx, "seed-auth-2", "auth-service"); err != nil {
		return err
	}
	if _, err := engine.LinkMemoryToComponent(ctx, "seed-db-1", "postgres"); err != nil {
		return err
	}

	if _, err := engine.CreateDecision(ctx, "Use Postgres for primary storage", userID,
		[]string{"ACID transactions", "pgvector for embeddings"},
		[]string{"horizontal scaling is harder"},
		[]string{"MongoDB"}, nil); err != nil {
		return err
	}

	_, err := engine.RecordValidation(ctx, "seed-db-1", "confirmed")
	return err
}
