package factory

import (
	"fmt"

	"github.com/mikey/llm-email-triage/internal/adapters/vector"
	"github.com/mikey/llm-email-triage/internal/config"
	"github.com/mikey/llm-email-triage/internal/core"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// VectorFactory creates the vector repository backed by Postgres/pgvector
type VectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewVectorFactory creates a new vector factory
func NewVectorFactory(cfg *config.Config, logger *zap.Logger) *VectorFactory {
	return &VectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateVectorRepository opens the Postgres connection and builds the
// repository. The embedder is injected so the chat provider and embedding
// provider can be configured independently.
func (f *VectorFactory) CreateVectorRepository(embedder core.Embedder) (core.VectorRepository, error) {
	vectorCfg := f.cfg.GetVector()

	db, err := gorm.Open(postgres.Open(vectorCfg.PostgresDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	// pgvector must be available before the table is created
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("failed to enable pgvector extension: %w", err)
	}

	repo, err := vector.NewRepository(db, embedder, f.logger)
	if err != nil {
		return nil, err
	}
	return repo, nil
}
