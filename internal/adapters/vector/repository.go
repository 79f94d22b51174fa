package vector

import (
	"context"
	"fmt"

	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository implements core.VectorRepository on Postgres with the pgvector
// extension. Similarity is cosine: score = 1 - (embedding <=> query).
type Repository struct {
	db       *gorm.DB
	embedder core.Embedder
	logger   *zap.Logger
}

// NewRepository creates a vector repository and ensures the backing table
// exists.
func NewRepository(db *gorm.DB, embedder core.Embedder, logger *zap.Logger) (*Repository, error) {
	if err := db.AutoMigrate(&TriageDocument{}); err != nil {
		return nil, fmt.Errorf("failed to migrate vector table: %w", err)
	}
	return &Repository{
		db:       db,
		embedder: embedder,
		logger:   logger,
	}, nil
}

// Search embeds the query text and returns scored documents from the given
// namespace, filtered by minimum score and optional metadata equality.
func (r *Repository) Search(ctx context.Context, query core.SearchQuery) ([]core.RetrievedDoc, error) {
	embedding, err := r.embedder.Embed(ctx, query.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	topK := query.TopK
	if topK <= 0 {
		topK = 5
	}
	queryVector := pgvector.NewVector(embedding)

	tx := r.db.WithContext(ctx).
		Table("triage_documents").
		Select("triage_documents.*, 1 - (embedding <=> ?) as score", queryVector).
		Where("namespace = ?", query.Namespace)

	for key, value := range query.Filter {
		tx = tx.Where("metadata ->> ? = ?", key, value)
	}
	if query.MinScore > 0 {
		tx = tx.Where("1 - (embedding <=> ?) >= ?", queryVector, query.MinScore)
	}

	type row struct {
		TriageDocument
		Score float64
	}
	var rows []row
	if err := tx.Order("score DESC").Limit(topK).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	docs := make([]core.RetrievedDoc, 0, len(rows))
	for _, res := range rows {
		docs = append(docs, core.RetrievedDoc{
			Content:   res.Content,
			Metadata:  stringMetadata(res.Metadata),
			Score:     res.Score,
			Namespace: query.Namespace,
			Purpose:   query.Purpose,
		})
	}

	r.logger.Debug("Vector search",
		zap.String("namespace", query.Namespace),
		zap.Int("hits", len(docs)))
	return docs, nil
}

// Upsert embeds and stores documents under a namespace, replacing documents
// with the same id.
func (r *Repository) Upsert(ctx context.Context, namespace string, docs []core.VectorDocument) error {
	for _, doc := range docs {
		embedding, err := r.embedder.Embed(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("failed to embed document %s: %w", doc.ID, err)
		}

		metadata := make(datatypes.JSONMap, len(doc.Metadata))
		for k, v := range doc.Metadata {
			metadata[k] = v
		}

		record := TriageDocument{
			ID:        doc.ID,
			Namespace: namespace,
			Content:   doc.Content,
			Metadata:  metadata,
			Embedding: pgvector.NewVector(embedding),
		}

		err = r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).
			Create(&record).Error
		if err != nil {
			return fmt.Errorf("failed to upsert document %s: %w", doc.ID, err)
		}
	}
	return nil
}

func stringMetadata(m datatypes.JSONMap) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprintf("%v", v)
		}
	}
	return out
}
