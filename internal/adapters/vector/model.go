package vector

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// TriageDocument is a stored, embedded document in the vector index.
// Namespace partitions the index by purpose (email patterns, reply patterns,
// tone profiles and so on).
type TriageDocument struct {
	ID        string            `gorm:"type:text;primaryKey"`
	Namespace string            `gorm:"type:text;not null;index"`
	Content   string            `gorm:"type:text"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	Embedding pgvector.Vector   `gorm:"type:vector(1536)"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime"`
}

// TableName returns the table backing the vector index
func (TriageDocument) TableName() string {
	return "triage_documents"
}
