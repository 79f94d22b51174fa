package triage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mikey/llm-email-triage/internal/core"
	"go.uber.org/zap"
)

// ContextEnricher runs the namespace-scoped similarity queries that feed
// retrieved context into the pipeline. Individual query failures contribute
// nothing; the stage itself never fails a run.
type ContextEnricher struct {
	vector     core.VectorRepository
	logger     *zap.Logger
	contextCap int
	topK       int
	minScore   float64
}

// NewContextEnricher creates a new enrichment stage
func NewContextEnricher(vector core.VectorRepository, logger *zap.Logger, contextCap, topK int, minScore float64) *ContextEnricher {
	if contextCap <= 0 {
		contextCap = core.MaxRetrievedContext
	}
	return &ContextEnricher{
		vector:     vector,
		logger:     logger,
		contextCap: contextCap,
		topK:       topK,
		minScore:   minScore,
	}
}

// EnrichResult carries the merged retrieval output of one enrichment pass
type EnrichResult struct {
	Docs        []core.RetrievedDoc
	ToneProfile *core.ToneProfile
}

// Enrich issues the standard queries concurrently and merges their results,
// truncated to the configured cap. A tone profile found in the tone
// namespace is reconstructed from its stored metadata.
func (e *ContextEnricher) Enrich(ctx context.Context, email *core.EmailData) EnrichResult {
	if e.vector == nil {
		return EnrichResult{}
	}

	queries := e.buildQueries(email)

	var mu sync.Mutex
	var wg sync.WaitGroup
	merged := make([]core.RetrievedDoc, 0, e.contextCap)

	for _, q := range queries {
		wg.Add(1)
		go func(q core.SearchQuery) {
			defer wg.Done()
			docs, err := e.vector.Search(ctx, q)
			if err != nil {
				e.logger.Warn("Context query failed, continuing without its results",
					zap.String("namespace", q.Namespace),
					zap.String("email_id", email.ID),
					zap.Error(err))
				return
			}
			mu.Lock()
			merged = append(merged, docs...)
			mu.Unlock()
		}(q)
	}
	wg.Wait()

	result := EnrichResult{ToneProfile: extractToneProfile(merged)}
	if len(merged) > e.contextCap {
		merged = merged[:e.contextCap]
	}
	result.Docs = merged
	return result
}

func (e *ContextEnricher) buildQueries(email *core.EmailData) []core.SearchQuery {
	text := email.Metadata.Subject + "\n" + email.Body

	queries := []core.SearchQuery{
		{Query: text, Namespace: NamespaceEmailPatterns, Purpose: "historical", TopK: e.topK, MinScore: e.minScore},
		{Query: text, Namespace: NamespaceClassificationExamples, Purpose: "classification", TopK: e.topK, MinScore: e.minScore},
		{Query: text, Namespace: NamespaceEmailSummaries, Purpose: "summarization", TopK: e.topK, MinScore: e.minScore},
		{Query: text, Namespace: NamespaceReplyPatterns, Purpose: "reply", TopK: e.topK, MinScore: e.minScore},
	}

	if userID := email.Metadata.UserID; userID != "" {
		queries = append(queries, core.SearchQuery{
			Query:     text,
			Namespace: NamespaceToneProfiles,
			Purpose:   "tone",
			TopK:      1,
			// Profiles are matched by user, not similarity
			MinScore: 0,
			Filter:   map[string]string{"user_email": userID},
		})
	}
	return queries
}

// extractToneProfile reconstructs a profile from the first tone-namespace
// hit carrying serialized profile metadata.
func extractToneProfile(docs []core.RetrievedDoc) *core.ToneProfile {
	for _, doc := range docs {
		if doc.Namespace != NamespaceToneProfiles {
			continue
		}
		raw, ok := doc.Metadata["profile"]
		if !ok {
			continue
		}
		var profile core.ToneProfile
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			continue
		}
		return &profile
	}
	return nil
}
