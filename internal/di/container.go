package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/config"
	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/mikey/llm-email-triage/internal/factory"
	"github.com/mikey/llm-email-triage/internal/logging"
	"github.com/mikey/llm-email-triage/internal/ports"
	"github.com/mikey/llm-email-triage/internal/triage"
	"github.com/mikey/llm-email-triage/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideComponents(container); err != nil {
		return nil, err
	}

	return container, nil
}

// provideComponents registers everything downstream of config and logger.
// Both the daemon and the CLI container share this wiring; the two differ
// only in how configuration and logging are constructed.
func provideComponents(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewVectorFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewEventsFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewSessionFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewIngressFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return err
	}

	// Register embedder and vector repository
	if err := container.Provide(func(f *factory.LLMFactory, cfg *config.Config) (core.Embedder, error) {
		if !cfg.GetBool("vector.enabled") {
			return nil, nil
		}
		return f.CreateEmbedder()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.VectorFactory, cfg *config.Config, embedder core.Embedder) (core.VectorRepository, error) {
		if !cfg.GetBool("vector.enabled") {
			return nil, nil
		}
		return f.CreateVectorRepository(embedder)
	}); err != nil {
		return err
	}

	// Register dedup cache, TTL and enabled flag
	if err := container.Provide(func(f *factory.CacheFactory) (core.DedupCache, error) {
		return f.CreateDedupCache()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (time.Duration, error) {
		return f.GetDedupTTL()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.CacheFactory) bool {
		return f.IsDedupEnabled()
	}); err != nil {
		return err
	}

	// Register event publisher and session store
	if err := container.Provide(func(f *factory.EventsFactory) (core.EventPublisher, error) {
		return f.CreateEventPublisher()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.SessionFactory) (core.SessionStore, error) {
		return f.CreateSessionStore()
	}); err != nil {
		return err
	}

	// Register pipeline components
	if err := container.Provide(triage.NewPrefilter); err != nil {
		return err
	}
	if err := container.Provide(triage.NewKeywordClassifier); err != nil {
		return err
	}
	if err := container.Provide(func(vector core.VectorRepository, cfg *config.Config, logger *zap.Logger) *triage.ContextEnricher {
		triageCfg := cfg.GetTriage()
		vectorCfg := cfg.GetVector()
		return triage.NewContextEnricher(vector, logger, triageCfg.ContextCap, vectorCfg.DefaultTopK, vectorCfg.DefaultMinScore)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(llm core.LLMClient, logger *zap.Logger, tp *utils.TextProcessor, f *factory.LLMFactory) *triage.Classifier {
		if llm == nil {
			return nil
		}
		return triage.NewClassifier(llm, logger, tp, f.MaxBodySize())
	}); err != nil {
		return err
	}
	if err := container.Provide(func(llm core.LLMClient, vector core.VectorRepository, cfg *config.Config, logger *zap.Logger, tp *utils.TextProcessor, f *factory.LLMFactory) *triage.Summarizer {
		if llm == nil {
			return nil
		}
		return triage.NewSummarizer(llm, vector, logger, tp, f.MaxBodySize(), cfg.GetTriage().SummaryMaxChars)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(llm core.LLMClient, vector core.VectorRepository, cfg *config.Config, logger *zap.Logger, tp *utils.TextProcessor, f *factory.LLMFactory) *triage.ReplyDrafter {
		return triage.NewReplyDrafter(llm, vector, logger, tp, f.MaxBodySize(), cfg.GetTriage().ToneAdaptationStrength)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(vector core.VectorRepository, logger *zap.Logger) *triage.PatternSink {
		return triage.NewPatternSink(vector, logger)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(llm core.LLMClient, vector core.VectorRepository, cfg *config.Config, logger *zap.Logger, tp *utils.TextProcessor, f *factory.LLMFactory) *triage.ToneLearner {
		return triage.NewToneLearner(llm, vector, logger, tp, f.MaxBodySize(), cfg.GetTriage().ToneMinSamples)
	}); err != nil {
		return err
	}

	// Register engine and service
	if err := container.Provide(triage.NewEngine); err != nil {
		return err
	}
	if err := container.Provide(func(
		prefilter *triage.Prefilter,
		cfg *config.Config,
		dedup core.DedupCache,
		dedupEnabled bool,
		dedupTTL time.Duration,
		engine *triage.Engine,
		logger *zap.Logger,
	) *triage.Service {
		return triage.NewService(prefilter, cfg.GetTriage().PrefilterEnabled, dedup, dedupEnabled, dedupTTL, engine, logger)
	}); err != nil {
		return err
	}

	// Register email ingress
	if err := container.Provide(func(f *factory.IngressFactory) (ports.EmailIngress, error) {
		return f.CreateEmailIngress()
	}); err != nil {
		return err
	}

	return nil
}
