package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/mikey/llm-email-triage/internal/di"
	"github.com/mikey/llm-email-triage/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	ingress ports.EmailIngress,
	llmClient core.LLMClient,
	dedupCache core.DedupCache,
	events core.EventPublisher,
) error {
	defer logger.Sync()

	// Start the ingress
	if err := ingress.Start(); err != nil {
		logger.Fatal("Failed to start email ingress", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the ingress
	if err := ingress.Stop(); err != nil {
		logger.Error("Failed to stop email ingress", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}

	// Stop the dedup cache if needed
	if stopper, ok := dedupCache.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	// Drain the event publisher
	if stopper, ok := events.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
