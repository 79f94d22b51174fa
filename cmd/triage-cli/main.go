package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	smtpingress "github.com/mikey/llm-email-triage/internal/adapters/smtp"
	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/mikey/llm-email-triage/internal/di"
	"github.com/mikey/llm-email-triage/internal/triage"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if flags.LearnTone {
		err = container.Invoke(func(logger *zap.Logger, learner *triage.ToneLearner) error {
			defer logger.Sync()
			return learnTone(logger, learner, flags)
		})
	} else {
		err = container.Invoke(func(logger *zap.Logger, service *triage.Service) error {
			defer logger.Sync()
			return triageOne(logger, service, flags)
		})
	}
	if err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// triageOne reads a single raw email from the input file or stdin, runs the
// full triage pipeline on it and prints the result as JSON.
func triageOne(logger *zap.Logger, service *triage.Service, flags *di.CLIFlags) error {
	email, err := readEmail(flags.InputFile)
	if err != nil {
		return err
	}
	logger.Info("Triaging email",
		zap.String("email_id", email.ID),
		zap.String("subject", email.Metadata.Subject))

	result, err := service.Triage(context.Background(), email)
	if err != nil {
		return fmt.Errorf("triage failed: %w", err)
	}

	return printJSON(result)
}

// learnTone treats every positional argument as a raw email file written by
// the user, learns a tone profile from the batch and prints it. With the
// vector index enabled the profile is also persisted.
func learnTone(logger *zap.Logger, learner *triage.ToneLearner, flags *di.CLIFlags) error {
	if flags.UserEmail == "" {
		return fmt.Errorf("-learn-tone requires -user")
	}
	files := flag.Args()
	if len(files) == 0 {
		return fmt.Errorf("-learn-tone requires at least one email file argument")
	}

	emails := make([]core.EmailData, 0, len(files))
	for _, path := range files {
		email, err := readEmail(path)
		if err != nil {
			logger.Warn("Skipping unreadable email file", zap.String("file", path), zap.Error(err))
			continue
		}
		emails = append(emails, *email)
	}

	profile, err := learner.LearnProfile(context.Background(), flags.UserEmail, emails)
	if err != nil {
		return fmt.Errorf("tone learning failed: %w", err)
	}

	if err := learner.StoreProfile(context.Background(), profile); err != nil {
		logger.Warn("Failed to persist tone profile", zap.Error(err))
	}

	return printJSON(profile)
}

// readEmail parses one raw RFC 5322 message from a file, or stdin if path is
// empty.
func readEmail(path string) (*core.EmailData, error) {
	if path == "" {
		return smtpingress.ParseEmail(bufio.NewReader(os.Stdin), "", nil)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %w", path, err)
	}
	defer file.Close()
	return smtpingress.ParseEmail(bufio.NewReader(file), "", nil)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
