// Package cli implements the studyai command line: offline generation of
// study artifacts from a local material file.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/local/studyai/api/codec"
	"github.com/local/studyai/api/config"
	"github.com/local/studyai/api/genai"
	"github.com/local/studyai/api/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// newGenerator builds the generation client from the environment. Tests
// replace it.
var newGenerator = func() (genai.Generator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return genai.NewClient(genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.GeminiTimeout,
	})
}

// NewRootCmd returns the top-level command with every subcommand attached
func NewRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:          "studyai",
		Short:        "Generate study material from lecture notes and documents",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339})
			if level, err := zerolog.ParseLevel(logLevel); err == nil {
				zerolog.SetGlobalLevel(level)
			}
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(newGenerateCmd(), newPackCmd(), newMindMapPNGCmd())
	return root
}

func generators() (*services.Generators, error) {
	client, err := newGenerator()
	if err != nil {
		return nil, err
	}
	return services.NewGenerators(client, codec.NewDecoder()), nil
}

func loadMaterial(path string) (string, error) {
	text, err := services.LoadMaterial(path)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("material %s is empty", path)
	}
	return text, nil
}

// writeOutput writes to path, or to the command's stdout when path is empty
func writeOutput(cmd *cobra.Command, path string, body []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", path, len(body))
	return nil
}
