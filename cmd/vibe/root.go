// Package vibe wires the CLI surface of vibe-cli: analyze, save,
// snapshot, converge, watch and serve.
package vibe

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/usevibe/vibe-cli/internal/config"
	"github.com/usevibe/vibe-cli/internal/inspect"
)

// Execute runs the vibe-cli root command with all subcommands
// registered. Git availability is checked once, up front.
func Execute(version string) error {
	if err := inspect.CheckGit(); err != nil {
		return err
	}

	rootCmd := &cobra.Command{
		Use:           "vibe-cli",
		Short:         "Branch decisions and session snapshots for git repositories",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("repo", "", "path to the git repository (default: current directory)")
	rootCmd.PersistentFlags().String("config", "", "path to a configuration document")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newSaveCmd(),
		newSnapshotCmd(),
		newConvergeCmd(),
		newWatchCmd(),
		newServeCmd(),
	)

	return rootCmd.Execute()
}

// env bundles what every subcommand needs: the resolved configuration,
// an inspector rooted at the repository, and a logger.
type env struct {
	cfg  *config.Config
	insp *inspect.Inspector
	log  *zap.Logger
}

func setup(cmd *cobra.Command) (context.Context, *env, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	log := newLogger(verbose)

	repo, _ := cmd.Flags().GetString("repo")
	if repo == "" {
		repo = "."
	}

	insp, err := inspect.Open(ctx, repo, log)
	if err != nil {
		return nil, nil, err
	}

	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		// An in-repo .vibe.json is picked up automatically.
		candidate := filepath.Join(insp.Root(), ".vibe.json")
		if _, err := os.Stat(candidate); err == nil {
			cfgPath = candidate
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	return ctx, &env{cfg: cfg, insp: insp, log: log}, nil
}

func newLogger(verbose bool) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}
