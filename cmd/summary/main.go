// Package main provides the CLI entrypoint for the survey summary tools.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"surveyrelay/internal/config"
	"surveyrelay/internal/logging"
	"surveyrelay/internal/service"
	"surveyrelay/internal/summary"
)

var (
	configPath string
	logLevel   string

	buildInput  string
	buildOutput string

	exportOwner  string
	exportRepo   string
	exportOutput string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "summary",
		Short:         "Aggregate collected survey answers",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runBuildCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultSummaryConfigPath, "path to the TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")
	addBuildFlags(rootCmd)

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&buildInput, "input", summary.DefaultInput, "answers CSV to read")
	cmd.Flags().StringVar(&buildOutput, "output", summary.DefaultOutput, "summary JSON to write")
}

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the summary JSON from the answers CSV",
		Args:  cobra.NoArgs,
		RunE:  runBuildCmd,
	}
	addBuildFlags(cmd)
	return cmd
}

func runBuildCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadSummaryConfig(configPath)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "input", &buildInput, fileCfg.Summary.Input)
	applyStringConfig(cmd, "output", &buildOutput, fileCfg.Summary.Output)

	logger := logging.New(logLevel)
	wrote, err := summary.NewBuilder(buildInput, buildOutput, logger).Run()
	if err != nil {
		return err
	}
	if wrote {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", buildOutput)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "No answers in %s, nothing written\n", buildInput)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Rebuild the answers CSV from survey issues",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOwner, "owner", "", "repository owner (default: GITHUB_OWNER)")
	cmd.Flags().StringVar(&exportRepo, "repo", "", "repository name (default: GITHUB_REPO)")
	cmd.Flags().StringVar(&exportOutput, "output", summary.DefaultInput, "answers CSV to write")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadSummaryConfig(configPath)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "owner", &exportOwner, fileCfg.Export.Owner)
	applyStringConfig(cmd, "repo", &exportRepo, fileCfg.Export.Repo)
	applyStringConfig(cmd, "output", &exportOutput, fileCfg.Export.Output)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if exportOwner != "" {
		cfg.GitHub.OwnerDefault = exportOwner
	}
	if exportRepo != "" {
		cfg.GitHub.RepoDefault = exportRepo
	}

	logger := logging.New(logLevel)
	if !cfg.GitHub.HasToken() {
		logger.Warn("GITHUB_TOKEN not set, only public issues are visible")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := service.NewGitHubClient(cfg.GitHub, logger)
	exporter := service.NewExportService(client, cfg.GitHub.Label, logger)
	n, err := exporter.Export(ctx, exportOutput)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d answers to %s\n", n, exportOutput)
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
