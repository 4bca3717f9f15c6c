// Package main provides the contribmix CLI entry point.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/contribmix/internal/config"
	"github.com/gauthierbraillon/contribmix/internal/github"
	"github.com/gauthierbraillon/contribmix/internal/leetcode"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveVersion prefers the ldflags version and falls back to the module
// version recorded by `go install module@version`.
func resolveVersion(v string, info *debug.BuildInfo) string {
	if v != "dev" {
		return v
	}
	if info == nil || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}

func buildInfo() *debug.BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return info
}

// configLoader loads configuration lazily so --help works without a valid
// environment.
type configLoader func() (*config.Config, error)

// newRootCmd creates the root command for contribmix CLI.
func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "contribmix",
		Short: "Serve and inspect coding activity for a developer portfolio",
		Long: "Contribmix proxies GitHub and LeetCode activity for a portfolio front end,\n" +
			"merges DSA practice across platforms into one daily series and relays\n" +
			"contact form messages by email.",
		Version: resolveVersion(version, buildInfo()),
	}

	rootCmd.SetVersionTemplate("contribmix version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML config file")

	load := func() (*config.Config, error) {
		return config.Load(cfgFile)
	}

	rootCmd.AddCommand(newServeCmd(load))
	rootCmd.AddCommand(newCalendarCmd(load))
	rootCmd.AddCommand(newCommitsCmd(load))
	rootCmd.AddCommand(newDSACmd(load))
	rootCmd.AddCommand(newAuthCmd(load))
	rootCmd.AddCommand(newConfigCmd(load))

	return rootCmd
}

func newGitHubClient(cfg *config.Config) *github.Client {
	return github.NewClient(cfg.GitHubToken, github.WithBaseURL(cfg.GitHubAPIURL))
}

func newLeetCodeClient(cfg *config.Config) *leetcode.Client {
	return leetcode.NewClient(leetcode.WithBaseURL(cfg.LeetCodeAPIURL))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
