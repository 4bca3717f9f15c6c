package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/contribmix/internal/aggregator"
	"github.com/gauthierbraillon/contribmix/internal/config"
	"github.com/gauthierbraillon/contribmix/internal/contrib"
	"github.com/gauthierbraillon/contribmix/internal/display"
	"github.com/gauthierbraillon/contribmix/internal/logger"
	"github.com/gauthierbraillon/contribmix/pkg/tokenstore"
)

// newCalendarCmd creates the calendar subcommand.
func newCalendarCmd(load configLoader) *cobra.Command {
	var from, to string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "calendar <github-username>",
		Short: "Show a GitHub contribution calendar",
		Long:  "Fetch the GitHub contribution calendar of a user over a window of at most one year.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			client := newGitHubClient(cfg)
			if !client.HasToken() {
				return errors.New("GitHub token required: set GITHUB_TOKEN or run 'contribmix auth github --token <token>'")
			}

			window, err := contrib.ParseWindow(from, to, time.Now())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.AdapterTimeout)
			defer cancel()

			calendar, err := client.FetchCalendar(ctx, args[0], window)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), calendar)
			}
			title := fmt.Sprintf("GitHub contributions for %s", args[0])
			fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatSeries(title, window, calendar.Days()))
			return nil
		},
	}

	addWindowFlags(cmd, &from, &to)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw calendar as JSON")

	return cmd
}

// newCommitsCmd creates the commits subcommand.
func newCommitsCmd(load configLoader) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "commits <github-username>",
		Short: "List a user's most recent public commits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.AdapterTimeout)
			defer cancel()

			commits, err := newGitHubClient(cfg).FetchRecentCommits(ctx, args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), commits)
			}
			fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatCommits(commits))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print commits as JSON")

	return cmd
}

// newDSACmd creates the dsa subcommand.
func newDSACmd(load configLoader) *cobra.Command {
	var leetcodeUser, gfgUser, code360User string
	var from, to string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "dsa",
		Short: "Show combined DSA practice activity",
		Long: "Merge daily problem-solving counts from LeetCode, GeeksforGeeks and Code360\n" +
			"into one series. A failing platform is reported and skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if leetcodeUser == "" && gfgUser == "" && code360User == "" {
				return errors.New("at least one of --leetcode, --gfg or --code360 is required")
			}

			cfg, err := load()
			if err != nil {
				return err
			}

			window, err := contrib.ParseWindow(from, to, time.Now())
			if err != nil {
				return err
			}

			var requests []aggregator.Request
			if leetcodeUser != "" {
				requests = append(requests, aggregator.Request{Source: newLeetCodeClient(cfg), Username: leetcodeUser})
			}
			if gfgUser != "" {
				requests = append(requests, aggregator.Request{Source: contrib.NewUnimplemented(contrib.SourceGFG), Username: gfgUser})
			}
			if code360User != "" {
				requests = append(requests, aggregator.Request{Source: contrib.NewUnimplemented(contrib.SourceCode360), Username: code360User})
			}

			agg := aggregator.New(
				aggregator.WithTimeout(cfg.AdapterTimeout),
				aggregator.WithLogger(logger.New(cmd.ErrOrStderr(), "error", cfg.LogFormat)),
			)
			results := agg.Collect(cmd.Context(), requests, window)
			for _, r := range results {
				if !r.OK() {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Source, r.Err)
				}
			}
			days := aggregator.Merge(results).Days()
			if from != "" || to != "" {
				days = window.Filter(days)
			} else {
				window = contrib.Covering(days, window)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), days)
			}
			fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatSeries("DSA practice", window, days))
			return nil
		},
	}

	cmd.Flags().StringVar(&leetcodeUser, "leetcode", "", "LeetCode username")
	cmd.Flags().StringVar(&gfgUser, "gfg", "", "GeeksforGeeks username")
	cmd.Flags().StringVar(&code360User, "code360", "", "Code360 username")
	addWindowFlags(cmd, &from, &to)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the series as JSON")

	return cmd
}

// newAuthCmd creates the auth subcommand.
func newAuthCmd(load configLoader) *cobra.Command {
	var token string
	var logout bool

	cmd := &cobra.Command{
		Use:   "auth <provider>",
		Short: "Store an API token for a provider (github)",
		Long: "Save a GitHub personal access token in the config directory so serve and\n" +
			"calendar work without GITHUB_TOKEN exported. The token needs no scopes\n" +
			"to read public contribution data.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]
			if provider != contrib.SourceGitHub {
				return fmt.Errorf("invalid provider %q: only 'github' is supported", provider)
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			store := tokenstore.New(cfg.ConfigDir)

			if logout {
				if err := store.Delete(provider); err != nil {
					return fmt.Errorf("failed to remove token: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s token from %s\n", provider, store.Dir())
				return nil
			}

			if token == "" {
				return errors.New("missing token: pass --token <personal access token>")
			}
			if err := store.Save(provider, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s token.\n", provider)
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved to: %s\n", store.Dir())
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Personal access token to store")
	cmd.Flags().BoolVar(&logout, "logout", false, "Remove the stored token")

	return cmd
}

// newConfigCmd creates the config subcommand.
func newConfigCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long:  "Print where contribmix reads its settings from and which features are enabled.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config directory: %s\n", cfg.ConfigDir)
			fmt.Fprintf(out, "Listen address:   %s\n", cfg.Addr())
			fmt.Fprintf(out, "GitHub API:       %s\n", cfg.GitHubAPIURL)
			fmt.Fprintf(out, "GitHub token:     %s\n", cfg.GitHubTokenSource)
			fmt.Fprintf(out, "LeetCode API:     %s\n", cfg.LeetCodeAPIURL)
			fmt.Fprintf(out, "Adapter timeout:  %s\n", cfg.AdapterTimeout)
			fmt.Fprintf(out, "Contact relay:    %s\n", enabled(cfg))
			return nil
		},
	}

	return cmd
}

func enabled(cfg *config.Config) string {
	if cfg.MailConfigured() {
		return "enabled (" + cfg.SMTPHost + ":" + cfg.SMTPPort + ")"
	}
	return "disabled"
}

func addWindowFlags(cmd *cobra.Command, from, to *string) {
	cmd.Flags().StringVar(from, "from", "", "Window start (YYYY-MM-DD, default one year before --to)")
	cmd.Flags().StringVar(to, "to", "", "Window end (YYYY-MM-DD, default today)")
}
