package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"releaseradar/internal/config"
	"releaseradar/internal/mcpserver"
	"releaseradar/internal/models"
	"releaseradar/internal/services"
	"releaseradar/internal/utils"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "releaseradar",
		Version:      version,
		Short:        "Turn approved code changes into documentation pull requests and weekly release notes",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", utils.EnvOr("RELEASE_RADAR_CONFIG", ""), "path to the YAML config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newDocsUpdateCmd(&configPath),
		newReleaseNotesCmd(&configPath),
		newIngestCmd(&configPath),
		newMCPCmd(&configPath),
		newSecretsCmd(),
	)
	return root
}

// loadConfig reads .env, the config file and the environment, then fills
// blank secrets from the keyring.
func loadConfig(path string) (config.Config, error) {
	if err := utils.LoadEnv(); err != nil {
		log.Printf("[config] could not load .env: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	ring, err := services.OpenKeyringService()
	if err != nil {
		log.Printf("[config] keyring unavailable, using file and environment secrets only: %v", err)
		return cfg, nil
	}
	if err := cfg.FillSecrets(ring); err != nil {
		log.Printf("[config] some secrets are not in the keyring: %v", err)
	}
	return cfg, nil
}

// withApp loads config, starts the app and runs fn with a context cancelled
// on SIGINT or SIGTERM.
func withApp(configPath string, fn func(ctx context.Context, app *App) error) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(cfg)
	defer app.shutdown()
	if err := app.startup(ctx); err != nil {
		return err
	}
	return fn(ctx, app)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and webhook receivers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*configPath, func(ctx context.Context, app *App) error {
				return app.serve(ctx)
			})
		},
	}
}

func newMCPCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve change review tools over MCP on stdin and stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*configPath, func(ctx context.Context, app *App) error {
				srv := mcpserver.New(app.Services.Changes, version)
				return srv.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
}

func newDocsUpdateCmd(configPath *string) *cobra.Command {
	var srcType, id string
	cmd := &cobra.Command{
		Use:   "docs-update",
		Short: "Open a documentation pull request for an approved change",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := models.ParseSourceType(srcType)
			if err != nil {
				return err
			}
			return withApp(*configPath, func(ctx context.Context, app *App) error {
				res, err := app.Services.DocUpdates.Process(ctx, src, id)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
	cmd.Flags().StringVar(&srcType, "type", "pr", `change type: "pr" or "linear"`)
	cmd.Flags().StringVar(&id, "id", "", "change id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newReleaseNotesCmd(configPath *string) *cobra.Command {
	var week string
	cmd := &cobra.Command{
		Use:   "release-notes",
		Short: "Generate the weekly release notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*configPath, func(ctx context.Context, app *App) error {
				note, err := app.Services.ReleaseNotes.Generate(ctx, week)
				if err != nil {
					return err
				}
				return printJSON(cmd, note)
			})
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "any date in the target week (YYYY-MM-DD); defaults to the current week")

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored release notes, newest week first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*configPath, func(ctx context.Context, app *App) error {
				notes, err := app.Services.ReleaseNotes.List(ctx, limit, 0)
				if err != nil {
					return err
				}
				return printJSON(cmd, notes)
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum notes to list")

	sent := &cobra.Command{
		Use:   "mark-sent <id>",
		Short: "Record that a release note was emailed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*configPath, func(ctx context.Context, app *App) error {
				note, err := app.Services.ReleaseNotes.MarkSent(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, note)
			})
		},
	}

	cmd.AddCommand(list, sent)
	return cmd
}

func newIngestCmd(configPath *string) *cobra.Command {
	var repo string
	var number int
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Summarize a merged pull request and queue it for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, name, ok := strings.Cut(repo, "/")
			if !ok || owner == "" || name == "" {
				return fmt.Errorf("--repo must be owner/name, got %q", repo)
			}
			return withApp(*configPath, func(ctx context.Context, app *App) error {
				row, err := app.Services.Ingest.IngestPullRequest(ctx, owner, name, number)
				if err != nil {
					return err
				}
				return printJSON(cmd, row)
			})
		},
	}
	cmd.Flags().StringVar(&repo, "repo", "", "source repository as owner/name")
	cmd.Flags().IntVar(&number, "number", 0, "pull request number")
	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("number")
	return cmd
}

func newSecretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage secrets stored in the OS keyring",
	}

	set := &cobra.Command{
		Use:   "set <key> [value]",
		Short: "Store a secret; reads the value from stdin when omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := ""
			if len(args) == 2 {
				value = args[1]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read secret: %w", err)
				}
				value = strings.TrimSpace(line)
			}
			ring, err := services.OpenKeyringService()
			if err != nil {
				return err
			}
			return ring.Set(args[0], []byte(value))
		},
	}

	del := &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a stored secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ring, err := services.OpenKeyringService()
			if err != nil {
				return err
			}
			return ring.Delete(args[0])
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored secret keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			ring, err := services.OpenKeyringService()
			if err != nil {
				return err
			}
			keys, err := ring.Keys()
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}

	cmd.AddCommand(set, del, list)
	return cmd
}
