package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"releaseradar/internal/api"
	"releaseradar/internal/config"
	"releaseradar/internal/database"
	"releaseradar/internal/githost"
	"releaseradar/internal/llm/client"
	"releaseradar/internal/services"
)

const shutdownTimeout = 10 * time.Second

// App owns the process-wide resources: database pool, docs host and services.
type App struct {
	cfg      config.Config
	Services *services.Services
	dbClose  func() error
}

func NewApp(cfg config.Config) *App {
	return &App{cfg: cfg}
}

// startup opens the database, the docs host and the model client, then
// wires the services.
func (a *App) startup(ctx context.Context) error {
	db, err := database.Init(database.Config{
		Driver:   a.cfg.DB.Driver,
		DSN:      a.cfg.DB.DSN,
		Path:     a.cfg.DB.Path,
		LogLevel: database.ParseLogLevel(a.cfg.DB.LogLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		a.dbClose = sqlDB.Close
	}

	host, pages, prs, err := openDocsHost(a.cfg)
	if err != nil {
		return err
	}

	gen, err := client.New(ctx, client.Options{
		Provider:  a.cfg.LLM.Provider,
		APIKey:    a.cfg.LLM.APIKey,
		Model:     a.cfg.LLM.Model,
		MaxTokens: a.cfg.LLM.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", a.cfg.LLM.Provider, err)
	}

	a.Services, err = services.NewServices(services.Deps{
		Repos:        services.NewDbRepositories(db),
		Host:         host,
		Pages:        pages,
		PullRequests: prs,
		Generator:    gen,
		Config:       a.cfg,
	})
	return err
}

// openDocsHost picks the hosted or on-disk documentation repository. Merged
// pull requests are always read from GitHub.
func openDocsHost(cfg config.Config) (githost.Host, githost.PageLister, githost.PullRequestSource, error) {
	gh := githost.NewGitHubClient(cfg.GitHub.Token)
	switch cfg.Docs.Host {
	case config.HostLocal:
		local, err := githost.OpenLocal(cfg.Docs.LocalPath, githost.LocalOptions{
			BaseBranch: cfg.Docs.BaseBranch,
			PagesGlob:  cfg.Docs.PagesGlob,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return local, local, githost.NewPullRequestSource(gh), nil
	default:
		if cfg.GitHub.Token == "" {
			log.Printf("[app] no GitHub token configured; docs updates will fail to authenticate")
		}
		remote, err := githost.NewGitHub(gh, githost.GitHubOptions{
			Owner:      cfg.Docs.Owner,
			Repo:       cfg.Docs.Repo,
			BaseBranch: cfg.Docs.BaseBranch,
			PagesGlob:  cfg.Docs.PagesGlob,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return remote, remote, remote, nil
	}
}

// shutdown releases resources. Safe to call more than once.
func (a *App) shutdown() {
	if a.dbClose != nil {
		if err := a.dbClose(); err != nil {
			log.Printf("[app] failed to close database: %v", err)
		} else {
			log.Printf("[app] database closed")
		}
		a.dbClose = nil
	}
}

// serve runs the HTTP API until ctx is cancelled, then drains in-flight
// requests.
func (a *App) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.ListenAddr,
		Handler:           api.NewServer(a.Services, a.cfg.Webhooks).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[app] listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Printf("[app] shutting down")
	return srv.Shutdown(shutdownCtx)
}
