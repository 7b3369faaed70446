package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/deadredux/internal/catalog"
	"github.com/rewired-gh/deadredux/internal/config"
	"github.com/rewired-gh/deadredux/internal/daily"
	"github.com/rewired-gh/deadredux/internal/links"
	"github.com/rewired-gh/deadredux/internal/logger"
	"github.com/rewired-gh/deadredux/internal/relisten"
	"github.com/rewired-gh/deadredux/internal/shows"
)

const defaultConfigPath = "configs/config.yaml"

func newRootCommand() *cobra.Command {
	var configFlag string
	app := &appContext{configFlag: &configFlag}

	rootCmd := &cobra.Command{
		Use:           "deadredux",
		Short:         "A different Grateful Dead show every day",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd == cmd.Root() {
				return nil
			}
			_, err := app.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", defaultConfigPath, "Configuration file path")

	rootCmd.AddCommand(newServeCommand(app))
	rootCmd.AddCommand(newFetchCatalogCommand(app))
	rootCmd.AddCommand(newPickCommand(app))
	rootCmd.AddCommand(newArchiveCommand(app))
	rootCmd.AddCommand(newAnnounceCommand(app))

	return rootCmd
}

// appContext loads configuration once per invocation and builds the
// components commands share.
type appContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func (a *appContext) ensureConfig() (*config.Config, error) {
	a.configOnce.Do(func() {
		path := strings.TrimSpace(*a.configFlag)
		if path == "" {
			path = defaultConfigPath
		}

		cfg, err := config.Load(path)
		if err != nil {
			a.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			a.configErr = fmt.Errorf("invalid configuration: %w", err)
			return
		}

		logger.Init(cfg.Logging.Level, cfg.Logging.Format)
		logger.Debug("Configuration loaded from %s", path)
		a.config = cfg
	})
	return a.config, a.configErr
}

func (a *appContext) relistenClient() *relisten.Client {
	cfg := a.config
	return relisten.NewClient(cfg.Relisten.APIBaseURL, cfg.Relisten.Timeout, cfg.Relisten.UserAgent)
}

func (a *appContext) links() links.Builder {
	cfg := a.config
	return links.Builder{
		SiteBaseURL:     cfg.Server.BaseURL,
		EmbedBaseURL:    cfg.Player.EmbedBaseURL,
		RelistenSiteURL: cfg.Player.RelistenSiteURL,
	}
}

// service loads the catalog and builds the page service. cache may be nil.
func (a *appContext) service(fetcher shows.DetailsFetcher, cache shows.DetailsCache) (*shows.Service, *catalog.Catalog, error) {
	cfg := a.config
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog (run fetch-catalog first?): %w", err)
	}
	if !cat.IsSorted() {
		logger.Warn("Catalog %s is not sorted by date; picks follow file order", cfg.Catalog.Path)
	}

	svc := shows.NewService(daily.NewSelector(cat), fetcher, cache, shows.Options{
		LaunchDate: cfg.Catalog.LaunchDate,
		DetailsTTL: cfg.Storage.DetailsTTL,
		Links:      a.links(),
	})
	return svc, cat, nil
}
