package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbaille/gardenlog/internal/assistant"
	"github.com/pbaille/gardenlog/internal/catalog"
	"github.com/pbaille/gardenlog/internal/config"
	"github.com/pbaille/gardenlog/internal/domain"
	"github.com/pbaille/gardenlog/internal/lemmatizer"
	"github.com/pbaille/gardenlog/internal/logbook"
	"github.com/pbaille/gardenlog/internal/logging"
	"github.com/pbaille/gardenlog/internal/store"
	"github.com/pbaille/gardenlog/internal/tagger"
)

// app carries global flags and the state built from them
type app struct {
	configPath string
	dbPath     string
	lang       string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "gardenlog",
		Short:        "Garden activity log with automatic tagging and questions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&a.lang, "lang", "", "language: en or es (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(addCmd(a))
	rootCmd.AddCommand(listCmd(a))
	rootCmd.AddCommand(showCmd(a))
	rootCmd.AddCommand(deleteCmd(a))
	rootCmd.AddCommand(tagCmd(a))
	rootCmd.AddCommand(redateCmd(a))
	rootCmd.AddCommand(tagsCmd(a))
	rootCmd.AddCommand(askCmd(a))
	rootCmd.AddCommand(reconcileCmd(a))
	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(configCmd(a))

	return rootCmd
}

// init loads the config, applies flag overrides and builds the logger
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("db") {
		cfg.DB = a.dbPath
	}
	if cmd.Flags().Changed("lang") {
		cfg.Language = a.lang
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Verbose: a.verbose,
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) language() domain.Language {
	return a.cfg.Lang()
}

// env is an opened log store with its collaborators
type env struct {
	store     *store.Store
	book      *logbook.Book
	tagger    *tagger.Tagger
	assistant *assistant.Assistant
}

func (e *env) Close() error {
	return e.store.Close()
}

func (a *app) open() (*env, error) {
	// Ensure directory exists
	dir := filepath.Dir(a.cfg.DB)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	s, err := store.New(a.cfg.DB)
	if err != nil {
		return nil, err
	}

	tg := tagger.New(catalog.Definitions(),
		tagger.WithExpander(a.expander()),
		tagger.WithLogger(a.logger.Named("tagger")))

	book, err := logbook.Open(s, tg,
		logbook.WithReconcileOnLoad(a.cfg.ReconcileOnLoad),
		logbook.WithLogger(a.logger.Named("logbook")))
	if err != nil {
		s.Close()
		return nil, err
	}

	return &env{
		store:     s,
		book:      book,
		tagger:    tg,
		assistant: assistant.New(book, tg, assistant.WithLogger(a.logger.Named("assistant"))),
	}, nil
}

func (a *app) expander() tagger.Expander {
	ec := a.cfg.Expander
	if ec.Provider != config.ProviderAnthropic {
		return tagger.NopExpander{}
	}
	if ec.APIKey == "" {
		a.logger.Warn("expander disabled: ANTHROPIC_API_KEY not set")
		return tagger.NopExpander{}
	}
	return lemmatizer.New(ec.APIKey,
		lemmatizer.WithModel(ec.Model),
		lemmatizer.WithLogger(a.logger.Named("lemmatizer")))
}
