package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nhle/deadline-harvester/internal/credential"
	"github.com/nhle/deadline-harvester/internal/extract"
	"github.com/nhle/deadline-harvester/internal/harvest"
	"github.com/nhle/deadline-harvester/internal/logging"
	"github.com/nhle/deadline-harvester/internal/match"
	"github.com/nhle/deadline-harvester/internal/metrics"
	"github.com/nhle/deadline-harvester/internal/model"
	"github.com/nhle/deadline-harvester/internal/source"
	"github.com/nhle/deadline-harvester/internal/source/web"
	"github.com/nhle/deadline-harvester/internal/store"
)

// env is everything a subcommand needs, built from the config file.
type env struct {
	cfg       *model.AppConfig
	viper     *viper.Viper
	log       *logrus.Logger
	store     *store.SQLiteStore
	metrics   *metrics.Metrics
	engine    *harvest.Engine
	harvester *harvest.Harvester
	creds     credential.Getter
}

// newEnv loads the config and opens the store. reg receives the harvest
// metrics; commands that do not serve them pass a private registry.
func newEnv(cmd *cobra.Command, opts *rootOptions, reg prometheus.Registerer) (*env, error) {
	v, err := model.ReadViper(opts.configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := model.DecodeConfig(v)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	log := logging.New(cfg.Log, cmd.ErrOrStderr())

	loc, err := cfg.Harvest.Location()
	if err != nil {
		return nil, err
	}

	s, err := store.NewSQLiteStore(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", cfg.Database.URL, err)
	}

	m := metrics.New(reg)
	matcher := match.NewMatcher(match.Options{
		SimilarityThreshold: cfg.Harvest.SimilarityThreshold,
		DuplicateWindow:     time.Duration(cfg.Harvest.DuplicateWindowDays) * 24 * time.Hour,
	})
	engine := harvest.NewEngine(s, matcher, log)

	patterns := extract.DefaultPatterns()
	if cfg.Harvest.LegacyDateOrder {
		patterns = extract.LegacyPatterns()
	}
	h := harvest.NewHarvester(s, engine, harvest.Config{
		Workers:      cfg.Harvest.Workers,
		DefaultTitle: cfg.Harvest.DefaultTitle,
		Location:     loc,
		Patterns:     patterns,
	}, m, log)

	return &env{
		cfg:       cfg,
		viper:     v,
		log:       log,
		store:     s,
		metrics:   m,
		engine:    engine,
		harvester: h,
		creds:     credential.Keyring{},
	}, nil
}

// source returns the configured deadline page: fetched over HTTP for
// http(s) URLs, read from disk otherwise.
func (e *env) source() (source.Source, error) {
	sc := e.cfg.Source
	if sc.URL == "" {
		return nil, errors.New("source.url is not set; add it to the config file or set HARVESTER_SOURCE_URL")
	}
	if !sc.IsRemote() {
		return source.NewFileSource(sc.FilePath(), sc.BaseURL), nil
	}
	return web.New(web.Config{
		URL:           sc.URL,
		UserAgent:     sc.UserAgent,
		Timeout:       time.Duration(sc.TimeoutSec) * time.Second,
		CacheTTL:      time.Duration(sc.CacheTTLSec) * time.Second,
		RatePerSec:    sc.RatePerSec,
		IgnoreRobots:  sc.IgnoreRobots,
		CredentialKey: sc.CredentialKey,
		MaxRetries:    3,
	}, e.creds, e.metrics, e.log)
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.WithError(err).Warn("closing store")
	}
}
