package commands

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nhle/deadline-harvester/internal/api"
	"github.com/nhle/deadline-harvester/internal/model"
	appsync "github.com/nhle/deadline-harvester/internal/sync"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Harvest on a schedule and serve the admin API",
		Long: `Runs a harvest immediately and then every harvest.interval_hours, and
serves the admin API and Prometheus metrics on http.addr. Changes to
harvest.interval_hours in the config file apply without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts, prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}
			defer e.Close()

			if addr == "" {
				addr = e.cfg.HTTP.Addr
			}
			return serve(cmd.Context(), e, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from http.addr)")
	return cmd
}

func serve(ctx context.Context, e *env, addr string) error {
	src, err := e.source()
	if err != nil {
		return err
	}

	poller, err := appsync.New(e.harvester, src, e.cfg.Harvest.Interval(), e.log)
	if err != nil {
		return err
	}

	app := api.New(api.Deps{
		Store:       e.store,
		Engine:      e.engine,
		Trigger:     poller.Trigger,
		CleanupDays: e.cfg.Harvest.CleanupDays,
		Registry:    prometheus.DefaultRegisterer,
		Log:         e.log,
	})

	watchInterval(e, poller)

	if err := poller.Start(); err != nil {
		return err
	}
	defer func() {
		if err := poller.Stop(); err != nil {
			e.log.WithError(err).Warn("stopping scheduler")
		}
	}()

	listenErr := make(chan error, 1)
	go func() {
		e.log.WithField("addr", addr).Info("admin API listening")
		listenErr <- app.Listen(addr)
	}()

	select {
	case <-ctx.Done():
		e.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	case err := <-listenErr:
		return err
	}
}

// watchInterval reschedules the poller when the config file changes.
func watchInterval(e *env, poller *appsync.Poller) {
	path := e.viper.ConfigFileUsed()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		e.log.WithField("path", path).Debug("no config file to watch")
		return
	}

	e.viper.OnConfigChange(func(ev fsnotify.Event) {
		cfg, err := model.DecodeConfig(e.viper)
		if err != nil {
			e.log.WithError(err).Warn("ignoring invalid config change")
			return
		}
		interval := cfg.Harvest.Interval()
		if err := poller.SetInterval(interval); err != nil {
			e.log.WithError(err).Warn("failed to reschedule harvest")
			return
		}
		e.log.WithFields(logrus.Fields{
			"file":     ev.Name,
			"interval": interval.String(),
		}).Info("harvest interval reloaded")
	})
	e.viper.WatchConfig()
}
