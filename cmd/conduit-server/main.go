// Command conduit-server serves traversals and propagations over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-conduit/pkg/api"
	"github.com/dd0wney/cluso-conduit/pkg/audit"
	"github.com/dd0wney/cluso-conduit/pkg/config"
	"github.com/dd0wney/cluso-conduit/pkg/connectivity"
	"github.com/dd0wney/cluso-conduit/pkg/logging"
	"github.com/dd0wney/cluso-conduit/pkg/metrics"
	"github.com/dd0wney/cluso-conduit/pkg/model"
	"github.com/dd0wney/cluso-conduit/pkg/propagation"
	"github.com/dd0wney/cluso-conduit/pkg/source"
)

var version = "dev"

const metricsInterval = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	addr := flag.String("addr", "", "listen address (overrides server.addr, or set PORT)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "conduit-server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, addr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	switch {
	case addr != "":
		cfg.Server.Addr = addr
	case os.Getenv("PORT") != "":
		cfg.Server.Addr = ":" + os.Getenv("PORT")
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.EnvLevel(cfg.LogLevel()))
	logger.Info("conduit server starting", logging.String("version", version))

	loadCtx, cancelLoad := cfg.Source.WithTimeout(ctx)
	defer cancelLoad()
	src, err := source.FromConfig(loadCtx, cfg.Source)
	if err != nil {
		return err
	}
	m, err := source.Open(loadCtx, src, cfg.Model, model.WithLogger(logger))
	if err != nil {
		return err
	}
	defer m.Close()

	stats := m.Statistics()
	logger.Info("model loaded",
		logging.String("source", cfg.Source.Kind),
		logging.Int("elements", stats.Elements),
		logging.Int("connections", stats.Connections))

	classifier, err := cfg.Classifier()
	if err != nil {
		return err
	}
	opts, err := cfg.PropagationOptions()
	if err != nil {
		return err
	}

	registry := metrics.NewRegistry()
	auditLogger := audit.NewAuditLogger(cfg.Audit.BufferSize)
	opts = append(opts,
		propagation.WithAudit(auditLogger),
		propagation.WithMetrics(registry),
		propagation.WithLogger(logger))
	p := propagation.New(m, connectivity.NewModelGraph(m, classifier), opts...)

	server, err := api.NewServer(cfg.Server, m, p,
		api.WithAuditLogger(auditLogger),
		api.WithMetrics(registry),
		api.WithLogger(logger),
		api.WithVersion(version))
	if err != nil {
		return err
	}

	go updateMetrics(ctx, registry, m)

	if err := server.ListenAndServe(ctx); err != nil {
		return err
	}

	saveCtx, cancel := cfg.Source.WithTimeout(context.Background())
	defer cancel()

	began := time.Now()
	if err := source.Persist(saveCtx, m, src); err != nil {
		return err
	}
	registry.RecordCheckpoint(time.Since(began))
	auditLogger.Log(&audit.Event{
		Actor:        "server",
		Action:       audit.ActionCheckpoint,
		ResourceType: audit.ResourceModel,
		Status:       audit.StatusSuccess,
	})
	logger.Info("model saved", logging.Latency(time.Since(began)))
	return nil
}

func updateMetrics(ctx context.Context, registry *metrics.Registry, m *model.Model) {
	started := time.Now()
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	for {
		stats := m.Statistics()
		registry.UpdateModelMetrics(stats.Elements, stats.Connections)
		registry.UpdateSystemMetrics(started)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
