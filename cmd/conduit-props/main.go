// Command conduit-props copies a conduit's run parameters to every conduit,
// fitting and junction box of its run.
//
// Without -start the conduit is picked interactively; with it the command runs
// unattended and -yes answers the multi-junction-box question.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/cluso-conduit/pkg/audit"
	"github.com/dd0wney/cluso-conduit/pkg/config"
	"github.com/dd0wney/cluso-conduit/pkg/connectivity"
	"github.com/dd0wney/cluso-conduit/pkg/logging"
	"github.com/dd0wney/cluso-conduit/pkg/model"
	"github.com/dd0wney/cluso-conduit/pkg/propagation"
	"github.com/dd0wney/cluso-conduit/pkg/prompt"
	"github.com/dd0wney/cluso-conduit/pkg/source"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	modelPath := flag.String("model", "", "model document (overrides source.path)")
	start := flag.Uint64("start", 0, "conduit element ID; skips the interactive picker")
	yes := flag.Bool("yes", false, "with -start: annotate every junction box of a branching run")
	dryRun := flag.Bool("dry-run", false, "do not save the model")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *modelPath, *start, *yes, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "conduit-props: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, modelPath string, start uint64, yes, dryRun bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if modelPath != "" {
		cfg.Source.Kind = config.SourceFile
		cfg.Source.Path = modelPath
	}

	logger := logging.NewJSONLogger(os.Stderr, logging.EnvLevel(cfg.LogLevel()))

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

	classifier, err := cfg.Classifier()
	if err != nil {
		return err
	}
	opts, err := cfg.PropagationOptions()
	if err != nil {
		return err
	}

	terminal := prompt.NewTerminal(os.Stdin, os.Stdout)
	opts = append(opts,
		propagation.WithNotifier(terminal),
		propagation.WithAudit(audit.NewAuditLogger(cfg.Audit.BufferSize)),
		propagation.WithLogger(logger),
		propagation.WithActor("cli"))
	if start != 0 {
		opts = append(opts,
			propagation.WithSelector(prompt.NewFixed(model.ElementID(start))),
			propagation.WithConfirmer(prompt.Answer(yes)))
	} else {
		opts = append(opts,
			propagation.WithSelector(terminal),
			propagation.WithConfirmer(terminal))
	}

	p := propagation.New(m, connectivity.NewModelGraph(m, classifier), opts...)

	out, err := p.Run(ctx)
	if err != nil {
		// User errors were already shown by the notifier.
		if _, ok := propagation.AsUserError(err); ok {
			return nil
		}
		return err
	}
	if out.Cancelled {
		return nil
	}

	fmt.Fprintf(os.Stdout, "Wrote %d parameters (operation %s)\n", out.Writes, out.OperationID)
	if dryRun {
		return nil
	}
	saveCtx, cancelSave := cfg.Source.WithTimeout(ctx)
	defer cancelSave()
	if err := source.Persist(saveCtx, m, src); err != nil {
		return errors.Join(errors.New("parameters were applied but not saved"), err)
	}
	return nil
}
