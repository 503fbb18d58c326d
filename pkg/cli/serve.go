package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gooddata/grizzly/pkg/config"
	"github.com/gooddata/grizzly/pkg/logging"
	"github.com/gooddata/grizzly/pkg/orchestrator"
)

// serve validates the flags, then hands one engine to the orchestrator and
// waits for it to finish.
func serve(ctx context.Context, f *serveFlags, stdout, stderr io.Writer, newEngine engineFactory) error {
	cfg, err := config.Validate(f.raw)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(f.logLevel),
		Format: logging.ParseFormat(f.logFormat),
		Output: stderr,
	}).With("run_id", uuid.NewString())

	reg := prometheus.NewRegistry()
	metrics := orchestrator.NewMetrics(reg)
	if f.metricsAddr != "" {
		stopMetrics, err := startMetricsServer(f.metricsAddr, reg, log)
		if err != nil {
			return &exitError{code: ExitFailure, err: err}
		}
		defer stopMetrics()
	}

	policy := orchestrator.RetryPolicy{MaxRetries: f.maxRetries}
	if f.retryBackoff {
		policy.Backoff = orchestrator.ExponentialBackoff()
	}

	log.Debug("configuration accepted",
		"port", cfg.Port,
		"backend", cfg.BackendHost,
		"document_root", cfg.DocumentRoot,
		"stub", cfg.Stub,
		"autoassign_port", cfg.AutoassignPort,
		"max_port_retries", policy.MaxRetries,
	)

	o := orchestrator.New(newEngine(cfg, log, stdout), cfg,
		orchestrator.WithLogger(log),
		orchestrator.WithRetryPolicy(policy),
		orchestrator.WithMetrics(metrics),
		orchestrator.WithErrorOutput(stderr),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := o.Run(ctx)
	log.Info("grizzly stopped", "outcome", res.Outcome, "port", res.Port, "attempts", res.Attempts)

	if !res.OK() {
		// The orchestrator already printed the cause.
		return &exitError{code: ExitFailure, err: res.Err, reported: true}
	}
	return nil
}
