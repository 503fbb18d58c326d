package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gooddata/grizzly/pkg/config"
	"github.com/gooddata/grizzly/pkg/engine"
	"github.com/gooddata/grizzly/pkg/logging"
)

// shutdownTimeout bounds engine shutdown when Run returns.
const shutdownTimeout = 5 * time.Second

// Orchestrator owns one engine and drives it from Stopped to Running,
// retrying on the next port when the current one is taken and
// AutoassignPort is set.
type Orchestrator struct {
	engine  engine.Engine
	policy  RetryPolicy
	log     *slog.Logger
	stderr  io.Writer
	metrics *Metrics

	mu       sync.RWMutex
	cfg      config.Configuration
	state    State
	attempt  int
	retries  int
	reported bool
	// resolved is set once the current attempt has produced its start outcome.
	resolved bool
}

// Option is a functional option for configuring an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *Orchestrator) {
		o.policy = p
	}
}

// WithMetrics records lifecycle metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithErrorOutput sets where port switches and fatal errors are printed.
// Defaults to os.Stderr.
func WithErrorOutput(w io.Writer) Option {
	return func(o *Orchestrator) {
		if w != nil {
			o.stderr = w
		}
	}
}

// New creates an Orchestrator for eng, starting from cfg.
func New(eng engine.Engine, cfg config.Configuration, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine: eng,
		cfg:    cfg,
		policy: DefaultRetryPolicy(),
		log:    logging.Nop(),
		stderr: os.Stderr,
		state:  StateStopped,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Status is a point-in-time view of the orchestrator.
type Status struct {
	State    State
	Port     int
	Attempts int
	Retries  int
}

// Status returns the current state, port and counters.
func (o *Orchestrator) Status() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return Status{State: o.state, Port: o.cfg.Port, Attempts: o.attempt, Retries: o.retries}
}

// Run starts the engine and handles its events until the engine fails
// fatally or ctx is cancelled. The engine is shut down before Run returns.
//
// Run may be called once.
func (o *Orchestrator) Run(ctx context.Context) Result {
	o.mu.RLock()
	fresh := o.state == StateStopped && o.attempt == 0
	o.mu.RUnlock()
	if !fresh {
		return o.result(OutcomeFatal, ErrAlreadyRun)
	}

	events := o.engine.Events()
	o.startAttempt(StateStopped)

	var retry <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			o.shutdown()
			if o.Status().State == StateRunning {
				return o.result(OutcomeRunning, nil)
			}
			return o.result(OutcomeCancelled, ctx.Err())

		case <-retry:
			retry = nil
			o.startAttempt(StateStarting)

		case ev, ok := <-events:
			if !ok {
				if o.Status().State == StateRunning {
					o.shutdown()
					return o.result(OutcomeRunning, nil)
				}
				return o.fail(ErrEngineClosed)
			}

			delay, res, done := o.handle(ev)
			if done {
				return res
			}
			if delay != nil {
				if *delay <= 0 {
					o.startAttempt(StateStarting)
				} else {
					retry = time.After(*delay)
				}
			}
		}
	}
}

// handle applies one engine event. It returns a retry delay when a new
// attempt must be scheduled, or done with the final result.
func (o *Orchestrator) handle(ev engine.Event) (delay *time.Duration, res Result, done bool) {
	o.mu.RLock()
	current := o.attempt
	state := o.state
	resolved := o.resolved
	o.mu.RUnlock()

	if ev.Attempt != current {
		o.log.Debug("ignoring event for stale attempt", "event", ev.Kind, "attempt", ev.Attempt, "current", current)
		return nil, Result{}, false
	}
	// A failed attempt waiting for its retry stays current until the next Start.
	if resolved && state == StateStarting {
		o.log.Debug("ignoring event for resolved attempt", "event", ev.Kind, "attempt", ev.Attempt)
		return nil, Result{}, false
	}

	switch ev.Kind {
	case engine.EventStarted:
		o.onStarted(state)
		return nil, Result{}, false

	case engine.EventFailed:
		if state != StateStarting {
			return nil, o.fail(ev.Err), true
		}

		code := engine.CodeOf(ev.Err)
		o.metrics.failure(code)
		o.mu.Lock()
		o.resolved = true
		o.mu.Unlock()
		if code != engine.CodeAddrInUse || !o.currentConfig().AutoassignPort {
			return nil, o.fail(ev.Err), true
		}

		o.mu.RLock()
		retries := o.retries
		o.mu.RUnlock()
		if !o.policy.allows(retries) {
			return nil, o.fail(fmt.Errorf("%w after %d retries: %w", ErrRetriesExhausted, retries, ev.Err)), true
		}
		d, ok := o.policy.next()
		if !ok {
			return nil, o.fail(fmt.Errorf("%w: backoff stopped: %w", ErrRetriesExhausted, ev.Err)), true
		}

		o.switchPort()
		return &d, Result{}, false
	}

	o.log.Warn("ignoring unknown engine event", "kind", ev.Kind)
	return nil, Result{}, false
}

// onStarted moves to Running and reports the address exactly once.
func (o *Orchestrator) onStarted(from State) {
	o.mu.Lock()
	if o.reported || !from.canTransition(StateRunning) {
		o.mu.Unlock()
		o.log.Debug("ignoring duplicate start confirmation", "state", from)
		return
	}
	o.state = StateRunning
	o.reported = true
	o.resolved = true
	port := o.cfg.Port
	o.mu.Unlock()

	o.metrics.running(port)
	o.log.Info("engine running", "port", port)
	o.engine.ReportBoundAddress()
}

// switchPort is the Starting -> Starting retry transition.
func (o *Orchestrator) switchPort() {
	o.mu.Lock()
	o.cfg = o.cfg.WithPort(o.cfg.Port + 1)
	o.retries++
	port := o.cfg.Port
	o.mu.Unlock()

	o.metrics.retry()
	o.log.Warn("port in use, switching", "port", port)
	fmt.Fprintf(o.stderr, "Switching grizzly port to %d\n", port)
}

// startAttempt issues the next engine Start. It is only called when no
// attempt is in flight.
func (o *Orchestrator) startAttempt(from State) {
	o.mu.Lock()
	if !from.canTransition(StateStarting) {
		o.mu.Unlock()
		return
	}
	o.state = StateStarting
	o.attempt++
	o.resolved = false
	attempt := o.attempt
	cfg := o.cfg
	o.mu.Unlock()

	o.metrics.attempt()
	o.log.Debug("starting engine", "attempt", attempt, "port", cfg.Port)
	o.engine.Start(attempt, cfg)
}

// fail is the transition to Failed. It reports the cause and stops the engine.
func (o *Orchestrator) fail(err error) Result {
	o.mu.Lock()
	o.state = StateFailed
	o.mu.Unlock()

	o.metrics.running(0)
	o.log.Error("engine failed", "error", err, "code", engine.CodeOf(err))
	fmt.Fprintf(o.stderr, "Grizzly error: %s\n", err)
	fmt.Fprintln(o.stderr, "Stopping task grizzly")

	o.shutdown()
	return o.result(OutcomeFatal, err)
}

func (o *Orchestrator) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := o.engine.Shutdown(ctx); err != nil {
		o.log.Warn("engine shutdown error", "error", err)
	}
}

func (o *Orchestrator) currentConfig() config.Configuration {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cfg
}

func (o *Orchestrator) result(outcome Outcome, err error) Result {
	st := o.Status()
	return Result{
		Outcome:  outcome,
		State:    st.State,
		Port:     st.Port,
		Attempts: st.Attempts,
		Retries:  st.Retries,
		Err:      err,
	}
}
