package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gooddata/grizzly/pkg/config"
	"github.com/gooddata/grizzly/pkg/engine"
	"github.com/gooddata/grizzly/pkg/logging"
	"github.com/gooddata/grizzly/pkg/orchestrator"
)

// usageLine is the one-line synopsis printed with --help.
const usageLine = "Usage: grizzly -b [backend] -p [port] -d [document-root]"

// engineFactory builds the engine for a validated configuration.
type engineFactory func(cfg config.Configuration, log *slog.Logger, stdout io.Writer) engine.Engine

func defaultEngine(cfg config.Configuration, log *slog.Logger, stdout io.Writer) engine.Engine {
	return engine.NewServer(cfg, engine.WithLogger(log), engine.WithOutput(stdout))
}

// serveFlags holds all parsed command-line flags.
type serveFlags struct {
	raw config.RawFlags

	maxRetries   int
	retryBackoff bool
	logLevel     string
	logFormat    string
	metricsAddr  string
}

// newRootCmd creates the grizzly command. Output goes to stdout/stderr and
// engines are built by newEngine.
func newRootCmd(stdout, stderr io.Writer, newEngine engineFactory) *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "grizzly",
		Short: "Local HTTPS proxy for front-end development",
		Long: usageLine + `

grizzly terminates TLS locally and serves each request from a stub, from the
document root, or by forwarding it to the backend host.

With --autoassignPort a port that is already taken is not fatal: grizzly
moves to the next port and tries again, up to --max-port-retries times.`,
		Example: `  # Serve ./www and proxy everything else to the default backend
  grizzly -d ./www

  # Use your own certificate and a stub file
  grizzly -d ./www -c server.crt -k server.key -s stubs.yaml

  # Pick the next free port if 8443 is taken
  grizzly -d ./www -p 8443 -a`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		// cobra answers -h/--help itself before RunE, so help never
		// reaches validation.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), f, stdout, stderr, newEngine)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	env := logging.DefaultConfig()

	flags := cmd.Flags()
	flags.IntVarP(&f.raw.Port, "port", "p", config.DefaultPort, "local port to listen on")
	flags.StringVarP(&f.raw.Backend, "backend", "b", config.DefaultBackendHost, "backend host name")
	flags.StringVarP(&f.raw.DocumentRoot, "document-root", "d", "", "document root directory to use")
	flags.StringVarP(&f.raw.Stub, "stub", "s", "", "stub file")
	flags.StringVarP(&f.raw.Cert, "cert", "c", "", "path to cert file")
	flags.StringVarP(&f.raw.Key, "key", "k", "", "path to key file")
	flags.BoolVarP(&f.raw.AutoassignPort, "autoassignPort", "a", false, "increment port number if the specified port is already in use")
	flags.BoolVarP(&f.raw.Help, "help", "h", false, "show this help")

	flags.IntVar(&f.maxRetries, "max-port-retries", orchestrator.DefaultMaxRetries, "maximum port increments with --autoassignPort (negative = unlimited)")
	flags.BoolVar(&f.retryBackoff, "retry-backoff", false, "wait with exponential backoff between port retries")
	flags.StringVar(&f.logLevel, "log-level", levelName(env.Level), "log level (debug, info, warn, error) [$"+logging.EnvLevel+"]")
	flags.StringVar(&f.logFormat, "log-format", string(env.Format), "log format (text, json) [$"+logging.EnvFormat+"]")
	flags.StringVar(&f.metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (disabled when empty)")

	return cmd
}

// Run executes grizzly with args and returns the process exit status.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, args, stdout, stderr, defaultEngine)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, newEngine engineFactory) int {
	cmd := newRootCmd(stdout, stderr, newEngine)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if !exitErr.reported {
			fmt.Fprintf(stderr, "Error: %v\n", exitErr.err)
		}
		return exitErr.code
	}

	fmt.Fprintf(stderr, "Error: %v\nRun 'grizzly --help' for usage.\n", err)
	return ExitFailure
}

// Execute runs grizzly with the process arguments and exits.
// This is called by main.main().
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func levelName(l logging.Level) string {
	switch l {
	case logging.LevelDebug:
		return "debug"
	case logging.LevelWarn:
		return "warn"
	case logging.LevelError:
		return "error"
	default:
		return "info"
	}
}
