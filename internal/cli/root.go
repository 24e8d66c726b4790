// Package cli wires configuration, logging and observability around the submitter.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"card-submitter/internal/common/config"
	"card-submitter/internal/common/errors"
	"card-submitter/internal/common/logger"
	"card-submitter/internal/common/metrics"
	"card-submitter/internal/common/observability"
	"card-submitter/internal/submitter"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

const positionalArgs = 3

// Options lets callers replace the process streams and logger.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Logger overrides the logger built from configuration.
	Logger logger.Logger
}

type runner struct {
	opts       Options
	configFile string
	exitCode   int
}

// Execute runs the command against the process arguments and returns the exit code.
func Execute() int {
	return Run(context.Background(), os.Args[1:], Options{})
}

// Run executes the command with args and returns the process exit code.
func Run(ctx context.Context, args []string, opts Options) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	// Anything that stops before a submission is not a success.
	r := &runner{opts: opts, exitCode: errors.ExitAbnormal}
	cmd := r.command()
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		// Argument and flag errors never reach RunE.
		r.exitCode = errors.ExitCode(err)
		fmt.Fprintf(opts.Stderr, "Error: %v\n", err)
	}
	return r.exitCode
}

// command builds the root command. RunE returns an error only for failures
// that should be printed; the exit code is kept on the runner.
func (r *runner) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card-submitter <deck> <model> <fields-json>",
		Short: "Add one flashcard note through AnkiConnect",
		Long: `card-submitter makes sure the deck exists and adds a single note to it
through the AnkiConnect HTTP interface.

The fields argument is a JSON object mapping field names to their text, for
example '{"Front": "hello", "Back": "world"}'.

Flags are only read before the deck argument. A deck name starting with '-'
must follow '--', for example: card-submitter -- -Verbs Basic '{...}'.

Exit status is 0 when the note was added, 1 when the endpoint was unreachable
or did not return a note id, and 2 when the input, configuration or response
could not be used. Printing this help exits 2.`,
		Args:          requirePositionalArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          r.run,
	}
	cmd.SetOut(r.opts.Stdout)
	cmd.SetErr(r.opts.Stderr)

	// Card arguments are passed through verbatim, even when they look like flags.
	cmd.Flags().SetInterspersed(false)
	// Declaring help here keeps cobra from adding its -h shorthand.
	cmd.Flags().Bool("help", false, "help for card-submitter")

	cmd.PersistentFlags().StringVar(&r.configFile, "config", "", "config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	cmd.PersistentFlags().String("url", config.DefaultAnkiConnectURL, "AnkiConnect endpoint URL")

	return cmd
}

func requirePositionalArgs(_ *cobra.Command, args []string) error {
	if len(args) < positionalArgs {
		return errors.NewMissingArgumentsError(len(args), positionalArgs)
	}
	return nil
}

func (r *runner) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: r.configFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		r.exitCode = errors.ExitAbnormal
		return errors.NewConfigInvalidError(err)
	}

	runID := uuid.NewString()
	log := r.opts.Logger
	if log == nil {
		log = logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
		defer logger.Sync(log)
	}
	log = log.WithFields(map[string]interface{}{
		"app":   cfg.App.Name,
		"runId": runID,
	})

	registry := prometheus.NewRegistry()
	obs := observability.New(observability.Options{
		ServiceName: cfg.App.Name,
		Registerer:  registry,
		Tracing:     cfg.Tracing,
		Logger:      log,
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to shut down observability", map[string]interface{}{"error": err.Error()})
		}
	}()

	ctx, span := obs.StartSpan(ctx, "card-submitter.run", attribute.String("run.id", runID))
	defer span.End()

	submitterConfig := submitter.ConfigFromApp(cfg)
	if err := submitterConfig.Validate(); err != nil {
		r.exitCode = errors.ExitAbnormal
		return errors.NewConfigInvalidError(err)
	}

	svc := submitter.NewService(submitter.ServiceDependencies{
		Logger:        log,
		Observability: obs,
	}, submitterConfig)

	_, submitErr := svc.Submit(ctx, &submitter.Input{
		Deck:   args[0],
		Model:  args[1],
		Fields: args[2],
	})
	r.exitCode = errors.NewErrorHandler(log).Handle(submitErr)

	if cfg.Metrics.Enabled() {
		gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, registry}
		if err := metrics.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, gatherers); err != nil {
			log.Warn("Failed to push metrics", map[string]interface{}{
				"pushgateway": cfg.Metrics.PushgatewayURL,
				"error":       err.Error(),
			})
		}
	}

	if r.exitCode == errors.ExitAbnormal {
		return submitErr
	}
	return nil
}
