package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/media-fetch-go/internal/app"
	"github.com/yourusername/media-fetch-go/internal/domain"
	"github.com/yourusername/media-fetch-go/pkg/logger"
)

const version = "1.0.0"

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "media-fetch",
		Short: "Media-Fetch - one-shot media download worker",
		Long: `Reads a single JSON task document from stdin, executes it, and writes
a JSON result envelope to stdout. Logs go to stderr.`,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(run())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
}

// initCmd writes the default configuration to disk as a starting point for
// manual editing.
var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "configs/config.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := app.SaveConfig(domain.DefaultConfig(), path); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

// checkCmd probes the extraction tool without reading stdin, for quick
// install verification from a shell.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the extraction tool is available",
	Run: func(cmd *cobra.Command, args []string) {
		log, dispatcher, failure := setup()
		defer log.Sync()

		result := failure
		if result == nil {
			result = dispatcher.Dispatch(context.Background(), "check_tool", nil)
		}
		if err := app.WriteEnvelope(os.Stdout, result); err != nil {
			log.Error("failed to write envelope", zap.Error(err))
		}
	},
}

func run() (code int) {
	log, dispatcher, failure := setup()
	defer func() {
		// A panic escaping the dispatch boundary is the one unhandled
		// outcome. Report it through the envelope and the exit code.
		if r := recover(); r != nil {
			writePanicEnvelope(os.Stdout, log, r)
			code = 1
		}
		_ = log.Sync()
	}()

	if failure != nil {
		if err := app.WriteEnvelope(os.Stdout, failure); err != nil {
			log.Error("failed to write envelope", zap.Error(err))
		}
		return 0
	}

	return dispatcher.Run(context.Background(), os.Stdin, os.Stdout)
}

// writePanicEnvelope turns a panic that escaped the dispatch boundary into a
// regular error envelope so the host still gets valid JSON. WriteEnvelope owns
// the "Serialization failed" fallback; it is not emitted here.
func writePanicEnvelope(w io.Writer, log *zap.Logger, cause interface{}) {
	log.Error("unhandled panic", zap.Any("panic", cause))
	if err := app.WriteEnvelope(w, domain.Fail(fmt.Sprintf("Internal error: %v", cause))); err != nil {
		log.Error("failed to write envelope", zap.Error(err))
	}
}

// setup loads configuration and wires the dispatcher. Configuration problems
// come back as a failed result so the caller still gets an envelope.
func setup() (*zap.Logger, *app.Dispatcher, domain.TaskResult) {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		log := logger.NewDefault()
		return log, nil, domain.Fail(fmt.Sprintf("Configuration error: %v", err))
	}

	log, err := logger.New(logger.Config{
		Level:  config.Logging.Level,
		Format: config.Logging.Format,
	})
	if err != nil {
		log = logger.NewDefault()
	}

	return log, app.NewDispatcher(config, log), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
