package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gartstein/companydir/pkg/client"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultAPI = "http://localhost:5000"

var (
	// Global flags
	apiURL  string
	logFile string
	verbose bool
	timeout time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "companyctl",
	Short: "Browse and edit the company directory",
	Long: `companyctl talks to a company directory gateway.

Use the record subcommands for scripting, or "companyctl ui" for the
interactive dashboard with live search.

The gateway address comes from --api, then COMPANYCTL_API, then ` + defaultAPI + `.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		logger, err = initLogger(cmd.Name() == "ui")
		return err
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Gateway base URL (or set COMPANYCTL_API env)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file (default: stderr, or discarded in ui)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	registerRecordCommands()

	// Add commands to root
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(uiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initLogger writes to --log-file when given. The dashboard owns the
// terminal, so without a file its logs are dropped.
func initLogger(interactive bool) (*zap.Logger, error) {
	if logFile == "" && interactive {
		return zap.NewNop(), nil
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if logFile != "" {
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// resolveAPI applies flag, env, default precedence.
func resolveAPI() string {
	if apiURL != "" {
		return apiURL
	}
	if env := os.Getenv("COMPANYCTL_API"); env != "" {
		return env
	}
	return defaultAPI
}

func newClient() (*client.Client, error) {
	base := resolveAPI()
	logger.Debug("Using gateway", zap.String("api", base))
	return client.New(base)
}
