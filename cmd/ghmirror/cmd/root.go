package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bianoble/ghmirror/internal/engine"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags, resolved through viper so GHMIRROR_* variables can set them.
var (
	configPath string
	logLevel   string
	logFormat  string
	logFile    string
	verbose    bool
	quiet      bool
)

// exitCode is set by commands that report a batch result.
var exitCode int

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "ghmirror",
	Short: "Mirror GitHub releases and Actions artifacts into local directories",
	Long: `ghmirror polls GitHub repositories for new releases or completed workflow
runs and mirrors the matching files into one local directory per project. A
.version.json ledger in every directory records what was mirrored, so files are
only downloaded when upstream actually changed.

Exit status: 0 when nothing changed, 1 when at least one project was updated,
2 when the configuration could not be loaded.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath = v.GetString("config")
		logLevel = v.GetString("log-level")
		logFormat = v.GetString("log-format")
		logFile = v.GetString("log-file")
		verbose = v.GetBool("verbose")
		quiet = v.GetBool("quiet")
		return setupLogging(logrus.StandardLogger(), os.Stderr)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ghmirror %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to the project list (default: discovered projects.yaml)")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "text", "log format: text or json")
	flags.StringVar(&logFile, "log-file", "", "also write logs to this file, rotated by size")
	flags.BoolVar(&verbose, "verbose", false, "detailed output")
	flags.BoolVar(&quiet, "quiet", false, "minimal output (errors only)")

	v.SetEnvPrefix("GHMIRROR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	rootCmd.AddCommand(versionCmd)
}

// setupLogging configures logger from the global logging flags. Logs go to
// stderr and, when --log-file is set, to a size-rotated file as well.
func setupLogging(logger *logrus.Logger, stderr io.Writer) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	switch {
	case verbose && level < logrus.DebugLevel:
		level = logrus.DebugLevel
	case quiet && level > logrus.WarnLevel:
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	switch logFormat {
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid --log-format %q, must be text or json", logFormat)
	}

	out := stderr
	if logFile != "" {
		out = io.MultiWriter(stderr, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
		})
	}
	logger.SetOutput(out)
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	exitCode = engine.ExitUnchanged
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return engine.ExitFatal
	}
	return exitCode
}
