package main

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "neocare-server",
		Short:         "NeoCare clinical dashboard metrics API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(reportCmd())
	return root
}

// newLogger writes JSON to out, or a console format in development.
func newLogger(out io.Writer, env, level string) zerolog.Logger {
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: out}
	}
	logger := zerolog.New(out).With().Timestamp().Logger()

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}
