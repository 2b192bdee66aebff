// Command crf is the terminal front end for the case report form engine:
// interactive capture, printable previews, schema inspection, variable
// management, and local draft housekeeping.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/datalab/go-crf/internal/config"
	"github.com/datalab/go-crf/pkg/api"
	"github.com/datalab/go-crf/pkg/audit"
	"github.com/datalab/go-crf/pkg/draft"
	"github.com/datalab/go-crf/pkg/schema/source"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "crf",
	Short: "Case report form capture for case-control studies",
	Long: `crf drives the dynamic case report form of a case-control study from
the terminal: it loads the variable catalog, walks the visible fields for
the selected group, keeps autosaved local drafts, and submits completed
forms to the study backend.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger = newLogger(cfg.LogLevel, verbose)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(varsCmd)
	rootCmd.AddCommand(draftsCmd)
}

func newLogger(level string, verbose bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func newClient() *api.Client {
	opts := []api.Option{api.WithLogger(logger)}
	if cfg.APIToken != "" {
		opts = append(opts, api.WithToken(cfg.APIToken))
	}
	return api.New(cfg.APIBaseURL, opts...)
}

// newProvider prefers a file-based schema when one is configured; otherwise
// the backend's variable catalog is the source of truth.
func newProvider() *source.Provider {
	var src source.Source
	if cfg.SchemaSource != "" {
		src = source.FromFile(cfg.SchemaSource)
	} else {
		src = source.FromURL(strings.TrimRight(cfg.APIBaseURL, "/") + "/variables")
	}
	return source.New(src, source.WithLogger(logger))
}

func openStore() (*draft.SQLiteStore, error) {
	return draft.OpenSQLite(cfg.DraftDB)
}

func auditPolicy() audit.Policy {
	if cfg.Policy == "lenient" {
		return audit.PolicyLenient
	}
	return audit.PolicyStrict
}
