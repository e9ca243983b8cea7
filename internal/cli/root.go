// Package cli provides the ncmctl operator command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/JonMunkholm/ncmlookup/internal/logging"
	"github.com/JonMunkholm/ncmlookup/internal/ncm"
)

// Version is set at build time.
var Version = "dev"

// Output formats accepted by --format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// options holds the persistent flags shared by every command.
type options struct {
	path         string
	resourceDir  string
	resourceName string
	databaseURL  string
	format       string
	verbose      bool

	logger *slog.Logger
}

// NewRootCmd creates and returns the root command. Flag defaults are read
// from the same environment variables the server uses.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "ncmctl",
		Short: "Operator tools for the NCM lookup service",
		Long: `ncmctl inspects and queries the NCM spreadsheet with the same engine the
API uses, and runs the database chores that do not belong behind HTTP.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.format != FormatTable && opts.format != FormatJSON {
				return fmt.Errorf("unknown format %q (want %s or %s)", opts.format, FormatTable, FormatJSON)
			}
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			opts.logger = logging.New(cmd.ErrOrStderr(), level, "text")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	bindFlags(rootCmd.PersistentFlags(), opts)

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{FormatTable, FormatJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newInspectCommand(opts))
	rootCmd.AddCommand(newSearchCommand(opts))
	rootCmd.AddCommand(newDetailsCommand(opts))
	rootCmd.AddCommand(newMigrateCommand(opts))
	rootCmd.AddCommand(newSessionsCommand(opts))

	return rootCmd
}

func bindFlags(fs *pflag.FlagSet, opts *options) {
	fs.StringVar(&opts.path, "path", os.Getenv("NCM_SPREADSHEET_PATH"), "Workbook to load (falls back to the resource directory when missing)")
	fs.StringVar(&opts.resourceDir, "resource-dir", envOr("NCM_RESOURCE_DIR", "resources"), "Directory holding the packaged workbook")
	fs.StringVar(&opts.resourceName, "resource-name", envOr("NCM_RESOURCE_NAME", ncm.DefaultResourceName), "Packaged workbook file name")
	fs.StringVar(&opts.databaseURL, "database-url", envOr("DATABASE_URL", os.Getenv("DB_URL")), "PostgreSQL connection string")
	fs.StringVarP(&opts.format, "format", "o", FormatTable, "Output format (table|json)")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Log sheet reports and other debug output to stderr")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// source is the workbook location described by the flags.
func (o *options) source() ncm.Source {
	return ncm.Source{
		Path:         o.path,
		ResourceDir:  o.resourceDir,
		ResourceName: o.resourceName,
	}
}
