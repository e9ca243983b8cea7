package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ncmlookup/internal/ncm"
)

func newInspectCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Load the workbook and print the per-sheet load report",
		Example: `  # Report on the packaged workbook
  ncmctl inspect

  # Report on another file, with debug logs
  ncmctl inspect --path ./Planilha_NCM.xlsx -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache := ncm.NewCache(opts.source(), ncm.WithLogger(opts.logger))
			snap, err := cache.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			if opts.format == FormatJSON {
				return renderJSON(cmd.OutOrStdout(), cache.Status())
			}
			return renderSheetReports(cmd.OutOrStdout(), snap)
		},
	}
}

func newSearchCommand(opts *options) *cobra.Command {
	var (
		field, query2, field2 string
		page, limit           int
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search items the same way GET /itens/search does",
		Example: `  ncmctl search motor
  ncmctl search 8407 --field NCM
  ncmctl search motor --q2 8501 --field2 NCM --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f1, err := searchField("field", field)
			if err != nil {
				return err
			}
			f2, err := searchField("field2", field2)
			if err != nil {
				return err
			}
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}

			var query string
			if len(args) == 1 {
				query = args[0]
			}

			cache := ncm.NewCache(opts.source(), ncm.WithLogger(opts.logger))
			result, err := cache.SearchItems(cmd.Context(), ncm.SearchRequest{
				Query:  query,
				Field:  f1,
				Query2: query2,
				Field2: f2,
				Page:   page,
				Limit:  limit,
			})
			if err != nil {
				return err
			}
			if opts.format == FormatJSON {
				return renderJSON(cmd.OutOrStdout(), result)
			}
			return renderPage(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&field, "field", ncm.FieldAll, "Column searched by the query")
	cmd.Flags().StringVar(&query2, "q2", "", "Second query, ANDed with the first")
	cmd.Flags().StringVar(&field2, "field2", ncm.FieldAll, "Column searched by --q2")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 15, "Rows per page")

	_ = cmd.RegisterFlagCompletionFunc("field", completeFields)
	_ = cmd.RegisterFlagCompletionFunc("field2", completeFields)

	return cmd
}

func newDetailsCommand(opts *options) *cobra.Command {
	var code, item string

	cmd := &cobra.Command{
		Use:   "details",
		Short: "Show every row for an NCM code or an item number",
		Example: `  ncmctl details --ncm 8407.10.00
  ncmctl details --item 12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache := ncm.NewCache(opts.source(), ncm.WithLogger(opts.logger))
			details, err := cache.GetDetails(cmd.Context(), code, item)
			if err != nil {
				return err
			}
			if opts.format == FormatJSON {
				return renderJSON(cmd.OutOrStdout(), details)
			}
			return renderDetails(cmd.OutOrStdout(), details)
		},
	}

	cmd.Flags().StringVar(&code, "ncm", "", "NCM code, matched ignoring punctuation")
	cmd.Flags().StringVar(&item, "item", "", "Item number, used when --ncm is empty")

	return cmd
}

// searchField returns the canonical spelling of value, matched without
// regard to case. Empty means ALL.
func searchField(flag, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return ncm.FieldAll, nil
	}
	names := ncm.SearchFieldNames()
	for _, name := range names {
		if strings.EqualFold(name, value) {
			return name, nil
		}
	}
	return "", fmt.Errorf("--%s must be one of %s", flag, strings.Join(names, ", "))
}

func completeFields(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return ncm.SearchFieldNames(), cobra.ShellCompDirectiveNoFileComp
}
