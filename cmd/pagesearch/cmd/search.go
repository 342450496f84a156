package cmd

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/app"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/parser"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		mode   string
		topK   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one query and print the ranked pages",
		Example: `  pagesearch search "inverted index"
  pagesearch search "vector space model" --mode lexical --top-k 10`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			idx, err := app.NewIndex(cfg, nil)
			if err != nil {
				return err
			}
			plan, err := parser.Parse(strings.Join(args, " "), mode, strconv.Itoa(topK),
				app.Normalizer(cfg.Normalize), app.Limits(cfg.Search))
			if err != nil {
				return err
			}
			result, err := executor.New(idx, nil).Execute(cmd.Context(), plan)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "both", "lexical, semantic or both")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "number of results per strategy")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func printResult(w io.Writer, result *executor.SearchResult) {
	if result.Mode.Lexical() {
		printResults(w, result.Lexical, lexicalHeader(result.TopK))
	}
	if result.Mode.Semantic() {
		printResults(w, result.Semantic, semanticHeader(result.TopK))
	}
}
