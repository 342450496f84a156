package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/app"
)

func newBuildCmd(opts *rootOptions) *cobra.Command {
	var source, csvPath string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the TF-IDF and embedding indices from the corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if source != "" {
				cfg.Corpus.Source = source
			}
			if csvPath != "" {
				cfg.Corpus.CSVPath = csvPath
			}
			ctx := cmd.Context()
			src, closeSrc, err := app.CorpusSource(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeSrc()

			engine, err := app.NewEngine(cfg, src, nil, nil)
			if err != nil {
				return err
			}
			report, err := engine.Build(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d pages into %s (vocabulary %d, %d-dim %s embeddings)\n",
				report.Pages, report.DataDir, report.Vocabulary, report.Dim, report.Model)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "corpus source: csv or postgres")
	cmd.Flags().StringVar(&csvPath, "csv", "", "corpus CSV path")
	return cmd
}
