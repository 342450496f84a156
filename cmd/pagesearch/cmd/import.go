package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/postgres"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var csvPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load the corpus CSV into the PostgreSQL corpus table, replacing its rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if csvPath == "" {
				csvPath = cfg.Corpus.CSVPath
			}
			ctx := cmd.Context()
			entries, err := corpus.NewCSVSource(csvPath).Load(ctx)
			if err != nil {
				return err
			}
			if _, err := corpus.New(entries); err != nil {
				return err
			}

			client, err := postgres.New(ctx, cfg.Postgres)
			if err != nil {
				return err
			}
			defer client.Close()
			store := corpus.NewPostgresStore(client, cfg.Corpus.Table)
			if err := store.EnsureSchema(ctx); err != nil {
				return err
			}
			if err := store.Replace(ctx, entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d pages from %s into %s\n", len(entries), csvPath, cfg.Corpus.Table)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "corpus CSV path (defaults to corpus.csvPath)")
	return cmd
}
