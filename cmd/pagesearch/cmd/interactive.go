package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/app"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
)

func newInteractiveCmd(opts *rootOptions) *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"repl"},
		Short:   "Choose a search mode and query repeatedly until an empty line",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			idx, err := app.NewIndex(cfg, nil)
			if err != nil {
				return err
			}
			s := &session{
				in:         bufio.NewScanner(cmd.InOrStdin()),
				out:        cmd.OutOrStdout(),
				exec:       executor.New(idx, nil),
				normalizer: app.Normalizer(cfg.Normalize),
				limits:     app.Limits(cfg.Search),
				topK:       topK,
			}
			return s.run(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "number of results per strategy")
	return cmd
}

type searchExecutor interface {
	Execute(ctx context.Context, plan *parser.Plan) (*executor.SearchResult, error)
}

type session struct {
	in         *bufio.Scanner
	out        io.Writer
	exec       searchExecutor
	normalizer textnorm.Normalizer
	limits     parser.Limits
	topK       int
}

func (s *session) run(ctx context.Context) error {
	fmt.Fprintln(s.out, "=== Page Search over Lecture Slides ===")
	fmt.Fprintln(s.out, "This CLI lets you search using:")
	fmt.Fprintln(s.out, "  - TF-IDF (classic IR)")
	fmt.Fprintln(s.out, "  - Transformer Embeddings (semantic search)")
	fmt.Fprintln(s.out, "-------------------------------------------------")

	mode, ok := s.chooseMode()
	if !ok {
		fmt.Fprintln(s.out, "\nExiting...")
		return nil
	}
	fmt.Fprintln(s.out, "\nType your query (press Enter on empty line to exit).")

	for {
		fmt.Fprint(s.out, "\nQuery: ")
		if !s.in.Scan() {
			fmt.Fprintln(s.out, "\nExiting...")
			return s.in.Err()
		}
		query := strings.TrimSpace(s.in.Text())
		if query == "" {
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		}
		plan, err := parser.Parse(query, string(mode), strconv.Itoa(s.topK), s.normalizer, s.limits)
		if err != nil {
			return err
		}
		result, err := s.exec.Execute(ctx, plan)
		if err != nil {
			if errors.Is(err, apperrors.ErrIndexNotBuilt) {
				return fmt.Errorf("%w (run `pagesearch build` first)", err)
			}
			fmt.Fprintf(s.out, "Search failed: %v\n", err)
			continue
		}
		printResult(s.out, result)
	}
}

// chooseMode prompts until the user enters 1, 2 or 3. It returns false when
// input ends first.
func (s *session) chooseMode() (parser.Mode, bool) {
	fmt.Fprintln(s.out, "Choose search mode:")
	fmt.Fprintln(s.out, "1) TF-IDF (keyword-based IR)")
	fmt.Fprintln(s.out, "2) Embeddings (semantic search)")
	fmt.Fprintln(s.out, "3) Both (compare TF-IDF and Embeddings)")
	for {
		fmt.Fprint(s.out, "Enter 1, 2, or 3: ")
		if !s.in.Scan() {
			return "", false
		}
		switch choice := strings.TrimSpace(s.in.Text()); choice {
		case "1", "2", "3":
			mode, _ := parser.ParseMode(choice)
			return mode, true
		}
		fmt.Fprintln(s.out, "Invalid choice. Please enter 1, 2, or 3.")
	}
}
