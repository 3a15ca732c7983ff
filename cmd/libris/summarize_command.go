package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"libris/internal/services"
	"libris/internal/summary"
)

func newSummarizeCommand(ctx *commandContext) *cobra.Command {
	var title string
	var authors []string
	var language string
	var style string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "summarize <book-id>",
		Short: "Generate an AI summary of a book",
		Long: `Generate an AI summary of a book identified by its composite ID
(for example gutenberg:345 from a previous search). Gutenberg books are
summarized from their full text; other catalogs fall back to metadata.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orchestrator, err := ctx.summaryOrchestrator()
			if err != nil {
				return err
			}

			bookID := args[0]
			runCtx := services.WithRequestID(cmd.Context(), uuid.NewString())
			runCtx = services.WithBookID(runCtx, bookID)
			result, err := orchestrator.Summarize(runCtx, summary.Request{
				BookID:   bookID,
				Title:    title,
				Authors:  authors,
				Language: language,
				Style:    style,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, result)
			}
			printSummary(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Book title (used for metadata fallback)")
	cmd.Flags().StringArrayVarP(&authors, "author", "a", nil, "Book author (repeatable)")
	cmd.Flags().StringVarP(&language, "language", "l", "en", "Summary language code")
	cmd.Flags().StringVarP(&style, "style", "s", "concise", "Summary style: concise, detailed, academic, or simple")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of text")
	return cmd
}

func printSummary(cmd *cobra.Command, result summary.Result) {
	out := cmd.OutOrStdout()
	if result.Title != "" {
		fmt.Fprintf(out, "%s (%s, %s)\n\n", result.Title, result.Style, result.Language)
	}
	fmt.Fprintln(out, result.Text)
	fmt.Fprintf(out, "\n%d words", result.WordCount)
	switch {
	case result.FromStore:
		fmt.Fprint(out, " (reused stored summary)")
	case result.FromMetadata:
		fmt.Fprint(out, " (generated from metadata only)")
	}
	fmt.Fprintf(out, "\nsummary id: %s\n", result.ID)
}
