package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"libris/internal/audio"
	"libris/internal/services"
	"libris/internal/summary"
)

func newListenCommand(ctx *commandContext) *cobra.Command {
	var title string
	var authors []string
	var language string
	var style string
	var outputPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "listen <book-id>",
		Short: "Generate a summary and render it as audio",
		Long: `Summarize a book and synthesize the summary as speech. When the
text-to-speech service is unavailable the audio falls back to a generated
placeholder waveform so a file is always produced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summarizer, err := ctx.summaryOrchestrator()
			if err != nil {
				return err
			}
			speaker, err := ctx.audioOrchestrator()
			if err != nil {
				return err
			}

			bookID := args[0]
			runCtx := services.WithRequestID(cmd.Context(), uuid.NewString())
			runCtx = services.WithBookID(runCtx, bookID)

			summarized, err := summarizer.Summarize(runCtx, summary.Request{
				BookID:   bookID,
				Title:    title,
				Authors:  authors,
				Language: language,
				Style:    style,
			})
			if err != nil {
				return err
			}

			rendered, err := speaker.Listen(runCtx, audio.Request{
				SummaryID: summarized.ID,
				BookID:    bookID,
				Text:      summarized.Text,
				Language:  language,
			})
			if err != nil {
				return err
			}

			if outputPath != "" {
				if err := copyFile(rendered.FilePath, outputPath); err != nil {
					return fmt.Errorf("copy audio to %s: %w", outputPath, err)
				}
				rendered.FilePath = outputPath
			}

			if jsonOutput {
				return writeJSON(cmd, rendered)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "audio: %s\n", rendered.FilePath)
			fmt.Fprintf(out, "duration: %.1fs  size: %s  voice: %s\n",
				rendered.DurationSeconds,
				humanize.Bytes(uint64(rendered.SizeKB)*1024),
				rendered.Model)
			if rendered.SyntheticFallback {
				fmt.Fprintln(out, "note: speech service unavailable, audio is a synthetic placeholder")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Book title (used for metadata fallback)")
	cmd.Flags().StringArrayVarP(&authors, "author", "a", nil, "Book author (repeatable)")
	cmd.Flags().StringVarP(&language, "language", "l", "en", "Summary and speech language code")
	cmd.Flags().StringVarP(&style, "style", "s", "concise", "Summary style")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Copy the audio file to this path")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of text")
	return cmd
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
