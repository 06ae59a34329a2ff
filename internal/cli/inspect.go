package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/wordcue/internal/subtitle"
	"github.com/mgpai22/wordcue/internal/transcript"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var (
		limit       int
		charsetFlag string
	)

	cmd := &cobra.Command{
		Use:   "inspect <subtitle_file|transcript.json>",
		Short: "Show the cues of a subtitle file or transcript as a table",
		Long: `Print cue timing and text as a table.

JSON input is read as a word-level transcript and shown as the cues
convert would produce; SRT, VTT and ASS files are parsed directly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]

			var cues []subtitle.Cue
			if strings.EqualFold(filepath.Ext(input), ".json") {
				data, err := readInput(cmd, input)
				if err != nil {
					return err
				}
				t, err := transcript.Parse(data)
				if err != nil {
					return fmt.Errorf("invalid transcript %s: %w", input, err)
				}
				builder, err := newBuilder(firstNonEmpty(charsetFlag, ctx.config.Subtitle.Charset), ctx.logger)
				if err != nil {
					return err
				}
				if cues, err = builder.Cues(t); err != nil {
					return err
				}
			} else {
				var err error
				if cues, _, err = subtitle.Open(input); err != nil {
					return fmt.Errorf("failed to parse subtitle file: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderCueTable(cues, limit))
			fmt.Fprintln(out, cueSummary(cues))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many cues (0 for all)")
	cmd.Flags().StringVar(&charsetFlag, "charset", "", "Charset of byte-encoded token text")
	return cmd
}

func renderCueTable(cues []subtitle.Cue, limit int) string {
	shown := cues
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	rows := make([][]string, 0, len(shown))
	for _, cue := range shown {
		rows = append(rows, []string{
			strconv.Itoa(cue.Index),
			subtitle.FormatTimecode(cue.Start),
			subtitle.FormatTimecode(cue.End),
			formatSeconds(cue.End - cue.Start),
			strings.ReplaceAll(cue.Text, "\n", " / "),
		})
	}

	return renderTable(
		[]string{"#", "Start", "End", "Duration", "Text"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func cueSummary(cues []subtitle.Cue) string {
	if len(cues) == 0 {
		return "0 cues"
	}
	first, last := cues[0].Start, cues[0].End
	for _, cue := range cues {
		first = min(first, cue.Start)
		last = max(last, cue.End)
	}
	return fmt.Sprintf("%d cues spanning %s to %s", len(cues), subtitle.FormatTimecode(first), subtitle.FormatTimecode(last))
}

func formatSeconds(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64) + "s"
}
