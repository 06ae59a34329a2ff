package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/wordcue/internal/subtitle"
	"github.com/mgpai22/wordcue/internal/transcript"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		formatFlag  string
		charsetFlag string
	)

	cmd := &cobra.Command{
		Use:   "convert <transcript.json>",
		Short: "Convert a word-level recognition result into subtitles",
		Long: `Convert a saved word-level recognition result into a subtitle file.

The input is a JSON array of sentences, each holding a "words" array of
{begin_time, end_time, text, punctuation} objects with times in
milliseconds. Every word becomes one cue. Use - to read from stdin.

Examples:
  wordcue convert result.json
  wordcue convert result.json -f vtt
  wordcue convert result.json --charset gbk -o out/talk.srt
  cat result.json | wordcue convert - -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			cfg := ctx.config
			logger := ctx.logger

			data, err := readInput(cmd, input)
			if err != nil {
				return err
			}

			format, err := resolveFormat(formatFlag, ctx.output(), cfg.Subtitle.Format)
			if err != nil {
				return err
			}

			outputPath := ctx.output()
			if outputPath == "" {
				outputPath = defaultOutputPath(input, format)
			}

			builder, err := newBuilder(firstNonEmpty(charsetFlag, cfg.Subtitle.Charset), logger)
			if err != nil {
				return err
			}

			t, err := transcript.Parse(data)
			if err != nil {
				return fmt.Errorf("invalid transcript %s: %w", input, err)
			}

			logger.Infow("Converting transcript",
				"input", input,
				"output", outputPath,
				"format", format,
				"sentences", len(t),
				"words", t.WordCount(),
			)

			var content string
			if format == subtitle.FormatSRT {
				content, err = builder.Build(t)
			} else {
				content, err = render(builder, t, format)
			}
			if err != nil {
				return err
			}

			if err := writeOutput(cmd, outputPath, content); err != nil {
				return err
			}

			if outputPath != stdioPath {
				absOutput, _ := filepath.Abs(outputPath)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Subtitles written: %s\n", absOutput)
				fmt.Fprintf(out, "  Entries: %d\n", t.WordCount())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output subtitle format (srt, vtt, ass)")
	cmd.Flags().StringVar(&charsetFlag, "charset", "", "Charset of byte-encoded token text (default from config, utf-8)")
	return cmd
}

// renders a transcript with the writer for format
func render(builder *subtitle.Builder, t transcript.Transcript, format subtitle.Format) (string, error) {
	cues, err := builder.Cues(t)
	if err != nil {
		return "", err
	}
	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return "", err
	}
	return writer.Render(cues), nil
}
