package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/wordcue/internal/config"
	"github.com/mgpai22/wordcue/internal/subtitle"
	"github.com/mgpai22/wordcue/internal/translate"
)

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var (
		targetLang   string
		inputLang    string
		overlay      bool
		providerFlag string
		modelFlag    string
		apiKeyFlag   string
		promptFlag   string
		formatFlag   string
		batchSize    int
		concurrency  int
	)

	cmd := &cobra.Command{
		Use:   "translate <subtitle_file>",
		Short: "Translate subtitles to another language using AI",
		Long: `Translate an existing SRT, VTT or ASS/SSA subtitle file cue by cue.

Timing is kept as is; only the cue text changes. The --overlay flag creates
bilingual subtitles with the translated text first, followed by the
original text on the next line.

Examples:
  wordcue translate talk.srt --target-language english
  wordcue translate talk.srt -t ja --overlay
  wordcue translate talk.vtt -l chinese -t spanish --provider anthropic -o talk.es.vtt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			cfg := ctx.config
			logger := ctx.logger

			if strings.TrimSpace(targetLang) == "" {
				return fmt.Errorf("target language is required")
			}
			if inputLang != "" && strings.EqualFold(strings.TrimSpace(inputLang), strings.TrimSpace(targetLang)) {
				return fmt.Errorf("input language %q and target language %q cannot be the same", inputLang, targetLang)
			}

			provider := translate.Provider(firstNonEmpty(providerFlag, cfg.Translate.Provider))
			apiKey := resolveAPIKey(apiKeyFlag, string(provider), cfg.Translate.Provider, cfg.Translate.APIKey)
			if apiKey == "" {
				return fmt.Errorf(
					"API key is required: use --api-key flag or set %s environment variable",
					config.APIKeyEnv(string(provider)),
				)
			}

			if batchSize <= 0 {
				batchSize = cfg.Translate.BatchSize
			}
			if concurrency <= 0 {
				concurrency = cfg.Translate.Concurrency
			}

			cues, inputFormat, err := subtitle.Open(input)
			if err != nil {
				return fmt.Errorf("failed to parse subtitle file: %w", err)
			}
			if len(cues) == 0 {
				return fmt.Errorf("subtitle file contains no entries")
			}

			format, err := resolveFormat(formatFlag, ctx.output(), string(inputFormat))
			if err != nil {
				return err
			}

			outputPath := ctx.output()
			if outputPath == "" {
				base := strings.TrimSuffix(input, filepath.Ext(input))
				suffix := targetLang
				if overlay {
					suffix += ".overlay"
				}
				outputPath = fmt.Sprintf("%s.%s%s", base, suffix, subtitle.ExtensionForFormat(format))
			}

			translator, err := translate.Factory(cmd.Context(), provider, apiKey, translate.Options{
				InputLanguage:  inputLang,
				TargetLanguage: targetLang,
				Model:          firstNonEmpty(modelFlag, cfg.Translate.Model),
				Prompt:         promptFlag,
				BatchSize:      batchSize,
				Concurrency:    concurrency,
			}, logger)
			if err != nil {
				return fmt.Errorf("failed to create translator: %w", err)
			}

			logger.Infow("Starting subtitle translation",
				"input", input,
				"output", outputPath,
				"entries", len(cues),
				"provider", provider,
				"target_language", targetLang,
				"overlay", overlay,
			)

			translated, err := translate.Cues(cmd.Context(), translator, cues, overlay)
			if err != nil {
				return fmt.Errorf("translation failed: %w", err)
			}

			writer, err := subtitle.NewWriter(format)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd, outputPath, writer.Render(translated)); err != nil {
				return err
			}

			if outputPath != stdioPath {
				absOutput, _ := filepath.Abs(outputPath)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Subtitles translated successfully: %s\n", absOutput)
				fmt.Fprintf(out, "  Entries: %d\n", len(translated))
				fmt.Fprintf(out, "  Target language: %s\n", targetLang)
				if overlay {
					fmt.Fprintln(out, "  Mode: bilingual overlay")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetLang, "target-language", "t", "", "Target language for translation (required)")
	cmd.Flags().StringVarP(&inputLang, "language", "l", "", "Language of the input subtitles")
	cmd.Flags().BoolVar(&overlay, "overlay", false, "Overlay translated text with original (bilingual subtitles)")
	cmd.Flags().StringVarP(&providerFlag, "provider", "p", "", "Translation provider (gemini, openai, anthropic)")
	cmd.Flags().StringVar(&modelFlag, "model", "", "Model to use (provider default when empty)")
	cmd.Flags().StringVarP(&apiKeyFlag, "api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	cmd.Flags().StringVar(&promptFlag, "prompt", "", "Additional instructions for the translator")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output subtitle format (default: same as input)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Number of subtitle entries per API request (default from config)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Number of parallel translation requests (default from config)")

	_ = cmd.MarkFlagRequired("target-language")
	return cmd
}
