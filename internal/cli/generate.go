package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/wordcue/internal/audio"
	"github.com/mgpai22/wordcue/internal/cache"
	"github.com/mgpai22/wordcue/internal/config"
	"github.com/mgpai22/wordcue/internal/transcribe"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		providerFlag   string
		modelFlag      string
		apiKeyFlag     string
		languageFlag   string
		promptFlag     string
		formatFlag     string
		charsetFlag    string
		noCache        bool
		saveTranscript string
	)

	cmd := &cobra.Command{
		Use:   "generate <audio>",
		Short: "Transcribe audio and write word-level subtitles",
		Long: `Send an audio file to a recognition provider and write one subtitle cue
per recognized word.

Providers:
  openai   Audio transcription API with word timestamps (default model whisper-1)
  gemini   Gemini multimodal model (default model gemini-2.5-flash); also
           accepts http(s):// and gs:// audio locators
  file     Reads a saved recognizer JSON file instead of audio

Results are cached per audio file, provider, model and language unless
--no-cache is given or the cache is disabled in the config.

Examples:
  wordcue generate talk.mp3
  wordcue generate talk.mp3 --provider gemini -l zh -f vtt
  wordcue generate talk.mp3 --save-transcript talk.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locator := args[0]
			cfg := ctx.config
			logger := ctx.logger

			provider := transcribe.Provider(firstNonEmpty(providerFlag, cfg.Transcribe.Provider))
			apiKey := resolveAPIKey(apiKeyFlag, string(provider), cfg.Transcribe.Provider, cfg.Transcribe.APIKey)
			if provider != transcribe.ProviderFile && apiKey == "" {
				return fmt.Errorf(
					"API key is required: use --api-key flag or set %s environment variable",
					config.APIKeyEnv(string(provider)),
				)
			}

			if !audio.IsRemote(locator) {
				if _, err := os.Stat(locator); os.IsNotExist(err) {
					return fmt.Errorf("file not found: %s", locator)
				}
			}
			if provider != transcribe.ProviderFile && !audio.IsAudioFile(locator) {
				logger.Warnw("Input does not look like audio; sending it anyway", "input", locator)
			}

			format, err := resolveFormat(formatFlag, ctx.output(), cfg.Subtitle.Format)
			if err != nil {
				return err
			}
			outputPath := ctx.output()
			if outputPath == "" {
				local := locator
				if audio.IsRemote(locator) {
					local = filepath.Base(locator)
				}
				outputPath = defaultOutputPath(local, format)
			}

			builder, err := newBuilder(firstNonEmpty(charsetFlag, cfg.Subtitle.Charset), logger)
			if err != nil {
				return err
			}

			opts := transcribe.Options{
				Language: firstNonEmpty(languageFlag, cfg.Transcribe.Language),
				Model:    firstNonEmpty(modelFlag, cfg.Transcribe.Model),
				Prompt:   promptFlag,
			}

			var transcriber transcribe.Transcriber
			transcriber, err = transcribe.Factory(cmd.Context(), provider, apiKey, opts)
			if err != nil {
				return fmt.Errorf("failed to create transcriber: %w", err)
			}

			if cfg.Cache.Enabled && !noCache && provider != transcribe.ProviderFile {
				store, err := cache.Open(cfg.Cache.Path)
				if err != nil {
					logger.Warnw("Transcript cache unavailable", "path", cfg.Cache.Path, "error", err)
				} else {
					defer store.Close()
					transcriber = transcribe.WithCache(transcriber, store, provider, opts, logger)
				}
			}

			logger.Infow("Starting transcription",
				"input", locator,
				"output", outputPath,
				"provider", provider,
				"language", opts.Language,
			)

			result, err := transcriber.Transcribe(cmd.Context(), locator)
			if err != nil {
				return fmt.Errorf("transcription failed: %w", err)
			}

			logger.Infow("Transcription complete",
				"sentences", len(result),
				"words", result.WordCount(),
			)

			if saveTranscript != "" {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode transcript: %w", err)
				}
				if err := writeOutput(cmd, saveTranscript, string(data)+"\n"); err != nil {
					return err
				}
			}

			content, err := render(builder, result, format)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd, outputPath, content); err != nil {
				return err
			}

			if outputPath != stdioPath {
				absOutput, _ := filepath.Abs(outputPath)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Subtitles generated successfully: %s\n", absOutput)
				fmt.Fprintf(out, "  Entries: %d\n", result.WordCount())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerFlag, "provider", "p", "", "Recognition provider (openai, gemini, file)")
	cmd.Flags().StringVar(&modelFlag, "model", "", "Model to use (provider default when empty)")
	cmd.Flags().StringVarP(&apiKeyFlag, "api-key", "k", "", "API key (or set OPENAI_API_KEY/GEMINI_API_KEY env var)")
	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Language code hint (e.g., en, zh)")
	cmd.Flags().StringVar(&promptFlag, "prompt", "", "Extra context for the recognizer")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output subtitle format (srt, vtt, ass)")
	cmd.Flags().StringVar(&charsetFlag, "charset", "", "Charset of byte-encoded token text")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the transcript cache")
	cmd.Flags().StringVar(&saveTranscript, "save-transcript", "", "Also write the word-level transcript JSON to this path")
	return cmd
}
