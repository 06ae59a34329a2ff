package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// runs the wordcue command tree
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func NewRootCommand() *cobra.Command {
	var (
		configFlag string
		outputFlag string
		verbose    bool
	)

	ctx := newCommandContext(&configFlag, &outputFlag, &verbose)

	rootCmd := &cobra.Command{
		Use:   "wordcue",
		Short: "Word-level subtitles from speech recognition output",
		Long: `wordcue turns word-level speech recognition results into subtitle files.

Every recognized word becomes its own cue, timed to the word's begin and
end offsets. Results can come from a saved recognizer JSON file or from a
recognition provider (OpenAI or Gemini).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				ctx.useDefaultLogger()
				return nil
			}
			return ctx.ensureConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "Output file path (- for stdout)")

	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newGenerateCommand(ctx))
	rootCmd.AddCommand(newTranslateCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
