package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/wordcue/internal/config"
	"github.com/mgpai22/wordcue/internal/logging"
	"github.com/mgpai22/wordcue/internal/subtitle"
	"github.com/mgpai22/wordcue/internal/transcript"
)

const stdioPath = "-"

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// The --format flag wins, then the extension of the output path, then
// the configured default.
func resolveFormat(flagValue, outputPath, fallback string) (subtitle.Format, error) {
	if name := strings.ToLower(strings.TrimSpace(flagValue)); name != "" {
		format, ok := subtitle.ParseFormat(name)
		if !ok {
			return "", fmt.Errorf("unsupported format %q: use srt, vtt, or ass", flagValue)
		}
		return format, nil
	}

	if outputPath != "" && outputPath != stdioPath {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(outputPath), "."))
		if format, ok := subtitle.ParseFormat(ext); ok {
			return format, nil
		}
	}

	format, ok := subtitle.ParseFormat(strings.ToLower(fallback))
	if !ok {
		return "", fmt.Errorf("unsupported format %q: use srt, vtt, or ass", fallback)
	}
	return format, nil
}

// input path with its extension replaced by the format's
func defaultOutputPath(input string, format subtitle.Format) string {
	if input == stdioPath {
		return stdioPath
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + subtitle.ExtensionForFormat(format)
}

// provider's key from flag, then config when the provider matches, then env
func resolveAPIKey(flagValue, provider, configProvider, configKey string) string {
	if key := strings.TrimSpace(flagValue); key != "" {
		return key
	}
	if provider == configProvider && strings.TrimSpace(configKey) != "" {
		return configKey
	}
	return os.Getenv(config.APIKeyEnv(provider))
}

func newBuilder(charset string, logger *logging.Logger) (*subtitle.Builder, error) {
	decoder, err := transcript.NewDecoder(charset)
	if err != nil {
		return nil, err
	}
	return subtitle.NewBuilder(decoder, logger), nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == stdioPath {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == stdioPath {
		_, err := io.WriteString(cmd.OutOrStdout(), content)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
