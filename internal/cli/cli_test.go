package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/wordcue/internal/subtitle"
	"github.com/mgpai22/wordcue/internal/transcript"
)

const sampleTranscript = `[
	{"words": [
		{"begin_time": 0, "end_time": 500, "text": "Hello", "punctuation": ","},
		{"begin_time": 500, "end_time": 1000, "text": "world", "punctuation": "!"}
	]},
	{"words": []},
	{"words": [
		{"begin_time": 3600000, "end_time": 3601500, "text": [228, 189, 160, 229, 165, 189]}
	]}
]`

const sampleSRT = "1\n00:00:00,000 --> 00:00:00,500\nHello,\n\n" +
	"2\n00:00:00,500 --> 00:00:01,000\nworld!\n\n" +
	"3\n01:00:00,000 --> 01:00:01,500\n你好\n"

type cliEnv struct {
	dir        string
	configPath string
}

// isolated HOME and an empty config so tests never touch the real user setup
func setupCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, key := range []string{"OPENAI_API_KEY", "GEMINI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(key, "")
	}

	configPath := filepath.Join(dir, "wordcue.toml")
	content := "[logging]\nlevel = \"error\"\nformat = \"json\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cliEnv{dir: dir, configPath: configPath}
}

func (e cliEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, env cliEnv, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestConvertWritesSRT(t *testing.T) {
	env := setupCLIEnv(t)
	input := env.write(t, "talk.json", sampleTranscript)

	out, err := runCLI(t, env, "", "convert", input)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(out, "Entries: 3") {
		t.Errorf("unexpected summary: %q", out)
	}

	got := readFile(t, filepath.Join(env.dir, "talk.srt"))
	if got != sampleSRT {
		t.Errorf("convert output = %q, want %q", got, sampleSRT)
	}
}

func TestConvertStdinToStdout(t *testing.T) {
	env := setupCLIEnv(t)

	out, err := runCLI(t, env, sampleTranscript, "convert", "-", "-o", "-")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if out != sampleSRT {
		t.Errorf("stdout = %q, want %q", out, sampleSRT)
	}
}

func TestConvertFormatFromOutputExtension(t *testing.T) {
	env := setupCLIEnv(t)
	input := env.write(t, "talk.json", sampleTranscript)
	output := filepath.Join(env.dir, "out", "talk.vtt")

	if _, err := runCLI(t, env, "", "convert", input, "-o", output); err != nil {
		t.Fatalf("convert: %v", err)
	}
	got := readFile(t, output)
	if !strings.HasPrefix(got, "WEBVTT\n") || !strings.Contains(got, "01:00:00.000 --> 01:00:01.500") {
		t.Errorf("unexpected VTT output: %q", got)
	}
}

func TestConvertRejectsWrongShape(t *testing.T) {
	env := setupCLIEnv(t)
	input := env.write(t, "bad.json", `{"words": []}`)

	_, err := runCLI(t, env, "", "convert", input)
	if !errors.Is(err, transcript.ErrInvalidInputKind) {
		t.Fatalf("expected ErrInvalidInputKind, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(env.dir, "bad.srt")); !os.IsNotExist(statErr) {
		t.Error("no output should be written for invalid input")
	}
}

func TestConvertCharset(t *testing.T) {
	env := setupCLIEnv(t)
	// 你好 in GBK
	input := env.write(t, "gbk.json", `[{"words": [{"begin_time": 0, "end_time": 10, "text": [196, 227, 186, 195]}]}]`)

	out, err := runCLI(t, env, "", "convert", input, "--charset", "gbk", "-o", "-")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(out, "你好") {
		t.Errorf("expected decoded text, got %q", out)
	}

	if _, err := runCLI(t, env, "", "convert", input, "--charset", "no-such-charset"); err == nil {
		t.Error("expected error for unknown charset")
	}
}

func TestGenerateWithFileProvider(t *testing.T) {
	env := setupCLIEnv(t)
	input := env.write(t, "talk.json", sampleTranscript)
	saved := filepath.Join(env.dir, "saved.json")
	output := filepath.Join(env.dir, "talk.ass")

	out, err := runCLI(t, env, "", "generate", input, "--provider", "file", "-o", output, "--save-transcript", saved)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "Subtitles generated successfully") {
		t.Errorf("unexpected summary: %q", out)
	}

	cues, format, err := subtitle.Open(output)
	if err != nil {
		t.Fatalf("open generated file: %v", err)
	}
	if format != subtitle.FormatASS || len(cues) != 3 || cues[2].Text != "你好" {
		t.Errorf("unexpected generated cues: %+v", cues)
	}

	reparsed, err := transcript.Parse([]byte(readFile(t, saved)))
	if err != nil {
		t.Fatalf("saved transcript does not parse: %v", err)
	}
	if reparsed.WordCount() != 3 {
		t.Errorf("saved transcript has %d words, want 3", reparsed.WordCount())
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	env := setupCLIEnv(t)
	audio := env.write(t, "talk.mp3", "not really audio")

	_, err := runCLI(t, env, "", "generate", audio, "--provider", "openai")
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected missing key error naming OPENAI_API_KEY, got %v", err)
	}
}

func TestGenerateMissingAudio(t *testing.T) {
	env := setupCLIEnv(t)

	_, err := runCLI(t, env, "", "generate", filepath.Join(env.dir, "missing.mp3"), "-k", "sk-test")
	if err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Fatalf("expected file not found error, got %v", err)
	}
}

func TestTranslateValidation(t *testing.T) {
	env := setupCLIEnv(t)
	input := env.write(t, "talk.srt", sampleSRT)

	if _, err := runCLI(t, env, "", "translate", input); err == nil {
		t.Error("expected error for missing target language")
	}

	_, err := runCLI(t, env, "", "translate", input, "-t", "English", "-l", "english", "-k", "key")
	if err == nil || !strings.Contains(err.Error(), "cannot be the same") {
		t.Errorf("expected same-language error, got %v", err)
	}

	_, err = runCLI(t, env, "", "translate", input, "-t", "English", "--provider", "anthropic")
	if err == nil || !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
		t.Errorf("expected missing key error, got %v", err)
	}
}

func TestInspect(t *testing.T) {
	env := setupCLIEnv(t)
	srt := env.write(t, "talk.srt", sampleSRT)
	json := env.write(t, "talk.json", sampleTranscript)

	for _, input := range []string{srt, json} {
		out, err := runCLI(t, env, "", "inspect", input)
		if err != nil {
			t.Fatalf("inspect %s: %v", input, err)
		}
		for _, want := range []string{"Hello,", "world!", "你好", "01:00:00,000", "1.500s", "3 cues spanning 00:00:00,000 to 01:00:01,500"} {
			if !strings.Contains(out, want) {
				t.Errorf("inspect %s output missing %q:\n%s", filepath.Base(input), want, out)
			}
		}
	}

	out, err := runCLI(t, env, "", "inspect", srt, "-n", "1")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if strings.Contains(out, "world!") {
		t.Error("limit should hide later cues")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLIEnv(t)
	target := filepath.Join(env.dir, "conf", "config.toml")

	out, err := runCLI(t, env, "", "config", "init", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Errorf("unexpected output: %q", out)
	}

	if _, err := runCLI(t, env, "", "config", "init", target); err == nil {
		t.Error("expected error when config already exists")
	}
	if _, err := runCLI(t, env, "", "config", "init", target, "--overwrite"); err != nil {
		t.Errorf("overwrite: %v", err)
	}

	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--config", target, "config", "validate"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(buf.String(), "Configuration valid") {
		t.Errorf("unexpected validate output: %q", buf.String())
	}
}

func TestInvalidConfigFails(t *testing.T) {
	env := setupCLIEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[subtitle]\nformat = \"txt\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	input := env.write(t, "talk.json", sampleTranscript)

	if _, err := runCLI(t, env, "", "convert", input); err == nil {
		t.Error("expected config validation error")
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		output   string
		fallback string
		want     subtitle.Format
		wantErr  bool
	}{
		{"flag wins", "vtt", "a.ass", "srt", subtitle.FormatVTT, false},
		{"ssa alias", "SSA", "", "srt", subtitle.FormatASS, false},
		{"output extension", "", "out/a.ass", "srt", subtitle.FormatASS, false},
		{"unknown extension uses fallback", "", "a.txt", "vtt", subtitle.FormatVTT, false},
		{"stdout uses fallback", "", "-", "srt", subtitle.FormatSRT, false},
		{"bad flag", "txt", "", "srt", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveFormat(tt.flag, tt.output, tt.fallback)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveFormat = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDefaultOutputPath(t *testing.T) {
	if got := defaultOutputPath("dir/talk.json", subtitle.FormatVTT); got != "dir/talk.vtt" {
		t.Errorf("defaultOutputPath = %q", got)
	}
	if got := defaultOutputPath("-", subtitle.FormatSRT); got != "-" {
		t.Errorf("stdin input should default to stdout, got %q", got)
	}
}
