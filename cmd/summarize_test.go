package cmd

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/long-text-summary-go/internal/summarizer"
	"github.com/shouni/long-text-summary-go/prompts"
)

func TestNewCmdOptionsFromFlagsDefaults(t *testing.T) {
	cmd := newSummarizeCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	opts, err := newCmdOptionsFromFlags(cmd, []string{"reviews.txt"})
	require.NoError(t, err)

	assert.Equal(t, "reviews.txt", opts.InputPath)
	assert.Equal(t, "summary.txt", opts.OutputFilePath)
	assert.Equal(t, "ollama", opts.ProviderName)
	assert.Equal(t, 4000, opts.ChunkSize)
	assert.Equal(t, summarizer.DefaultDecodingConfig(), opts.Decoding)
	assert.Equal(t, prompts.ReduceInstruction, opts.ReduceInstruction)
	assert.Equal(t, 1, opts.Concurrency)
	assert.Equal(t, "Review", opts.CSVColumn)
	assert.Equal(t, 30*time.Minute, opts.Timeout)
	assert.Equal(t, summarizer.EchoStripLeading, opts.EchoPolicy())
}

func TestNewCmdOptionsFromFlags(t *testing.T) {
	cmd := newSummarizeCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--model-provider", "gemini",
		"--chunk-size", "1000",
		"--max-length", "256",
		"--no-sample",
		"--instruction", "List the main complaints:",
		"--concurrency", "4",
		"--rate-limit", "500ms",
		"--keep-echo",
		"--clean",
		"--csv-column", "selftext",
		"--group-column", "title",
		"-o", "gs://bucket/summary.txt",
	}))

	opts, err := newCmdOptionsFromFlags(cmd, []string{"reviews.csv"})
	require.NoError(t, err)

	assert.Equal(t, "gemini", opts.ProviderName)
	assert.Equal(t, 1000, opts.ChunkSize)
	assert.Equal(t, 256, opts.Decoding.MaxOutputLength)
	assert.False(t, opts.Decoding.DoSample)
	assert.Equal(t, "List the main complaints:", opts.Decoding.Instruction)
	assert.Equal(t, 4, opts.Concurrency)
	assert.Equal(t, 500*time.Millisecond, opts.RateLimit)
	assert.True(t, opts.Clean)
	assert.Equal(t, "selftext", opts.CSVColumn)
	assert.Equal(t, "title", opts.GroupColumn)
	assert.Equal(t, summarizer.EchoKeep, opts.EchoPolicy())
	assert.Equal(t, "gs://bucket/summary.txt", opts.OutputFilePath)
}

func TestNewCmdOptionsFromFlagsValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		argv []string
	}{
		{name: "入力なし", argv: nil},
		{name: "入力とURLリストの同時指定", args: []string{"a.txt"}, argv: []string{"--url-file", "urls.txt"}},
		{name: "chunk-size 0", args: []string{"a.txt"}, argv: []string{"--chunk-size", "0"}},
		{name: "concurrency 0", args: []string{"a.txt"}, argv: []string{"--concurrency", "0"}},
		{name: "top-p 範囲外", args: []string{"a.txt"}, argv: []string{"--top-p", "1.5"}},
		{name: "空の指示文", args: []string{"a.txt"}, argv: []string{"--instruction", ""}},
		{name: "parallel 0", args: []string{"a.txt"}, argv: []string{"--parallel", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newSummarizeCmd()
			require.NoError(t, cmd.ParseFlags(tt.argv))

			_, err := newCmdOptionsFromFlags(cmd, tt.args)
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	ctx := t.Context()
	assert.False(t, newLogger(false).Enabled(ctx, slog.LevelDebug))
	assert.True(t, newLogger(true).Enabled(ctx, slog.LevelDebug))
}
