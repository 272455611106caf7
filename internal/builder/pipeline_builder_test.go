package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/long-text-summary-go/internal/pipeline"
	"github.com/shouni/long-text-summary-go/internal/provider"
	"github.com/shouni/long-text-summary-go/internal/summarizer"
)

func localOptions() pipeline.CmdOptions {
	return pipeline.CmdOptions{
		InputPath:      "reviews.txt",
		OutputFilePath: "summary.txt",
		ProviderName:   provider.ProviderOllama,
		BaseURL:        "http://localhost:11434",
		MaxRetries:     1,
		CacheSize:      16,
		Decoding:       summarizer.DefaultDecodingConfig(),
		ChunkSize:      summarizer.DefaultChunkSize,
		Concurrency:    2,
	}
}

func TestBuildPipeline(t *testing.T) {
	p, closer, err := BuildPipeline(context.Background(), localOptions())
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer()

	require.NotNil(t, p)
	assert.NotNil(t, p.Loader)
	assert.NotNil(t, p.Summarizer)
	assert.NotNil(t, p.Writer)
	assert.Equal(t, "reviews.txt", p.Options.InputPath)
}

func TestBuildPipelineErrors(t *testing.T) {
	t.Run("未対応のプロバイダ", func(t *testing.T) {
		opts := localOptions()
		opts.ProviderName = "anthropic-local"

		_, closer, err := BuildPipeline(context.Background(), opts)
		require.NotNil(t, closer)
		closer()
		assert.ErrorIs(t, err, provider.ErrUnknownProvider)
	})

	t.Run("不正なセグメント予算", func(t *testing.T) {
		opts := localOptions()
		opts.ChunkSize = -1

		_, closer, err := BuildPipeline(context.Background(), opts)
		closer()
		assert.ErrorIs(t, err, summarizer.ErrInvalidBudget)
	})
}

func TestBuildGenerator(t *testing.T) {
	g, err := BuildGenerator(context.Background(), localOptions())
	require.NoError(t, err)
	assert.Equal(t, provider.ProviderOllama, g.Name())
	assert.True(t, provider.IsConcurrentSafe(g))
}

func TestUsesGCS(t *testing.T) {
	assert.False(t, usesGCS(localOptions()))

	opts := localOptions()
	opts.OutputFilePath = "gs://bucket/summary.txt"
	assert.True(t, usesGCS(opts))

	opts = localOptions()
	opts.URLFile = "gs://bucket/urls.txt"
	assert.True(t, usesGCS(opts))
}

func TestSummaryMetadata(t *testing.T) {
	g, err := BuildGenerator(context.Background(), localOptions())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"source":     "reviews.txt",
		"provider":   "ollama",
		"chunk-size": "4000",
	}, summaryMetadata(localOptions(), g))

	opts := localOptions()
	opts.InputPath = ""
	opts.URLFile = "gs://bucket/urls.txt"
	assert.Equal(t, "gs://bucket/urls.txt", summaryMetadata(opts, g)["source"])
}
