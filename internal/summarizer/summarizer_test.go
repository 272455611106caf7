package summarizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/long-text-summary-go/internal/provider"
	"github.com/shouni/long-text-summary-go/internal/provider/providertest"
	"github.com/shouni/long-text-summary-go/prompts"
)

func newTestSummarizer(t *testing.T, m *providertest.MockGenerator, echo EchoPolicy) *Summarizer {
	t.Helper()
	s, err := NewSummarizer(m, prompts.NewSummaryPromptBuilder(), echo)
	require.NoError(t, err)
	return s
}

func TestSummarizeSegment(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultDecodingConfig()

	t.Run("プロンプトとパラメータを渡す", func(t *testing.T) {
		m := &providertest.MockGenerator{Respond: func(int, string) string { return "  Users like it.  " }}
		s := newTestSummarizer(t, m, EchoStripLeading)

		got := s.SummarizeSegment(ctx, "Bing is fast. I like it.", cfg)
		assert.Equal(t, "Users like it.", got)

		require.Equal(t, 1, m.Calls())
		assert.Equal(t, "Summarize the following text:\n\nBing is fast. I like it.\n\nSummary:", m.Prompts()[0])
		assert.Equal(t, provider.GenerateParams{
			MaxOutputLength: 512,
			Temperature:     0.7,
			TopP:            0.95,
			NumBeams:        4,
			DoSample:        true,
		}, m.Params()[0])
	})

	t.Run("エコーされたプロンプトを除去する", func(t *testing.T) {
		m := &providertest.MockGenerator{EchoPrompt: true}
		s := newTestSummarizer(t, m, EchoStripLeading)
		assert.Equal(t, "summary:1", s.SummarizeSegment(ctx, "text", cfg))
	})

	t.Run("EchoKeepはエコーを残す", func(t *testing.T) {
		m := &providertest.MockGenerator{EchoPrompt: true}
		s := newTestSummarizer(t, m, EchoKeep)
		assert.Equal(t, "Summarize the following text:\n\ntext\n\nSummary: summary:1", s.SummarizeSegment(ctx, "text", cfg))
	})

	t.Run("失敗は空文字列になる", func(t *testing.T) {
		m := &providertest.MockGenerator{FailWhen: func(int, string) bool { return true }}
		s := newTestSummarizer(t, m, EchoStripLeading)
		assert.Equal(t, "", s.SummarizeSegment(ctx, "text", cfg))

		_, err := s.summarize(ctx, "text", cfg)
		assert.ErrorIs(t, err, provider.ErrProvider)
	})

	t.Run("独自の指示文", func(t *testing.T) {
		m := &providertest.MockGenerator{}
		s := newTestSummarizer(t, m, EchoStripLeading)
		s.SummarizeSegment(ctx, "text", cfg.WithInstruction("List the complaints:"))
		assert.Equal(t, "List the complaints:\n\ntext\n\nSummary:", m.Prompts()[0])
	})
}

func TestNewSummarizer(t *testing.T) {
	_, err := NewSummarizer(nil, nil, EchoStripLeading)
	assert.Error(t, err)

	_, err = NewSummarizer(&providertest.MockGenerator{}, prompts.NewPromptBuilder("bad", "{{"), EchoStripLeading)
	assert.Error(t, err)

	s, err := NewSummarizer(&providertest.MockGenerator{}, nil, EchoStripLeading)
	require.NoError(t, err)
	assert.Equal(t, "mock", s.Model().Name())
}

func TestDecodingConfig(t *testing.T) {
	cfg := DefaultDecodingConfig()
	require.NoError(t, cfg.Validate())

	reduce := cfg.WithInstruction(prompts.ReduceInstruction)
	assert.Equal(t, prompts.ReduceInstruction, reduce.Instruction)
	assert.Equal(t, prompts.DefaultInstruction, cfg.Instruction, "元の設定は変更されない")

	invalid := []func(c *DecodingConfig){
		func(c *DecodingConfig) { c.MaxOutputLength = 0 },
		func(c *DecodingConfig) { c.Temperature = -0.1 },
		func(c *DecodingConfig) { c.TopP = 0 },
		func(c *DecodingConfig) { c.TopP = 1.5 },
		func(c *DecodingConfig) { c.NumBeams = 0 },
		func(c *DecodingConfig) { c.Instruction = " " },
	}
	for _, mutate := range invalid {
		c := DefaultDecodingConfig()
		mutate(&c)
		assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
	}
}
