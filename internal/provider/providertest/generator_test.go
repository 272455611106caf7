package providertest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/long-text-summary-go/internal/provider"
)

func TestMockGenerator(t *testing.T) {
	m := &MockGenerator{
		FailWhen:   func(call int, _ string) bool { return call == 2 },
		EchoPrompt: true,
	}
	ctx := context.Background()

	out, err := m.Generate(ctx, "p1", provider.GenerateParams{})
	require.NoError(t, err)
	assert.Equal(t, "p1 summary:1", out)

	_, err = m.Generate(ctx, "p2", provider.GenerateParams{MaxOutputLength: 64})
	assert.ErrorIs(t, err, ErrMockFailure)
	assert.ErrorIs(t, err, provider.ErrProvider)

	assert.Equal(t, 2, m.Calls())
	assert.Equal(t, []string{"p1", "p2"}, m.Prompts())
	assert.Equal(t, 64, m.Params()[1].MaxOutputLength)
	p, ok := m.PromptContaining("2")
	assert.True(t, ok)
	assert.Equal(t, "p2", p)
}

func TestMockGeneratorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&MockGenerator{}).Generate(ctx, "p", provider.GenerateParams{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, provider.ErrProvider)
}
