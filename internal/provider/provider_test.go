package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("既定はollama", func(t *testing.T) {
		g, err := New(ctx, Config{})
		require.NoError(t, err)
		assert.Equal(t, ProviderOllama, g.Name())
		assert.True(t, IsConcurrentSafe(g))
	})

	t.Run("openaiはAPIキー指定で構築できる", func(t *testing.T) {
		g, err := New(ctx, Config{Name: "OpenAI", APIKey: "test-key"})
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, g.Name())
	})

	t.Run("未知のプロバイダ", func(t *testing.T) {
		_, err := New(ctx, Config{Name: "llamafile"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownProvider)
	})
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("out of memory")
	err := wrapError("ollama", cause)

	assert.ErrorIs(t, err, ErrProvider)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "ollama: out of memory", err.Error())

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "ollama", perr.Provider)

	// 二重に包まない
	assert.Same(t, perr, wrapError("other", err).(*Error))
	assert.NoError(t, wrapError("ollama", nil))
}
