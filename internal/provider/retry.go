package provider

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// DefaultRetryBaseDelay は指数バックオフの初期待機時間です。
const DefaultRetryBaseDelay = 2 * time.Second

// retryingGenerator は一時的な失敗に対して生成呼び出しを再試行します。
type retryingGenerator struct {
	next       Generator
	maxRetries uint64
	baseDelay  time.Duration
}

// WithRetry は g を指数バックオフ付きの再試行で包みます。maxRetries が 0 なら g をそのまま返します。
// コンテキストのキャンセルとタイムアウトは再試行しません。
func WithRetry(g Generator, maxRetries uint64, baseDelay time.Duration) Generator {
	if maxRetries == 0 {
		return g
	}
	if baseDelay <= 0 {
		baseDelay = DefaultRetryBaseDelay
	}
	return &retryingGenerator{next: g, maxRetries: maxRetries, baseDelay: baseDelay}
}

func (r *retryingGenerator) Name() string { return r.next.Name() }

func (r *retryingGenerator) ConcurrentSafe() bool { return IsConcurrentSafe(r.next) }

func (r *retryingGenerator) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	backoff := retry.WithMaxRetries(r.maxRetries, retry.NewExponential(r.baseDelay))

	var text string
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		out, err := r.next.Generate(ctx, prompt, params)
		if err == nil {
			text = out
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		slog.Warn("生成呼び出しに失敗しました。再試行します",
			slog.String("provider", r.next.Name()),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		return retry.RetryableError(err)
	})
	if err != nil {
		return "", wrapError(r.next.Name(), err)
	}
	return text, nil
}
