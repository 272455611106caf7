package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cachedGenerator は同一のプロンプトとパラメータに対する生成結果を LRU で再利用します。
// レビュー集合には重複した投稿が多く、同じセグメントが繰り返し現れるためです。
type cachedGenerator struct {
	next  Generator
	cache *lru.Cache[string, string]
}

// WithCache は g を容量 size の LRU キャッシュで包みます。size が 0 以下なら g をそのまま返します。
func WithCache(g Generator, size int) (Generator, error) {
	if size <= 0 {
		return g, nil
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("要約キャッシュの初期化に失敗しました: %w", err)
	}
	return &cachedGenerator{next: g, cache: cache}, nil
}

func (c *cachedGenerator) Name() string { return c.next.Name() }

func (c *cachedGenerator) ConcurrentSafe() bool { return IsConcurrentSafe(c.next) }

func (c *cachedGenerator) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	key := cacheKey(prompt, params)
	if text, ok := c.cache.Get(key); ok {
		return text, nil
	}

	text, err := c.next.Generate(ctx, prompt, params)
	if err != nil {
		return "", err
	}
	// 空の出力は失敗に近いためキャッシュしない
	if text != "" {
		c.cache.Add(key, text)
	}
	return text, nil
}

func cacheKey(prompt string, params GenerateParams) string {
	hash := sha256.New()
	fmt.Fprintf(hash, "%d|%g|%g|%d|%t|", params.MaxOutputLength, params.Temperature, params.TopP, params.NumBeams, params.DoSample)
	hash.Write([]byte(prompt))
	return hex.EncodeToString(hash.Sum(nil))
}
