package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// SummaryContentType は GCS に保存する要約オブジェクトの Content-Type です。
const SummaryContentType = "text/plain; charset=utf-8"

// GCSSummaryWriter は要約テキストを GCS オブジェクトとして保存します。
type GCSSummaryWriter struct {
	client   *storage.Client
	metadata map[string]string
}

// NewGCSSummaryWriter は GCSSummaryWriter を作成します。
// metadata はオブジェクトのカスタムメタデータとして付与されます (nil 可)。
func NewGCSSummaryWriter(client *storage.Client, metadata map[string]string) *GCSSummaryWriter {
	return &GCSSummaryWriter{client: client, metadata: metadata}
}

// WriteToGCS は bucketName/objectPath に content をアップロードします。
// アップロードは Writer の Close で確定するため、書き込みとクローズ両方のエラーを返します。
func (w *GCSSummaryWriter) WriteToGCS(ctx context.Context, bucketName, objectPath string, content string) error {
	if w.client == nil {
		return fmt.Errorf("GCSクライアントが初期化されていません。")
	}

	wc := w.client.Bucket(bucketName).Object(objectPath).NewWriter(ctx)
	wc.ContentType = SummaryContentType
	wc.Metadata = w.metadata

	_, writeErr := io.WriteString(wc, content)
	closeErr := wc.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		return fmt.Errorf("gs://%s/%s への要約のアップロードに失敗しました: %w", bucketName, objectPath, err)
	}
	return nil
}

var _ GCSOutputWriter = (*GCSSummaryWriter)(nil)
