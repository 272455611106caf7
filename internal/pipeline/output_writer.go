package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shouni/go-utils/iohandler"
)

// DestinationWriter は OutputWriter の具象実装です。
// 出力先のパスに応じて、GCS、ローカルファイル、標準出力のいずれかに書き込みます。
type DestinationWriter struct {
	gcsWriter GCSOutputWriter
}

// NewDestinationWriter は DestinationWriter の新しいインスタンスを作成します。
// gs:// への出力を行わない場合、gcsWriter は nil で構いません。
func NewDestinationWriter(gcsWriter GCSOutputWriter) *DestinationWriter {
	return &DestinationWriter{gcsWriter: gcsWriter}
}

// Write は content を path に書き込みます。path が空の場合は標準出力に書き出します。
func (w *DestinationWriter) Write(ctx context.Context, path string, content string) error {
	switch {
	case path == "":
		return iohandler.WriteOutputString("", content)
	case IsGCSURI(path):
		return w.writeGCS(ctx, path, content)
	default:
		return writeLocalFile(path, content)
	}
}

func (w *DestinationWriter) writeGCS(ctx context.Context, uri string, content string) error {
	if w.gcsWriter == nil {
		return fmt.Errorf("GCS URIが指定されましたが、GCSクライアントが初期化されていません。")
	}
	bucketName, objectName, err := ParseGCSURI(uri)
	if err != nil {
		return err
	}
	if err := w.gcsWriter.WriteToGCS(ctx, bucketName, objectName, content); err != nil {
		return err
	}
	slog.Info("要約をGCSに書き込みました", slog.String("uri", uri))
	return nil
}

// writeLocalFile は、ディレクトリが存在しなければ作成し、ファイルに書き込みます。
func writeLocalFile(filename string, content string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("ディレクトリの作成に失敗しました (%s): %w", dir, err)
	}

	if err := iohandler.WriteOutputString(filename, content); err != nil {
		return fmt.Errorf("ファイルへの書き込みに失敗しました: %w", err)
	}
	slog.Info("要約をファイルに書き込みました", slog.String("file", filename))
	return nil
}

var _ OutputWriter = (*DestinationWriter)(nil)
