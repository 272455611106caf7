package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
)

const gcsScheme = "gs://"

// LocalGCSInputReader は InputReader の具象実装であり、
// ローカルファイルと GCS オブジェクトの読み込みを処理します。
type LocalGCSInputReader struct {
	gcsClient *storage.Client
}

// NewLocalGCSInputReader は LocalGCSInputReader の新しいインスタンスを作成します。
// GCS を使わない場合、gcsClient は nil で構いません。
func NewLocalGCSInputReader(gcsClient *storage.Client) *LocalGCSInputReader {
	return &LocalGCSInputReader{
		gcsClient: gcsClient,
	}
}

// Open は、ファイルパスを検査し、ローカルファイルまたはGCSからストリームを開きます。
func (r *LocalGCSInputReader) Open(ctx context.Context, filePath string) (io.ReadCloser, error) {
	if IsGCSURI(filePath) {
		return r.openGCSObject(ctx, filePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("ローカルファイルのオープンに失敗しました: %w", err)
	}
	return file, nil
}

func (r *LocalGCSInputReader) openGCSObject(ctx context.Context, gcsURI string) (io.ReadCloser, error) {
	if r.gcsClient == nil {
		return nil, fmt.Errorf("GCS URIが指定されましたが、GCSクライアントが初期化されていません。")
	}

	bucketName, objectName, err := ParseGCSURI(gcsURI)
	if err != nil {
		return nil, err
	}

	rc, err := r.gcsClient.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("GCSファイルの読み込みに失敗しました (URI: %s): %w", gcsURI, err)
	}
	return rc, nil
}

// IsGCSURI は path が gs:// で始まるかを返します。
func IsGCSURI(path string) bool {
	return strings.HasPrefix(path, gcsScheme)
}

// ParseGCSURI は gs://bucket-name/object-name をバケット名とオブジェクト名に分解します。
func ParseGCSURI(uri string) (bucketName, objectName string, err error) {
	parts := strings.SplitN(strings.TrimPrefix(uri, gcsScheme), "/", 2)
	if !IsGCSURI(uri) || len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("無効なGCS URI形式です: %s (gs://bucket-name/object-name の形式で指定してください)", uri)
	}
	return parts[0], parts[1], nil
}

var _ InputReader = (*LocalGCSInputReader)(nil)
