package publisher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/shouni/go-poster-kit/pkg/asset"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// OutputWriter はデータを外部ストレージに保存するためのインターフェースです。
type OutputWriter interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

// OutputRemover は書き込み済みのパスを削除できる書き込み先です。
type OutputRemover interface {
	Remove(ctx context.Context, path string) error
}

// LocalWriter はローカルファイルシステムへ書き込みます。親ディレクトリは自動で作成されます。
type LocalWriter struct{}

func NewLocalWriter() *LocalWriter {
	return &LocalWriter{}
}

func (w *LocalWriter) Write(ctx context.Context, path string, r io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ディレクトリの作成に失敗しました: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ファイルの作成に失敗しました: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("ファイルの書き込みに失敗しました: %w", err)
	}
	return f.Close()
}

func (w *LocalWriter) Remove(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ファイルの削除に失敗しました: %w", err)
	}
	return nil
}

// S3PutObjectAPI は S3Writer が利用する s3.Client のメソッドです。
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3DeleteObjectAPI は S3Writer.Remove が利用する s3.Client のメソッドです。
type S3DeleteObjectAPI interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Writer は s3://bucket/key 形式のパスへアップロードします。
type S3Writer struct {
	client S3PutObjectAPI
}

func NewS3Writer(client S3PutObjectAPI) *S3Writer {
	return &S3Writer{client: client}
}

// NewS3WriterFromEnv は AWS の既定の認証情報チェーンから S3Writer を構築します。
func NewS3WriterFromEnv(ctx context.Context) (*S3Writer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("AWS設定の読み込みに失敗しました: %w", err)
	}
	return NewS3Writer(s3.NewFromConfig(cfg)), nil
}

func (w *S3Writer) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	bucket, key, err := asset.ParseS3URI(path)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := w.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("S3へのアップロードに失敗しました (%s): %w", path, err)
	}
	slog.DebugContext(ctx, "S3へアップロードしました", "bucket", bucket, "key", key)
	return nil
}

// Remove はクライアントが DeleteObject を持つ場合にオブジェクトを削除します。
func (w *S3Writer) Remove(ctx context.Context, path string) error {
	deleter, ok := w.client.(S3DeleteObjectAPI)
	if !ok {
		return fmt.Errorf("S3クライアントが削除に対応していません (%s)", path)
	}
	bucket, key, err := asset.ParseS3URI(path)
	if err != nil {
		return err
	}
	if _, err := deleter.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("S3オブジェクトの削除に失敗しました (%s): %w", path, err)
	}
	return nil
}

// RoutingWriter はパスのスキームに応じて S3 とローカルの書き込み先を切り替えます。
// S3 の書き込み先は初回利用時に遅延初期化されます。
type RoutingWriter struct {
	local OutputWriter
	newS3 func(ctx context.Context) (OutputWriter, error)

	mu sync.Mutex
	s3 OutputWriter
}

// NewRoutingWriter は s3 が nil の場合、AWS の既定設定から S3Writer を遅延生成します。
func NewRoutingWriter(local, s3w OutputWriter) *RoutingWriter {
	if local == nil {
		local = NewLocalWriter()
	}
	return &RoutingWriter{
		local: local,
		s3:    s3w,
		newS3: func(ctx context.Context) (OutputWriter, error) {
			return NewS3WriterFromEnv(ctx)
		},
	}
}

func (w *RoutingWriter) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	target, err := w.route(ctx, path)
	if err != nil {
		return err
	}
	return target.Write(ctx, path, r, contentType)
}

func (w *RoutingWriter) Remove(ctx context.Context, path string) error {
	target, err := w.route(ctx, path)
	if err != nil {
		return err
	}
	remover, ok := target.(OutputRemover)
	if !ok {
		return fmt.Errorf("書き込み先が削除に対応していません (%s)", path)
	}
	return remover.Remove(ctx, path)
}

// route は path の書き込み先を返します。S3 の初期化に失敗した場合は次回に再試行します。
func (w *RoutingWriter) route(ctx context.Context, path string) (OutputWriter, error) {
	if !asset.IsS3URI(path) {
		return w.local, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.s3 == nil {
		s3w, err := w.newS3(ctx)
		if err != nil {
			return nil, err
		}
		w.s3 = s3w
	}
	return w.s3, nil
}
