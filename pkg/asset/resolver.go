package asset

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultFilePrefix はダウンロードファイル名の既定の接頭辞です。
	DefaultFilePrefix = "A0-Poster"
	// DefaultProjectName はプロジェクト名が空の場合に使う名前です。
	DefaultProjectName = "Project"
	// DefaultExtension はメディアタイプから拡張子を決められない場合の拡張子です。
	DefaultExtension = "png"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	// unsafeCharRegex はファイル名として使えない文字に一致します
	unsafeCharRegex = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f]`)

	extensions = map[string]string{
		"image/png":  "png",
		"image/jpeg": "jpg",
		"image/gif":  "gif",
		"image/webp": "webp",
	}
)

// PanelFileName は i 番目（0始まり）のポスターのダウンロード名を返します。
// 例: ("A0-Poster", "Green Atrium", 0, "image/png") -> "A0-Poster-Green_Atrium-1.png"
func PanelFileName(prefix, project string, index int, mimeType string) string {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultFilePrefix
	}
	return fmt.Sprintf("%s-%s-%d.%s", prefix, SafeProjectName(project), index+1, Extension(mimeType))
}

// SafeProjectName は空白の連続を "_" に置き換え、パスとして危険な文字を除去した名前を返します。
func SafeProjectName(project string) string {
	name := whitespaceRegex.ReplaceAllString(strings.TrimSpace(project), "_")
	name = unsafeCharRegex.ReplaceAllString(name, "_")
	name = strings.Trim(name, ".")
	if name == "" {
		return DefaultProjectName
	}
	return name
}

// Extension はメディアタイプに対応する拡張子（ドットなし）を返します。
func Extension(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	if ext, ok := extensions[mt]; ok {
		return ext
	}
	return DefaultExtension
}

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から、
// S3/GCS/ローカルを考慮した最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolvePath(baseDir, fileName)
}

// IsS3URI は path が s3:// スキームかどうかを判定します。
func IsS3URI(path string) bool {
	return urlpath.IsS3URI(path)
}

// ParseS3URI は s3://bucket/key 形式をバケット名とキーに分解します。
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !IsS3URI(uri) {
		return "", "", fmt.Errorf("S3 URIではありません: %s", uri)
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("無効なS3 URIです: %w", err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("バケット名とキーが必要です: %s", uri)
	}
	return bucket, key, nil
}
