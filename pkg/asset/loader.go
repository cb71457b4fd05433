package asset

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-poster-kit/pkg/domain"
)

// LoadImageAsset はローカルの画像ファイルを読み込み、メディアタイプを判定して ImageAsset を返します。
func LoadImageAsset(path string, ordinalID int64) (domain.ImageAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ImageAsset{}, fmt.Errorf("画像ファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	return NewImageAsset(data, filepath.Base(path), ordinalID)
}

// NewImageAsset はバイト列から ImageAsset を組み立てます。画像として判定できない場合はエラーです。
func NewImageAsset(data []byte, displayName string, ordinalID int64) (domain.ImageAsset, error) {
	mimeType := DetectMimeType(data, displayName)
	if !strings.HasPrefix(mimeType, "image/") {
		return domain.ImageAsset{}, fmt.Errorf("画像ファイルではありません (%s: %s)", displayName, mimeType)
	}
	asset := domain.ImageAsset{
		Data:        data,
		MimeType:    mimeType,
		DisplayName: displayName,
		OrdinalID:   ordinalID,
	}
	return asset, asset.Validate()
}

// DetectMimeType は内容からメディアタイプを判定し、判定できなければ拡張子から推測します。
func DetectMimeType(data []byte, name string) string {
	detected := http.DetectContentType(data)
	if strings.HasPrefix(detected, "image/") {
		return detected
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		return strings.SplitN(byExt, ";", 2)[0]
	}
	return detected
}
