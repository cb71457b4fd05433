package slicer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/shouni/go-poster-kit/pkg/domain"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultJPEGQuality は JPEG で再エンコードする際の品質です。
	DefaultJPEGQuality = 95
)

// Slicer は合成画像を等幅の縦長パネルに分割します。
type Slicer interface {
	Slice(ctx context.Context, composite domain.CompositeResult) ([]domain.PosterPanel, error)
}

// PanelSlicer は合成画像を左から右へ count 枚に切り出す Slicer の標準実装です。
type PanelSlicer struct {
	count int
}

// NewPanelSlicer は BoardCount 枚に分割する PanelSlicer を返します。
func NewPanelSlicer() *PanelSlicer {
	return &PanelSlicer{count: domain.BoardCount}
}

// Slice は既定の PanelSlicer で合成画像を分割します。
func Slice(ctx context.Context, composite domain.CompositeResult) ([]domain.PosterPanel, error) {
	return NewPanelSlicer().Slice(ctx, composite)
}

// PanelBounds は幅 width を count 分割したときの境界 x_i = floor(i*width/count) を返します。
// 戻り値の長さは count+1 で、各パネルの幅は floor(width/count) か ceil(width/count) のいずれかです。
func PanelBounds(width, count int) []int {
	if count <= 0 || width < 0 {
		return nil
	}
	bounds := make([]int, count+1)
	for i := 0; i <= count; i++ {
		bounds[i] = i * width / count
	}
	return bounds
}

// Slice は合成画像をデコードし、全高を保ったまま縦長のパネルを切り出します。
// 出力は元画像と同じ形式で再エンコードされます（WebP は PNG になります）。
func (s *PanelSlicer) Slice(ctx context.Context, composite domain.CompositeResult) ([]domain.PosterPanel, error) {
	if len(composite.Data) == 0 {
		return nil, &domain.DecodeError{Err: fmt.Errorf("合成画像のデータが空です")}
	}

	src, format, err := image.Decode(bytes.NewReader(composite.Data))
	if err != nil {
		return nil, &domain.DecodeError{Err: fmt.Errorf("合成画像のデコードに失敗しました (mime: %s): %w", composite.MimeType, err)}
	}

	b := src.Bounds()
	if b.Dx() < s.count || b.Dy() == 0 {
		return nil, &domain.DecodeError{Err: fmt.Errorf("合成画像が小さすぎます (%dx%d)", b.Dx(), b.Dy())}
	}

	sub, ok := src.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return nil, &domain.DecodeError{Err: fmt.Errorf("切り出しに対応していない画像型です: %T", src)}
	}

	enc := encoderFor(format)
	xs := PanelBounds(b.Dx(), s.count)
	panels := make([]domain.PosterPanel, s.count)

	slog.DebugContext(ctx, "合成画像を分割します", "format", format, "width", b.Dx(), "height", b.Dy(), "bounds", xs)

	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < s.count; i++ {
		rect := image.Rect(b.Min.X+xs[i], b.Min.Y, b.Min.X+xs[i+1], b.Max.Y)
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			panelImg := normalize(sub.SubImage(rect))

			var buf bytes.Buffer
			if err := enc.encode(&buf, panelImg); err != nil {
				return &domain.DecodeError{Err: fmt.Errorf("パネル %d のエンコードに失敗しました: %w", i+1, err)}
			}
			panels[i] = domain.PosterPanel{
				Index:    i,
				Data:     buf.Bytes(),
				MimeType: enc.mimeType,
				Width:    rect.Dx(),
				Height:   rect.Dy(),
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return panels, nil
}

// normalize はパレット画像の原点を (0, 0) に揃えます。
// GIF のエンコーダはフレームの位置をそのまま論理画面に反映するためです。
func normalize(img image.Image) image.Image {
	p, ok := img.(*image.Paletted)
	if !ok || p.Rect.Min == (image.Point{}) {
		return img
	}
	dst := image.NewPaletted(image.Rect(0, 0, p.Rect.Dx(), p.Rect.Dy()), p.Palette)
	for y := 0; y < p.Rect.Dy(); y++ {
		srcOff := p.PixOffset(p.Rect.Min.X, p.Rect.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+p.Rect.Dx()], p.Pix[srcOff:srcOff+p.Rect.Dx()])
	}
	return dst
}
