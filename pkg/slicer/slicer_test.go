package slicer

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/shouni/go-poster-kit/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bandColors = []color.RGBA{
	{R: 255, A: 255},
	{G: 255, A: 255},
	{B: 255, A: 255},
	{R: 255, G: 255, A: 255},
}

// bandedPNG は幅を4等分した単色の帯からなる PNG を返します。
func bandedPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	xs := PanelBounds(width, 4)
	for band := 0; band < 4; band++ {
		for x := xs[band]; x < xs[band+1]; x++ {
			for y := 0; y < height; y++ {
				img.SetRGBA(x, y, bandColors[band])
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// patternImage は座標ごとに異なる色を持つ画像を返します。
func patternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(x >> 8), B: uint8(y), A: 255})
		}
	}
	return img
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

func TestPanelBounds(t *testing.T) {
	t.Run("割り切れる幅", func(t *testing.T) {
		assert.Equal(t, []int{0, 400, 800, 1200, 1600}, PanelBounds(1600, 4))
	})

	t.Run("割り切れない幅でも差は1px以内", func(t *testing.T) {
		for _, w := range []int{4, 5, 7, 1601, 1602, 1603, 4097} {
			xs := PanelBounds(w, 4)
			require.Len(t, xs, 5)
			assert.Equal(t, 0, xs[0])
			assert.Equal(t, w, xs[4])
			for i := 0; i < 4; i++ {
				width := xs[i+1] - xs[i]
				assert.True(t, width == w/4 || width == (w+3)/4, "width=%d panel=%d got %d", w, i, width)
			}
		}
	})

	t.Run("不正な分割数", func(t *testing.T) {
		assert.Nil(t, PanelBounds(100, 0))
	})
}

func TestPanelSlicer_Slice(t *testing.T) {
	ctx := context.Background()

	t.Run("1600x100の単色帯を4枚に分割する", func(t *testing.T) {
		panels, err := Slice(ctx, domain.CompositeResult{Data: bandedPNG(t, 1600, 100), MimeType: "image/png"})
		require.NoError(t, err)
		require.Len(t, panels, 4)

		for i, p := range panels {
			assert.Equal(t, i, p.Index)
			assert.Equal(t, "image/png", p.MimeType)
			assert.Equal(t, 400, p.Width)
			assert.Equal(t, 100, p.Height)

			img := decode(t, p.Data)
			assert.Equal(t, image.Rect(0, 0, 400, 100), img.Bounds())
			assert.True(t, sameColor(bandColors[i], img.At(0, 0)), "panel %d left edge", i)
			assert.True(t, sameColor(bandColors[i], img.At(399, 99)), "panel %d right edge", i)
		}
	})

	t.Run("幅1603では400,401,401,401になる", func(t *testing.T) {
		panels, err := Slice(ctx, domain.CompositeResult{Data: bandedPNG(t, 1603, 10), MimeType: "image/png"})
		require.NoError(t, err)

		var widths []int
		total := 0
		for _, p := range panels {
			widths = append(widths, p.Width)
			total += p.Width
			assert.Equal(t, 10, p.Height)
		}
		assert.Equal(t, []int{400, 401, 401, 401}, widths)
		assert.Equal(t, 1603, total)
	})

	t.Run("パネルを並べると元画像と画素単位で一致する", func(t *testing.T) {
		src := patternImage(1603, 7)
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, src))

		panels, err := Slice(ctx, domain.CompositeResult{Data: buf.Bytes(), MimeType: "image/png"})
		require.NoError(t, err)

		offset := 0
		for _, p := range panels {
			img := decode(t, p.Data)
			for x := 0; x < p.Width; x++ {
				for y := 0; y < p.Height; y++ {
					if !sameColor(src.At(offset+x, y), img.At(x, y)) {
						t.Fatalf("pixel mismatch at (%d,%d)", offset+x, y)
					}
				}
			}
			offset += p.Width
		}
		assert.Equal(t, 1603, offset)
	})

	t.Run("同じ入力には同じ結果を返す", func(t *testing.T) {
		data := bandedPNG(t, 801, 20)
		first, err := Slice(ctx, domain.CompositeResult{Data: data, MimeType: "image/png"})
		require.NoError(t, err)
		second, err := Slice(ctx, domain.CompositeResult{Data: data, MimeType: "image/png"})
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("JPEGはJPEGのまま分割される", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, patternImage(64, 16), nil))

		panels, err := Slice(ctx, domain.CompositeResult{Data: buf.Bytes(), MimeType: "image/jpeg"})
		require.NoError(t, err)
		for _, p := range panels {
			assert.Equal(t, "image/jpeg", p.MimeType)
			assert.Equal(t, image.Rect(0, 0, 16, 16), decode(t, p.Data).Bounds())
		}
	})

	t.Run("GIFは原点を揃えて分割される", func(t *testing.T) {
		palette := color.Palette{color.Black, color.White}
		src := image.NewPaletted(image.Rect(0, 0, 40, 4), palette)
		for x := 20; x < 40; x++ {
			for y := 0; y < 4; y++ {
				src.SetColorIndex(x, y, 1)
			}
		}
		var buf bytes.Buffer
		require.NoError(t, gif.Encode(&buf, src, nil))

		panels, err := Slice(ctx, domain.CompositeResult{Data: buf.Bytes(), MimeType: "image/gif"})
		require.NoError(t, err)
		require.Len(t, panels, 4)

		last := decode(t, panels[3].Data)
		assert.Equal(t, image.Rect(0, 0, 10, 4), last.Bounds())
		assert.Equal(t, "image/gif", panels[3].MimeType)
		assert.True(t, sameColor(color.White, last.At(0, 0)))
		assert.True(t, sameColor(color.Black, decode(t, panels[0].Data).At(9, 3)))
	})

	t.Run("壊れたデータはErrDecode", func(t *testing.T) {
		_, err := Slice(ctx, domain.CompositeResult{Data: []byte("not an image"), MimeType: "image/png"})
		assert.ErrorIs(t, err, domain.ErrDecode)

		var decErr *domain.DecodeError
		assert.ErrorAs(t, err, &decErr)
	})

	t.Run("空データはErrDecode", func(t *testing.T) {
		_, err := Slice(ctx, domain.CompositeResult{})
		assert.ErrorIs(t, err, domain.ErrDecode)
	})

	t.Run("幅が分割数未満はErrDecode", func(t *testing.T) {
		_, err := Slice(ctx, domain.CompositeResult{Data: bandedPNG(t, 3, 3)})
		assert.ErrorIs(t, err, domain.ErrDecode)
	})
}

type countingSlicer struct {
	calls int
}

func (c *countingSlicer) Slice(ctx context.Context, composite domain.CompositeResult) ([]domain.PosterPanel, error) {
	c.calls++
	return Slice(ctx, composite)
}

func TestCachedSlicer(t *testing.T) {
	ctx := context.Background()

	t.Run("同一の合成画像は一度だけ分割する", func(t *testing.T) {
		inner := &countingSlicer{}
		cs := NewCachedSlicer(inner, time.Minute)
		composite := domain.CompositeResult{Data: bandedPNG(t, 400, 8), MimeType: "image/png"}

		first, err := cs.Slice(ctx, composite)
		require.NoError(t, err)
		second, err := cs.Slice(ctx, composite)
		require.NoError(t, err)

		assert.Equal(t, 1, inner.calls)
		assert.Equal(t, first, second)
	})

	t.Run("異なる合成画像は別に分割する", func(t *testing.T) {
		inner := &countingSlicer{}
		cs := NewCachedSlicer(inner, 0)

		_, err := cs.Slice(ctx, domain.CompositeResult{Data: bandedPNG(t, 400, 8)})
		require.NoError(t, err)
		_, err = cs.Slice(ctx, domain.CompositeResult{Data: bandedPNG(t, 404, 8)})
		require.NoError(t, err)

		assert.Equal(t, 2, inner.calls)
	})

	t.Run("返したパネルを書き換えてもキャッシュは壊れない", func(t *testing.T) {
		inner := &countingSlicer{}
		cs := NewCachedSlicer(inner, time.Minute)
		composite := domain.CompositeResult{Data: bandedPNG(t, 400, 8), MimeType: "image/png"}

		first, err := cs.Slice(ctx, composite)
		require.NoError(t, err)
		want := append([]byte(nil), first[0].Data...)
		for i := range first[0].Data {
			first[0].Data[i] = 0
		}

		second, err := cs.Slice(ctx, composite)
		require.NoError(t, err)
		assert.Equal(t, want, second[0].Data)

		second[1].Data[0] ^= 0xff
		third, err := cs.Slice(ctx, composite)
		require.NoError(t, err)
		assert.NotEqual(t, second[1].Data[0], third[1].Data[0])
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("エラーはキャッシュしない", func(t *testing.T) {
		inner := &countingSlicer{}
		cs := NewCachedSlicer(inner, time.Minute)
		bad := domain.CompositeResult{Data: []byte("broken")}

		_, err := cs.Slice(ctx, bad)
		assert.ErrorIs(t, err, domain.ErrDecode)
		_, err = cs.Slice(ctx, bad)
		assert.ErrorIs(t, err, domain.ErrDecode)
		assert.Equal(t, 2, inner.calls)
	})
}
