package slicer

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
)

type encoder struct {
	mimeType string
	encode   func(w io.Writer, img image.Image) error
}

var (
	pngEncoder = encoder{mimeType: "image/png", encode: png.Encode}

	encoders = map[string]encoder{
		"png": pngEncoder,
		"jpeg": {mimeType: "image/jpeg", encode: func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: DefaultJPEGQuality})
		}},
		"gif": {mimeType: "image/gif", encode: func(w io.Writer, img image.Image) error {
			return gif.Encode(w, img, nil)
		}},
	}
)

// encoderFor はデコード時の形式名に対応するエンコーダを返します。
// 書き出しに対応しない形式（webp 等）は PNG になります。
func encoderFor(format string) encoder {
	if e, ok := encoders[format]; ok {
		return e
	}
	return pngEncoder
}
