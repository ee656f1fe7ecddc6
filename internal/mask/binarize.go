package mask

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"

	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/webp"
)

const threshold = 128

// Binarize decodes a PNG, JPEG or WebP mask and returns an 8-bit greyscale PNG
// in which every pixel is 0 or 255. Images whose source format carries an alpha
// channel are thresholded on alpha; all others on the mean of their colour channels.
func Binarize(data []byte) ([]byte, error) {
	img, useAlpha, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("mask: decode: %w", err)
	}

	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			var level float64
			if useAlpha {
				level = float64(color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA).A)
			} else {
				level = intensity(img.At(x, y))
			}
			var v uint8
			if level > threshold {
				v = 255
			}
			out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: v})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("mask: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// BinarizeBase64 is Binarize with base64 output, the form the image service expects.
func BinarizeBase64(data []byte) (string, error) {
	raw, err := Binarize(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// decode reports whether the source carried an alpha channel. The WebP decoder
// always yields NRGBA, so for WebP the answer comes from the container header.
func decode(data []byte) (image.Image, bool, error) {
	if isWEBP(data) {
		img, err := webp.Decode(bytes.NewReader(data), &decoder.Options{})
		return img, webpHasAlpha(data), err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, err
	}
	return img, hasAlpha(img), nil
}

func isWEBP(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

// hasAlpha matches the types image/png returns for the colour types with alpha.
// Opaque RGB decodes to *image.RGBA / *image.RGBA64 and is treated as colour only.
func hasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.NRGBA, *image.NRGBA64:
		return true
	}
	return false
}

// webpHasAlpha reads the alpha flag of an extended (VP8X) or lossless (VP8L)
// header. Simple lossy files (VP8) have no alpha.
func webpHasAlpha(data []byte) bool {
	if len(data) < 21 {
		return false
	}
	switch string(data[12:16]) {
	case "VP8X":
		return data[20]&0x10 != 0
	case "VP8L":
		// signature byte, then 14-bit width-1, 14-bit height-1, 1-bit alpha_is_used
		if len(data) < 25 || data[20] != 0x2f {
			return false
		}
		bits := uint32(data[21]) | uint32(data[22])<<8 | uint32(data[23])<<16 | uint32(data[24])<<24
		return bits&(1<<28) != 0
	}
	return false
}

func intensity(c color.Color) float64 {
	switch g := c.(type) {
	case color.Gray:
		return float64(g.Y)
	case color.Gray16:
		return float64(g.Y >> 8)
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return (float64(n.R) + float64(n.G) + float64(n.B)) / 3
}
