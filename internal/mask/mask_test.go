package mask

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"vto/internal/domain"
	"vto/internal/translate"
)

type upperTranslator struct{ calls int }

func (u *upperTranslator) ToEnglish(_ context.Context, text string) translate.Translated {
	u.calls++
	return translate.Translated{Text: "EN:" + text}
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func decodeGray(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode binarized mask: %v", err)
	}
	if _, ok := img.(*image.Gray); !ok {
		t.Fatalf("binarized mask is %T, want *image.Gray", img)
	}
	return img
}

func TestBinarizeAlphaChannel(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
	src.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 200})
	src.SetNRGBA(0, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 128})
	src.SetNRGBA(1, 1, color.NRGBA{R: 0, G: 0, B: 0, A: 255})

	out, err := Binarize(encodePNG(t, src))
	if err != nil {
		t.Fatalf("Binarize returned error: %v", err)
	}
	img := decodeGray(t, out).(*image.Gray)
	want := [2][2]uint8{{0, 255}, {0, 255}}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got := img.GrayAt(x, y).Y; got != want[y][x] {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, got, want[y][x])
			}
		}
	}
}

func TestBinarizeWithoutAlphaUsesMean(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 1))
	gray.SetGray(0, 0, color.Gray{Y: 128})
	gray.SetGray(1, 0, color.Gray{Y: 129})
	gray.SetGray(2, 0, color.Gray{Y: 10})

	out, err := Binarize(encodePNG(t, gray))
	if err != nil {
		t.Fatalf("Binarize returned error: %v", err)
	}
	img := decodeGray(t, out).(*image.Gray)
	for x, want := range []uint8{0, 255, 0} {
		if got := img.GrayAt(x, 0).Y; got != want {
			t.Fatalf("pixel %d = %d, want %d", x, got, want)
		}
	}
}

func TestBinarizeOpaqueRGBUsesMean(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{A: 255})
	src.SetRGBA(1, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	data := encodePNG(t, src)
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if _, ok := decoded.(*image.RGBA); !ok {
		t.Fatalf("opaque RGB png decoded as %T, want *image.RGBA", decoded)
	}

	out, err := Binarize(data)
	if err != nil {
		t.Fatalf("Binarize returned error: %v", err)
	}
	img := decodeGray(t, out).(*image.Gray)
	if img.GrayAt(0, 0).Y != 0 || img.GrayAt(1, 0).Y != 255 {
		t.Fatalf("pixels = %d,%d, want 0,255", img.GrayAt(0, 0).Y, img.GrayAt(1, 0).Y)
	}
}

func TestBinarizeJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			c := color.RGBA{A: 255}
			if x >= 8 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			src.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}

	out, err := Binarize(buf.Bytes())
	if err != nil {
		t.Fatalf("Binarize returned error: %v", err)
	}
	img := decodeGray(t, out).(*image.Gray)
	if img.GrayAt(2, 4).Y != 0 || img.GrayAt(13, 4).Y != 255 {
		t.Fatalf("pixels = %d,%d, want 0,255", img.GrayAt(2, 4).Y, img.GrayAt(13, 4).Y)
	}
}

func TestWebPAlphaFlag(t *testing.T) {
	header := func(chunk string, tail ...byte) []byte {
		return append([]byte("RIFF\x00\x00\x00\x00WEBP"+chunk+"\x00\x00\x00\x00"), tail...)
	}
	cases := []struct {
		name string
		data []byte
		want bool
	}{
		{name: "lossy", data: header("VP8 ", 0x10, 0, 0, 0, 0), want: false},
		{name: "extended with alpha", data: header("VP8X", 0x10, 0, 0, 0), want: true},
		{name: "extended opaque", data: header("VP8X", 0x00, 0, 0, 0), want: false},
		{name: "lossless with alpha", data: header("VP8L", 0x2f, 0, 0, 0, 0x10), want: true},
		{name: "lossless opaque", data: header("VP8L", 0x2f, 0, 0, 0, 0x00), want: false},
		{name: "truncated", data: []byte("RIFF\x00\x00\x00\x00WEBP"), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := webpHasAlpha(tc.data); got != tc.want {
				t.Fatalf("webpHasAlpha = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBinarizeRejectsGarbage(t *testing.T) {
	if _, err := Binarize([]byte("not an image")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestResolvePromptWins(t *testing.T) {
	tr := &upperTranslator{}
	r := NewResolver(tr, nil)

	spec, err := r.Resolve(context.Background(), Input{
		MaskType:        domain.MaskTypeGarment,
		MaskPrompt:      "シャツ",
		GarmentClass:    "UPPER_BODY",
		MaskShapePrompt: "CONTOUR",
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if spec.Type != domain.MaskTypePrompt {
		t.Fatalf("Type = %s, want PROMPT", spec.Type)
	}
	if spec.Prompt == nil || spec.Prompt.MaskPrompt != "EN:シャツ" || spec.Prompt.MaskShape != "CONTOUR" {
		t.Fatalf("unexpected prompt mask: %+v", spec.Prompt)
	}
	if spec.Garment != nil || spec.Image != nil {
		t.Fatalf("only the prompt strategy should be populated: %+v", spec)
	}
	if tr.calls != 1 {
		t.Fatalf("translator calls = %d, want 1", tr.calls)
	}
}

func TestResolveGarment(t *testing.T) {
	r := NewResolver(nil, nil)

	spec, err := r.Resolve(context.Background(), Input{
		MaskType:         domain.MaskTypeGarment,
		MaskPrompt:       "   ",
		GarmentClass:     "LOWER_BODY",
		TuckingStyle:     "TUCKED",
		MaskShape:        domain.ShapeDefault,
		PreserveFace:     "ON",
		PreserveHands:    domain.ShapeDefault,
		PreserveBodyPose: "",
		MergeStyle:       "SEAMLESS",
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if spec.Type != domain.MaskTypeGarment || spec.Garment == nil {
		t.Fatalf("expected garment mask, got %+v", spec)
	}
	if spec.Garment.GarmentClass != "LOWER_BODY" || spec.Garment.MaskShape != "" {
		t.Fatalf("unexpected garment mask: %+v", spec.Garment)
	}
	if spec.Garment.GarmentStyling == nil || spec.Garment.GarmentStyling.TuckingStyle != "TUCKED" {
		t.Fatalf("styling not attached: %+v", spec.Garment.GarmentStyling)
	}
	if spec.Exclusions == nil || spec.Exclusions.PreserveFace != "ON" || spec.Exclusions.PreserveHands != "" {
		t.Fatalf("unexpected exclusions: %+v", spec.Exclusions)
	}
	if spec.MergeStyle != "SEAMLESS" {
		t.Fatalf("MergeStyle = %q", spec.MergeStyle)
	}
}

func TestResolveGarmentOmitsEmptyStyling(t *testing.T) {
	spec, err := NewResolver(nil, nil).Resolve(context.Background(), Input{GarmentClass: "UPPER_BODY"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if spec.Type != domain.MaskTypeGarment {
		t.Fatalf("empty mask type should default to GARMENT, got %s", spec.Type)
	}
	if spec.Garment.GarmentStyling != nil || spec.Exclusions != nil {
		t.Fatalf("empty sub-objects should be omitted: %+v", spec)
	}
}

func TestResolveImageRequiresMask(t *testing.T) {
	_, err := NewResolver(nil, nil).Resolve(context.Background(), Input{MaskType: domain.MaskTypeImage})
	if !errors.Is(err, domain.ErrMissingMaskImage) {
		t.Fatalf("expected ErrMissingMaskImage, got %v", err)
	}
}

func TestResolveImageBinarizes(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 1, 1))
	src.SetGray(0, 0, color.Gray{Y: 200})

	spec, err := NewResolver(nil, nil).Resolve(context.Background(), Input{
		MaskType:  domain.MaskTypeImage,
		MaskImage: encodePNG(t, src),
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if spec.Image == nil {
		t.Fatalf("expected image mask")
	}
	raw, err := base64.StdEncoding.DecodeString(spec.Image.MaskImage)
	if err != nil {
		t.Fatalf("mask is not base64: %v", err)
	}
	img := decodeGray(t, raw).(*image.Gray)
	if img.GrayAt(0, 0).Y != 255 {
		t.Fatalf("pixel = %d, want 255", img.GrayAt(0, 0).Y)
	}
}

func TestResolveGarmentNeedsClass(t *testing.T) {
	_, err := NewResolver(nil, nil).Resolve(context.Background(), Input{MaskType: domain.MaskTypeGarment, GarmentClass: " "})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestResolvePromptTypeNeedsPrompt(t *testing.T) {
	_, err := NewResolver(nil, nil).Resolve(context.Background(), Input{MaskType: domain.MaskTypePrompt})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
