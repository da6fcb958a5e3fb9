package faceimage

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
)

func pngPayload(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestNormalizeDownscalesToMaxEdge(t *testing.T) {
	out, err := Normalizer{MaxEdge: 640}.Normalize("data:image/png;base64," + pngPayload(t, 1200, 800))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not webp: %v", err)
	}
	if cfg.Width != 640 || cfg.Height < 426 || cfg.Height > 427 {
		t.Fatalf("unexpected size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestNormalizeKeepsSmallImages(t *testing.T) {
	out, err := Normalizer{MaxEdge: 640}.Normalize(pngPayload(t, 64, 48))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not webp: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Fatalf("unexpected size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	cases := []struct {
		payload string
		want    error
	}{
		{"", ErrEmpty},
		{"not base64 !!", ErrUnsupported},
		{base64.StdEncoding.EncodeToString([]byte("hello world")), ErrUnsupported},
		{"data:image/png,abc", ErrUnsupported},
	}
	for _, tc := range cases {
		if _, err := (Normalizer{}).Normalize(tc.payload); !errors.Is(err, tc.want) {
			t.Errorf("payload %q: expected %v, got %v", tc.payload, tc.want, err)
		}
	}
}

func TestNormalizeRejectsOversized(t *testing.T) {
	if _, err := (Normalizer{MaxBytes: 10}).Normalize(pngPayload(t, 32, 32)); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

// pngHeader returns a PNG signature and IHDR chunk claiming w x h pixels. The
// image data is absent, so only a header read can succeed.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 0 // grayscale

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestNormalizeRejectsHugeDimensionsBeforeDecode(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(pngHeader(15000, 15000))
	n := Normalizer{MaxBytes: 5 << 20, MaxEdge: 640, MaxPixels: 16 << 20}

	_, err := n.Normalize(payload)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestNormalizePixelBudget(t *testing.T) {
	cases := []struct {
		name      string
		w, h      int
		maxPixels int
		want      error
	}{
		{"within budget", 64, 48, 64 * 48, nil},
		{"over budget", 64, 48, 64*48 - 1, ErrTooLarge},
		{"no budget", 64, 48, 0, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalizer{MaxPixels: tc.maxPixels}.Normalize(pngPayload(t, tc.w, tc.h))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
