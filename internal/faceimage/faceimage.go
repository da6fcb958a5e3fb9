// Package faceimage turns a client face capture (base64 or data URI) into a
// bounded WebP image suitable for storage and verification.
package faceimage

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

var (
	ErrEmpty       = errors.New("face image is empty")
	ErrTooLarge    = errors.New("face image is too large")
	ErrUnsupported = errors.New("face image format is not supported")
)

const webpQuality = 80

type Normalizer struct {
	MaxBytes  int // limit on the decoded payload
	MaxEdge   int // longest side after downscaling
	MaxPixels int // limit on width*height, checked before the bitmap is decoded
}

// Normalize decodes the payload, downscales it to MaxEdge and re-encodes it
// as lossy WebP.
func (n Normalizer) Normalize(payload string) ([]byte, error) {
	raw, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	if n.MaxBytes > 0 && len(raw) > n.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(raw), n.MaxBytes)
	}

	format, err := sniff(raw)
	if err != nil {
		return nil, err
	}
	if n.MaxPixels > 0 {
		cfg, err := decodeConfig(format, raw)
		if err != nil {
			return nil, err
		}
		if px := int64(cfg.Width) * int64(cfg.Height); px > int64(n.MaxPixels) {
			return nil, fmt.Errorf("%w: %dx%d pixels (max %d)", ErrTooLarge, cfg.Width, cfg.Height, n.MaxPixels)
		}
	}

	img, err := decodeImage(format, raw)
	if err != nil {
		return nil, err
	}
	if n.MaxEdge > 0 {
		b := img.Bounds()
		if b.Dx() > n.MaxEdge || b.Dy() > n.MaxEdge {
			img = imaging.Fit(img, n.MaxEdge, n.MaxEdge, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// decodePayload accepts "data:image/...;base64,<data>" or bare base64 (std or
// raw, optionally URL-safe).
func decodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		i := strings.Index(payload, ",")
		if i < 0 || !strings.Contains(payload[:i], ";base64") {
			return nil, fmt.Errorf("%w: malformed data URI", ErrUnsupported)
		}
		payload = payload[i+1:]
	}
	if payload == "" {
		return nil, ErrEmpty
	}
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding,
	} {
		if raw, err := enc.DecodeString(payload); err == nil {
			if len(raw) == 0 {
				return nil, ErrEmpty
			}
			return raw, nil
		}
	}
	return nil, fmt.Errorf("%w: payload is not base64", ErrUnsupported)
}

type imageFormat int

const (
	formatWebP imageFormat = iota + 1
	formatRaster
)

func sniff(raw []byte) (imageFormat, error) {
	head := raw
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)
	switch {
	case strings.Contains(ct, "webp"):
		return formatWebP, nil
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "png"):
		return formatRaster, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupported, ct)
}

// decodeConfig reads only the header, so the dimensions are known before any
// pixel buffer is allocated.
func decodeConfig(format imageFormat, raw []byte) (image.Config, error) {
	var (
		cfg image.Config
		err error
	)
	if format == formatWebP {
		cfg, err = webp.DecodeConfig(bytes.NewReader(raw))
	} else {
		cfg, _, err = image.DecodeConfig(bytes.NewReader(raw))
	}
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return cfg, nil
}

func decodeImage(format imageFormat, raw []byte) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	if format == formatWebP {
		img, err = webp.Decode(bytes.NewReader(raw))
	} else {
		img, err = imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return img, nil
}
