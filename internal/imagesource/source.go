// Package imagesource turns camera capture and gallery picks into a single
// acquisition result. Every failure mode is a value; no operation here
// returns an error.
package imagesource

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	_ "image/png" // gallery files are commonly PNG
	"os"
)

// Fixed acquisition constraints. They bound the encoded payload handed to
// the analysis gateway and are not caller-tunable.
const (
	jpegQuality  = 70
	maxDimension = 1280
)

// Status is the outcome class of an acquisition attempt.
type Status int

const (
	StatusAcquired Status = iota
	StatusPermissionDenied
	StatusCancelled
	StatusDeviceError
)

// Asset is one acquired image, ready for a single analysis call. The
// encoded payload is standard base64 JPEG data.
type Asset struct {
	EncodedPayload string
	LocalURI       string
}

// Acquisition is the value result of Acquire. Detail is populated for
// device errors only.
type Acquisition struct {
	Status Status
	Asset  Asset
	Detail string
}

// Source produces images for analysis.
type Source interface {
	Acquire(ctx context.Context) Acquisition
}

func acquired(asset Asset) Acquisition {
	return Acquisition{Status: StatusAcquired, Asset: asset}
}

func deviceError(detail string) Acquisition {
	return Acquisition{Status: StatusDeviceError, Detail: detail}
}

// loadAsset reads an image file, re-encodes it under the fixed quality and
// size constraints, and wraps it as an Asset.
func loadAsset(path string) Acquisition {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return Acquisition{Status: StatusPermissionDenied}
		}
		return deviceError(err.Error())
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return deviceError("unsupported image data: " + err.Error())
	}
	img = bound(img, maxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return deviceError("encode failed: " + err.Error())
	}

	return acquired(Asset{
		EncodedPayload: base64.StdEncoding.EncodeToString(buf.Bytes()),
		LocalURI:       path,
	})
}

// bound downscales img so neither side exceeds max pixels. Nearest-neighbor
// is enough here: the classifier resizes again on its side.
func bound(img image.Image, max int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return img
	}

	scale := float64(max) / float64(w)
	if h > w {
		scale = float64(max) / float64(h)
	}
	nw, nh := int(float64(w)*scale), int(float64(h)*scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, nw, nh))
	for y := 0; y < nh; y++ {
		sy := b.Min.Y + y*h/nh
		for x := 0; x < nw; x++ {
			sx := b.Min.X + x*w/nw
			out.Set(x, y, img.At(sx, sy))
		}
	}
	return out
}
