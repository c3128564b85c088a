package imagesource

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), "input.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return path
}

func decodePayload(t *testing.T, payload string) image.Config {
	t.Helper()

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("payload is not standard base64: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload is not a decodable image: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("expected jpeg payload, got %s", format)
	}
	return cfg
}

func TestLibrarySourceAcquiresAndReencodes(t *testing.T) {
	path := writeTestPNG(t, 64, 48)

	acq := LibrarySource{Path: path}.Acquire(context.Background())
	if acq.Status != StatusAcquired {
		t.Fatalf("expected acquired, got %v (%s)", acq.Status, acq.Detail)
	}
	if acq.Asset.LocalURI != path {
		t.Fatalf("unexpected local uri: %q", acq.Asset.LocalURI)
	}

	cfg := decodePayload(t, acq.Asset.EncodedPayload)
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Fatalf("small image should keep its size, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestLibrarySourceDownscalesLargeImages(t *testing.T) {
	path := writeTestPNG(t, 2000, 500)

	acq := LibrarySource{Path: path}.Acquire(context.Background())
	if acq.Status != StatusAcquired {
		t.Fatalf("expected acquired, got %v (%s)", acq.Status, acq.Detail)
	}

	cfg := decodePayload(t, acq.Asset.EncodedPayload)
	if cfg.Width > maxDimension || cfg.Height > maxDimension {
		t.Fatalf("image was not bounded: %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Width != maxDimension {
		t.Fatalf("long side should hit the bound, got %d", cfg.Width)
	}
}

func TestLibrarySourceEmptyPathIsCancelled(t *testing.T) {
	acq := LibrarySource{}.Acquire(context.Background())
	if acq.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %v", acq.Status)
	}
}

func TestLibrarySourceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	acq := LibrarySource{Path: writeTestPNG(t, 8, 8)}.Acquire(ctx)
	if acq.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %v", acq.Status)
	}
}

func TestLibrarySourceMissingFile(t *testing.T) {
	acq := LibrarySource{Path: filepath.Join(t.TempDir(), "missing.png")}.Acquire(context.Background())
	if acq.Status != StatusDeviceError {
		t.Fatalf("expected device error, got %v", acq.Status)
	}
	if acq.Detail == "" {
		t.Fatal("device error must carry a detail")
	}
}

func TestLibrarySourceGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o600); err != nil {
		t.Fatalf("failed to write garbage file: %v", err)
	}

	acq := LibrarySource{Path: path}.Acquire(context.Background())
	if acq.Status != StatusDeviceError {
		t.Fatalf("expected device error, got %v", acq.Status)
	}
}

func TestCameraSourceWithoutCommand(t *testing.T) {
	acq := CameraSource{}.Acquire(context.Background())
	if acq.Status != StatusDeviceError {
		t.Fatalf("expected device error, got %v", acq.Status)
	}
}

func TestCameraSourceMissingDevice(t *testing.T) {
	source := CameraSource{
		Device:  filepath.Join(t.TempDir(), "video0"),
		Command: "true",
	}

	acq := source.Acquire(context.Background())
	if acq.Status != StatusDeviceError {
		t.Fatalf("expected device error, got %v", acq.Status)
	}
}

func TestCameraSourceCapturesThroughCommand(t *testing.T) {
	// The capture command copies a prepared frame, standing in for a real
	// camera tool writing to {output}.
	frame := writeTestPNG(t, 32, 32)

	acq := CameraSource{Command: "cp " + frame + " {output}"}.Acquire(context.Background())
	if acq.Status != StatusAcquired {
		t.Fatalf("expected acquired, got %v (%s)", acq.Status, acq.Detail)
	}
	decodePayload(t, acq.Asset.EncodedPayload)
}

func TestCameraSourceFailingCommand(t *testing.T) {
	acq := CameraSource{Command: "false"}.Acquire(context.Background())
	if acq.Status != StatusDeviceError {
		t.Fatalf("expected device error, got %v", acq.Status)
	}
}
