package imagesource

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CameraSource captures a frame through an external capture command (for
// example fswebcam or libcamera-still). The command string may reference
// {device} and {output}, which are substituted before execution.
type CameraSource struct {
	Device  string
	Command string
}

// Acquire checks camera access lazily, runs the capture command into a
// temporary file, and loads the result.
func (s CameraSource) Acquire(ctx context.Context) Acquisition {
	if s.Command == "" {
		return deviceError("no capture command configured")
	}

	// Permission is only requested on the camera path, and only when a
	// capture is actually attempted.
	if s.Device != "" {
		f, err := os.Open(s.Device)
		switch {
		case err == nil:
			f.Close()
		case os.IsPermission(err):
			return Acquisition{Status: StatusPermissionDenied}
		case os.IsNotExist(err):
			return deviceError("camera device not found: " + s.Device)
		default:
			return deviceError(err.Error())
		}
	}

	out := filepath.Join(os.TempDir(), "ecolife-capture.jpg")
	cmd := strings.ReplaceAll(s.Command, "{device}", s.Device)
	cmd = strings.ReplaceAll(cmd, "{output}", out)

	run := exec.CommandContext(ctx, "sh", "-c", cmd)
	if output, err := run.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return Acquisition{Status: StatusCancelled}
		}
		return deviceError("capture failed: " + strings.TrimSpace(string(output)))
	}
	defer os.Remove(out)

	return loadAsset(out)
}
