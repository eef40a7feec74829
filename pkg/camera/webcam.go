package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/sightlinehq/sightline/pkg/frame"
)

// Webcam captures frames from a local device through OpenCV.
type Webcam struct {
	config Config

	mu     sync.Mutex
	cap    *gocv.VideoCapture
	mat    gocv.Mat
	closed bool
}

// OpenWebcam opens the configured capture device.
func OpenWebcam(config Config) (*Webcam, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cap, err := gocv.OpenVideoCapture(config.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("camera: open device %d: %w", config.DeviceID, err)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(config.Width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(config.Height))
	cap.Set(gocv.VideoCaptureFPS, float64(config.Framerate))

	return &Webcam{
		config: config,
		cap:    cap,
		mat:    gocv.NewMat(),
	}, nil
}

// Capture reads the current frame and converts it to RGBA.
// Returns frame.ErrNotReady when the device has no frame buffered yet.
func (w *Webcam) Capture() (*frame.Frame, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, frame.ErrNotReady
	}
	if ok := w.cap.Read(&w.mat); !ok || w.mat.Empty() {
		return nil, frame.ErrNotReady
	}

	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(w.mat, &rgba, gocv.ColorBGRToRGBA)

	img, err := rgba.ToImage()
	if err != nil {
		return nil, fmt.Errorf("camera: convert frame: %w", err)
	}
	return frame.FromImage(img), nil
}

// Close releases the capture device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.mat.Close()
	return w.cap.Close()
}

// Verify Webcam implements frame.Source at compile time.
var _ frame.Source = (*Webcam)(nil)
