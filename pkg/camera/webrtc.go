package camera

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/rtp/codecs"
	"github.com/pion/webrtc/v3"

	"github.com/sightlinehq/sightline/internal/log"
	"github.com/sightlinehq/sightline/pkg/frame"
)

// signalMessage is the JSON envelope exchanged with the remote camera's
// signalling endpoint.
type signalMessage struct {
	Type      string `json:"type"`
	SDP       string `json:"sdp,omitempty"`
	Candidate string `json:"candidate,omitempty"`
}

// Remote receives frames from a companion camera app over WebRTC.
// H264 RTP payloads are reassembled into access units and decoded to
// RGBA through an ffmpeg pipe; Capture always returns the latest
// decoded frame.
type Remote struct {
	config Config

	ws *websocket.Conn
	pc *webrtc.PeerConnection

	wsMu sync.Mutex

	frameMu sync.RWMutex
	latest  *frame.Frame

	// Decode rate limiting keeps the ffmpeg subprocess cost bounded.
	decodeMu   sync.Mutex
	lastDecode time.Time

	closed chan struct{}
}

// OpenRemote dials the signalling endpoint and negotiates a receive-only
// video session. Frames become available asynchronously; Capture returns
// frame.ErrNotReady until the first access unit decodes.
func OpenRemote(config Config) (*Remote, error) {
	if config.SignallingURL == "" {
		return nil, fmt.Errorf("camera: signalling URL required")
	}

	ws, _, err := websocket.DefaultDialer.Dial(config.SignallingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("camera: dial signalling: %w", err)
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("camera: peer connection: %w", err)
	}

	r := &Remote{
		config: config,
		ws:     ws,
		pc:     pc,
		closed: make(chan struct{}),
	}

	if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeVideo,
		webrtc.RTPTransceiverInit{Direction: webrtc.RTPTransceiverDirectionRecvonly},
	); err != nil {
		r.Close()
		return nil, fmt.Errorf("camera: add transceiver: %w", err)
	}

	pc.OnTrack(r.onTrack)
	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		r.send(signalMessage{Type: "candidate", Candidate: c.ToJSON().Candidate})
	})

	if err := r.negotiate(); err != nil {
		r.Close()
		return nil, err
	}

	go r.signalLoop()
	return r, nil
}

// negotiate performs the offer/answer exchange.
func (r *Remote) negotiate() error {
	offer, err := r.pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("camera: create offer: %w", err)
	}
	if err := r.pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("camera: set local description: %w", err)
	}
	if err := r.send(signalMessage{Type: "offer", SDP: offer.SDP}); err != nil {
		return err
	}

	var msg signalMessage
	if err := r.ws.ReadJSON(&msg); err != nil {
		return fmt.Errorf("camera: read answer: %w", err)
	}
	if msg.Type != "answer" {
		return fmt.Errorf("camera: unexpected signalling message %q", msg.Type)
	}
	return r.pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  msg.SDP,
	})
}

// signalLoop handles trickle ICE candidates from the remote end.
func (r *Remote) signalLoop() {
	for {
		var msg signalMessage
		if err := r.ws.ReadJSON(&msg); err != nil {
			select {
			case <-r.closed:
			default:
				log.Warn("camera: signalling closed", "error", err)
			}
			return
		}
		if msg.Type == "candidate" && msg.Candidate != "" {
			if err := r.pc.AddICECandidate(webrtc.ICECandidateInit{Candidate: msg.Candidate}); err != nil {
				log.Warn("camera: add candidate", "error", err)
			}
		}
	}
}

// onTrack reassembles H264 access units from RTP and decodes them.
func (r *Remote) onTrack(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
	if track.Kind() != webrtc.RTPCodecTypeVideo {
		return
	}
	log.Info("camera: remote video track started", "codec", track.Codec().MimeType)

	depacketizer := &codecs.H264Packet{}
	var accessUnit []byte

	for {
		pkt, _, err := track.ReadRTP()
		if err != nil {
			return
		}

		nal, err := depacketizer.Unmarshal(pkt.Payload)
		if err != nil {
			continue
		}
		accessUnit = append(accessUnit, nal...)

		// Marker bit closes the access unit.
		if pkt.Marker && len(accessUnit) > 0 {
			r.decode(accessUnit)
			accessUnit = nil
		}
	}
}

// decode converts one H264 access unit to an RGBA frame via ffmpeg.
// Rate limited; access units arriving faster than the configured
// framerate are dropped.
func (r *Remote) decode(accessUnit []byte) {
	r.decodeMu.Lock()
	minInterval := time.Second / time.Duration(r.config.Framerate)
	if time.Since(r.lastDecode) < minInterval {
		r.decodeMu.Unlock()
		return
	}
	r.lastDecode = time.Now()
	r.decodeMu.Unlock()

	w, h := r.config.Width, r.config.Height
	cmd := exec.Command("ffmpeg",
		"-f", "h264",
		"-i", "pipe:0",
		"-vframes", "1",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", w, h),
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(accessUnit)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		// ffmpeg exits nonzero on incomplete units; wait for the next.
		return
	}

	pix := stdout.Bytes()
	f, err := frame.New(pix, w, h)
	if err != nil {
		return
	}

	r.frameMu.Lock()
	r.latest = f
	r.frameMu.Unlock()
}

// Capture returns the latest decoded frame.
func (r *Remote) Capture() (*frame.Frame, error) {
	r.frameMu.RLock()
	defer r.frameMu.RUnlock()
	if r.latest == nil {
		return nil, frame.ErrNotReady
	}
	return r.latest, nil
}

// Close tears down the peer connection and signalling socket.
func (r *Remote) Close() error {
	select {
	case <-r.closed:
		return nil
	default:
		close(r.closed)
	}
	if r.pc != nil {
		r.pc.Close()
	}
	if r.ws != nil {
		return r.ws.Close()
	}
	return nil
}

func (r *Remote) send(msg signalMessage) error {
	r.wsMu.Lock()
	defer r.wsMu.Unlock()
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return r.ws.WriteMessage(websocket.TextMessage, data)
}

// Verify Remote implements frame.Source at compile time.
var _ frame.Source = (*Remote)(nil)
