package usbdev

import "fmt"

// CommandHook lets a test script the bridge response for one opcode.
type CommandHook func(req []byte) ([]byte, error)

// SimLink is an in-memory Link for unit tests. Info frames are served from
// a queue so tests can model stale or corrupted frames followed by good
// ones; raw commands dispatch to per-opcode hooks.
type SimLink struct {
	Port int

	// Frames are returned by successive InfoFrame calls. An entry of nil
	// makes that call fail, modelling a transport error.
	Frames [][]byte

	OnCommand map[byte]CommandHook

	frameIdx  int
	resets    int
	progLevel uint8
	progOps   []uint8
	closed    bool
}

// NewSimLink constructs a simulator that serves the given frames in order.
// The last frame is repeated once the queue is exhausted.
func NewSimLink(frames ...[]byte) *SimLink {
	return &SimLink{Frames: frames}
}

// Resets reports how many resets have been requested.
func (s *SimLink) Resets() int { return s.resets }

// ProgPulses returns every level driven onto the prog line, in order.
func (s *SimLink) ProgPulses() []uint8 {
	return append([]uint8(nil), s.progOps...)
}

func (s *SimLink) Reset() error {
	s.resets++
	return nil
}

func (s *SimLink) InfoFrame() ([]byte, error) {
	if len(s.Frames) == 0 {
		return nil, fmt.Errorf("usbdev: sim has no info frames")
	}
	idx := s.frameIdx
	if idx >= len(s.Frames) {
		idx = len(s.Frames) - 1
	} else {
		s.frameIdx++
	}
	frame := s.Frames[idx]
	if frame == nil {
		return nil, fmt.Errorf("usbdev: sim transport error")
	}
	return append([]byte(nil), frame...), nil
}

func (s *SimLink) SetProg(level uint8) error {
	s.progLevel = level & 1
	s.progOps = append(s.progOps, s.progLevel)
	return nil
}

func (s *SimLink) Command(req []byte) ([]byte, error) {
	if len(req) == 0 {
		return nil, fmt.Errorf("usbdev: empty command")
	}
	if hook, ok := s.OnCommand[req[0]]; ok {
		return hook(req)
	}
	// Default: acknowledge with an echo of the opcode.
	return []byte{req[0]}, nil
}

func (s *SimLink) ID() int { return s.Port }

func (s *SimLink) Close() error {
	s.closed = true
	return nil
}
