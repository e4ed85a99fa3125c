package micro

import (
	"bytes"

	"github.com/fpgatools/xsboard/pkg/xserr"
)

// SimController is an in-memory Controller for unit tests. It tracks mode
// and flag state and records the call sequence so workflow tests can assert
// step ordering.
type SimController struct {
	// Flash is the simulated microcontroller flash contents.
	Flash []byte
	// FailProgram, when set, makes Program return this error.
	FailProgram error

	InReflash bool
	JTAGCable bool
	CfgFlash  bool

	Calls []string
}

func (s *SimController) record(name string) { s.Calls = append(s.Calls, name) }

func (s *SimController) EnterReflashMode() error {
	s.record("reflash")
	s.InReflash = true
	return nil
}

func (s *SimController) EnterUserMode() error {
	s.record("user")
	s.InReflash = false
	return nil
}

func (s *SimController) Program(image []byte) error {
	s.record("program")
	if s.FailProgram != nil {
		return s.FailProgram
	}
	s.Flash = append([]byte(nil), image...)
	return nil
}

func (s *SimController) Verify(image []byte) error {
	s.record("verify")
	if !bytes.Equal(s.Flash, image) {
		return xserr.Minorf("micro: firmware mismatch")
	}
	return nil
}

func (s *SimController) EnableJTAGCable() error {
	s.record("jtag-on")
	s.JTAGCable = true
	return nil
}

func (s *SimController) DisableJTAGCable() error {
	s.record("jtag-off")
	s.JTAGCable = false
	return nil
}

func (s *SimController) JTAGCableFlag() (bool, error) { return s.JTAGCable, nil }

func (s *SimController) EnableCfgFlash() error {
	s.record("flash-on")
	s.CfgFlash = true
	return nil
}

func (s *SimController) DisableCfgFlash() error {
	s.record("flash-off")
	s.CfgFlash = false
	return nil
}

func (s *SimController) CfgFlashFlag() (bool, error) { return s.CfgFlash, nil }

func (s *SimController) SetCfgFlashFlag(enabled bool) error {
	if enabled {
		return s.EnableCfgFlash()
	}
	return s.DisableCfgFlash()
}
