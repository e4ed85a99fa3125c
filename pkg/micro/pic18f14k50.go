package micro

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fpgatools/xsboard/pkg/usbdev"
	"github.com/fpgatools/xsboard/pkg/xserr"
	"github.com/golang/glog"
)

// Bridge opcodes for the microcontroller command set.
const (
	cmdFlashOnOff     = 0xC1
	cmdJTAGCableOnOff = 0xC2
	cmdEnterReflash   = 0xC3
	cmdEnterUser      = 0xC4
	cmdWriteFlash     = 0xC5
	cmdReadFlash      = 0xC6

	// Flag subcommands shared by cmdFlashOnOff and cmdJTAGCableOnOff.
	flagOff   = 0x00
	flagOn    = 0x01
	flagQuery = 0x02

	// Flash rows are programmed one packet payload at a time.
	rowSize = 16

	bootSettle = 100 * time.Millisecond
)

// PIC18F14K50 drives the stock XuLA supervisory microcontroller through the
// bridge link.
type PIC18F14K50 struct {
	link usbdev.Link
}

// NewPIC18F14K50 binds the driver to a link.
func NewPIC18F14K50(link usbdev.Link) *PIC18F14K50 {
	return &PIC18F14K50{link: link}
}

func (m *PIC18F14K50) EnterReflashMode() error {
	glog.V(1).Info("micro: entering reflash mode")
	if _, err := m.link.Command([]byte{cmdEnterReflash}); err != nil {
		return fmt.Errorf("micro: enter reflash mode: %w", err)
	}
	time.Sleep(bootSettle)
	return nil
}

func (m *PIC18F14K50) EnterUserMode() error {
	glog.V(1).Info("micro: entering user mode")
	if _, err := m.link.Command([]byte{cmdEnterUser}); err != nil {
		return fmt.Errorf("micro: enter user mode: %w", err)
	}
	time.Sleep(bootSettle)
	return nil
}

func (m *PIC18F14K50) Program(image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("micro: empty firmware image")
	}
	glog.V(1).Infof("micro: programming %d bytes of firmware", len(image))
	for addr := 0; addr < len(image); addr += rowSize {
		end := addr + rowSize
		if end > len(image) {
			end = len(image)
		}
		req := make([]byte, 0, 4+rowSize)
		req = append(req, cmdWriteFlash, byte(addr), byte(addr>>8), byte(end-addr))
		req = append(req, image[addr:end]...)
		if _, err := m.link.Command(req); err != nil {
			return fmt.Errorf("micro: program row 0x%04X: %w", addr, err)
		}
	}
	return nil
}

func (m *PIC18F14K50) Verify(image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("micro: empty firmware image")
	}
	glog.V(1).Infof("micro: verifying %d bytes of firmware", len(image))
	for addr := 0; addr < len(image); addr += rowSize {
		end := addr + rowSize
		if end > len(image) {
			end = len(image)
		}
		n := end - addr
		resp, err := m.link.Command([]byte{cmdReadFlash, byte(addr), byte(addr >> 8), byte(n)})
		if err != nil {
			return fmt.Errorf("micro: read row 0x%04X: %w", addr, err)
		}
		if len(resp) < 1+n {
			return fmt.Errorf("micro: short read at 0x%04X (%d bytes)", addr, len(resp)-1)
		}
		if !bytes.Equal(resp[1:1+n], image[addr:end]) {
			return xserr.Minorf("micro: firmware mismatch at 0x%04X", addr)
		}
	}
	return nil
}

func (m *PIC18F14K50) EnableJTAGCable() error  { return m.setFlag(cmdJTAGCableOnOff, true) }
func (m *PIC18F14K50) DisableJTAGCable() error { return m.setFlag(cmdJTAGCableOnOff, false) }

func (m *PIC18F14K50) JTAGCableFlag() (bool, error) {
	return m.queryFlag(cmdJTAGCableOnOff)
}

func (m *PIC18F14K50) EnableCfgFlash() error  { return m.setFlag(cmdFlashOnOff, true) }
func (m *PIC18F14K50) DisableCfgFlash() error { return m.setFlag(cmdFlashOnOff, false) }

func (m *PIC18F14K50) CfgFlashFlag() (bool, error) {
	return m.queryFlag(cmdFlashOnOff)
}

func (m *PIC18F14K50) SetCfgFlashFlag(enabled bool) error {
	return m.setFlag(cmdFlashOnOff, enabled)
}

func (m *PIC18F14K50) setFlag(cmd byte, on bool) error {
	arg := byte(flagOff)
	if on {
		arg = flagOn
	}
	if _, err := m.link.Command([]byte{cmd, arg}); err != nil {
		return fmt.Errorf("micro: set flag 0x%02X=%d: %w", cmd, arg, err)
	}
	return nil
}

func (m *PIC18F14K50) queryFlag(cmd byte) (bool, error) {
	resp, err := m.link.Command([]byte{cmd, flagQuery})
	if err != nil {
		return false, fmt.Errorf("micro: query flag 0x%02X: %w", cmd, err)
	}
	if len(resp) < 2 {
		return false, fmt.Errorf("micro: short flag response")
	}
	return resp[1] != 0, nil
}
