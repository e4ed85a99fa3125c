// Package usbdev provides the byte-level request/response link to one XESS
// board through its USB-to-JTAG bridge. Exactly one Link may address a
// physical port at a time; callers own that exclusivity.
package usbdev

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/google/gousb"
)

const (
	// XESS bridge USB identifiers (Microchip VID, XuLA product).
	VendorIDXess  = 0x04D8
	ProductIDXula = 0xFF8C

	// Bridge endpoint addresses.
	endpointOut = 0x01
	endpointIn  = 0x81

	// Bridge packet size and the fixed info-frame length returned by the
	// microcontroller.
	packetSize    = 32
	infoFrameSize = 32

	defaultTimeout = 2 * time.Second
)

// Bridge command opcodes handled by the link itself. Microcontroller and
// JTAG opcodes live with their drivers.
const (
	cmdInfo    = 0x30
	cmdSetProg = 0xB0
	cmdReset   = 0xFF
)

// Link is the request/response channel to one physical board.
type Link interface {
	// Reset restarts the bridge microcontroller.
	Reset() error
	// InfoFrame fetches the raw identity/version/description frame.
	InfoFrame() ([]byte, error)
	// SetProg drives the FPGA programming line to the given level.
	SetProg(level uint8) error
	// Command performs one raw request/response exchange with the bridge.
	Command(req []byte) ([]byte, error)
	// ID reports the port index the link was opened on.
	ID() int
	Close() error
}

// USBLink talks to the bridge over gousb bulk endpoints.
type USBLink struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	intf *gousb.Interface
	done func()

	epOut *gousb.OutEndpoint
	epIn  *gousb.InEndpoint

	id      int
	timeout time.Duration
}

// Open claims the bridge on the given USB port index. Index 0 selects the
// first matching device.
func Open(id int) (*USBLink, error) {
	if id < 0 {
		return nil, fmt.Errorf("usbdev: invalid port index %d", id)
	}
	ctx := gousb.NewContext()

	var seen int
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if uint16(desc.Vendor) != VendorIDXess || uint16(desc.Product) != ProductIDXula {
			return false
		}
		seen++
		return seen-1 == id
	})
	if err != nil && err != gousb.ErrorAccess {
		for _, d := range devs {
			d.Close()
		}
		ctx.Close()
		return nil, fmt.Errorf("usbdev: enumerate: %w", err)
	}
	if len(devs) == 0 {
		ctx.Close()
		return nil, fmt.Errorf("usbdev: no XESS board on port %d", id)
	}
	dev := devs[0]

	if err := dev.SetAutoDetach(true); err != nil {
		glog.V(2).Infof("usbdev: auto-detach unsupported: %v", err)
	}

	l := &USBLink{ctx: ctx, dev: dev, id: id, timeout: defaultTimeout}
	if err := l.claim(); err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}
	glog.V(1).Infof("usbdev: opened bridge on port %d", id)
	return l, nil
}

func (l *USBLink) claim() error {
	intf, done, err := l.dev.DefaultInterface()
	if err != nil {
		return fmt.Errorf("usbdev: claim interface: %w", err)
	}
	l.intf = intf
	l.done = done

	epOut, err := intf.OutEndpoint(endpointOut)
	if err != nil {
		return fmt.Errorf("usbdev: open OUT endpoint: %w", err)
	}
	epIn, err := intf.InEndpoint(endpointIn & 0x0F)
	if err != nil {
		return fmt.Errorf("usbdev: open IN endpoint: %w", err)
	}
	l.epOut = epOut
	l.epIn = epIn
	return nil
}

// Command sends one fixed-size packet and reads the response packet. The
// first request byte is the opcode; responses echo it back.
func (l *USBLink) Command(req []byte) ([]byte, error) {
	if len(req) == 0 {
		return nil, fmt.Errorf("usbdev: empty command")
	}
	packet := make([]byte, packetSize)
	copy(packet, req)
	if _, err := l.epOut.Write(packet); err != nil {
		return nil, fmt.Errorf("usbdev: write command 0x%02X: %w", req[0], err)
	}
	resp := make([]byte, packetSize)
	n, err := l.epIn.Read(resp)
	if err != nil {
		return nil, fmt.Errorf("usbdev: read response to 0x%02X: %w", req[0], err)
	}
	if n == 0 || resp[0] != req[0] {
		return nil, fmt.Errorf("usbdev: command 0x%02X not acknowledged", req[0])
	}
	return resp[:n], nil
}

// InfoFrame returns the raw board-information frame. The frame layout and
// checksum are interpreted by the board package.
func (l *USBLink) InfoFrame() ([]byte, error) {
	resp, err := l.Command([]byte{cmdInfo})
	if err != nil {
		return nil, err
	}
	if len(resp) < infoFrameSize {
		return nil, fmt.Errorf("usbdev: short info frame (%d bytes)", len(resp))
	}
	frame := make([]byte, infoFrameSize)
	copy(frame, resp[:infoFrameSize])
	return frame, nil
}

// SetProg drives the FPGA PROG# line.
func (l *USBLink) SetProg(level uint8) error {
	_, err := l.Command([]byte{cmdSetProg, level & 1})
	return err
}

// Reset restarts the bridge microcontroller. The device re-enumerates, so
// the command response is not waited for.
func (l *USBLink) Reset() error {
	packet := make([]byte, packetSize)
	packet[0] = cmdReset
	if _, err := l.epOut.Write(packet); err != nil {
		return fmt.Errorf("usbdev: reset: %w", err)
	}
	time.Sleep(500 * time.Millisecond)
	return nil
}

// ID reports the USB port index this link was opened on.
func (l *USBLink) ID() int { return l.id }

func (l *USBLink) Close() error {
	if l.done != nil {
		l.done()
		l.done = nil
		l.intf = nil
	}
	if l.dev != nil {
		l.dev.Close()
		l.dev = nil
	}
	if l.ctx != nil {
		l.ctx.Close()
		l.ctx = nil
	}
	return nil
}

// Count reports how many XESS bridges are attached.
func Count() (int, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var n int
	_, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if uint16(desc.Vendor) == VendorIDXess && uint16(desc.Product) == ProductIDXula {
			n++
		}
		return false
	})
	if err != nil && err != gousb.ErrorAccess {
		return n, fmt.Errorf("usbdev: enumerate: %w", err)
	}
	return n, nil
}
