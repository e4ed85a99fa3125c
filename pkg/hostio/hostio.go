// Package hostio implements the typed register channel to the HostIo
// modules compiled into the FPGA bitstreams. A channel is bound to one
// module id and to declared input/output field bit widths; writes drive the
// module's inputs, reads sample its outputs.
package hostio

import (
	"fmt"

	"github.com/fpgatools/xsboard/pkg/jtag"
	"github.com/golang/glog"
)

// Channel is the typed read/write interface to one HostIo module.
type Channel interface {
	// Write drives the module input fields, one value per declared input
	// width.
	Write(vals ...uint64) error
	// Read samples the module output fields, one value per declared
	// output width, in declaration order.
	Read() ([]uint64, error)
}

// HostIo frame opcodes, shifted after the module id.
const (
	opNop uint8 = iota
	opSize
	opWrite
	opRead
)

const (
	moduleIDBits = 8
	opcodeBits   = 2

	// USER1 exposes the HostIo scan chain on both Spartan families used
	// across the board catalog.
	user1Opcode = 0x02
	irLength    = 6
)

// BridgeChannel drives a HostIo module through a JTAG port.
type BridgeChannel struct {
	port      jtag.Port
	moduleID  uint8
	inWidths  []uint
	outWidths []uint
}

// NewBridgeChannel binds a channel to a module id with the given field
// widths. Either width list may be empty when the module has no inputs or
// no outputs.
func NewBridgeChannel(port jtag.Port, moduleID uint8, inWidths, outWidths []uint) (*BridgeChannel, error) {
	for _, w := range inWidths {
		if w == 0 || w > 64 {
			return nil, fmt.Errorf("hostio: input width %d out of range", w)
		}
	}
	for _, w := range outWidths {
		if w == 0 || w > 64 {
			return nil, fmt.Errorf("hostio: output width %d out of range", w)
		}
	}
	return &BridgeChannel{
		port:      port,
		moduleID:  moduleID,
		inWidths:  append([]uint(nil), inWidths...),
		outWidths: append([]uint(nil), outWidths...),
	}, nil
}

func (c *BridgeChannel) Write(vals ...uint64) error {
	if len(vals) != len(c.inWidths) {
		return fmt.Errorf("hostio: module 0x%02X expects %d input fields, got %d",
			c.moduleID, len(c.inWidths), len(vals))
	}
	frame := c.header(opWrite)
	for i, v := range vals {
		w := c.inWidths[i]
		if w < 64 && v >= 1<<w {
			return fmt.Errorf("hostio: value 0x%X exceeds %d-bit field", v, w)
		}
		frame = appendBits(frame, v, w)
	}
	glog.V(3).Infof("hostio: write module 0x%02X %v", c.moduleID, vals)
	return c.shift(frame, false, nil)
}

func (c *BridgeChannel) Read() ([]uint64, error) {
	total := uint(0)
	for _, w := range c.outWidths {
		total += w
	}
	frame := c.header(opRead)
	frame = append(frame, make([]bool, total)...) // capture clocks

	captured := make([]bool, len(frame))
	if err := c.shift(frame, true, captured); err != nil {
		return nil, err
	}

	// Output fields appear after the header clocks, in declaration order.
	payload := captured[moduleIDBits+opcodeBits:]
	vals := make([]uint64, len(c.outWidths))
	pos := 0
	for i, w := range c.outWidths {
		var v uint64
		for b := uint(0); b < w; b++ {
			if payload[pos] {
				v |= 1 << b
			}
			pos++
		}
		vals[i] = v
	}
	glog.V(3).Infof("hostio: read module 0x%02X %v", c.moduleID, vals)
	return vals, nil
}

func (c *BridgeChannel) header(op uint8) []bool {
	frame := appendBits(nil, uint64(c.moduleID), moduleIDBits)
	return appendBits(frame, uint64(op), opcodeBits)
}

func (c *BridgeChannel) shift(frame []bool, capture bool, out []bool) error {
	if err := c.port.LoadInstruction(user1Opcode, irLength); err != nil {
		return fmt.Errorf("hostio: select scan chain: %w", err)
	}
	tdi := make([]byte, (len(frame)+7)/8)
	for i, b := range frame {
		if b {
			tdi[i/8] |= 1 << (i % 8)
		}
	}
	tdo, err := c.port.ShiftDR(tdi, len(frame))
	if err != nil {
		return fmt.Errorf("hostio: module 0x%02X shift: %w", c.moduleID, err)
	}
	if capture {
		for i := range out {
			out[i] = tdo[i/8]&(1<<(i%8)) != 0
		}
	}
	return nil
}

func appendBits(bits []bool, v uint64, width uint) []bool {
	for b := uint(0); b < width; b++ {
		bits = append(bits, v&(1<<b) != 0)
	}
	return bits
}
