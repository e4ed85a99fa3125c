// Package fpga configures the Xilinx FPGA on XESS boards through the JTAG
// port and answers identity queries used during board probing.
package fpga

import (
	"fmt"
	"os"

	"github.com/fpgatools/xsboard/pkg/jtag"
	"github.com/golang/glog"
)

// Configurer loads bitstreams into an FPGA and reports whether the expected
// part answers on the JTAG chain.
type Configurer interface {
	// Configure loads the bitstream file into the FPGA.
	Configure(bitstreamPath string) error
	// Connected reports whether the expected FPGA part answers with its
	// IDCODE. A false result is not an error; an error means the chain
	// could not be queried at all.
	Connected() (bool, error)
}

// Part describes one Xilinx device and the JTAG opcodes it uses.
type Part struct {
	Name     string
	IDCode   uint32
	IRLength int

	// Configuration opcodes.
	OpIDCode uint32
	OpCfgIn  uint32
	OpJStart uint32
	OpJProg  uint32
}

// The parts used across the XuLA board catalog.
var (
	XC3S50A = Part{
		Name: "XC3S50A", IDCode: 0x02210093, IRLength: 6,
		OpIDCode: 0x09, OpCfgIn: 0x05, OpJStart: 0x0C, OpJProg: 0x0B,
	}
	XC3S200A = Part{
		Name: "XC3S200A", IDCode: 0x02218093, IRLength: 6,
		OpIDCode: 0x09, OpCfgIn: 0x05, OpJStart: 0x0C, OpJProg: 0x0B,
	}
	XC6SLX9 = Part{
		Name: "XC6SLX9", IDCode: 0x04001093, IRLength: 6,
		OpIDCode: 0x09, OpCfgIn: 0x05, OpJStart: 0x0C, OpJProg: 0x0B,
	}
	XC6SLX25 = Part{
		Name: "XC6SLX25", IDCode: 0x04004093, IRLength: 6,
		OpIDCode: 0x09, OpCfgIn: 0x05, OpJStart: 0x0C, OpJProg: 0x0B,
	}
)

// idcodeVersionMask ignores the silicon revision nibble when matching.
const idcodeVersionMask = 0x0FFFFFFF

// startupClocks idles the TAP after JSTART so the startup sequence runs.
const startupClocks = 16

// Xilinx drives one part through a JTAG port.
type Xilinx struct {
	part Part
	port jtag.Port
}

// NewXilinx binds a configurer to a part and port.
func NewXilinx(part Part, port jtag.Port) *Xilinx {
	return &Xilinx{part: part, port: port}
}

func (x *Xilinx) Connected() (bool, error) {
	if err := x.port.Reset(); err != nil {
		return false, fmt.Errorf("fpga: reset TAP: %w", err)
	}
	if err := x.port.LoadInstruction(x.part.OpIDCode, x.part.IRLength); err != nil {
		return false, fmt.Errorf("fpga: load IDCODE: %w", err)
	}
	tdo, err := x.port.ShiftDR(nil, 32)
	if err != nil {
		return false, fmt.Errorf("fpga: shift IDCODE: %w", err)
	}
	got := uint32(tdo[0]) | uint32(tdo[1])<<8 | uint32(tdo[2])<<16 | uint32(tdo[3])<<24
	match := got&idcodeVersionMask == x.part.IDCode&idcodeVersionMask
	glog.V(2).Infof("fpga: IDCODE 0x%08X, want %s (0x%08X): match=%v",
		got, x.part.Name, x.part.IDCode, match)
	return match, nil
}

// Configure streams a raw bitstream file into the part. Bitstream bytes are
// shifted MSB first, the way Xilinx serializes configuration data.
func (x *Xilinx) Configure(bitstreamPath string) error {
	data, err := os.ReadFile(bitstreamPath)
	if err != nil {
		return fmt.Errorf("fpga: read bitstream: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("fpga: empty bitstream %q", bitstreamPath)
	}
	glog.V(1).Infof("fpga: configuring %s with %q (%d bytes)", x.part.Name, bitstreamPath, len(data))

	if err := x.port.Reset(); err != nil {
		return fmt.Errorf("fpga: reset TAP: %w", err)
	}
	if err := x.port.LoadInstruction(x.part.OpCfgIn, x.part.IRLength); err != nil {
		return fmt.Errorf("fpga: load CFG_IN: %w", err)
	}
	if _, err := x.port.ShiftDR(reverseBits(data), len(data)*8); err != nil {
		return fmt.Errorf("fpga: shift bitstream: %w", err)
	}
	if err := x.port.LoadInstruction(x.part.OpJStart, x.part.IRLength); err != nil {
		return fmt.Errorf("fpga: load JSTART: %w", err)
	}
	if err := x.port.RunTest(startupClocks); err != nil {
		return fmt.Errorf("fpga: startup clocks: %w", err)
	}
	return nil
}

// reverseBits flips each byte so the LSB-first shift engine emits the
// bitstream MSB first.
func reverseBits(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		b = b>>4 | b<<4
		b = (b&0xCC)>>2 | (b&0x33)<<2
		b = (b&0xAA)>>1 | (b&0x55)<<1
		out[i] = b
	}
	return out
}
