// Package board implements identification and the maintenance workflows
// for XESS FPGA development boards: info retrieval, firmware update and
// verify, the diagnostic self test, and the configuration-flash and SDRAM
// read/write/erase operations.
package board

import (
	"strings"

	"github.com/fpgatools/xsboard/pkg/fpga"
	"github.com/fpgatools/xsboard/pkg/ramdev"
)

// HostIo module ids compiled into every interface bitstream.
const (
	TestModuleID     = 0x01
	CfgFlashModuleID = 0x02
	SDRAMModuleID    = 0x03
)

// ProbeMode selects how a variant's connectivity check decides a match.
type ProbeMode int

const (
	// ProbeFPGA matches when the firmware supports JTAG and the expected
	// FPGA part answers with its IDCODE.
	ProbeFPGA ProbeMode = iota
	// ProbeLegacyFirmware matches any board whose firmware predates JTAG
	// support; the FPGA cannot be queried.
	ProbeLegacyFirmware
	// ProbeMicroOnly matches a board with current firmware whose JTAG
	// port is deactivated, so only the microcontroller is visible.
	ProbeMicroOnly
)

// Descriptor is the immutable per-variant metadata. Descriptors are static;
// a Board holds a pointer to one and never mutates it.
type Descriptor struct {
	Name  string
	Dir   string // subdirectory of the data dir holding this variant's images
	Probe ProbeMode

	Part *fpga.Part // nil for microcontroller-only fallbacks

	HasCfgFlash bool
	HasSDRAM    bool
	// FlashToggleable marks variants whose flash-enable condition is a
	// stateful microcontroller flag. On the others the flash is wired
	// permanently enabled and flag operations are no-ops.
	FlashToggleable bool

	FlashSize uint32
	SDRAMSize uint32

	Firmware          string
	TestBitstream     string
	CfgFlashBitstream string
	SDRAMBitstream    string
}

// Catalog is the probe-ordered list of known variants. Variants whose
// identity can be confirmed through the FPGA IDCODE come first; the two
// microcontroller-only fallbacks match on firmware version alone and would
// shadow every other variant, so they are probed last.
var Catalog = []*Descriptor{
	{
		Name: "XuLA-50", Dir: "xula", Probe: ProbeFPGA, Part: &fpga.XC3S50A,
		HasCfgFlash: true, HasSDRAM: true, FlashToggleable: true,
		FlashSize: 128 << 10, SDRAMSize: ramdev.Size8MB,
		Firmware:          "XuLA_jtag.hex",
		TestBitstream:     "test_board_jtag_50.bit",
		CfgFlashBitstream: "fintf_jtag_50.bit",
		SDRAMBitstream:    "ramintfc_jtag_50.bit",
	},
	{
		Name: "XuLA-200", Dir: "xula", Probe: ProbeFPGA, Part: &fpga.XC3S200A,
		HasCfgFlash: true, HasSDRAM: true, FlashToggleable: true,
		FlashSize: 128 << 10, SDRAMSize: ramdev.Size8MB,
		Firmware:          "XuLA_jtag.hex",
		TestBitstream:     "test_board_jtag_200.bit",
		CfgFlashBitstream: "fintf_jtag_200.bit",
		SDRAMBitstream:    "ramintfc_jtag_200.bit",
	},
	{
		Name: "XuLA2-LX25", Dir: "xula2", Probe: ProbeFPGA, Part: &fpga.XC6SLX25,
		HasCfgFlash: true, HasSDRAM: true, FlashToggleable: false,
		FlashSize: 4 << 20, SDRAMSize: ramdev.Size32MB,
		Firmware:          "XuLA_jtag.hex",
		TestBitstream:     "test_board_jtag_lx25.bit",
		CfgFlashBitstream: "fintf_jtag_lx25.bit",
		SDRAMBitstream:    "ramintfc_jtag_lx25.bit",
	},
	{
		Name: "XuLA2-LX9", Dir: "xula2", Probe: ProbeFPGA, Part: &fpga.XC6SLX9,
		HasCfgFlash: true, HasSDRAM: true, FlashToggleable: false,
		FlashSize: 4 << 20, SDRAMSize: ramdev.Size32MB,
		Firmware:          "XuLA_jtag.hex",
		TestBitstream:     "test_board_jtag_lx9.bit",
		CfgFlashBitstream: "fintf_jtag_lx9.bit",
		SDRAMBitstream:    "ramintfc_jtag_lx9.bit",
	},
	{
		Name: "XuLA-legacy", Dir: "xula", Probe: ProbeLegacyFirmware,
		FlashToggleable: true,
		Firmware:        "XuLA_jtag.hex",
	},
	{
		Name: "XuLA-micro", Dir: "xula", Probe: ProbeMicroOnly,
		FlashToggleable: true,
		Firmware:        "XuLA_jtag.hex",
	},
}

// Lookup finds a descriptor by name, case-insensitively.
func Lookup(name string) *Descriptor {
	for _, d := range Catalog {
		if strings.EqualFold(d.Name, name) {
			return d
		}
	}
	return nil
}
