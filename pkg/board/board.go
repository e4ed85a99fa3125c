package board

import (
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/fpgatools/xsboard/pkg/config"
	"github.com/fpgatools/xsboard/pkg/flashdev"
	"github.com/fpgatools/xsboard/pkg/fpga"
	"github.com/fpgatools/xsboard/pkg/hostio"
	"github.com/fpgatools/xsboard/pkg/jtag"
	"github.com/fpgatools/xsboard/pkg/micro"
	"github.com/fpgatools/xsboard/pkg/progress"
	"github.com/fpgatools/xsboard/pkg/ramdev"
	"github.com/fpgatools/xsboard/pkg/usbdev"
	"github.com/fpgatools/xsboard/pkg/xserr"
)

// Delay between raising PROG# and the first configuration access, so the
// FPGA finishes clearing its configuration memory.
const defaultSettleDelay = 30 * time.Millisecond

// Self-test polling bounds. The poll loop is hard-limited so a wedged
// bitstream cannot hang the tool.
const (
	defaultPollLimit    = 10000
	defaultPollInterval = time.Millisecond
)

// Images are the resolved data-file paths for one board instance. Workflow
// methods that take an empty path fall back to these.
type Images struct {
	Firmware          string
	TestBitstream     string
	CfgFlashBitstream string
	SDRAMBitstream    string
}

// Deps carries everything a Board needs. Device channels are created
// through factories rather than held open: every flash, SDRAM and test
// workflow reconfigures the FPGA, which invalidates any channel created
// before it.
type Deps struct {
	Link  usbdev.Link
	Micro micro.Controller
	FPGA  fpga.Configurer // nil on microcontroller-only variants

	NewTestChannel func() (hostio.Channel, error)
	NewCfgFlash    func() (flashdev.Device, error)
	NewSDRAM       func() (ramdev.Device, error)

	Progress progress.Reporter
	Images   Images

	SettleDelay  time.Duration
	PollLimit    int
	PollInterval time.Duration
}

// Board is one identified board on one USB link.
type Board struct {
	desc  *Descriptor
	link  usbdev.Link
	micro micro.Controller
	fpga  fpga.Configurer

	newTestChannel func() (hostio.Channel, error)
	newCfgFlash    func() (flashdev.Device, error)
	newSDRAM       func() (ramdev.Device, error)

	progress progress.Reporter
	images   Images

	settle       time.Duration
	pollLimit    int
	pollInterval time.Duration
}

// New assembles a board from explicit dependencies. Open wires the real
// hardware stack; tests substitute simulators here.
func New(desc *Descriptor, deps Deps) (*Board, error) {
	if desc == nil {
		return nil, fmt.Errorf("board: nil descriptor")
	}
	if deps.Link == nil || deps.Micro == nil {
		return nil, fmt.Errorf("board: %s: link and microcontroller are required", desc.Name)
	}
	if desc.Part != nil && deps.FPGA == nil {
		return nil, fmt.Errorf("board: %s: FPGA configurer is required", desc.Name)
	}

	b := &Board{
		desc:           desc,
		link:           deps.Link,
		micro:          deps.Micro,
		fpga:           deps.FPGA,
		newTestChannel: deps.NewTestChannel,
		newCfgFlash:    deps.NewCfgFlash,
		newSDRAM:       deps.NewSDRAM,
		progress:       deps.Progress,
		images:         deps.Images,
		settle:         deps.SettleDelay,
		pollLimit:      deps.PollLimit,
		pollInterval:   deps.PollInterval,
	}
	if b.progress == nil {
		b.progress = progress.Nop
	}
	if b.settle <= 0 {
		b.settle = defaultSettleDelay
	}
	if b.pollLimit <= 0 {
		b.pollLimit = defaultPollLimit
	}
	if b.pollInterval <= 0 {
		b.pollInterval = defaultPollInterval
	}
	return b, nil
}

// Open claims the USB link and wires the full hardware stack for one
// descriptor. The caller owns the board and must Close it.
func Open(linkID int, desc *Descriptor, cfg *config.Config, rep progress.Reporter) (*Board, error) {
	link, err := usbdev.Open(linkID)
	if err != nil {
		return nil, err
	}

	deps := Deps{
		Link:     link,
		Micro:    micro.NewPIC18F14K50(link),
		Progress: rep,
		Images: Images{
			Firmware:          cfg.ImagePath(desc.Dir, desc.Firmware),
			TestBitstream:     cfg.ImagePath(desc.Dir, desc.TestBitstream),
			CfgFlashBitstream: cfg.ImagePath(desc.Dir, desc.CfgFlashBitstream),
			SDRAMBitstream:    cfg.ImagePath(desc.Dir, desc.SDRAMBitstream),
		},
	}
	if desc.Part != nil {
		port := jtag.NewBridgePort(link)
		deps.FPGA = fpga.NewXilinx(*desc.Part, port)
		deps.NewTestChannel = func() (hostio.Channel, error) {
			return hostio.NewBridgeChannel(port, TestModuleID, []uint{1}, []uint{2, 1, 32})
		}
		flashSize, sdramSize := desc.FlashSize, desc.SDRAMSize
		deps.NewCfgFlash = func() (flashdev.Device, error) {
			ch, err := hostio.NewBridgeChannel(port, CfgFlashModuleID, flashdev.InWidths, flashdev.OutWidths)
			if err != nil {
				return nil, err
			}
			return flashdev.NewW25X(ch, flashSize), nil
		}
		deps.NewSDRAM = func() (ramdev.Device, error) {
			ch, err := hostio.NewBridgeChannel(port, SDRAMModuleID, ramdev.InWidths, ramdev.OutWidths)
			if err != nil {
				return nil, err
			}
			return ramdev.NewSDRAM(ch, sdramSize), nil
		}
	}

	b, err := New(desc, deps)
	if err != nil {
		link.Close()
		return nil, err
	}
	return b, nil
}

// Name reports the variant name.
func (b *Board) Name() string { return b.desc.Name }

// Descriptor reports the variant metadata.
func (b *Board) Descriptor() *Descriptor { return b.desc }

// LinkID reports the USB link index the board was opened on.
func (b *Board) LinkID() int { return b.link.ID() }

// Reset restarts the board's microcontroller.
func (b *Board) Reset() error {
	if err := b.link.Reset(); err != nil {
		return xserr.Majorf("board: reset %s: %v", b.desc.Name, err)
	}
	return nil
}

// Close releases the USB link.
func (b *Board) Close() error { return b.link.Close() }

// Connected checks whether the attached hardware matches this board's
// variant. A recoverable failure along the way means "not this variant";
// only fatal errors propagate.
func (b *Board) Connected() (bool, error) {
	ver, err := b.FirmwareVersion()
	if err != nil {
		if xserr.IsMajor(err) {
			return false, err
		}
		glog.V(1).Infof("board: %s: info unreadable during probe: %v", b.desc.Name, err)
		return false, nil
	}

	switch b.desc.Probe {
	case ProbeLegacyFirmware:
		return ver < minJTAGVersion, nil
	case ProbeMicroOnly:
		return ver >= minJTAGVersion, nil
	default:
		if ver < minJTAGVersion {
			return false, nil
		}
		ok, err := b.fpga.Connected()
		if err != nil {
			glog.V(1).Infof("board: %s: FPGA probe failed: %v", b.desc.Name, err)
			return false, nil
		}
		return ok, nil
	}
}

// Configure loads a bitstream into the FPGA. An empty path is rejected
// here; workflow entry points supply their defaults before calling down.
func (b *Board) Configure(bitstreamPath string) error {
	b.mustFPGA()
	return b.configure(bitstreamPath)
}

// configure pulses PROG# to clear the FPGA, waits for it to settle and
// downloads the bitstream.
func (b *Board) configure(bitstreamPath string) error {
	if bitstreamPath == "" {
		return xserr.Majorf("board: %s: no bitstream file given", b.desc.Name)
	}
	b.progress.Publish("Downloading bitstream")
	for _, level := range []uint8{1, 0, 1} {
		if err := b.link.SetProg(level); err != nil {
			return xserr.Majorf("board: drive PROG# to %d: %v", level, err)
		}
	}
	time.Sleep(b.settle)
	if err := b.fpga.Configure(bitstreamPath); err != nil {
		return xserr.Majorf("board: configure %s: %v", b.desc.Name, err)
	}
	b.progress.Publish("Download complete")
	return nil
}

// mustFPGA guards operations that need an FPGA. Calling one on a
// microcontroller-only variant is a bug in the caller, not a hardware
// condition.
func (b *Board) mustFPGA() {
	if b.desc.Part == nil {
		panic("board: " + b.desc.Name + " has no accessible FPGA")
	}
}

func (b *Board) mustCfgFlash() {
	if !b.desc.HasCfgFlash {
		panic("board: " + b.desc.Name + " has no configuration flash")
	}
}

func (b *Board) mustSDRAM() {
	if !b.desc.HasSDRAM {
		panic("board: " + b.desc.Name + " has no SDRAM")
	}
}
