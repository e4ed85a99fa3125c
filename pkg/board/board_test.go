package board

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/fpgatools/xsboard/pkg/flashdev"
	"github.com/fpgatools/xsboard/pkg/fpga"
	"github.com/fpgatools/xsboard/pkg/hostio"
	"github.com/fpgatools/xsboard/pkg/micro"
	"github.com/fpgatools/xsboard/pkg/progress"
	"github.com/fpgatools/xsboard/pkg/ramdev"
	"github.com/fpgatools/xsboard/pkg/usbdev"
)

// infoFrame builds a valid information frame, fixing up byte 0 so the
// frame sums to zero mod 256.
func infoFrame(id1, id2, vmaj, vmin byte, desc string) []byte {
	frame := append([]byte{0, id1, id2, vmaj, vmin}, desc...)
	frame = append(frame, 0)
	var sum byte
	for _, v := range frame {
		sum += v
	}
	frame[0] = -sum
	return frame
}

type fakeFlash struct {
	mem    []byte
	ops    []string
	failOp string
}

func newFakeFlash(size uint32) *fakeFlash {
	return &fakeFlash{mem: bytes.Repeat([]byte{0xFF}, int(size))}
}

func (f *fakeFlash) Size() uint32 { return uint32(len(f.mem)) }

func (f *fakeFlash) Read(bottom, top uint32) ([]byte, error) {
	f.ops = append(f.ops, fmt.Sprintf("read %d:%d", bottom, top))
	if f.failOp == "read" {
		return nil, fmt.Errorf("flash read fault")
	}
	return append([]byte(nil), f.mem[bottom:top]...), nil
}

func (f *fakeFlash) Write(data []byte, bottom, top uint32) error {
	f.ops = append(f.ops, fmt.Sprintf("write %d:%d", bottom, top))
	if f.failOp == "write" {
		return fmt.Errorf("flash write fault")
	}
	copy(f.mem[bottom:top], data)
	return nil
}

func (f *fakeFlash) Erase(bottom, top uint32) error {
	f.ops = append(f.ops, fmt.Sprintf("erase %d:%d", bottom, top))
	if f.failOp == "erase" {
		return fmt.Errorf("flash erase fault")
	}
	for i := bottom; i < top; i++ {
		f.mem[i] = 0xFF
	}
	return nil
}

type fakeRAM struct {
	mem []byte
	ops []string
}

func newFakeRAM(size uint32) *fakeRAM {
	return &fakeRAM{mem: make([]byte, size)}
}

func (r *fakeRAM) Size() uint32 { return uint32(len(r.mem)) }

func (r *fakeRAM) Read(bottom, top uint32) ([]byte, error) {
	r.ops = append(r.ops, fmt.Sprintf("read %d:%d", bottom, top))
	return append([]byte(nil), r.mem[bottom:top]...), nil
}

func (r *fakeRAM) Write(data []byte, bottom, top uint32) error {
	r.ops = append(r.ops, fmt.Sprintf("write %d:%d", bottom, top))
	copy(r.mem[bottom:top], data)
	return nil
}

func (r *fakeRAM) Erase(bottom, top uint32) error {
	r.ops = append(r.ops, fmt.Sprintf("erase %d:%d", bottom, top))
	for i := bottom; i < top; i++ {
		r.mem[i] = 0
	}
	return nil
}

// fixture wires a board over simulators. Counters track how many device
// handles each factory hands out.
type fixture struct {
	link  *usbdev.SimLink
	mc    *micro.SimController
	fp    *fpga.SimConfigurer
	ch    *hostio.SimChannel
	rec   *progress.Recorder
	flash *fakeFlash
	ram   *fakeRAM

	testChannels int
	flashHandles int
	ramHandles   int

	b *Board
}

func newFixture(t *testing.T, variant string) *fixture {
	t.Helper()
	desc := Lookup(variant)
	if desc == nil {
		t.Fatalf("unknown variant %q", variant)
	}

	f := &fixture{
		link:  usbdev.NewSimLink(infoFrame(0x04, 0x02, 1, 2, variant)),
		mc:    &micro.SimController{},
		fp:    &fpga.SimConfigurer{ConnectedResult: true},
		ch:    &hostio.SimChannel{},
		rec:   &progress.Recorder{},
		flash: newFakeFlash(128 << 10),
		ram:   newFakeRAM(1 << 20),
	}
	deps := Deps{
		Link:     f.link,
		Micro:    f.mc,
		Progress: f.rec,
		Images: Images{
			Firmware:          "fw.hex",
			TestBitstream:     "test.bit",
			CfgFlashBitstream: "fintf.bit",
			SDRAMBitstream:    "ramintfc.bit",
		},
		SettleDelay:  time.Nanosecond,
		PollLimit:    50,
		PollInterval: time.Nanosecond,
	}
	if desc.Part != nil {
		deps.FPGA = f.fp
		deps.NewTestChannel = func() (hostio.Channel, error) {
			f.testChannels++
			return f.ch, nil
		}
		deps.NewCfgFlash = func() (flashdev.Device, error) {
			f.flashHandles++
			return f.flash, nil
		}
		deps.NewSDRAM = func() (ramdev.Device, error) {
			f.ramHandles++
			return f.ram, nil
		}
	}

	b, err := New(desc, deps)
	if err != nil {
		t.Fatalf("New(%s): %v", variant, err)
	}
	f.b = b
	return f
}

func (f *fixture) wantPhases(t *testing.T, want ...string) {
	t.Helper()
	got := f.rec.Phases()
	if len(got) != len(want) {
		t.Fatalf("phases = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("phase[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConnectedByProbeMode(t *testing.T) {
	tests := []struct {
		variant string
		version []byte // major, minor
		fpgaOK  bool
		want    bool
	}{
		{"XuLA-200", []byte{1, 2}, true, true},
		{"XuLA-200", []byte{1, 2}, false, false},
		{"XuLA-200", []byte{1, 1}, true, false}, // old firmware, no JTAG
		{"XuLA-legacy", []byte{1, 1}, false, true},
		{"XuLA-legacy", []byte{1, 2}, false, false},
		{"XuLA-micro", []byte{1, 2}, false, true},
		{"XuLA-micro", []byte{1, 1}, false, false},
	}
	for _, tt := range tests {
		f := newFixture(t, tt.variant)
		f.link.Frames = [][]byte{infoFrame(0, 0, tt.version[0], tt.version[1], "x")}
		f.fp.ConnectedResult = tt.fpgaOK

		ok, err := f.b.Connected()
		if err != nil {
			t.Fatalf("%s v%d.%d: Connected: %v", tt.variant, tt.version[0], tt.version[1], err)
		}
		if ok != tt.want {
			t.Fatalf("%s v%d.%d fpga=%v: Connected = %v, want %v",
				tt.variant, tt.version[0], tt.version[1], tt.fpgaOK, ok, tt.want)
		}
	}
}

func TestConnectedCorruptInfoMeansNoMatch(t *testing.T) {
	f := newFixture(t, "XuLA-200")
	bad := infoFrame(0x04, 0x02, 1, 2, "x")
	bad[0]++ // break the checksum
	f.link.Frames = [][]byte{bad}

	ok, err := f.b.Connected()
	if err != nil {
		t.Fatalf("Connected: %v", err)
	}
	if ok {
		t.Fatalf("corrupt info frame matched the variant")
	}
}

func TestConfigureDrivesProgPulse(t *testing.T) {
	f := newFixture(t, "XuLA-200")
	if err := f.b.Configure("design.bit"); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	pulses := f.link.ProgPulses()
	if len(pulses) != 3 || pulses[0] != 1 || pulses[1] != 0 || pulses[2] != 1 {
		t.Fatalf("prog pulses = %v, want [1 0 1]", pulses)
	}
	if len(f.fp.Configured) != 1 || f.fp.Configured[0] != "design.bit" {
		t.Fatalf("configured = %v", f.fp.Configured)
	}
	f.wantPhases(t, "Downloading bitstream", "Download complete")
}

func TestConfigureOnMicroOnlyVariantPanics(t *testing.T) {
	f := newFixture(t, "XuLA-micro")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	f.b.Configure("design.bit")
}

func TestResetRestartsLink(t *testing.T) {
	f := newFixture(t, "XuLA-200")
	if err := f.b.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if f.link.Resets() != 1 {
		t.Fatalf("resets = %d, want 1", f.link.Resets())
	}
}
