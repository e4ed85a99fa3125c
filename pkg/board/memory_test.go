package board

import (
	"bytes"
	"testing"

	"github.com/fpgatools/xsboard/pkg/xserr"
)

func TestReadCfgFlashWorkflow(t *testing.T) {
	f := newFixture(t, "XuLA-200")
	copy(f.flash.mem[16:], []byte{0x01, 0x02, 0x03, 0x04})

	data, err := f.b.ReadCfgFlash(16, 20)
	if err != nil {
		t.Fatalf("ReadCfgFlash: %v", err)
	}
	if !bytes.Equal(data, []byte{0x01, 0x02, 0x03, 0x04}) {
		t.Fatalf("data = %x", data)
	}
	if len(f.fp.Configured) != 1 || f.fp.Configured[0] != "fintf.bit" {
		t.Fatalf("configured = %v, want the flash interface bitstream", f.fp.Configured)
	}
	f.wantPhases(t,
		"Configuring FPGA for reading configuration flash",
		"Downloading bitstream",
		"Download complete",
		"Reading configuration flash",
		"Configuration flash read done",
	)
}

func TestWriteCfgFlashErasesWholeDeviceFirst(t *testing.T) {
	f := newFixture(t, "XuLA-200")

	if err := f.b.WriteCfgFlash([]byte{0xAA, 0xBB}, 256, 258); err != nil {
		t.Fatalf("WriteCfgFlash: %v", err)
	}
	if len(f.flash.ops) != 2 {
		t.Fatalf("ops = %v, want erase then write", f.flash.ops)
	}
	if f.flash.ops[0] != "erase 0:131072" {
		t.Fatalf("first op = %q, want a full-device erase", f.flash.ops[0])
	}
	if f.flash.ops[1] != "write 256:258" {
		t.Fatalf("second op = %q", f.flash.ops[1])
	}
}

func TestFlashFlagSavedAndRestored(t *testing.T) {
	for _, saved := range []bool{false, true} {
		f := newFixture(t, "XuLA-200")
		f.mc.CfgFlash = saved

		if err := f.b.EraseCfgFlash(0, 4096); err != nil {
			t.Fatalf("EraseCfgFlash: %v", err)
		}
		if f.mc.CfgFlash != saved {
			t.Fatalf("flash flag = %v after workflow, want restored %v", f.mc.CfgFlash, saved)
		}
		// The flash must have been enabled while the device was in use.
		if f.mc.Calls[0] != "flash-on" {
			t.Fatalf("calls = %v, want the flash enabled first", f.mc.Calls)
		}
	}
}

func TestFlashFlagRestoredOnFailure(t *testing.T) {
	f := newFixture(t, "XuLA-200")
	f.mc.CfgFlash = false
	f.flash.failOp = "write"

	err := f.b.WriteCfgFlash([]byte{0xAA}, 0, 1)
	if !xserr.IsMajor(err) {
		t.Fatalf("err = %v, want a fatal write error", err)
	}
	if f.mc.CfgFlash {
		t.Fatalf("flash flag left enabled after a failed workflow")
	}
}

func TestFixedFlashVariantSkipsFlagDance(t *testing.T) {
	f := newFixture(t, "XuLA2-LX25")

	if _, err := f.b.ReadCfgFlash(0, 16); err != nil {
		t.Fatalf("ReadCfgFlash: %v", err)
	}
	if len(f.mc.Calls) != 0 {
		t.Fatalf("fixed-flash variant touched the microcontroller: %v", f.mc.Calls)
	}
}

func TestFlashOnMicroOnlyVariantPanics(t *testing.T) {
	f := newFixture(t, "XuLA-micro")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	f.b.ReadCfgFlash(0, 16)
}

func TestSDRAMRoundTrip(t *testing.T) {
	f := newFixture(t, "XuLA-200")
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	if err := f.b.WriteSDRAM(payload, 32, 36); err != nil {
		t.Fatalf("WriteSDRAM: %v", err)
	}
	data, err := f.b.ReadSDRAM(32, 36)
	if err != nil {
		t.Fatalf("ReadSDRAM: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("data = %x, want %x", data, payload)
	}

	// Each workflow reconfigures the FPGA and opens a fresh device handle.
	if f.ramHandles != 2 {
		t.Fatalf("ram handles = %d, want 2", f.ramHandles)
	}
	if len(f.fp.Configured) != 2 {
		t.Fatalf("configured = %v, want two downloads", f.fp.Configured)
	}
}

func TestEraseSDRAMPhases(t *testing.T) {
	f := newFixture(t, "XuLA-200")
	if err := f.b.EraseSDRAM(0, 64); err != nil {
		t.Fatalf("EraseSDRAM: %v", err)
	}
	f.wantPhases(t,
		"Configuring FPGA for erasing SDRAM",
		"Downloading bitstream",
		"Download complete",
		"Erasing SDRAM",
		"SDRAM erase done",
	)
}
