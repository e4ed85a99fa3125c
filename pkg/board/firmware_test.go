package board

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fpgatools/xsboard/pkg/xserr"
)

func writeImage(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fw.hex")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

func TestUpdateFirmwareSequence(t *testing.T) {
	f := newFixture(t, "XuLA-200")
	f.mc.JTAGCable = true
	image := []byte{0x11, 0x22, 0x33, 0x44}

	if err := f.b.UpdateFirmware(writeImage(t, image)); err != nil {
		t.Fatalf("UpdateFirmware: %v", err)
	}

	want := []string{"reflash", "program", "user", "jtag-off"}
	if len(f.mc.Calls) != len(want) {
		t.Fatalf("calls = %v, want %v", f.mc.Calls, want)
	}
	for i := range want {
		if f.mc.Calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", f.mc.Calls, want)
		}
	}
	if !bytes.Equal(f.mc.Flash, image) {
		t.Fatalf("flash = %x, want %x", f.mc.Flash, image)
	}
	if f.mc.JTAGCable {
		t.Fatalf("auxiliary JTAG cable still enabled after update")
	}
	f.wantPhases(t, "Updating firmware", "Firmware update done")
}

func TestUpdateFirmwareMissingImageIsMajor(t *testing.T) {
	f := newFixture(t, "XuLA-200")
	err := f.b.UpdateFirmware(filepath.Join(t.TempDir(), "absent.hex"))
	if !xserr.IsMajor(err) {
		t.Fatalf("err = %v, want a fatal error", err)
	}
	if len(f.mc.Calls) != 0 {
		t.Fatalf("microcontroller touched before image load: %v", f.mc.Calls)
	}
}

func TestVerifyFirmwareMatch(t *testing.T) {
	f := newFixture(t, "XuLA-200")
	image := []byte{0xAA, 0xBB}
	f.mc.Flash = append([]byte(nil), image...)

	if err := f.b.VerifyFirmware(writeImage(t, image)); err != nil {
		t.Fatalf("VerifyFirmware: %v", err)
	}
	want := []string{"reflash", "verify", "user"}
	for i := range want {
		if f.mc.Calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", f.mc.Calls, want)
		}
	}
	f.wantPhases(t, "Verifying firmware", "Firmware verification done")
}

func TestVerifyFirmwareMismatchIsMinor(t *testing.T) {
	f := newFixture(t, "XuLA-200")
	f.mc.Flash = []byte{0xAA, 0xBB}

	err := f.b.VerifyFirmware(writeImage(t, []byte{0xAA, 0xFF}))
	if !xserr.IsMinor(err) {
		t.Fatalf("err = %v, want a recoverable mismatch", err)
	}
}
