package jtag

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/fpgatools/xsboard/pkg/usbdev"
)

func TestStateTransitions(t *testing.T) {
	// Walk the canonical DR scan loop.
	s := StateRunTestIdle
	for _, step := range []struct {
		tms  bool
		want State
	}{
		{true, StateSelectDRScan},
		{false, StateCaptureDR},
		{false, StateShiftDR},
		{true, StateExit1DR},
		{true, StateUpdateDR},
		{false, StateRunTestIdle},
	} {
		s = s.next(step.tms)
		if s != step.want {
			t.Fatalf("transition to %s, want %s", s, step.want)
		}
	}

	// Five TMS=1 clocks reach Test-Logic-Reset from any state.
	for start := StateTestLogicReset; start <= StateUpdateIR; start++ {
		s := start
		for i := 0; i < 5; i++ {
			s = s.next(true)
		}
		if s != StateTestLogicReset {
			t.Fatalf("from %s: five TMS=1 clocks ended in %s", start, s)
		}
	}
}

func TestPackBitsRoundTrip(t *testing.T) {
	bits := []bool{true, false, false, true, true, false, true, false, true}
	packed := packBits(bits)
	if !bytes.Equal(packed, []byte{0x59, 0x01}) {
		t.Fatalf("packed = %X", packed)
	}
	for i, want := range bits {
		if bitOf(packed, i) != want {
			t.Fatalf("bit %d = %v, want %v", i, bitOf(packed, i), want)
		}
	}
}

// scriptedBridge decodes bridge JTAG commands and plays a TDO stream back,
// bit for bit, in shift order.
type scriptedBridge struct {
	*usbdev.SimLink
	tdo     []bool
	clocked int
}

func newScriptedBridge(tdo []bool) *scriptedBridge {
	b := &scriptedBridge{SimLink: usbdev.NewSimLink([]byte{0x00}), tdo: tdo}
	b.OnCommand = map[byte]usbdev.CommandHook{
		cmdJTAG: b.handle,
	}
	return b
}

func (b *scriptedBridge) handle(req []byte) ([]byte, error) {
	n := int(binary.LittleEndian.Uint32(req[1:5]))
	capture := req[5] == 1
	resp := []byte{cmdJTAG}
	if capture {
		bits := make([]bool, n)
		for i := 0; i < n; i++ {
			if b.clocked+i < len(b.tdo) {
				bits[i] = b.tdo[b.clocked+i]
			}
		}
		resp = append(resp, packBits(bits)...)
	}
	b.clocked += n
	return resp, nil
}

func TestBridgePortShiftDR(t *testing.T) {
	// TDO only matters for the payload clocks; reset and entry clocks
	// consume script bits too, so lay the pattern out accordingly.
	// Reset: 6 clocks, DR entry: 3 clocks, then 8 payload bits.
	script := make([]bool, 6+3+8)
	payload := []bool{true, false, true, false, false, true, true, false} // 0x65
	copy(script[9:], payload)

	bridge := newScriptedBridge(script)
	port := NewBridgePort(bridge)

	if err := port.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	tdo, err := port.ShiftDR([]byte{0xFF}, 8)
	if err != nil {
		t.Fatalf("ShiftDR: %v", err)
	}
	if !bytes.Equal(tdo, []byte{0x65}) {
		t.Fatalf("tdo = %X, want 65", tdo)
	}
	if port.State() != StateRunTestIdle {
		t.Fatalf("port state = %s, want RunTestIdle", port.State())
	}
}

func TestBridgePortRequiresReset(t *testing.T) {
	bridge := newScriptedBridge(nil)
	port := NewBridgePort(bridge)

	// The port assumes Test-Logic-Reset before the first Reset call, so
	// shifting without one is refused.
	if _, err := port.ShiftDR([]byte{0x00}, 8); err == nil {
		t.Fatalf("expected error when shifting before reset")
	}
	if err := port.LoadInstruction(0x02, 6); err == nil {
		t.Fatalf("expected error when loading IR before reset")
	}
}

func TestBridgePortLoadInstruction(t *testing.T) {
	bridge := newScriptedBridge(make([]bool, 64))
	port := NewBridgePort(bridge)
	if err := port.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := port.LoadInstruction(0x05, 6); err != nil {
		t.Fatalf("LoadInstruction: %v", err)
	}
	if port.State() != StateRunTestIdle {
		t.Fatalf("port state = %s after IR load", port.State())
	}
	if err := port.LoadInstruction(0x05, 0); err == nil {
		t.Fatalf("expected error for zero-length instruction")
	}
}
