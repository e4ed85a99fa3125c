package jtag

import (
	"encoding/binary"
	"fmt"

	"github.com/fpgatools/xsboard/pkg/usbdev"
	"github.com/golang/glog"
)

// Bridge JTAG opcode and framing limits. Each command packet carries the
// opcode, a 32-bit bit count, a capture flag, then interleaved TMS and TDI
// payload bytes.
const (
	cmdJTAG = 0x4A

	headerLen   = 6
	maxChunkLen = 13 // bytes of TMS (and of TDI) per 32-byte packet
	maxChunkBit = maxChunkLen * 8
)

// BridgePort implements Port over the USB bridge link.
type BridgePort struct {
	link  usbdev.Link
	state State
}

// NewBridgePort wraps a link. The TAP state is unknown until Reset, so the
// port starts by assuming Test-Logic-Reset is reachable via Reset only.
func NewBridgePort(link usbdev.Link) *BridgePort {
	return &BridgePort{link: link, state: StateTestLogicReset}
}

// State reports the TAP state the port believes the hardware is in.
func (p *BridgePort) State() State { return p.state }

func (p *BridgePort) Reset() error {
	if _, err := p.clock(tmsReset, nil, false); err != nil {
		return fmt.Errorf("jtag: reset: %w", err)
	}
	if p.state != StateRunTestIdle {
		return fmt.Errorf("jtag: reset left TAP in %s", p.state)
	}
	return nil
}

func (p *BridgePort) LoadInstruction(opcode uint32, bits int) error {
	if bits <= 0 || bits > 32 {
		return fmt.Errorf("jtag: instruction length %d out of range", bits)
	}
	if err := p.require(StateRunTestIdle); err != nil {
		return err
	}
	tdi := make([]bool, bits)
	for i := 0; i < bits; i++ {
		tdi[i] = opcode&(1<<i) != 0
	}
	glog.V(3).Infof("jtag: load IR 0x%X (%d bits)", opcode, bits)
	return p.shiftRegion(tmsToShiftIR, tdi, false, nil)
}

func (p *BridgePort) ShiftDR(tdi []byte, bits int) ([]byte, error) {
	if bits <= 0 {
		return nil, fmt.Errorf("jtag: bits must be positive, got %d", bits)
	}
	if len(tdi) > 0 && len(tdi) < (bits+7)/8 {
		return nil, fmt.Errorf("jtag: tdi buffer too short, need %d bytes", (bits+7)/8)
	}
	if err := p.require(StateRunTestIdle); err != nil {
		return nil, err
	}
	bitsIn := make([]bool, bits)
	for i := range bitsIn {
		bitsIn[i] = bitOf(tdi, i)
	}
	tdo := make([]byte, (bits+7)/8)
	if err := p.shiftRegion(tmsToShiftDR, bitsIn, true, tdo); err != nil {
		return nil, err
	}
	return tdo, nil
}

func (p *BridgePort) RunTest(clocks int) error {
	if clocks <= 0 {
		return nil
	}
	if err := p.require(StateRunTestIdle); err != nil {
		return err
	}
	tms := make([]bool, clocks)
	_, err := p.clock(tms, nil, false)
	return err
}

func (p *BridgePort) require(want State) error {
	if p.state != want {
		return fmt.Errorf("jtag: TAP in %s, want %s (missing reset?)", p.state, want)
	}
	return nil
}

// shiftRegion walks into a shift state, clocks the payload bits with TMS
// raised on the final bit, then returns to Run-Test/Idle. Captured TDO bits
// for the payload are packed into out when capture is set.
func (p *BridgePort) shiftRegion(entry []bool, payload []bool, capture bool, out []byte) error {
	if _, err := p.clock(entry, nil, false); err != nil {
		return err
	}
	tms := make([]bool, len(payload))
	tms[len(tms)-1] = true // leave the shift state with the last bit
	tdo, err := p.clock(tms, payload, capture)
	if err != nil {
		return err
	}
	if capture {
		copy(out, tdo)
	}
	if _, err := p.clock(tmsToIdle, nil, false); err != nil {
		return err
	}
	return p.require(StateRunTestIdle)
}

// clock sends TMS/TDI bit streams to the bridge in packet-sized chunks and
// tracks the resulting TAP state. TDI may be nil (driven low).
func (p *BridgePort) clock(tms, tdi []bool, capture bool) ([]byte, error) {
	total := len(tms)
	tdoBits := make([]bool, 0, total)

	for off := 0; off < total; off += maxChunkBit {
		n := total - off
		if n > maxChunkBit {
			n = maxChunkBit
		}
		chunkTMS := tms[off : off+n]
		var chunkTDI []bool
		if tdi != nil {
			chunkTDI = tdi[off : off+n]
		}

		req := make([]byte, headerLen, headerLen+2*maxChunkLen)
		req[0] = cmdJTAG
		binary.LittleEndian.PutUint32(req[1:5], uint32(n))
		if capture {
			req[5] = 1
		}
		req = append(req, packBits(chunkTMS)...)
		req = append(req, packBits(padTo(chunkTDI, n))...)

		resp, err := p.link.Command(req)
		if err != nil {
			return nil, fmt.Errorf("jtag: shift %d bits: %w", n, err)
		}
		if capture {
			if len(resp) < 1+(n+7)/8 {
				return nil, fmt.Errorf("jtag: short TDO response (%d bytes for %d bits)", len(resp), n)
			}
			for i := 0; i < n; i++ {
				tdoBits = append(tdoBits, bitOf(resp[1:], i))
			}
		}
		for _, b := range chunkTMS {
			p.state = p.state.next(b)
		}
	}
	if !capture {
		return nil, nil
	}
	return packBits(tdoBits), nil
}

func padTo(bits []bool, n int) []bool {
	if len(bits) >= n {
		return bits[:n]
	}
	out := make([]bool, n)
	copy(out, bits)
	return out
}
