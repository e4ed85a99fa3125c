// Package jtag drives the FPGA's JTAG TAP through the USB bridge. The
// bridge clocks whole TMS/TDI bit streams per command, so the port builds
// the fixed entry/exit sequences itself and tracks the TAP state between
// calls.
package jtag

import (
	"fmt"
)

// Port is the bit-level JTAG interface used by the register channel and the
// FPGA configurer.
type Port interface {
	// Reset forces the TAP to Test-Logic-Reset.
	Reset() error
	// LoadInstruction shifts an instruction of the given bit length into
	// the IR and leaves the TAP in Run-Test/Idle.
	LoadInstruction(opcode uint32, bits int) error
	// ShiftDR shifts bits through the data register and returns the
	// captured TDO stream, leaving the TAP in Run-Test/Idle.
	ShiftDR(tdi []byte, bits int) ([]byte, error)
	// RunTest idles the TAP for the given number of TCK cycles.
	RunTest(clocks int) error
}

// State is one of the 16 IEEE 1149.1 TAP controller states. Only the states
// the port can rest in are referenced by name; the rest exist so transitions
// stay total.
type State uint8

const (
	StateTestLogicReset State = iota
	StateRunTestIdle
	StateSelectDRScan
	StateCaptureDR
	StateShiftDR
	StateExit1DR
	StatePauseDR
	StateExit2DR
	StateUpdateDR
	StateSelectIRScan
	StateCaptureIR
	StateShiftIR
	StateExit1IR
	StatePauseIR
	StateExit2IR
	StateUpdateIR
)

var stateNames = [...]string{
	"TestLogicReset", "RunTestIdle",
	"SelectDRScan", "CaptureDR", "ShiftDR", "Exit1DR", "PauseDR", "Exit2DR", "UpdateDR",
	"SelectIRScan", "CaptureIR", "ShiftIR", "Exit1IR", "PauseIR", "Exit2IR", "UpdateIR",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// next returns the TAP state after one TCK with the given TMS level.
func (s State) next(tms bool) State {
	type edge struct{ zero, one State }
	table := [...]edge{
		StateTestLogicReset: {StateRunTestIdle, StateTestLogicReset},
		StateRunTestIdle:    {StateRunTestIdle, StateSelectDRScan},
		StateSelectDRScan:   {StateCaptureDR, StateSelectIRScan},
		StateCaptureDR:      {StateShiftDR, StateExit1DR},
		StateShiftDR:        {StateShiftDR, StateExit1DR},
		StateExit1DR:        {StatePauseDR, StateUpdateDR},
		StatePauseDR:        {StatePauseDR, StateExit2DR},
		StateExit2DR:        {StateShiftDR, StateUpdateDR},
		StateUpdateDR:       {StateRunTestIdle, StateSelectDRScan},
		StateSelectIRScan:   {StateCaptureIR, StateTestLogicReset},
		StateCaptureIR:      {StateShiftIR, StateExit1IR},
		StateShiftIR:        {StateShiftIR, StateExit1IR},
		StateExit1IR:        {StatePauseIR, StateUpdateIR},
		StatePauseIR:        {StatePauseIR, StateExit2IR},
		StateExit2IR:        {StateShiftIR, StateUpdateIR},
		StateUpdateIR:       {StateRunTestIdle, StateSelectDRScan},
	}
	row := table[s]
	if tms {
		return row.one
	}
	return row.zero
}

// Fixed TMS walk patterns between the resting states. LSB is clocked first.
var (
	// Five TMS=1 clocks reach Test-Logic-Reset from anywhere, plus one
	// TMS=0 to settle in Run-Test/Idle.
	tmsReset = []bool{true, true, true, true, true, false}
	// Run-Test/Idle -> Shift-IR.
	tmsToShiftIR = []bool{true, true, false, false}
	// Run-Test/Idle -> Shift-DR.
	tmsToShiftDR = []bool{true, false, false}
	// Exit1 -> Update -> Run-Test/Idle after the final shifted bit.
	tmsToIdle = []bool{true, false}
)

// packBits packs an LSB-first bool slice into bytes the bridge expects.
func packBits(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

// bitOf reads bit i of an LSB-first byte stream.
func bitOf(data []byte, i int) bool {
	if i/8 >= len(data) {
		return false
	}
	return data[i/8]&(1<<(i%8)) != 0
}
