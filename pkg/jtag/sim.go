package jtag

import "fmt"

// DRHook supplies the captured TDO stream for one DR shift while the given
// instruction is loaded.
type DRHook func(opcode uint32, tdi []byte, bits int) ([]byte, error)

// SimPort is an in-memory Port for unit tests. It records instruction loads
// and DR shifts and produces TDO data through OnShiftDR.
type SimPort struct {
	OnShiftDR DRHook

	instruction uint32
	loads       []uint32
	resets      int
	idleClocks  int
}

// NewSimPort constructs a simulator with echo TDO behavior.
func NewSimPort() *SimPort { return &SimPort{} }

// Instruction reports the currently loaded IR opcode.
func (s *SimPort) Instruction() uint32 { return s.instruction }

// Loads returns every IR opcode loaded, in order.
func (s *SimPort) Loads() []uint32 { return append([]uint32(nil), s.loads...) }

// Resets reports how many TAP resets were requested.
func (s *SimPort) Resets() int { return s.resets }

func (s *SimPort) Reset() error {
	s.resets++
	return nil
}

func (s *SimPort) LoadInstruction(opcode uint32, bits int) error {
	if bits <= 0 || bits > 32 {
		return fmt.Errorf("jtag: instruction length %d out of range", bits)
	}
	s.instruction = opcode
	s.loads = append(s.loads, opcode)
	return nil
}

func (s *SimPort) ShiftDR(tdi []byte, bits int) ([]byte, error) {
	if bits <= 0 {
		return nil, fmt.Errorf("jtag: bits must be positive, got %d", bits)
	}
	if s.OnShiftDR != nil {
		return s.OnShiftDR(s.instruction, tdi, bits)
	}
	// Default: echo TDI so tests stay predictable.
	out := make([]byte, (bits+7)/8)
	copy(out, tdi)
	return out, nil
}

func (s *SimPort) RunTest(clocks int) error {
	s.idleClocks += clocks
	return nil
}
