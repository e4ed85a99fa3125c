package flashdev

import (
	"bytes"
	"testing"
)

// chipSim emulates enough of the W25X command set to exercise the driver:
// a byte array, write-enable latch and instant readiness.
type chipSim struct {
	mem       []byte
	writeEn   bool
	lastRead  uint64
	pendingRd []uint64
}

func newChipSim(size int) *chipSim {
	mem := make([]byte, size)
	for i := range mem {
		mem[i] = 0xFF
	}
	return &chipSim{mem: mem}
}

func (c *chipSim) Write(vals ...uint64) error {
	op, addr, data := vals[0], vals[1], vals[2]
	switch op {
	case opWriteEnable:
		c.writeEn = true
	case opPageProgram:
		if c.writeEn {
			c.mem[addr] = byte(data)
			c.writeEn = false
		}
	case opSectorErase:
		if c.writeEn {
			for i := addr; i < addr+sectorSize && i < uint64(len(c.mem)); i++ {
				c.mem[i] = 0xFF
			}
			c.writeEn = false
		}
	case opReadData:
		c.pendingRd = []uint64{uint64(c.mem[addr]), 1}
	case opReadStatus:
		c.pendingRd = []uint64{0, 1} // never busy
	}
	return nil
}

func (c *chipSim) Read() ([]uint64, error) {
	if c.pendingRd == nil {
		return []uint64{0, 1}, nil
	}
	out := c.pendingRd
	c.pendingRd = nil
	return out, nil
}

func TestWriteReadRoundTrip(t *testing.T) {
	chip := newChipSim(8192)
	f := NewW25X(chip, 8192)

	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if err := f.Write(data, 0x100, 0x104); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := f.Read(0x100, 0x104)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("read back %X, want %X", got, data)
	}
}

func TestEraseCoversPartialSectors(t *testing.T) {
	chip := newChipSim(3 * sectorSize)
	f := NewW25X(chip, 3*sectorSize)

	if err := f.Write([]byte{0x00}, 10, 11); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := f.Write([]byte{0x00}, sectorSize+10, sectorSize+11); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// A range ending inside the second sector must erase both.
	if err := f.Erase(10, sectorSize+20); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	got, err := f.Read(0, 2*sectorSize)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i, b := range got {
		if b != 0xFF {
			t.Fatalf("byte 0x%X not erased (0x%02X)", i, b)
		}
	}
}

func TestRangeValidation(t *testing.T) {
	f := NewW25X(newChipSim(1024), 1024)
	if _, err := f.Read(0, 2048); err == nil {
		t.Fatalf("expected error for out-of-range read")
	}
	if _, err := f.Read(100, 100); err == nil {
		t.Fatalf("expected error for empty range")
	}
	if err := f.Write(make([]byte, 20), 0, 10); err == nil {
		t.Fatalf("expected error for data exceeding range")
	}
}
