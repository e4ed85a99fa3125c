// Package ramdev drives the on-board SDRAM through the RAM-interface
// HostIo module. The module latches an address, then streams 16-bit words.
package ramdev

import (
	"fmt"

	"github.com/fpgatools/xsboard/pkg/hostio"
	"github.com/golang/glog"
)

// Device is the SDRAM operation set consumed by the board workflows.
type Device interface {
	Read(bottom, top uint32) ([]byte, error)
	Write(data []byte, bottom, top uint32) error
	// Erase zero-fills [bottom, top).
	Erase(bottom, top uint32) error
	Size() uint32
}

// Module operations, driven through the channel's op field.
const (
	opNop uint64 = iota
	opSetAddr
	opWrite
	opRead
)

// Module field widths: inputs are op, word address and write data; outputs
// are read data and a ready bit.
var (
	InWidths  = []uint{2, 24, 16}
	OutWidths = []uint{16, 1}
)

const wordSize = 2

// Known capacities.
const (
	Size8MB  = 8 << 20
	Size32MB = 32 << 20
)

// SDRAM drives one chip through a register channel.
type SDRAM struct {
	ch   hostio.Channel
	size uint32
}

// NewSDRAM binds the driver to a channel and capacity in bytes.
func NewSDRAM(ch hostio.Channel, size uint32) *SDRAM {
	return &SDRAM{ch: ch, size: size}
}

func (r *SDRAM) Size() uint32 { return r.size }

func (r *SDRAM) Read(bottom, top uint32) ([]byte, error) {
	if err := r.checkRange(bottom, top); err != nil {
		return nil, err
	}
	glog.V(1).Infof("ramdev: reading 0x%07X..0x%07X", bottom, top)
	if err := r.ch.Write(opSetAddr, uint64(bottom/wordSize), 0); err != nil {
		return nil, fmt.Errorf("ramdev: set address: %w", err)
	}
	data := make([]byte, 0, top-bottom)
	for addr := bottom; addr < top; addr += wordSize {
		if err := r.ch.Write(opRead, 0, 0); err != nil {
			return nil, fmt.Errorf("ramdev: read 0x%07X: %w", addr, err)
		}
		vals, err := r.ch.Read()
		if err != nil {
			return nil, fmt.Errorf("ramdev: read 0x%07X: %w", addr, err)
		}
		word := uint16(vals[0])
		data = append(data, byte(word), byte(word>>8))
	}
	return data[:top-bottom], nil
}

func (r *SDRAM) Write(data []byte, bottom, top uint32) error {
	if err := r.checkRange(bottom, top); err != nil {
		return err
	}
	if uint32(len(data)) > top-bottom {
		return fmt.Errorf("ramdev: %d bytes exceed range 0x%07X..0x%07X", len(data), bottom, top)
	}
	glog.V(1).Infof("ramdev: writing %d bytes at 0x%07X", len(data), bottom)
	if err := r.ch.Write(opSetAddr, uint64(bottom/wordSize), 0); err != nil {
		return fmt.Errorf("ramdev: set address: %w", err)
	}
	for i := 0; i < len(data); i += wordSize {
		word := uint64(data[i])
		if i+1 < len(data) {
			word |= uint64(data[i+1]) << 8
		}
		if err := r.ch.Write(opWrite, 0, word); err != nil {
			return fmt.Errorf("ramdev: write 0x%07X: %w", bottom+uint32(i), err)
		}
	}
	return nil
}

func (r *SDRAM) Erase(bottom, top uint32) error {
	if err := r.checkRange(bottom, top); err != nil {
		return err
	}
	glog.V(1).Infof("ramdev: erasing 0x%07X..0x%07X", bottom, top)
	return r.Write(make([]byte, top-bottom), bottom, top)
}

func (r *SDRAM) checkRange(bottom, top uint32) error {
	if bottom >= top || top > r.size {
		return fmt.Errorf("ramdev: bad range 0x%07X..0x%07X (size 0x%07X)", bottom, top, r.size)
	}
	if bottom%wordSize != 0 {
		return fmt.Errorf("ramdev: address 0x%07X not word aligned", bottom)
	}
	return nil
}
