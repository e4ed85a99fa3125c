// Package flashdev drives the serial configuration flash on XESS boards
// through the flash-interface HostIo module. The module bridges register
// writes onto the SPI bus of a Winbond W25X-series chip.
package flashdev

import (
	"fmt"

	"github.com/fpgatools/xsboard/pkg/hostio"
	"github.com/golang/glog"
)

// Device is the flash operation set consumed by the board workflows.
type Device interface {
	// Read returns the bytes in [bottom, top).
	Read(bottom, top uint32) ([]byte, error)
	// Write programs data starting at bottom; top bounds the region.
	Write(data []byte, bottom, top uint32) error
	// Erase clears every sector overlapping [bottom, top).
	Erase(bottom, top uint32) error
	// Size reports the chip capacity in bytes.
	Size() uint32
}

// SPI opcodes for the W25X family.
const (
	opWriteEnable   = 0x06
	opPageProgram   = 0x02
	opReadData      = 0x03
	opSectorErase   = 0x20
	opReadStatus    = 0x05
	statusBusy      = 0x01
	sectorSize      = 4096
	pollBusyLimit   = 100000
)

// Module field widths: inputs are SPI opcode, 24-bit address and write
// byte; outputs are the read byte and a ready bit.
var (
	InWidths  = []uint{8, 24, 8}
	OutWidths = []uint{8, 1}
)

// W25X drives one chip through a register channel.
type W25X struct {
	ch   hostio.Channel
	size uint32
}

// NewW25X binds the driver to a channel and capacity.
func NewW25X(ch hostio.Channel, size uint32) *W25X {
	return &W25X{ch: ch, size: size}
}

func (f *W25X) Size() uint32 { return f.size }

func (f *W25X) Read(bottom, top uint32) ([]byte, error) {
	if err := f.checkRange(bottom, top); err != nil {
		return nil, err
	}
	glog.V(1).Infof("flashdev: reading 0x%06X..0x%06X", bottom, top)
	data := make([]byte, 0, top-bottom)
	for addr := bottom; addr < top; addr++ {
		if err := f.ch.Write(opReadData, uint64(addr), 0); err != nil {
			return nil, fmt.Errorf("flashdev: read 0x%06X: %w", addr, err)
		}
		vals, err := f.ch.Read()
		if err != nil {
			return nil, fmt.Errorf("flashdev: read 0x%06X: %w", addr, err)
		}
		data = append(data, byte(vals[0]))
	}
	return data, nil
}

func (f *W25X) Write(data []byte, bottom, top uint32) error {
	if err := f.checkRange(bottom, top); err != nil {
		return err
	}
	if uint32(len(data)) > top-bottom {
		return fmt.Errorf("flashdev: %d bytes exceed range 0x%06X..0x%06X", len(data), bottom, top)
	}
	glog.V(1).Infof("flashdev: writing %d bytes at 0x%06X", len(data), bottom)
	for i, b := range data {
		addr := bottom + uint32(i)
		if err := f.ch.Write(opWriteEnable, 0, 0); err != nil {
			return fmt.Errorf("flashdev: write enable: %w", err)
		}
		if err := f.ch.Write(opPageProgram, uint64(addr), uint64(b)); err != nil {
			return fmt.Errorf("flashdev: program 0x%06X: %w", addr, err)
		}
		if err := f.waitReady(); err != nil {
			return fmt.Errorf("flashdev: program 0x%06X: %w", addr, err)
		}
	}
	return nil
}

func (f *W25X) Erase(bottom, top uint32) error {
	if err := f.checkRange(bottom, top); err != nil {
		return err
	}
	first := bottom / sectorSize
	last := (top + sectorSize - 1) / sectorSize
	glog.V(1).Infof("flashdev: erasing sectors %d..%d", first, last)
	for sector := first; sector < last; sector++ {
		if err := f.ch.Write(opWriteEnable, 0, 0); err != nil {
			return fmt.Errorf("flashdev: write enable: %w", err)
		}
		if err := f.ch.Write(opSectorErase, uint64(sector*sectorSize), 0); err != nil {
			return fmt.Errorf("flashdev: erase sector %d: %w", sector, err)
		}
		if err := f.waitReady(); err != nil {
			return fmt.Errorf("flashdev: erase sector %d: %w", sector, err)
		}
	}
	return nil
}

func (f *W25X) waitReady() error {
	for i := 0; i < pollBusyLimit; i++ {
		if err := f.ch.Write(opReadStatus, 0, 0); err != nil {
			return err
		}
		vals, err := f.ch.Read()
		if err != nil {
			return err
		}
		if vals[0]&statusBusy == 0 {
			return nil
		}
	}
	return fmt.Errorf("flashdev: chip stuck busy")
}

func (f *W25X) checkRange(bottom, top uint32) error {
	if bottom >= top || top > f.size {
		return fmt.Errorf("flashdev: bad range 0x%06X..0x%06X (size 0x%06X)", bottom, top, f.size)
	}
	return nil
}
