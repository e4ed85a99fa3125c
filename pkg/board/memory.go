package board

import (
	"github.com/fpgatools/xsboard/pkg/flashdev"
	"github.com/fpgatools/xsboard/pkg/ramdev"
	"github.com/fpgatools/xsboard/pkg/xserr"
)

// ReadCfgFlash reads [bottom, top) of the configuration flash.
func (b *Board) ReadCfgFlash(bottom, top uint32) ([]byte, error) {
	b.mustCfgFlash()
	var data []byte
	err := b.withFlashEnabled(func() error {
		dev, err := b.cfgFlashDevice("Configuring FPGA for reading configuration flash")
		if err != nil {
			return err
		}
		b.progress.Publish("Reading configuration flash")
		data, err = dev.Read(bottom, top)
		if err != nil {
			return xserr.Majorf("board: read configuration flash: %v", err)
		}
		b.progress.Publish("Configuration flash read done")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WriteCfgFlash programs data at [bottom, top) of the configuration flash.
// The whole flash is erased first so the FPGA never loads a blend of old
// and new configurations.
func (b *Board) WriteCfgFlash(data []byte, bottom, top uint32) error {
	b.mustCfgFlash()
	return b.withFlashEnabled(func() error {
		dev, err := b.cfgFlashDevice("Configuring FPGA for writing configuration flash")
		if err != nil {
			return err
		}
		b.progress.Publish("Erasing configuration flash")
		if err := dev.Erase(0, dev.Size()); err != nil {
			return xserr.Majorf("board: erase configuration flash: %v", err)
		}
		b.progress.Publish("Writing configuration flash")
		if err := dev.Write(data, bottom, top); err != nil {
			return xserr.Majorf("board: write configuration flash: %v", err)
		}
		b.progress.Publish("Configuration flash write done")
		return nil
	})
}

// EraseCfgFlash erases [bottom, top) of the configuration flash.
func (b *Board) EraseCfgFlash(bottom, top uint32) error {
	b.mustCfgFlash()
	return b.withFlashEnabled(func() error {
		dev, err := b.cfgFlashDevice("Configuring FPGA for erasing configuration flash")
		if err != nil {
			return err
		}
		b.progress.Publish("Erasing configuration flash")
		if err := dev.Erase(bottom, top); err != nil {
			return xserr.Majorf("board: erase configuration flash: %v", err)
		}
		b.progress.Publish("Configuration flash erase done")
		return nil
	})
}

// cfgFlashDevice loads the flash interface bitstream and opens a fresh
// device handle over it.
func (b *Board) cfgFlashDevice(phase string) (flashdev.Device, error) {
	b.progress.Publish(phase)
	if err := b.configure(b.images.CfgFlashBitstream); err != nil {
		return nil, err
	}
	dev, err := b.newCfgFlash()
	if err != nil {
		return nil, xserr.Majorf("board: open configuration flash: %v", err)
	}
	return dev, nil
}

// ReadSDRAM reads [bottom, top) of the SDRAM.
func (b *Board) ReadSDRAM(bottom, top uint32) ([]byte, error) {
	b.mustSDRAM()
	dev, err := b.sdramDevice("Configuring FPGA for reading SDRAM")
	if err != nil {
		return nil, err
	}
	b.progress.Publish("Reading SDRAM")
	data, err := dev.Read(bottom, top)
	if err != nil {
		return nil, xserr.Majorf("board: read SDRAM: %v", err)
	}
	b.progress.Publish("SDRAM read done")
	return data, nil
}

// WriteSDRAM writes data at [bottom, top) of the SDRAM.
func (b *Board) WriteSDRAM(data []byte, bottom, top uint32) error {
	b.mustSDRAM()
	dev, err := b.sdramDevice("Configuring FPGA for writing SDRAM")
	if err != nil {
		return err
	}
	b.progress.Publish("Writing SDRAM")
	if err := dev.Write(data, bottom, top); err != nil {
		return xserr.Majorf("board: write SDRAM: %v", err)
	}
	b.progress.Publish("SDRAM write done")
	return nil
}

// EraseSDRAM zero-fills [bottom, top) of the SDRAM.
func (b *Board) EraseSDRAM(bottom, top uint32) error {
	b.mustSDRAM()
	dev, err := b.sdramDevice("Configuring FPGA for erasing SDRAM")
	if err != nil {
		return err
	}
	b.progress.Publish("Erasing SDRAM")
	if err := dev.Erase(bottom, top); err != nil {
		return xserr.Majorf("board: erase SDRAM: %v", err)
	}
	b.progress.Publish("SDRAM erase done")
	return nil
}

// sdramDevice loads the SDRAM interface bitstream and opens a fresh device
// handle over it.
func (b *Board) sdramDevice(phase string) (ramdev.Device, error) {
	b.progress.Publish(phase)
	if err := b.configure(b.images.SDRAMBitstream); err != nil {
		return nil, err
	}
	dev, err := b.newSDRAM()
	if err != nil {
		return nil, xserr.Majorf("board: open SDRAM: %v", err)
	}
	return dev, nil
}
