//go:build rp2040 || rp2350

package main

import (
	"errors"
	"image/color"
	"machine"

	"macropad/config"

	"tinygo.org/x/drivers/ssd1351"
	"tinygo.org/x/tinydraw"
)

const (
	displayWidth  = 128
	displayHeight = 128
)

var (
	errNoSPIBus = errors.New("sck/sdo pins do not form an SPI bus")

	markerColor = color.RGBA{R: 255, A: 255}
	clearColor  = color.RGBA{A: 255}
)

// SPI pin pairs per controller; SCK and TX must be on the same controller
type spiBusConfig struct {
	spi *machine.SPI
	sck machine.Pin
	sdo machine.Pin
}

var spiBuses = []spiBusConfig{
	{spi: machine.SPI0, sck: machine.GPIO2, sdo: machine.GPIO3},
	{spi: machine.SPI0, sck: machine.GPIO6, sdo: machine.GPIO7},
	{spi: machine.SPI0, sck: machine.GPIO18, sdo: machine.GPIO19},
	{spi: machine.SPI0, sck: machine.GPIO22, sdo: machine.GPIO23},
	{spi: machine.SPI1, sck: machine.GPIO10, sdo: machine.GPIO11},
	{spi: machine.SPI1, sck: machine.GPIO14, sdo: machine.GPIO15},
	{spi: machine.SPI1, sck: machine.GPIO26, sdo: machine.GPIO27},
}

// ssdDisplay adapts an SSD1351 OLED to controller.Display
type ssdDisplay struct {
	dev ssd1351.Device
}

// NewDisplay brings up the SSD1351 on the configured SPI pins
func NewDisplay(cfg *config.DisplayConfig) (*ssdDisplay, error) {
	sck, sdo := mustPin(cfg.SCK), mustPin(cfg.SDO)

	var bus *machine.SPI
	for _, b := range spiBuses {
		if uint32(b.sck) == uint32(sck) && uint32(b.sdo) == uint32(sdo) {
			bus = b.spi
			break
		}
	}
	if bus == nil {
		return nil, errNoSPIBus
	}

	err := bus.Configure(machine.SPIConfig{
		Frequency: 16000000,
		SCK:       machine.Pin(sck),
		SDO:       machine.Pin(sdo),
		Mode:      0,
	})
	if err != nil {
		return nil, err
	}

	dev := ssd1351.New(bus,
		machine.Pin(mustPin(cfg.RST)),
		machine.Pin(mustPin(cfg.DC)),
		machine.Pin(mustPin(cfg.CS)),
		machine.NoPin, machine.NoPin)
	dev.Configure(ssd1351.Config{Width: displayWidth, Height: displayHeight})

	d := &ssdDisplay{dev: dev}
	return d, d.Clear()
}

// Clear fills the screen with black
func (d *ssdDisplay) Clear() error {
	return d.dev.FillRectangle(0, 0, displayWidth, displayHeight, clearColor)
}

// FillCircle draws a filled circle centred on (x, y)
func (d *ssdDisplay) FillCircle(x, y, r int16) error {
	tinydraw.FilledCircle(&d.dev, x, y, r, markerColor)
	return nil
}
