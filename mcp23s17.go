// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mcp23s17 provides a driver for the Microchip MCP23S17 16-bit SPI
// I/O expander, configured the way the PiFace Digital board wires it: port A
// is fixed as eight outputs and port B as eight inputs with the internal
// pull-ups enabled. The split is established once at construction and never
// changes for the lifetime of the device.
//
// The chip only addresses its registers at byte granularity, so every
// single-bit operation is a full-byte read, and every single-bit write is a
// read-modify-write of the port's data register. All transactions on the
// shared bus connection are serialized by a mutex, which makes the
// read-modify-write sequence atomic with respect to every other pin view of
// the same device.
//
// Up to four chips can share one bus, selected by the A0/A1 hardware
// address straps; the address is baked into the opcode byte of every
// transaction.
//
// # Datasheet
//
// https://ww1.microchip.com/downloads/en/DeviceDoc/20001952C.pdf
package mcp23s17

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const numPins = 8

var (
	ErrNotImplemented = errors.New("mcp23s17: not implemented")
	// ErrInputOnly is returned when attempting to drive a pin or group on
	// the input port.
	ErrInputOnly = errors.New("mcp23s17: pin is input only")
)

// Port identifies one of the two 8-bit ports of the expander.
type Port int

const (
	// PortOut is port A, fixed as all outputs.
	PortOut Port = iota
	// PortIn is port B, fixed as all inputs with pull-ups enabled.
	PortIn
)

func (p Port) String() string {
	if p == PortOut {
		return "Out"
	}
	return "In"
}

// dataRegister returns the GPIO register backing the port.
func (p Port) dataRegister() uint8 {
	if p == PortOut {
		return regGPIOA
	}
	return regGPIOB
}

// Dev is an MCP23S17 device. It owns the single SPI connection to the chip
// and is shared by reference across every pin view and group it issues. No
// register state is cached; the chip itself is the source of truth.
type Dev struct {
	// Outputs are the eight port A lines.
	Outputs []*OutputPin
	// Inputs are the eight port B lines.
	Inputs []*InputPin

	mu      sync.Mutex
	conn    spi.Conn
	name    string
	writeOp byte
	readOp  byte
}

// New connects to an MCP23S17 on the supplied port and configures it.
// hwAddr is the 0-3 hardware address selected by the chip's address straps.
//
// The bus is configured at 100kHz, SPI mode 0, 8 bits per word. The chip is
// then initialized in four writes: port A data cleared, port A set to all
// outputs, port B set to all inputs, pull-ups enabled on all of port B. A
// failure in any step aborts construction.
func New(p spi.Port, hwAddr uint8) (*Dev, error) {
	if hwAddr > 3 {
		return nil, fmt.Errorf("mcp23s17: hardware address %d out of range 0-3", hwAddr)
	}
	c, err := p.Connect(100*physic.KiloHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("mcp23s17: %w", err)
	}
	d := &Dev{
		conn:    c,
		name:    fmt.Sprintf("MCP23S17_%d", hwAddr),
		writeOp: writeOpcode(hwAddr),
		readOp:  readOpcode(hwAddr),
	}
	initOps := [][2]uint8{
		{regGPIOA, 0x00},  // all outputs low before the direction flips
		{regIODIRA, 0x00}, // port A is all outputs
		{regIODIRB, 0xFF}, // port B is all inputs
		{regGPPUB, 0xFF},  // pull-ups on every input
	}
	for _, op := range initOps {
		if err := d.writeRegister(op[0], op[1]); err != nil {
			return nil, err
		}
	}
	d.Outputs = make([]*OutputPin, numPins)
	d.Inputs = make([]*InputPin, numPins)
	for ix := range numPins {
		d.Outputs[ix] = &OutputPin{portpin{
			dev:  d,
			port: PortOut,
			num:  uint8(ix),
			name: fmt.Sprintf("%s_A%d", d.name, ix),
		}}
		d.Inputs[ix] = &InputPin{portpin{
			dev:  d,
			port: PortIn,
			num:  uint8(ix),
			name: fmt.Sprintf("%s_B%d", d.name, ix),
		}}
		// Ignore registration failure.
		_ = gpioreg.Register(d.Outputs[ix])
		_ = gpioreg.Register(d.Inputs[ix])
	}
	return d, nil
}

// OutputPin returns the output view of port A line n. n must be in 0-7.
func (d *Dev) OutputPin(n int) *OutputPin {
	return d.Outputs[n]
}

// InputPin returns the input view of port B line n. n must be in 0-7.
func (d *Dev) InputPin(n int) *InputPin {
	return d.Inputs[n]
}

// ReadPort reads the data register of the port and returns its current
// 8-bit value in one bus transaction.
func (d *Dev) ReadPort(p Port) (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readRegister(p.dataRegister())
}

// writeMasked reads the port's data register, applies value under mask and
// writes the byte back. The write is skipped when the computed byte equals
// the byte just read. The whole sequence runs under the device lock, so it
// cannot interleave with any other transaction.
func (d *Dev) writeMasked(p Port, value, mask uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, err := d.readRegister(p.dataRegister())
	if err != nil {
		return err
	}
	next := (cur &^ mask) | (value & mask)
	if next == cur {
		return nil
	}
	return d.writeRegister(p.dataRegister(), next)
}

// Snapshot renders the current value of both data registers for
// diagnostics, e.g. "{ In: 255, Out: 0 }". A failed read is substituted
// with "NONE" so that a broken bus cannot turn a status display into a
// crash. Errors are reported by the regular read operations instead.
func (d *Dev) Snapshot() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	in := "NONE"
	if v, err := d.readRegister(regGPIOB); err == nil {
		in = strconv.Itoa(int(v))
	}
	out := "NONE"
	if v, err := d.readRegister(regGPIOA); err == nil {
		out = strconv.Itoa(int(v))
	}
	return fmt.Sprintf("{ In: %s, Out: %s }", in, out)
}

// Halt unregisters the pins and releases the device. It cannot be used
// after this call.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.Outputs {
		_ = gpioreg.Unregister(p.Name())
	}
	for _, p := range d.Inputs {
		_ = gpioreg.Unregister(p.Name())
	}
	d.Outputs = nil
	d.Inputs = nil
	d.conn = nil
	return nil
}

func (d *Dev) String() string {
	return d.name
}
