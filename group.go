// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23s17

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/pin"
)

// Group is a gpio.Group over a subset of one port's lines. Out performs a
// single read-modify-write of the port's data register and Read a single
// read, so a group operation is as atomic as a pin operation.
type Group struct {
	dev         *Dev
	port        Port
	pins        []gpio.PinIO
	defaultMask gpio.GPIOValue
}

// Group returns a gpio.Group made up of the given lines of one port. A
// group never spans both ports, so every operation stays a single-register
// transaction.
func (d *Dev) Group(port Port, pinNumbers ...int) (gpio.Group, error) {
	gr := &Group{
		dev:         d,
		port:        port,
		pins:        make([]gpio.PinIO, len(pinNumbers)),
		defaultMask: gpio.GPIOValue(1<<len(pinNumbers)) - 1,
	}
	for ix, number := range pinNumbers {
		if number < 0 || number >= numPins {
			return nil, fmt.Errorf("mcp23s17: pin number %d out of range 0-7", number)
		}
		if port == PortOut {
			gr.pins[ix] = d.Outputs[number]
		} else {
			gr.pins[ix] = d.Inputs[number]
		}
	}
	return gr, nil
}

// Pins returns the set of pins that make up this group.
func (gr *Group) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(gr.pins))
	for ix, p := range gr.pins {
		pins[ix] = p
	}
	return pins
}

// ByOffset returns the pin at the given offset within the group.
func (gr *Group) ByOffset(offset int) pin.Pin {
	return gr.pins[offset]
}

// ByName returns the pin with the given name, or nil if it is not part of
// the group.
func (gr *Group) ByName(name string) pin.Pin {
	for _, p := range gr.pins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// ByNumber returns the pin with the given device pin number, or nil if it
// is not part of the group.
func (gr *Group) ByNumber(number int) pin.Pin {
	for _, p := range gr.pins {
		if p.Number() == number {
			return p
		}
	}
	return nil
}

// Out writes value to the lines of the group selected by mask in one
// read-modify-write transaction. A mask of 0 selects every line in the
// group.
func (gr *Group) Out(value, mask gpio.GPIOValue) error {
	if gr.port != PortOut {
		return ErrInputOnly
	}
	if mask == 0 {
		mask = gr.defaultMask
	} else {
		mask &= gr.defaultMask
	}
	// Translate the group-relative bits to port bits.
	wr := uint8(0)
	wrMask := uint8(0)
	for ix, p := range gr.pins {
		currentBit := gpio.GPIOValue(1 << ix)
		if mask&currentBit == 0 {
			continue
		}
		wrMask |= 1 << p.Number()
		if value&currentBit != 0 {
			wr |= 1 << p.Number()
		}
	}
	return gr.dev.writeMasked(gr.port, wr, wrMask)
}

// Read returns the current level of the group's lines selected by mask,
// using one read transaction. A mask of 0 selects every line in the group.
func (gr *Group) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	if mask == 0 {
		mask = gr.defaultMask
	} else {
		mask &= gr.defaultMask
	}
	v, err := gr.dev.ReadPort(gr.port)
	if err != nil {
		return 0, err
	}
	result := gpio.GPIOValue(0)
	for ix, p := range gr.pins {
		currentBit := gpio.GPIOValue(1 << ix)
		if mask&currentBit == 0 {
			continue
		}
		if v&(1<<p.Number()) != 0 {
			result |= currentBit
		}
	}
	return result, nil
}

// WaitForEdge is not available; the chip's interrupt lines are not wired
// up by this driver.
func (gr *Group) WaitForEdge(timeout time.Duration) (int, gpio.Edge, error) {
	return 0, gpio.NoEdge, ErrNotImplemented
}

// Halt frees the group. It cannot be used after this call.
func (gr *Group) Halt() error {
	gr.pins = nil
	gr.dev = nil
	return nil
}

func (gr *Group) String() string {
	s := gr.dev.String() + "_" + gr.port.String() + "[ "
	for _, p := range gr.pins {
		s += fmt.Sprintf("%d ", p.Number())
	}
	s += "]"
	return s
}

var _ gpio.Group = &Group{}
