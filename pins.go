// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23s17

import (
	"errors"
	"log"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Reader is the read capability common to every expander line.
type Reader interface {
	// ReadValue reads the port's full data register and returns the level
	// of this line.
	ReadValue() (gpio.Level, error)
}

// Writer is the write capability of an output line. Every Writer can read
// back the level it drives.
type Writer interface {
	Reader
	SetValue(l gpio.Level) error
	SetLow() error
	SetHigh() error
}

// portpin is the payload shared by both pin view types: a reference to the
// device plus a (port, bit) address. It carries no state of its own; the
// authoritative value always lives in the chip's register.
type portpin struct {
	dev  *Dev
	port Port
	num  uint8
	name string
}

func (p *portpin) String() string {
	return p.name
}

func (p *portpin) Halt() error {
	return nil
}

func (p *portpin) Name() string {
	return p.name
}

func (p *portpin) Number() int {
	return int(p.num)
}

func (p *portpin) Function() string {
	return p.port.String()
}

// ReadValue reads the owning port's data register and masks out this
// line's bit.
func (p *portpin) ReadValue() (gpio.Level, error) {
	v, err := p.dev.ReadPort(p.port)
	if err != nil {
		return gpio.Low, err
	}
	return gpio.Level(v&(1<<p.num) != 0), nil
}

// Read implements gpio.PinIn. Use ReadValue when the transport error
// matters.
func (p *portpin) Read() gpio.Level {
	l, err := p.ReadValue()
	if err != nil {
		log.Println(err)
		return gpio.Low
	}
	return l
}

// In validates pull and edge against the fixed port configuration. The
// directions are set once at construction, so there is nothing to write.
func (p *portpin) In(pull gpio.Pull, edge gpio.Edge) error {
	if edge != gpio.NoEdge {
		return errors.New("mcp23s17: edge detection is not supported")
	}
	switch pull {
	case gpio.Float, gpio.PullNoChange:
	case gpio.PullUp:
		if p.port != PortIn {
			return errors.New("mcp23s17: pull-ups are only available on the input port")
		}
	default:
		return errors.New("mcp23s17: pull-down is not supported")
	}
	return nil
}

// The chip's interrupt lines are not wired up by this driver.
func (p *portpin) WaitForEdge(timeout time.Duration) bool {
	return false
}

func (p *portpin) Pull() gpio.Pull {
	if p.port == PortIn {
		return gpio.PullUp
	}
	return gpio.Float
}

func (p *portpin) DefaultPull() gpio.Pull {
	return p.Pull()
}

// Not implemented.
func (p *portpin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return ErrNotImplemented
}

// InputPin is a read-only view of one line. The pins handed out by the
// device live on port B, but an InputPin obtained through
// OutputPin.AsInput reads back a port A line.
type InputPin struct {
	portpin
}

// Out implements gpio.PinOut so the pin can be registered, but an input
// line cannot be driven.
func (p *InputPin) Out(l gpio.Level) error {
	return ErrInputOnly
}

// OutputPin is a read-write view of one port A line.
type OutputPin struct {
	portpin
}

// SetValue drives the line to l. The port's data register is read, the one
// target bit is flipped and the byte is written back; the write transaction
// is skipped entirely when the line already holds the requested level.
func (p *OutputPin) SetValue(l gpio.Level) error {
	mask := uint8(1) << p.num
	value := uint8(0)
	if l {
		value = mask
	}
	return p.dev.writeMasked(p.port, value, mask)
}

// SetLow drives the line low.
func (p *OutputPin) SetLow() error {
	return p.SetValue(gpio.Low)
}

// SetHigh drives the line high.
func (p *OutputPin) SetHigh() error {
	return p.SetValue(gpio.High)
}

// Out implements gpio.PinOut.
func (p *OutputPin) Out(l gpio.Level) error {
	return p.SetValue(l)
}

// AsInput returns a read-only view of the same line, useful for handing
// out read access to a line this view drives. No bus traffic is involved.
func (p *OutputPin) AsInput() *InputPin {
	return &InputPin{p.portpin}
}

var (
	_ gpio.PinIO = &InputPin{}
	_ gpio.PinIO = &OutputPin{}
	_ Reader     = &InputPin{}
	_ Writer     = &OutputPin{}
)
