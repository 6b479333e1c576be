// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23s17

import "fmt"

// Register addresses with IOCON.BANK=0, the power-on default. Only the
// registers this driver touches are listed; refer to the datasheet for the
// full map.
const (
	regIODIRA uint8 = 0x00 // port A direction, 1 = input
	regIODIRB uint8 = 0x01 // port B direction
	regGPPUB  uint8 = 0x0D // port B pull-ups
	regGPIOA  uint8 = 0x12 // port A data
	regGPIOB  uint8 = 0x13 // port B data
)

// The first byte of every transaction is the opcode: 0x40 with the
// hardware address in bits 2:1 and the R/W flag in bit 0.
func writeOpcode(hwAddr uint8) byte {
	return 0x40 | hwAddr<<1
}

func readOpcode(hwAddr uint8) byte {
	return 0x40 | hwAddr<<1 | 1
}

// readRegister clocks out a 3-byte read transaction and returns the third
// byte of the full-duplex reply, which is where the chip echoes the
// register value. The caller must hold d.mu.
func (d *Dev) readRegister(address uint8) (uint8, error) {
	w := []byte{d.readOp, address, 0x00}
	r := make([]byte, len(w))
	if err := d.conn.Tx(w, r); err != nil {
		return 0, fmt.Errorf("mcp23s17: %w", err)
	}
	return r[2], nil
}

// writeRegister performs a 3-byte write transaction. The caller must hold
// d.mu.
func (d *Dev) writeRegister(address, value uint8) error {
	if err := d.conn.Tx([]byte{d.writeOp, address, value}, nil); err != nil {
		return fmt.Errorf("mcp23s17: %w", err)
	}
	return nil
}
