//go:build !linux
// +build !linux

package main

import "github.com/edgeflow/mcp2515/internal/hal"

// bringUpHAL has no real-silicon path outside Linux; go-rpio and periph.io
// both target Linux GPIO/SPI character devices.
func bringUpHAL() (hal.HAL, error) {
	return hal.NewMockHAL(), nil
}
