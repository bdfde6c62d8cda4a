//go:build linux
// +build linux

package main

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/edgeflow/mcp2515/internal/hal"
	"github.com/edgeflow/mcp2515/internal/logger"
)

// bringUpHAL selects the real Raspberry Pi HAL on ARM Linux hosts and
// falls back to the mock HAL everywhere else (x86 dev boxes, CI runners).
func bringUpHAL() (hal.HAL, error) {
	if runtime.GOARCH != "arm64" && runtime.GOARCH != "arm" {
		return hal.NewMockHAL(), nil
	}

	h, err := hal.NewRaspberryPiHAL()
	if err != nil {
		return nil, err
	}
	logger.Get().Info("SPI-capable header pins on this board",
		zap.String("board", h.Info().Name),
		zap.Ints("physical_pins", hal.GetSPIPins()))
	return h, nil
}
