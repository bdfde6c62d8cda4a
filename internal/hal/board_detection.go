package hal

import (
	"fmt"
	"os"
	"strings"
)

// BoardModel identifies which Raspberry Pi variant the driver is running
// on. Only the facts that bear on SPI bring-up are tracked here — GPIO/PWM/
// I2C pin counts and wireless capability belonged to the general-purpose HAL
// this package was adapted from, not a single-bus SPI CAN controller driver.
type BoardModel int

const (
	BoardUnknown BoardModel = iota
	BoardRPiZero
	BoardRPiZeroW
	BoardRPiZero2W
	BoardRPi1
	BoardRPi2
	BoardRPi3
	BoardRPi3Plus
	BoardRPi4
	BoardRPi5
	BoardRPiCM3
	BoardRPiCM4
)

// BoardInfo is the subset of board identity that SPI bring-up in rpi.go
// actually consults: a name for logging, and how many SPI buses the board
// exposes, checked before a bus is opened.
type BoardInfo struct {
	Model  BoardModel
	Name   string
	NumSPI int
}

// DetectBoard identifies the host board from /proc/cpuinfo (falling back to
// /proc/device-tree/model on boards, like the Pi 5, that omit it).
func DetectBoard() (*BoardInfo, error) {
	data, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to read cpuinfo: %w", err)
	}

	model := extractModel(string(data))
	info := &BoardInfo{
		Model:  model,
		Name:   model.String(),
		NumSPI: numSPIBuses(model),
	}
	return info, nil
}

// numSPIBuses reports how many SPI peripherals the board exposes. Boards
// not recognized by matchBoardModel get the conservative single-bus count.
func numSPIBuses(model BoardModel) int {
	switch model {
	case BoardRPi4, BoardRPi5, BoardRPiCM4:
		return 5
	case BoardRPiZero, BoardRPiZeroW, BoardRPiZero2W, BoardRPi3, BoardRPi3Plus:
		return 2
	default:
		return 1
	}
}

func extractModel(cpuinfo string) BoardModel {
	lines := strings.Split(cpuinfo, "\n")
	for _, line := range lines {
		if strings.HasPrefix(line, "Model") {
			if m := matchBoardModel(line); m != BoardUnknown {
				return m
			}
		}
	}

	// Fallback: Pi 5 doesn't have Model in cpuinfo, check device-tree
	if dtModel, err := os.ReadFile("/proc/device-tree/model"); err == nil {
		if m := matchBoardModel(string(dtModel)); m != BoardUnknown {
			return m
		}
	}

	return BoardUnknown
}

func matchBoardModel(text string) BoardModel {
	model := strings.ToLower(text)

	switch {
	case strings.Contains(model, "pi 5"):
		return BoardRPi5
	case strings.Contains(model, "pi 4"):
		return BoardRPi4
	case strings.Contains(model, "pi 3 model b+"):
		return BoardRPi3Plus
	case strings.Contains(model, "pi 3"):
		return BoardRPi3
	case strings.Contains(model, "pi 2"):
		return BoardRPi2
	case strings.Contains(model, "pi 1"), strings.Contains(model, "model b"):
		return BoardRPi1
	case strings.Contains(model, "zero 2 w"):
		return BoardRPiZero2W
	case strings.Contains(model, "zero w"):
		return BoardRPiZeroW
	case strings.Contains(model, "zero"):
		return BoardRPiZero
	case strings.Contains(model, "compute module 4"):
		return BoardRPiCM4
	case strings.Contains(model, "compute module 3"):
		return BoardRPiCM3
	}
	return BoardUnknown
}

func (b BoardModel) String() string {
	switch b {
	case BoardRPiZero:
		return "Raspberry Pi Zero"
	case BoardRPiZeroW:
		return "Raspberry Pi Zero W"
	case BoardRPiZero2W:
		return "Raspberry Pi Zero 2 W"
	case BoardRPi1:
		return "Raspberry Pi 1"
	case BoardRPi2:
		return "Raspberry Pi 2"
	case BoardRPi3:
		return "Raspberry Pi 3"
	case BoardRPi3Plus:
		return "Raspberry Pi 3 B+"
	case BoardRPi4:
		return "Raspberry Pi 4"
	case BoardRPi5:
		return "Raspberry Pi 5"
	case BoardRPiCM3:
		return "Raspberry Pi Compute Module 3"
	case BoardRPiCM4:
		return "Raspberry Pi Compute Module 4"
	default:
		return "Unknown Board"
	}
}
