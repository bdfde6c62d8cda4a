package hal

// PinInfo describes one Raspberry Pi header pin on the primary SPI bus
// (SPI0) — the only bus whose pins this file lists.
type PinInfo struct {
	Physical int
	BCM      int
	Name     string
}

// spi0Pins are the physical header pins wired to SPI0's three signal lines
// plus its two chip selects.
var spi0Pins = []PinInfo{
	{Physical: 19, BCM: 10, Name: "GPIO10 (MOSI)"},
	{Physical: 21, BCM: 9, Name: "GPIO9 (MISO)"},
	{Physical: 23, BCM: 11, Name: "GPIO11 (SCLK)"},
	{Physical: 24, BCM: 8, Name: "GPIO8 (CE0)"},
	{Physical: 26, BCM: 7, Name: "GPIO7 (CE1)"},
}

// GetSPIPins returns the physical header pin numbers backing SPI0, for
// logging which pins carry the controller's traffic at bring-up.
func GetSPIPins() []int {
	pins := make([]int, 0, len(spi0Pins))
	for _, p := range spi0Pins {
		pins = append(pins, p.Physical)
	}
	return pins
}
