package hal

import (
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// RaspberryPiHAL is the real-silicon HAL: go-rpio backs the GPIO provider
// (available for auxiliary lines such as reset or interrupt), periph.io
// drives the SPI bus the controller is wired to, including its chip select.
type RaspberryPiHAL struct {
	gpio *rpiGPIO
	spi  *rpiSPI
	info BoardInfo
}

func NewRaspberryPiHAL() (*RaspberryPiHAL, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph.io: %w", err)
	}
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to open GPIO: %w", err)
	}

	info, err := DetectBoard()
	if err != nil {
		info = &BoardInfo{Model: BoardUnknown, Name: "Unknown Board", NumSPI: 1}
	}

	return &RaspberryPiHAL{
		gpio: &rpiGPIO{pins: make(map[int]rpio.Pin), pwm: make(map[int]*pwmState)},
		spi:  &rpiSPI{maxBus: info.NumSPI},
		info: *info,
	}, nil
}

func (h *RaspberryPiHAL) GPIO() GPIOProvider { return h.gpio }
func (h *RaspberryPiHAL) SPI() SPIProvider   { return h.spi }
func (h *RaspberryPiHAL) Info() BoardInfo    { return h.info }

func (h *RaspberryPiHAL) Close() error {
	if err := h.spi.Close(); err != nil {
		return err
	}
	return rpio.Close()
}

type pwmState struct {
	frequency int
	dutyCycle int
}

// rpiGPIO implements GPIOProvider over go-rpio. Chip select is not driven
// through it — rpiSPI's periph.io connection handles CS — and the driver's
// own traffic goes over rpiSPI, not this.
type rpiGPIO struct {
	mu   sync.Mutex
	pins map[int]rpio.Pin
	pwm  map[int]*pwmState
}

func (g *rpiGPIO) SetMode(pin int, mode PinMode) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := rpio.Pin(pin)
	g.pins[pin] = p

	switch mode {
	case Input:
		p.Input()
	case Output:
		p.Output()
	case PWM:
		p.Output()
		g.pwm[pin] = &pwmState{frequency: 1000}
	default:
		return fmt.Errorf("unsupported pin mode: %v", mode)
	}
	return nil
}

func (g *rpiGPIO) SetPull(pin int, pull PullMode) error {
	g.mu.Lock()
	p, ok := g.pins[pin]
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("pin %d not initialized", pin)
	}

	switch pull {
	case PullUp:
		p.PullUp()
	case PullDown:
		p.PullDown()
	case PullNone:
		p.PullOff()
	}
	return nil
}

func (g *rpiGPIO) DigitalRead(pin int) (bool, error) {
	g.mu.Lock()
	p, ok := g.pins[pin]
	g.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("pin %d not initialized", pin)
	}
	return p.Read() == rpio.High, nil
}

func (g *rpiGPIO) DigitalWrite(pin int, value bool) error {
	g.mu.Lock()
	p, ok := g.pins[pin]
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("pin %d not initialized", pin)
	}
	if value {
		p.High()
	} else {
		p.Low()
	}
	return nil
}

func (g *rpiGPIO) PWMWrite(pin int, value int) error {
	g.mu.Lock()
	p, ok := g.pins[pin]
	pwm, pwmOK := g.pwm[pin]
	g.mu.Unlock()
	if !ok || !pwmOK {
		return fmt.Errorf("pin %d not configured for PWM", pin)
	}
	if value < 0 || value > 255 {
		return fmt.Errorf("PWM value must be 0-255")
	}
	pwm.dutyCycle = value
	p.Write(rpio.State(value & 0xFF))
	return nil
}

func (g *rpiGPIO) SetPWMFrequency(pin int, freq int) error {
	g.mu.Lock()
	pwm, ok := g.pwm[pin]
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("pin %d not configured for PWM", pin)
	}
	pwm.frequency = freq
	return nil
}

func (g *rpiGPIO) WatchEdge(pin int, edge EdgeMode, callback func(pin int, value bool)) error {
	return fmt.Errorf("edge watching not supported on go-rpio")
}

func (g *rpiGPIO) ActivePins() map[int]PinMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[int]PinMode, len(g.pins))
	for pin := range g.pins {
		mode := Input
		if _, isPWM := g.pwm[pin]; isPWM {
			mode = PWM
		}
		out[pin] = mode
	}
	return out
}

func (g *rpiGPIO) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pins = make(map[int]rpio.Pin)
	g.pwm = make(map[int]*pwmState)
	return nil
}

// rpiSPI implements SPIProvider over periph.io. Each Transfer is one
// complete full-duplex exchange: periph.io's spi.Conn.Tx asserts chip
// select, clocks data out write-and-read, and deasserts on return, which
// is exactly the CS-paired transaction transport.go's primitives need.
type rpiSPI struct {
	mu     sync.Mutex
	conn   spi.Conn
	port   spi.PortCloser
	maxBus int

	speedHz     int
	mode        byte
	bitsPerWord byte
}

func (s *rpiSPI) Open(bus, device int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxBus > 0 && bus >= s.maxBus {
		return fmt.Errorf("SPI bus %d exceeds this board's %d SPI bus(es)", bus, s.maxBus)
	}

	port, err := spireg.Open(fmt.Sprintf("SPI%d.%d", bus, device))
	if err != nil {
		return fmt.Errorf("failed to open SPI device: %w", err)
	}

	speed := s.speedHz
	if speed == 0 {
		speed = 6_000_000 // §6: 6 MHz, comfortable under the controller's 10 MHz max
	}
	conn, err := port.Connect(physic.Frequency(speed)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return fmt.Errorf("failed to connect to SPI device: %w", err)
	}

	s.port = port
	s.conn = conn
	return nil
}

func (s *rpiSPI) Transfer(data []byte) ([]byte, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil, fmt.Errorf("SPI device not open")
	}

	read := make([]byte, len(data))
	if err := conn.Tx(data, read); err != nil {
		return nil, err
	}
	return read, nil
}

func (s *rpiSPI) SetSpeed(speed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speedHz = speed
	return nil
}

func (s *rpiSPI) SetMode(mode byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	return nil
}

func (s *rpiSPI) SetBitsPerWord(bits byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bitsPerWord = bits
	return nil
}

func (s *rpiSPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}
