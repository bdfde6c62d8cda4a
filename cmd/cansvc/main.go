// Command cansvc brings up one MCP2515 controller over SPI, republishes
// decoded RX frames over MQTT, accepts outbound frames the same way, and
// polls the interrupt/error facade on a schedule.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/edgeflow/mcp2515/internal/can"
	"github.com/edgeflow/mcp2515/internal/config"
	"github.com/edgeflow/mcp2515/internal/hal"
	"github.com/edgeflow/mcp2515/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (defaults to ./configs, ., or ~/.cansvc)")
	mqttBroker := flag.String("mqtt-broker", "tcp://localhost:1883", "MQTT broker URL; empty disables publishing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cansvc: config load failed: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		LogDir:     cfg.Logger.LogDir,
		MaxSizeMB:  50,
		MaxBackups: 5,
		MaxAgeDays: 7,
		Compress:   true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "cansvc: logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	runID := uuid.New().String()
	log := logger.WithChip(cfg.Chip.Transport).With(zap.String("run_id", runID))
	log.Info("starting")

	h, err := bringUpHAL()
	if err != nil {
		log.Fatal("HAL bring-up failed", zap.Error(err))
	}
	hal.SetGlobalHAL(h)
	defer h.Close()

	transport, err := transportFromName(cfg.Chip.Transport)
	if err != nil {
		log.Fatal("invalid transport", zap.Error(err))
	}

	bus := 0
	if transport == can.TransportSPI1 {
		bus = 1
	}
	if err := h.SPI().Open(bus, 0); err != nil {
		log.Fatal("SPI open failed", zap.Error(err))
	}

	chipCfg, err := chipConfigFromFile(cfg.Chip, transport)
	if err != nil {
		log.Fatal("invalid chip configuration", zap.Error(err))
	}

	registry := can.TransportRegistry{transport: h.SPI()}
	controller, err := can.Init(chipCfg, registry, can.RealDelayer{})
	if err != nil {
		log.Fatal("controller init failed", zap.Error(err))
	}

	cfgHandle, err := controller.EnterConfig()
	if err != nil {
		log.Fatal("failed to enter configuration mode", zap.Error(err))
	}
	if err := applyMaskFilterConfig(cfgHandle, cfg.Chip); err != nil {
		log.Fatal("failed to arm RX masks/filters", zap.Error(err))
	}

	run, err := cfgHandle.Leave(chipCfg.Mode)
	if err != nil {
		log.Fatal("failed to enter run mode", zap.Error(err))
	}
	if err := run.EnableInterrupts(can.IntRX0IF | can.IntRX1IF | can.IntERRIF); err != nil {
		log.Fatal("failed to enable interrupts", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var publisher mqtt.Client
	if *mqttBroker != "" {
		publisher = connectMQTT(*mqttBroker, runID, log)
		defer publisher.Disconnect(250)
		subscribeOutbound(publisher, run, log)
	}

	watchConfigReload(*configPath, controller, log)

	c := cron.New()
	if _, err := c.AddFunc("@every 1s", func() { pollStatus(run, publisher, log) }); err != nil {
		log.Fatal("failed to schedule status poll", zap.Error(err))
	}
	if _, err := c.AddFunc("@every 200ms", func() { pollFrames(run, publisher, log) }); err != nil {
		log.Fatal("failed to schedule frame poll", zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case s := <-sig:
		log.Info("shutting down", zap.String("signal", s.String()))
	case <-ctx.Done():
	}
}

// transportFromName maps a config string to a transport selector. An
// unrecognized name is rejected here, before it ever reaches can.Init —
// a deploy-time typo in cansvc's own config should fail with a message
// naming the string, not the driver's generic ErrUnknownTransport.
func transportFromName(name string) (can.TransportSelector, error) {
	switch name {
	case "spi0":
		return can.TransportSPI0, nil
	case "spi1":
		return can.TransportSPI1, nil
	default:
		return can.TransportNone, fmt.Errorf("unrecognized chip.transport %q", name)
	}
}

// chipConfigFromFile converts the deploy-time ChipConfig into the
// driver's can.Config, translating the file/env-friendly scalar fields
// (baud in kbps, mode as a string) into the driver's enums.
func chipConfigFromFile(fc config.ChipConfig, transport can.TransportSelector) (can.Config, error) {
	baud, err := baudFromKbps(fc.BaudKbps)
	if err != nil {
		return can.Config{}, err
	}
	mode, err := modeFromName(fc.Mode)
	if err != nil {
		return can.Config{}, err
	}

	oneShot := can.Reattempt
	if fc.OneShot {
		oneShot = can.NoReattempt
	}
	sample := can.SampleOnce
	if fc.SampleThrice {
		sample = can.SampleThriceTimes
	}
	wakeup := can.WakeUpFilterDisabled
	if fc.WakeUpFilter {
		wakeup = can.WakeUpFilterEnabled
	}
	rxb0Accept := can.AcceptFiltered
	if fc.RXB0AcceptAny {
		rxb0Accept = can.AcceptAny
	}
	rxb1Accept := can.AcceptFiltered
	if fc.RXB1AcceptAny {
		rxb1Accept = can.AcceptAny
	}
	rollover := can.RolloverDisabled
	if fc.RXB0Rollover {
		rollover = can.RolloverEnabled
	}

	return can.Config{
		Transport:    transport,
		Baud:         baud,
		OneShot:      oneShot,
		Sample:       sample,
		WakeUp:       wakeup,
		RXB0Accept:   rxb0Accept,
		RXB1Accept:   rxb1Accept,
		RXB0Rollover: rollover,
		Mode:         mode,
		OscillatorHz: fc.OscillatorHz,
	}, nil
}

// applyMaskFilterConfig arms the two RX masks and up to six RX filters from
// fc while the handle is in configuration mode. Masks are always written
// (an absent chip.mask0/mask1 arms an all-zero mask, matching the chip's
// power-on-reset value). Filters beyond the six physical slots are ignored;
// an empty chip.filters list leaves the filter bank untouched.
func applyMaskFilterConfig(cfgHandle *can.ConfigHandle, fc config.ChipConfig) error {
	masks := [2]can.MaskValue{
		{ID: can.PackedExtendedID(fc.Mask0)},
		{ID: can.PackedExtendedID(fc.Mask1)},
	}
	if err := cfgHandle.SetMasks(can.Mask0|can.Mask1, masks); err != nil {
		return fmt.Errorf("failed to set RX masks: %w", err)
	}

	var filters [6]can.FilterValue
	var sel can.FilterSelect
	for i, fcf := range fc.Filters {
		if i >= len(filters) {
			break
		}
		filters[i] = can.FilterValue{ID: can.PackedExtendedID(fcf.ID), Extended: fcf.Extended}
		sel |= can.FilterSelect(1 << uint(i))
	}
	if sel == 0 {
		return nil
	}
	if err := cfgHandle.SetFilters(sel, filters); err != nil {
		return fmt.Errorf("failed to set RX filters: %w", err)
	}
	return nil
}

func baudFromKbps(kbps int) (can.BaudRate, error) {
	switch kbps {
	case 50:
		return can.Baud50k, nil
	case 100:
		return can.Baud100k, nil
	case 125:
		return can.Baud125k, nil
	case 250:
		return can.Baud250k, nil
	case 500:
		return can.Baud500k, nil
	default:
		return 0, fmt.Errorf("unsupported chip.baud_kbps %d", kbps)
	}
}

func modeFromName(name string) (can.OperationMode, error) {
	switch name {
	case "normal":
		return can.ModeNormal, nil
	case "sleep":
		return can.ModeSleep, nil
	case "loopback":
		return can.ModeLoopback, nil
	case "listen-only":
		return can.ModeListenOnly, nil
	case "configuration":
		return can.ModeConfiguration, nil
	default:
		return 0, fmt.Errorf("unrecognized chip.mode %q", name)
	}
}

// wireFrame is the MQTT payload shape for both published RX frames and
// subscribed outbound TX requests.
type wireFrame struct {
	Extended bool   `json:"extended"`
	Remote   bool   `json:"remote"`
	ID       uint32 `json:"id"`
	DLC      uint8  `json:"dlc"`
	Data     []byte `json:"data,omitempty"`
}

func connectMQTT(broker, runID string, log *zap.Logger) mqtt.Client {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("cansvc-" + runID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if tok := client.Connect(); tok.Wait() && tok.Error() != nil {
		log.Error("MQTT connect failed, continuing without publishing", zap.Error(tok.Error()))
	}
	return client
}

func subscribeOutbound(client mqtt.Client, run *can.RunHandle, log *zap.Logger) {
	client.Subscribe("cansvc/tx", 0, func(_ mqtt.Client, msg mqtt.Message) {
		var wf wireFrame
		if err := json.Unmarshal(msg.Payload(), &wf); err != nil {
			log.Warn("dropping malformed outbound frame", zap.Error(err))
			return
		}

		frame := can.TxFrame{
			FrameType: frameTypeFor(wf.Extended, wf.Remote),
			DLC:       wf.DLC,
			ID:        can.PackedExtendedID(wf.ID),
		}
		if !wf.Extended {
			frame.ID = can.StandardID(uint16(wf.ID))
		}
		copy(frame.Data[:], wf.Data)

		if _, err := run.SendAny(frame); err != nil {
			log.Warn("send failed", zap.Error(err))
		}
	})
}

func frameTypeFor(extended, remote bool) can.FrameType {
	switch {
	case extended && remote:
		return can.ExtRemote
	case extended:
		return can.ExtData
	case remote:
		return can.StdRemote
	default:
		return can.StdData
	}
}

func pollFrames(run *can.RunHandle, publisher mqtt.Client, log *zap.Logger) {
	status, err := run.InterruptStatus()
	if err != nil {
		log.Warn("interrupt status read failed", zap.Error(err))
		return
	}

	var sel can.RxBufferSelect
	if status&can.IntRX0IF != 0 {
		sel |= can.RXB0
	}
	if status&can.IntRX1IF != 0 {
		sel |= can.RXB1
	}
	if sel == 0 {
		return
	}

	frames, err := run.Read(sel)
	if err != nil {
		log.Warn("RX read failed", zap.Error(err))
		return
	}

	if err := run.ClearInterrupts(can.IntRX0IF | can.IntRX1IF); err != nil {
		log.Warn("failed to clear RX interrupt flags", zap.Error(err))
	}

	for _, f := range frames {
		if f == nil {
			continue
		}
		if publisher == nil {
			continue
		}
		wf := wireFrame{
			Extended: f.FrameType == can.ExtData || f.FrameType == can.ExtRemote,
			Remote:   f.FrameType == can.StdRemote || f.FrameType == can.ExtRemote,
			ID:       f.ID.Packed(),
			DLC:      f.DLC,
			Data:     append([]byte(nil), f.Data[:f.DLC]...),
		}
		payload, err := json.Marshal(wf)
		if err != nil {
			continue
		}
		publisher.Publish("cansvc/rx", 0, false, payload)
	}
}

func pollStatus(run *can.RunHandle, publisher mqtt.Client, log *zap.Logger) {
	errs, err := run.ErrorStatus()
	if err != nil {
		log.Warn("error status read failed", zap.Error(err))
		return
	}
	if errs == 0 {
		return
	}
	log.Info("controller error flags", zap.Uint8("eflg", uint8(errs)))
	if clearErr := run.ClearErrors(errs); clearErr != nil {
		log.Warn("failed to clear error flags", zap.Error(clearErr))
	}
}

// watchConfigReload hot-reloads bit timing, RX masks, and RX filters when
// the config file changes on disk, without restarting the process. It is a
// best-effort feature: a missing configPath (the no-file, defaults-only
// case) simply disables it.
func watchConfigReload(configPath string, controller *can.Controller, log *zap.Logger) {
	if configPath == "" {
		return
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("config watcher unavailable", zap.Error(err))
		return
	}
	if err := watcher.Add(configPath); err != nil {
		log.Warn("failed to watch config file", zap.Error(err))
		return
	}

	go func() {
		for event := range watcher.Events {
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			reloaded, err := config.Load(configPath)
			if err != nil {
				log.Warn("config reload failed", zap.Error(err))
				continue
			}

			cfgHandle, err := controller.EnterConfig()
			if err != nil {
				log.Warn("failed to enter configuration mode for reload", zap.Error(err))
				continue
			}
			if baud, ok := mustBaud(reloaded.Chip.BaudKbps, log); ok {
				sample := can.SampleOnce
				if reloaded.Chip.SampleThrice {
					sample = can.SampleThriceTimes
				}
				wakeup := can.WakeUpFilterDisabled
				if reloaded.Chip.WakeUpFilter {
					wakeup = can.WakeUpFilterEnabled
				}
				if err := cfgHandle.SetBitTiming(baud, sample, wakeup); err != nil {
					log.Warn("failed to reapply bit timing", zap.Error(err))
				}
			}
			if err := applyMaskFilterConfig(cfgHandle, reloaded.Chip); err != nil {
				log.Warn("failed to re-arm RX masks/filters", zap.Error(err))
			}
			mode, modeErr := modeFromName(reloaded.Chip.Mode)
			if modeErr != nil {
				mode = can.ModeNormal
			}
			if _, err := cfgHandle.Leave(mode); err != nil {
				log.Warn("failed to leave configuration mode after reload", zap.Error(err))
				continue
			}
			log.Info("reapplied configuration from disk", zap.Time("at", time.Now()))
		}
	}()
}

func mustBaud(kbps int, log *zap.Logger) (can.BaudRate, bool) {
	baud, err := baudFromKbps(kbps)
	if err != nil {
		log.Warn("invalid baud in reloaded config, keeping current rate", zap.Error(err))
		return 0, false
	}
	return baud, true
}
