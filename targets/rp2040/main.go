//go:build rp2040 || rp2350

package main

import (
	_ "embed"
	"machine"
	"time"

	"macropad/config"
	"macropad/controller"
	"macropad/core"
	"macropad/protocol"
)

//go:embed board.json
var boardJSON []byte

var (
	// Buffers for communication
	inputBuffer  *protocol.FifoBuffer
	outputBuffer *protocol.ScratchOutput
	transport    *protocol.Transport

	// Debug counters
	scanFaults uint32
	msgerrors  uint32

	// USB connection state tracking
	usbWasDisconnected       bool
	consecutiveWriteFailures uint32
)

func main() {
	// Disable any watchdog left running by the previous image
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	InitDebugUART()
	core.SetDebugWriter(DebugPrintln)

	cfg, err := config.LoadConfig(boardJSON)
	if err != nil {
		DebugPrintln("[BOOT] board.json: " + err.Error() + ", using defaults")
		cfg = config.DefaultConfig()
	}

	inputBuffer = protocol.NewFifoBuffer(256)
	outputBuffer = protocol.NewScratchOutput()
	registry := protocol.NewCommandRegistry()
	transport = protocol.NewTransport(outputBuffer, registry.Dispatch)

	ctrl, err := buildController(cfg, transport)
	if err != nil {
		// Nothing useful can run without the matrix; report and halt
		for {
			DebugPrintln("[BOOT] " + err.Error())
			time.Sleep(time.Second)
		}
	}

	ctrl.RegisterCommands(registry)

	// Reports queued for the old session are stale; the input already
	// holds the new session's frames
	transport.SetResetCallback(outputBuffer.Reset)
	transport.SetFlushCallback(writeUSB)
	transport.SetErrorCallback(func(cmdID uint16, err error) {
		msgerrors++
		DebugPrintln("[LINK] command " + itoa(int(cmdID)) + ": " + err.Error())
	})

	go usbReaderLoop()

	period := time.Duration(cfg.LoopPeriodMs) * time.Millisecond
	for {
		// Recover from panics in the loop body to keep the device responsive
		func() {
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
					inputBuffer.Reset()
					outputBuffer.Reset()
				}
			}()

			if err := ctrl.Poll(); err != nil {
				scanFaults++
				DebugPrintln("[LOOP] " + err.Error())
			}
			if err := ctrl.LastError(); err != nil {
				msgerrors++
			}

			if !inputBuffer.IsEmpty() {
				transport.Receive(inputBuffer)
			}

			writeUSB()
		}()

		time.Sleep(period)
	}
}

// buildController binds the configured pins to the core components
func buildController(cfg *config.BoardConfig, link controller.Link) (*controller.Controller, error) {
	gpio := NewRPGPIODriver()

	var rows [core.GridSize]core.DigitalInput
	var cols [core.GridSize]core.DigitalOutput
	for i := 0; i < core.GridSize; i++ {
		in, err := core.NewInputPin(gpio, mustPin(cfg.Rows[i]))
		if err != nil {
			return nil, err
		}
		rows[i] = in

		out, err := core.NewOutputPin(gpio, mustPin(cfg.Columns[i]), true)
		if err != nil {
			return nil, err
		}
		cols[i] = out
	}

	matrix, err := core.NewMatrix(rows, cols, busyDelay{})
	if err != nil {
		return nil, err
	}

	motor, ground, err := NewMotorChannels(mustPin(cfg.MotorPin), mustPin(cfg.GroundPin), cfg.PWMPeriodNs)
	if err != nil {
		return nil, err
	}
	vibrator, err := core.NewVibrator(motor, ground)
	if err != nil {
		return nil, err
	}

	var encoders [2]*core.Encoder
	for i, ec := range cfg.Encoders {
		counter, err := NewQuadratureCounter(uint8(i), mustPin(ec.A), mustPin(ec.B))
		if err != nil {
			return nil, err
		}
		button, err := core.NewInputPin(gpio, mustPin(ec.Button))
		if err != nil {
			return nil, err
		}
		if encoders[i], err = core.NewEncoder(counter, button); err != nil {
			return nil, err
		}
	}

	var display controller.Display
	if cfg.Display != nil {
		d, err := NewDisplay(cfg.Display)
		if err != nil {
			// The pad still works without a screen
			DebugPrintln("[BOOT] display: " + err.Error())
		} else {
			display = d
		}
	}

	return controller.New(matrix, vibrator, encoders, display, link, cfg.PulseCycles)
}

// mustPin converts a validated pin name
func mustPin(name string) core.GPIOPin {
	pin, err := config.ParsePin(name)
	if err != nil {
		return core.NoPin
	}
	return core.GPIOPin(pin)
}

// usbReaderLoop runs in a goroutine to continuously read USB data
func usbReaderLoop() {
	defer func() {
		if r := recover(); r != nil {
			msgerrors++
			time.Sleep(100 * time.Millisecond)
			go usbReaderLoop()
		}
	}()

	for {
		if USBAvailable() > 0 {
			data, err := USBRead()
			if err != nil {
				msgerrors++
				time.Sleep(1 * time.Millisecond)
				continue
			}

			// First byte after a disconnect starts a fresh session
			if usbWasDisconnected {
				usbWasDisconnected = false
				inputBuffer.Reset()
				outputBuffer.Reset()
				transport.Reset()
				consecutiveWriteFailures = 0
			}

			// Full: give the main loop time to drain before dropping the byte
			if inputBuffer.Free() == 0 {
				time.Sleep(10 * time.Millisecond)
			}
			if inputBuffer.Write([]byte{data}) == 0 {
				msgerrors++
			}
		}
		time.Sleep(100 * time.Microsecond)
	}
}

// writeUSB writes pending output to USB
func writeUSB() {
	if outputBuffer.Dropped() > 0 {
		// Reports that did not fit are gone; the host sees a gap
		msgerrors++
	}

	result := outputBuffer.Result()
	if len(result) == 0 {
		return
	}

	written := 0
	for written < len(result) {
		n, err := USBWriteBytes(result[written:])
		if err != nil || n == 0 {
			// Probably disconnected; drop stale data after repeated failures
			consecutiveWriteFailures++
			if consecutiveWriteFailures > 10 {
				usbWasDisconnected = true
				consecutiveWriteFailures = 0
				outputBuffer.Reset()
				inputBuffer.Reset()
			}
			return
		}
		written += n
	}

	consecutiveWriteFailures = 0
	outputBuffer.Reset()
}

// itoa converts int to string without importing strconv (for embedded)
func itoa(i int) string {
	if i == 0 {
		return "0"
	}

	negative := i < 0
	if negative {
		i = -i
	}

	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}

	if negative {
		pos--
		buf[pos] = '-'
	}

	return string(buf[pos:])
}
