package main

import (
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"macropad/host/device"
	"macropad/host/serial"
)

var (
	// Version is set using -ldflags during compilation
	Version string
	// Commit is set using -ldflags during compilation
	Commit string
)

type options struct {
	Device  string        `short:"d" long:"device" description:"Serial device of the macropad" default:"/dev/ttyACM0"`
	Baud    int           `short:"b" long:"baud" description:"Baud rate (ignored by USB CDC)" default:"115200"`
	Timeout time.Duration `short:"t" long:"timeout" description:"How long to wait for replies" default:"2s"`
	Debug   bool          `long:"debug" description:"Log every frame"`
}

var opts options

// connect opens the serial port and starts a device on it
func connect() (*device.Device, error) {
	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg := serial.DefaultConfig(opts.Device)
	cfg.Baud = opts.Baud

	port, err := serial.Open(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", opts.Device)
	}
	if err := port.Flush(); err != nil {
		log.Warnf("Could not flush %s: %v", opts.Device, err)
	}

	log.Debugf("macropad-host %s (commit %s) opened %s", Version, Commit, opts.Device)

	return device.New(&device.Config{
		Port:       port,
		Logger:     log.WithField("system", "device"),
		AckTimeout: opts.Timeout,
	}), nil
}

// hostMain is the true entry point. Defers in main don't run when
// os.Exit is called.
func hostMain() error {
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	parser := flags.NewParser(&opts, flags.Default)
	parser.AddCommand("monitor", "Print reports until interrupted",
		"Prints every report the macropad sends until Ctrl-C.", &monitorCommand{})
	parser.AddCommand("identify", "Print the firmware version",
		"Asks the macropad for its firmware version.", &identifyCommand{})
	parser.AddCommand("rumble", "Pulse the vibration motor",
		"Starts a vibration pulse of the given number of loop iterations.", &rumbleCommand{})
	parser.AddCommand("clear", "Clear the display",
		"Blanks the macropad's display.", &clearCommand{})
	parser.AddCommand("encoders", "Print encoder counts",
		"Prints the raw counts of both rotary encoders.", &encodersCommand{})
	parser.AddCommand("debug", "Switch firmware debug output",
		"Switches the firmware's debug UART output on or off.", &debugCommand{})
	parser.AddCommand("dump", "Print and clear the event log",
		"Fetches the firmware's recent events and clears them.", &dumpCommand{})

	if _, err := parser.Parse(); err != nil {
		return err
	}

	return nil
}

func main() {
	if err := hostMain(); err != nil {
		if e, ok := err.(*flags.Error); ok {
			if e.Type == flags.ErrHelp {
				os.Exit(0)
			}
			// go-flags already printed it
			os.Exit(1)
		}
		log.WithError(err).Println("Failed running macropad-host.")
		os.Exit(1)
	}
}
