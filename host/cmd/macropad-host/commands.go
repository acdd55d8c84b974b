package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type monitorCommand struct{}

func (c *monitorCommand) Execute(args []string) error {
	dev, err := connect()
	if err != nil {
		return err
	}
	defer dev.Close()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	log.Infof("Monitoring %s, press Ctrl-C to stop", opts.Device)

	for {
		select {
		case r := <-dev.Reports():
			fmt.Printf("%s %v\n", r.Received.Format("15:04:05.000"), r)
		case sig := <-signals:
			log.Infof("Received %v, stopping", sig)
			return nil
		}
	}
}

type identifyCommand struct{}

func (c *identifyCommand) Execute(args []string) error {
	dev, err := connect()
	if err != nil {
		return err
	}
	defer dev.Close()

	version, err := dev.Identify(opts.Timeout)
	if err != nil {
		return errors.Wrap(err, "identify failed")
	}

	fmt.Println(version)
	return nil
}

type rumbleCommand struct {
	Cycles uint16 `short:"c" long:"cycles" description:"Pulse length in loop iterations, 0 stops a running pulse" default:"4"`
}

func (c *rumbleCommand) Execute(args []string) error {
	dev, err := connect()
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := dev.Rumble(c.Cycles); err != nil {
		return errors.Wrap(err, "rumble failed")
	}

	if c.Cycles == 0 {
		log.Info("Stopped the pulse")
	} else {
		log.Infof("Started a %d cycle pulse", c.Cycles)
	}
	return nil
}

type clearCommand struct{}

func (c *clearCommand) Execute(args []string) error {
	dev, err := connect()
	if err != nil {
		return err
	}
	defer dev.Close()

	return errors.Wrap(dev.ClearDisplay(), "clear failed")
}

type encodersCommand struct{}

func (c *encodersCommand) Execute(args []string) error {
	dev, err := connect()
	if err != nil {
		return err
	}
	defer dev.Close()

	counts, err := dev.QueryEncoders(opts.Timeout)
	if err != nil {
		return errors.Wrap(err, "query failed")
	}

	fmt.Printf("A: %d\nB: %d\n", counts[0], counts[1])
	return nil
}

type debugCommand struct {
	Args struct {
		State string `positional-arg-name:"on|off" required:"yes"`
	} `positional-args:"yes"`
}

func (c *debugCommand) Execute(args []string) error {
	var enable bool
	switch c.Args.State {
	case "on":
		enable = true
	case "off":
	default:
		return errors.Errorf("expected on or off, got %q", c.Args.State)
	}

	dev, err := connect()
	if err != nil {
		return err
	}
	defer dev.Close()

	return errors.Wrap(dev.SetDebug(enable), "set debug failed")
}

type dumpCommand struct{}

func (c *dumpCommand) Execute(args []string) error {
	dev, err := connect()
	if err != nil {
		return err
	}
	defer dev.Close()

	events, err := dev.DumpEvents(opts.Timeout / 4)
	if err != nil {
		return errors.Wrap(err, "dump failed")
	}

	if len(events) == 0 {
		fmt.Println("No events recorded")
		return nil
	}
	for _, e := range events {
		fmt.Println(e)
	}
	return nil
}
