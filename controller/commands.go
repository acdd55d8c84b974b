package controller

import (
	"macropad/core"
	"macropad/protocol"
)

// RegisterCommands binds the host commands to this controller
func (c *Controller) RegisterCommands(r *protocol.CommandRegistry) {
	r.Register(protocol.CmdIdentify, c.handleIdentify)
	r.Register(protocol.CmdRumble, c.handleRumble)
	r.Register(protocol.CmdClearDisplay, c.handleClearDisplay)
	r.Register(protocol.CmdQueryEncoders, c.handleQueryEncoders)
	r.Register(protocol.CmdSetDebug, c.handleSetDebug)
	r.Register(protocol.CmdDumpEvents, c.handleDumpEvents)
}

func (c *Controller) recordCommand(id uint16) {
	c.events.Record(core.EvtCommand, c.clock, uint32(id), 0)
}

func (c *Controller) handleIdentify(id uint16, data *[]byte) error {
	c.recordCommand(id)
	return c.link.Send(protocol.MsgIdentifyResponse, protocol.IdentifyResponseArgs(protocol.Version))
}

// handleRumble: rumble cycles=%u. Zero cycles stops a running pulse.
func (c *Controller) handleRumble(id uint16, data *[]byte) error {
	cycles, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	c.recordCommand(id)
	if cycles == 0 {
		c.stopPulse()
		return nil
	}
	if cycles > 0xFFFF {
		cycles = 0xFFFF
	}
	c.startPulse(uint16(cycles))
	return nil
}

func (c *Controller) handleClearDisplay(id uint16, data *[]byte) error {
	c.recordCommand(id)
	if c.display == nil {
		return nil
	}
	core.DebugPrintln("[CTRL] display cleared by host")
	return c.display.Clear()
}

func (c *Controller) handleQueryEncoders(id uint16, data *[]byte) error {
	c.recordCommand(id)
	for i, enc := range c.encoders {
		if err := c.link.Send(protocol.MsgEncoderCount,
			protocol.EncoderCountArgs(uint8(i), enc.Count())); err != nil {
			return err
		}
	}
	return nil
}

// handleSetDebug: set_debug enable=%c
func (c *Controller) handleSetDebug(id uint16, data *[]byte) error {
	enable, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	c.recordCommand(id)
	core.SetDebugEnabled(enable != 0)
	return nil
}

// handleDumpEvents sends the event ring oldest first, then empties it
func (c *Controller) handleDumpEvents(id uint16, data *[]byte) error {
	for _, evt := range c.events.Snapshot() {
		if err := c.link.Send(protocol.MsgEventLog,
			protocol.EventLogArgs(evt.Kind, evt.Clock, evt.A, evt.B)); err != nil {
			return err
		}
	}
	c.events.Dump()
	c.events.Clear()
	return nil
}
