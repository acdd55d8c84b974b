// Package device talks to a macropad over its serial link: it frames
// commands, waits for their acknowledgements and delivers reports.
package device

import (
	"io"
	"sync"
	"time"

	"github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"

	"macropad/protocol"
)

// DefaultAckTimeout bounds the wait for a command acknowledgement
const DefaultAckTimeout = 2 * time.Second

// maxRetries is how often a NAKed command is resent
const maxRetries = 3

var (
	ErrClosed     = errors.New("device closed")
	ErrAckTimeout = errors.New("ack timeout")

	ErrReportTimeout = errors.New("no report before timeout")
)

// Logger is the subset of logrus used by the device
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Config configures a Device
type Config struct {
	Port       io.ReadWriteCloser
	Logger     Logger
	AckTimeout time.Duration
}

// Device is a connected macropad
type Device struct {
	port       io.ReadWriteCloser
	log        Logger
	ackTimeout time.Duration

	// cmdMtx serialises commands; seq is the next sequence to send
	cmdMtx sync.Mutex
	seq    uint8

	acks    chan uint8
	reports chan Report

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// New starts reading from the configured port
func New(config *Config) *Device {
	timeout := config.AckTimeout
	if timeout == 0 {
		timeout = DefaultAckTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = log.New().WithField("system", "device")
	}

	d := &Device{
		port:       config.Port,
		log:        logger,
		ackTimeout: timeout,
		seq:        protocol.MessageDest,
		acks:       make(chan uint8, 4),
		reports:    make(chan Report, 64),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}

	go d.readLoop()

	return d
}

// Reports delivers every report the device sends. Reports are dropped
// when nobody reads them.
func (d *Device) Reports() <-chan Report {
	return d.reports
}

// Send transmits a command and waits for its acknowledgement
func (d *Device) Send(cmdID uint16, args func(protocol.OutputBuffer)) error {
	d.cmdMtx.Lock()
	defer d.cmdMtx.Unlock()

	select {
	case <-d.done:
		return ErrClosed
	default:
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		frame := protocol.NewScratchOutput()
		err := protocol.EncodeFrame(frame, d.seq, func(output protocol.OutputBuffer) {
			protocol.EncodeVLQUint(output, uint32(cmdID))
			if args != nil {
				args(output)
			}
		})
		if err != nil {
			return errors.Errorf("could not encode %s: %v", protocol.MessageName(cmdID), err)
		}

		d.drainAcks()

		if _, err := d.port.Write(frame.Result()); err != nil {
			return errors.Errorf("could not write %s: %v", protocol.MessageName(cmdID), err)
		}
		d.log.Debugf("Sent %s seq=%#02x", protocol.MessageName(cmdID), d.seq)

		ack, err := d.waitAck()
		if err != nil {
			return err
		}

		expected := nextSequence(d.seq)
		if ack == expected {
			d.seq = expected
			return nil
		}

		// NAK: the device tells us which sequence it expects
		d.log.Warnf("Device expects seq=%#02x, resending %s", ack, protocol.MessageName(cmdID))
		d.seq = ack
	}

	return errors.Errorf("%s not acknowledged after %d attempts", protocol.MessageName(cmdID), maxRetries)
}

func (d *Device) waitAck() (uint8, error) {
	select {
	case ack := <-d.acks:
		return ack, nil
	case <-time.After(d.ackTimeout):
		return 0, ErrAckTimeout
	case <-d.done:
		return 0, ErrClosed
	}
}

// drainAcks discards stale ACKs before a new command goes out
func (d *Device) drainAcks() {
	for {
		select {
		case <-d.acks:
		default:
			return
		}
	}
}

func nextSequence(seq uint8) uint8 {
	return ((seq + 1) & protocol.MessageSeqMask) | protocol.MessageDest
}

// readLoop continuously reads from the port and dispatches frames
func (d *Device) readLoop() {
	defer close(d.stopped)

	var scanner protocol.FrameScanner
	pending := make([]byte, 0, 512)
	buffer := make([]byte, 256)

	for {
		n, err := d.port.Read(buffer)
		select {
		case <-d.done:
			return
		default:
		}

		if err != nil && err != io.EOF {
			d.log.Errorf("Could not read from device: %v", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if n == 0 {
			// Read timeout
			continue
		}

		pending = append(pending, buffer[:n]...)
		resyncs := scanner.Resyncs()
		consumed := scanner.Scan(pending, d.dispatch)
		if scanner.Resyncs() != resyncs {
			d.log.Warnf("Dropped corrupt data from device")
		}
		pending = append(pending[:0], pending[consumed:]...)
	}
}

func (d *Device) dispatch(f protocol.Frame) {
	if f.IsAck() {
		select {
		case d.acks <- f.Sequence:
		default:
			d.log.Warnf("Dropped ACK seq=%#02x", f.Sequence)
		}
		return
	}

	msgs, err := protocol.DecodeMessages(f.Payload)
	if err != nil {
		d.log.Warnf("Could not decode report: %v", err)
	}

	now := time.Now()
	for _, m := range msgs {
		r := Report{Message: m, Received: now}
		d.log.Debugf("Received %v", r)
		select {
		case d.reports <- r:
		default:
			d.log.Warnf("Dropped report %v", r)
		}
	}
}

// Close stops the read loop and closes the port
func (d *Device) Close() error {
	var err error
	d.closeOnce.Do(func() {
		close(d.done)
		err = d.port.Close()
		<-d.stopped
	})
	return err
}
