package protocol

import "errors"

// ErrUnknownCommand is matched by every UnknownCommandError
var ErrUnknownCommand = errors.New("unknown command")

// UnknownCommandError reports a message ID with no registered handler
type UnknownCommandError struct {
	ID uint16
}

func (e *UnknownCommandError) Error() string {
	return "unknown command " + utoa(uint32(e.ID))
}

// Is makes errors.Is(err, ErrUnknownCommand) succeed
func (e *UnknownCommandError) Is(target error) bool {
	return target == ErrUnknownCommand
}

// CommandRegistry maps the fixed host command IDs to handlers
type CommandRegistry struct {
	handlers map[uint16]CommandHandler
}

// NewCommandRegistry creates an empty registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		handlers: make(map[uint16]CommandHandler),
	}
}

// Register binds a handler to a command ID, replacing any previous one
func (r *CommandRegistry) Register(id uint16, handler CommandHandler) {
	r.handlers[id] = handler
}

// Lookup returns the handler for id
func (r *CommandRegistry) Lookup(id uint16) (CommandHandler, bool) {
	h, ok := r.handlers[id]
	return h, ok
}

// Count returns the number of registered commands
func (r *CommandRegistry) Count() int {
	return len(r.handlers)
}

// Dispatch runs the handler for id. It has the CommandHandler signature so
// a registry can be handed straight to NewTransport.
func (r *CommandRegistry) Dispatch(id uint16, data *[]byte) error {
	h, ok := r.handlers[id]
	if !ok {
		return &UnknownCommandError{ID: id}
	}
	return h(id, data)
}

func utoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
