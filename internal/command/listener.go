// Package command implements the line-oriented configuration channel. The
// only supported command updates the remote-endpoint identifier used by the
// telemetry sink.
package command

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Command is a parsed configuration command
type Command struct {
	Name  string
	Value string
}

// CmdSetScriptID replaces the persisted remote-endpoint identifier
const CmdSetScriptID = "SET_SCRIPT_ID"

// ParseLine parses one command line of the form NAME:VALUE
func ParseLine(line string) (Command, error) {
	line = strings.TrimSpace(line)
	name, value, found := strings.Cut(line, ":")
	if !found {
		return Command{}, fmt.Errorf("malformed command %q", line)
	}
	if name != CmdSetScriptID {
		return Command{}, fmt.Errorf("unknown command %q", name)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return Command{}, fmt.Errorf("command %s requires a value", name)
	}
	return Command{Name: name, Value: value}, nil
}

// Listener reads command lines from a stream (serial port, stdin) in the
// background and hands them to the control loop through a non-blocking Poll.
// The loop stays the single logical thread of control: the goroutine here only
// feeds the channel, it never touches controller state.
type Listener struct {
	lines  chan Command
	logger zerolog.Logger
}

// NewListener starts reading commands from r. Reading stops when r reaches
// EOF or fails; the listener itself never terminates the process.
func NewListener(r io.Reader, logger zerolog.Logger) *Listener {
	l := &Listener{
		lines:  make(chan Command, 4),
		logger: logger,
	}

	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			cmd, err := ParseLine(line)
			if err != nil {
				l.logger.Warn().Err(err).Msg("Ignoring command line")
				continue
			}
			select {
			case l.lines <- cmd:
			default:
				l.logger.Warn().Str("command", cmd.Name).Msg("Command queue full, dropping")
			}
		}
		if err := scanner.Err(); err != nil {
			l.logger.Warn().Err(err).Msg("Command stream closed")
		}
	}()

	return l
}

// Poll returns one pending command without blocking
func (l *Listener) Poll() (Command, bool) {
	select {
	case cmd := <-l.lines:
		return cmd, true
	default:
		return Command{}, false
	}
}
