package rover

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Speshl/gorrc_rover/internal/vehicle"
)

var ErrMalformedCommand = errors.New("malformed command")

type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandMove
	CommandToggleAutonomous
	CommandUpdate
)

func (k CommandKind) String() string {
	switch k {
	case CommandMove:
		return "move"
	case CommandToggleAutonomous:
		return "toggle_autonomous"
	case CommandUpdate:
		return "update"
	default:
		return "unknown"
	}
}

type Command struct {
	Raw  string
	Kind CommandKind

	Direction vehicle.Direction
	// zero means use the current default duration
	Duration     time.Duration
	DistanceHint float64

	Message    string
	HasMessage bool

	// set when Kind is CommandUnknown
	Err error
}

func ParseCommand(raw string) Command {
	raw = strings.TrimSpace(raw)
	cmd := Command{
		Raw:  raw,
		Kind: CommandUnknown,
	}

	if _, message, found := strings.Cut(raw, MessageMarker); found {
		cmd.Message = strings.TrimSpace(message)
		cmd.HasMessage = true
	}

	if direction, ok := KeyMoves[raw]; ok {
		cmd.Kind = CommandMove
		cmd.Direction = direction
		return cmd
	}

	switch {
	case raw == KeyToggleAutonomous:
		cmd.Kind = CommandToggleAutonomous
	case raw == UpdateCommand:
		cmd.Kind = CommandUpdate
	case strings.HasPrefix(raw, MovePrefix):
		err := parseMove(&cmd)
		if err != nil {
			cmd.Err = err
			return cmd
		}
		cmd.Kind = CommandMove
	default:
		cmd.Err = fmt.Errorf("%w: unrecognized %q", ErrMalformedCommand, raw)
	}
	return cmd
}

// parseMove reads MOVE:<direction>:<seconds>:<distance>
func parseMove(cmd *Command) error {
	parts := strings.Split(cmd.Raw, ":")
	if len(parts) != 4 {
		return fmt.Errorf("%w: move wants 4 fields, got %d", ErrMalformedCommand, len(parts))
	}

	direction, ok := vehicle.ParseDirection(parts[1])
	if !ok {
		return fmt.Errorf("%w: %w: %q", ErrMalformedCommand, ErrInvalidDirection, parts[1])
	}

	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return fmt.Errorf("%w: bad duration %q: %w", ErrMalformedCommand, parts[2], err)
	}
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds*float64(time.Second) >= math.MaxInt64 {
		return fmt.Errorf("%w: %w: %q", ErrMalformedCommand, ErrInvalidDuration, parts[2])
	}
	duration := time.Duration(seconds * float64(time.Second))
	if duration <= 0 {
		return fmt.Errorf("%w: %w: %q rounds to zero", ErrMalformedCommand, ErrInvalidDuration, parts[2])
	}

	distance, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return fmt.Errorf("%w: bad distance %q: %w", ErrMalformedCommand, parts[3], err)
	}

	cmd.Direction = direction
	cmd.Duration = duration
	cmd.DistanceHint = distance
	return nil
}
