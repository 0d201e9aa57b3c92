package rover

import (
	"errors"
	"testing"
	"time"

	"github.com/Speshl/gorrc_rover/internal/vehicle"
	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		kind      CommandKind
		direction vehicle.Direction
		duration  time.Duration
		hint      float64
		message   string
		err       error
	}{
		{name: "forward key", raw: "87", kind: CommandMove, direction: vehicle.Forward},
		{name: "backward key", raw: "83", kind: CommandMove, direction: vehicle.Backward},
		{name: "left key", raw: "65", kind: CommandMove, direction: vehicle.Left},
		{name: "right key", raw: "68", kind: CommandMove, direction: vehicle.Right},
		{name: "trailing newline", raw: "87\n", kind: CommandMove, direction: vehicle.Forward},
		{name: "toggle", raw: "32", kind: CommandToggleAutonomous},
		{name: "update", raw: "UPDATE", kind: CommandUpdate},
		{
			name:      "parameterized move",
			raw:       "MOVE:Forward:2.0:1.0",
			kind:      CommandMove,
			direction: vehicle.Forward,
			duration:  2 * time.Second,
			hint:      1.0,
		},
		{
			name:      "fractional turn",
			raw:       "MOVE:Left:0.25:0",
			kind:      CommandMove,
			direction: vehicle.Left,
			duration:  250 * time.Millisecond,
		},
		{name: "unknown direction", raw: "MOVE:Up:1:1", err: ErrInvalidDirection},
		{name: "stopped is not a move", raw: "MOVE:Stopped:1:1", err: ErrInvalidDirection},
		{name: "zero duration", raw: "MOVE:Forward:0:1", err: ErrInvalidDuration},
		{name: "negative duration", raw: "MOVE:Forward:-2:1", err: ErrInvalidDuration},
		{name: "nan duration", raw: "MOVE:Forward:NaN:1", err: ErrInvalidDuration},
		{name: "infinite duration", raw: "MOVE:Forward:Inf:1", err: ErrInvalidDuration},
		{name: "duration overflows", raw: "MOVE:Forward:1e10:0", err: ErrInvalidDuration},
		{name: "duration rounds to zero", raw: "MOVE:Forward:1e-12:0", err: ErrInvalidDuration},
		{name: "bad duration", raw: "MOVE:Forward:soon:1", err: ErrMalformedCommand},
		{name: "bad distance", raw: "MOVE:Forward:1:far", err: ErrMalformedCommand},
		{name: "too few fields", raw: "MOVE:Forward:1", err: ErrMalformedCommand},
		{name: "too many fields", raw: "MOVE:Forward:1:1:1", err: ErrMalformedCommand},
		{name: "empty", raw: "", err: ErrMalformedCommand},
		{name: "lowercase update", raw: "update", err: ErrMalformedCommand},
		{name: "message only", raw: "MESSAGE: hello world ", message: "hello world", err: ErrMalformedCommand},
		{name: "message after text", raw: "say MESSAGE:sos", message: "sos", err: ErrMalformedCommand},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := ParseCommand(tc.raw)

			if tc.err != nil {
				assert.Equal(t, CommandUnknown, cmd.Kind)
				assert.True(t, errors.Is(cmd.Err, tc.err), "got %v", cmd.Err)
				assert.True(t, errors.Is(cmd.Err, ErrMalformedCommand))
			} else {
				assert.NoError(t, cmd.Err)
				assert.Equal(t, tc.kind, cmd.Kind)
			}

			assert.Equal(t, tc.direction, cmd.Direction)
			assert.Equal(t, tc.duration, cmd.Duration)
			assert.Equal(t, tc.hint, cmd.DistanceHint)
			assert.Equal(t, tc.message, cmd.Message)
			assert.Equal(t, tc.message != "", cmd.HasMessage)
		})
	}
}
