package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDirection(t *testing.T) {
	for _, value := range []string{"Forward", "Backward", "Left", "Right"} {
		direction, ok := ParseDirection(value)
		assert.True(t, ok)
		assert.Equal(t, Direction(value), direction)
	}

	for _, value := range []string{"Stopped", "forward", "", "Up"} {
		direction, ok := ParseDirection(value)
		assert.False(t, ok, value)
		assert.Equal(t, Stopped, direction)
	}
}

func TestDirectionKinds(t *testing.T) {
	assert.True(t, Forward.IsLinear())
	assert.True(t, Backward.IsLinear())
	assert.False(t, Left.IsLinear())
	assert.True(t, Right.IsTurn())
	assert.False(t, Stopped.IsTurn())
	assert.False(t, Stopped.IsLinear())
}

func TestMapToRange(t *testing.T) {
	assert.InDelta(t, 1.65, MapToRange(127.5, 0, 255, 0, 3.3), 0.0001)
	assert.Equal(t, 3.3, MapToRange(300, 0, 255, 0, 3.3))
	assert.Equal(t, 0.0, MapToRange(-1, 0, 255, 0, 3.3))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 4095, Clamp(5000, -4095, 4095))
	assert.Equal(t, -4095, Clamp(-5000, -4095, 4095))
	assert.Equal(t, 12, Clamp(12, -4095, 4095))
}
