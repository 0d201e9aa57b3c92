package command

import (
	"errors"
	"testing"

	"github.com/Speshl/gorrc_rover/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type channelWrite struct {
	channel int
	off     int
}

type recordingSetter struct {
	writes []channelWrite
	err    error
}

func (r *recordingSetter) SetChannel(chn, on, off int) error {
	if r.err != nil {
		return r.err
	}
	r.writes = append(r.writes, channelWrite{channel: chn, off: off})
	return nil
}

func TestSetWheel(t *testing.T) {
	wheel := WheelMap[0]

	tests := []struct {
		name string
		duty int
		want []channelWrite
	}{
		{
			name: "forward",
			duty: 1000,
			want: []channelWrite{{channel: wheel.reverseChannel, off: 0}, {channel: wheel.forwardChannel, off: 1000}},
		},
		{
			name: "reverse",
			duty: -1500,
			want: []channelWrite{{channel: wheel.reverseChannel, off: 1500}, {channel: wheel.forwardChannel, off: 0}},
		},
		{
			name: "brake",
			duty: 0,
			want: []channelWrite{{channel: wheel.reverseChannel, off: MaxDuty}, {channel: wheel.forwardChannel, off: MaxDuty}},
		},
		{
			name: "clamped",
			duty: 9000,
			want: []channelWrite{{channel: wheel.reverseChannel, off: 0}, {channel: wheel.forwardChannel, off: MaxDuty}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setter := &recordingSetter{}
			require.NoError(t, setWheel(setter, wheel, tt.duty))
			assert.Equal(t, tt.want, setter.writes)
		})
	}
}

func TestSetAllOrder(t *testing.T) {
	setter := &recordingSetter{}
	driver := &CommandDriver{driver: setter}

	require.NoError(t, driver.SetWheelPower(-1500, 2000, -1500, 2000))
	require.Len(t, setter.writes, 8)

	// left wheels reverse, right wheels forward
	assert.Equal(t, channelWrite{channel: 0, off: 1500}, setter.writes[0])
	assert.Equal(t, channelWrite{channel: 3, off: 1500}, setter.writes[2])
	assert.Equal(t, channelWrite{channel: 7, off: 2000}, setter.writes[5])
	assert.Equal(t, channelWrite{channel: 5, off: 2000}, setter.writes[7])
}

func TestSetWheelPowerErrors(t *testing.T) {
	driver := NewCommand(config.MotorConfig{})
	assert.Error(t, driver.SetWheelPower(1, 1, 1, 1))

	driver.driver = &recordingSetter{err: errors.New("bus gone")}
	err := driver.SetWheelPower(1, 1, 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "front_left")
}
