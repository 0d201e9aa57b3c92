package rover

import (
	"sync"
	"testing"
	"time"

	cmdfake "github.com/Speshl/gorrc_rover/internal/command/fake"
	"github.com/Speshl/gorrc_rover/internal/config"
	sensorfake "github.com/Speshl/gorrc_rover/internal/sensor/fake"
	"github.com/Speshl/gorrc_rover/internal/vehicle"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

type recordingAlerter struct {
	lock     sync.Mutex
	alerts   []time.Duration
	messages []string
}

func (a *recordingAlerter) Alert(d time.Duration) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.alerts = append(a.alerts, d)
}

func (a *recordingAlerter) PlayMorse(message string) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.messages = append(a.messages, message)
}

func (a *recordingAlerter) Alerts() []time.Duration {
	a.lock.Lock()
	defer a.lock.Unlock()
	return append([]time.Duration(nil), a.alerts...)
}

func (a *recordingAlerter) Messages() []string {
	a.lock.Lock()
	defer a.lock.Unlock()
	return append([]string(nil), a.messages...)
}

func testRoverConfig() config.RoverConfig {
	return config.RoverConfig{
		MovementTick:        config.DefaultMovementTick,
		ControlTick:         config.DefaultControlTick,
		MoveDuration:        config.DefaultMoveDuration,
		ObstacleThresholdCm: config.DefaultObstacleThresholdCm,
		AlertDuration:       config.DefaultAlertDuration,
		BackDuration:        config.DefaultBackDuration,
		PivotDuration:       config.DefaultPivotDuration,
		BatteryWindow:       config.DefaultBatteryWindow,
		BatteryHysteresis:   config.DefaultBatteryHysteresis,
		ADCChannel:          config.DefaultADCChannel,
		BatteryScale:        config.DefaultBatteryScale,
	}
}

type harness struct {
	rover   *Rover
	mock    *clock.Mock
	motor   *cmdfake.CommandDriver
	ranger  *sensorfake.Ranger
	adc     *sensorfake.ADC
	alerter *recordingAlerter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		mock:    clock.NewMock(),
		motor:   cmdfake.NewCommand(),
		ranger:  sensorfake.NewRanger(100),
		adc:     sensorfake.NewADC(),
		alerter: &recordingAlerter{},
	}
	h.adc.Set(config.DefaultADCChannel, 2.6)
	h.rover = NewRover(testRoverConfig(), h.motor, h.ranger, h.adc, h.alerter, h.mock)
	require.NoError(t, h.rover.Init())
	return h
}

// moves returns the non zero wheel settings sent to the motor driver
func (h *harness) moves() []vehicle.WheelPower {
	moves := make([]vehicle.WheelPower, 0)
	for _, power := range h.motor.History() {
		if power != (vehicle.WheelPower{}) {
			moves = append(moves, power)
		}
	}
	return moves
}

func (h *harness) advance(d time.Duration) {
	h.mock.Add(d)
	h.rover.TickMovement()
}
