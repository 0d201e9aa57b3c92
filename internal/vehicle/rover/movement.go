package rover

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Speshl/gorrc_rover/internal/vehicle"
	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidDirection = errors.New("invalid move direction")
	ErrInvalidDuration  = errors.New("move duration must be positive")
)

type Move struct {
	Direction    vehicle.Direction
	Speed        float64
	Start        time.Time
	Duration     time.Duration
	DistanceHint float64
}

func (m Move) Ends() time.Time {
	return m.Start.Add(m.Duration)
}

// MovementController runs timed moves and does the dead reckoning once they
// finish. It is not safe for concurrent use, the Rover serializes access.
type MovementController struct {
	motor vehicle.MotorDriverIFace
	clock clock.Clock
	state *VehicleState

	active *Move

	// moves cut short by a newer move or a stop, credited on the next tick
	interrupted []Move
}

func NewMovementController(motor vehicle.MotorDriverIFace, clk clock.Clock, state *VehicleState) *MovementController {
	return &MovementController{
		motor: motor,
		clock: clk,
		state: state,
	}
}

func (m *MovementController) IsMoving() bool {
	return m.active != nil
}

func (m *MovementController) Active() (Move, bool) {
	if m.active == nil {
		return Move{}, false
	}
	return *m.active, true
}

// IssueMove drives in a direction for duration. A move already running is
// superseded. The distance hint is kept on the move record only.
func (m *MovementController) IssueMove(direction vehicle.Direction, duration time.Duration, distanceHint float64) error {
	profile, ok := Profiles[direction]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}
	if duration <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDuration, duration)
	}

	now := m.clock.Now()
	m.interrupt(now)

	err := m.motor.SetWheelPower(profile.FrontLeft, profile.FrontRight, profile.BackLeft, profile.BackRight)
	if err != nil {
		log.Printf("failed setting wheel power for %s - %s", direction, err.Error())
	}

	m.active = &Move{
		Direction:    direction,
		Speed:        Speeds[direction],
		Start:        now,
		Duration:     duration,
		DistanceHint: distanceHint,
	}
	m.state.Direction = direction
	m.state.Speed = Speeds[direction]
	log.Debugf("moving %s for %s", direction, duration)
	return nil
}

// Stop is safe to call when already stopped
func (m *MovementController) Stop() {
	m.interrupt(m.clock.Now())
	m.halt()
}

// Tick finishes the active move once its time is up and credits finished
// moves to the accumulators. Returns true if the active move completed.
func (m *MovementController) Tick(now time.Time) bool {
	for i := range m.interrupted {
		m.integrate(m.interrupted[i])
	}
	m.interrupted = m.interrupted[:0]

	if m.active == nil {
		return false
	}
	if now.Sub(m.active.Start) < m.active.Duration {
		return false
	}

	finished := *m.active
	m.halt()
	m.integrate(finished)
	log.Debugf("finished moving %s", finished.Direction)
	return true
}

func (m *MovementController) interrupt(now time.Time) {
	if m.active == nil {
		return
	}
	cut := *m.active
	elapsed := now.Sub(cut.Start)
	if elapsed < cut.Duration {
		cut.Duration = elapsed
	}
	if cut.Duration > 0 {
		m.interrupted = append(m.interrupted, cut)
	}
	m.active = nil
}

func (m *MovementController) halt() {
	err := m.motor.SetWheelPower(0, 0, 0, 0)
	if err != nil {
		log.Printf("failed stopping wheels - %s", err.Error())
	}
	m.active = nil
	m.state.Direction = vehicle.Stopped
	m.state.Speed = 0.0
}

func (m *MovementController) integrate(move Move) {
	seconds := move.Duration.Seconds()
	switch {
	case move.Direction.IsLinear():
		m.state.DistanceTraveled += math.Abs(move.Speed) * seconds
	case move.Direction.IsTurn():
		sign := 1.0
		if move.Direction == vehicle.Left {
			sign = -1.0
		}
		m.state.TurnAngle += sign * TurnRate * seconds
	}
}
