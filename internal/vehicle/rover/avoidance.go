package rover

import (
	"time"

	"github.com/Speshl/gorrc_rover/internal/config"
	"github.com/Speshl/gorrc_rover/internal/vehicle"
	log "github.com/sirupsen/logrus"
)

type AvoidanceState int

const (
	Cruising AvoidanceState = iota
	Alerting
	Backing
	Pivoting
)

func (s AvoidanceState) String() string {
	switch s {
	case Cruising:
		return "cruising"
	case Alerting:
		return "alerting"
	case Backing:
		return "backing"
	case Pivoting:
		return "pivoting"
	default:
		return "unknown"
	}
}

// ObstacleAvoidance creeps forward until something is close, then runs a
// fixed escape: alert, back up, pivot right. The escape path is never
// checked for obstacles.
type ObstacleAvoidance struct {
	cfg      config.RoverConfig
	movement *MovementController
	alerter  vehicle.AlerterIFace

	state      AvoidanceState
	alertStart time.Time
}

func NewObstacleAvoidance(cfg config.RoverConfig, movement *MovementController, alerter vehicle.AlerterIFace) *ObstacleAvoidance {
	return &ObstacleAvoidance{
		cfg:      cfg,
		movement: movement,
		alerter:  alerter,
		state:    Cruising,
	}
}

func (o *ObstacleAvoidance) State() AvoidanceState {
	return o.state
}

func (o *ObstacleAvoidance) Reset() {
	if o.state != Cruising {
		o.transition(Cruising)
	}
}

// Step advances the machine at most one transition. distanceOK is false
// when the last ranging sample failed.
func (o *ObstacleAvoidance) Step(now time.Time, distance float64, distanceOK bool, tickPeriod time.Duration) {
	switch o.state {
	case Cruising:
		if !distanceOK {
			log.Println("no distance reading, skipping autonomous step")
			return
		}
		if distance < o.cfg.ObstacleThresholdCm {
			log.Printf("obstacle at %.1fcm", distance)
			o.alerter.Alert(o.cfg.AlertDuration)
			o.alertStart = now
			o.transition(Alerting)
			return
		}
		o.issue(vehicle.Forward, tickPeriod)

	case Alerting:
		if now.Sub(o.alertStart) < o.cfg.AlertDuration {
			return
		}
		o.issue(vehicle.Backward, o.cfg.BackDuration)
		o.transition(Backing)

	case Backing:
		if o.movement.IsMoving() {
			return
		}
		o.issue(vehicle.Right, o.cfg.PivotDuration)
		o.transition(Pivoting)

	case Pivoting:
		if o.movement.IsMoving() {
			return
		}
		o.transition(Cruising)
	}
}

func (o *ObstacleAvoidance) issue(direction vehicle.Direction, duration time.Duration) {
	err := o.movement.IssueMove(direction, duration, 0)
	if err != nil {
		log.Printf("autonomous move %s failed - %s", direction, err.Error())
		o.movement.Stop()
	}
}

func (o *ObstacleAvoidance) transition(next AvoidanceState) {
	log.Printf("avoidance %s -> %s", o.state, next)
	o.state = next
}
