package rover

import (
	"fmt"

	"github.com/Speshl/gorrc_rover/internal/models"
	"github.com/Speshl/gorrc_rover/internal/vehicle"
)

// VehicleState is owned by the Rover and only touched while holding its lock
type VehicleState struct {
	Direction vehicle.Direction
	Speed     float64

	// dead reckoning, only written when a move completes
	DistanceTraveled float64
	TurnAngle        float64

	RangingDistance float64
	AutonomousMode  bool
	LastCommandEcho string

	FilteredVoltage float64
	BatteryPercent  float64
}

func NewVehicleState() VehicleState {
	return VehicleState{
		Direction: vehicle.Stopped,
	}
}

func (s VehicleState) Snapshot() models.Snapshot {
	return models.Snapshot{
		Direction:      string(s.Direction),
		Speed:          s.Speed,
		Distance:       s.DistanceTraveled,
		Ultrasonic:     s.RangingDistance,
		Bluetooth:      s.LastCommandEcho,
		AutonomousMode: s.AutonomousMode,
		TurnAngle:      s.TurnAngle,
		Voltage:        fmt.Sprintf("%.2fV", s.FilteredVoltage),
		Battery:        fmt.Sprintf("%.1f%%", s.BatteryPercent),
	}
}
