package rover

import (
	"time"

	"github.com/Speshl/gorrc_rover/internal/vehicle"
)

const (
	//Key Maps
	KeyForward          = "87"
	KeyBackward         = "83"
	KeyLeft             = "65"
	KeyRight            = "68"
	KeyToggleAutonomous = "32"

	UpdateCommand = "UPDATE"
	MovePrefix    = "MOVE:"
	MessageMarker = "MESSAGE:"
	EchoPrefix    = "Command received: "

	ForwardSpeed  = 1.0
	BackwardSpeed = -1.0
	TurnSpeed     = 0.5

	// degrees per second, not measured
	TurnRate = 45.0

	FallbackMoveDuration = 1 * time.Second
)

// Profiles are the duty values per wheel for each move direction
var Profiles = map[vehicle.Direction]vehicle.WheelPower{
	vehicle.Forward: {
		FrontLeft:  1000,
		FrontRight: 1000,
		BackLeft:   1000,
		BackRight:  1000,
	},
	vehicle.Backward: {
		FrontLeft:  -1000,
		FrontRight: -1000,
		BackLeft:   -1000,
		BackRight:  -1000,
	},
	vehicle.Left: {
		FrontLeft:  -1500,
		FrontRight: 2000,
		BackLeft:   -1500,
		BackRight:  2000,
	},
	vehicle.Right: {
		FrontLeft:  2000,
		FrontRight: -1500,
		BackLeft:   2000,
		BackRight:  -1500,
	},
}

var Speeds = map[vehicle.Direction]float64{
	vehicle.Stopped:  0.0,
	vehicle.Forward:  ForwardSpeed,
	vehicle.Backward: BackwardSpeed,
	vehicle.Left:     TurnSpeed,
	vehicle.Right:    TurnSpeed,
}

var KeyMoves = map[string]vehicle.Direction{
	KeyForward:  vehicle.Forward,
	KeyBackward: vehicle.Backward,
	KeyLeft:     vehicle.Left,
	KeyRight:    vehicle.Right,
}
