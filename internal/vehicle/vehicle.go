package vehicle

import (
	"context"
	"time"
)

type Direction string

const (
	Stopped  Direction = "Stopped"
	Forward  Direction = "Forward"
	Backward Direction = "Backward"
	Left     Direction = "Left"
	Right    Direction = "Right"
)

// ParseDirection only accepts the four move directions, Stopped is not a move.
func ParseDirection(value string) (Direction, bool) {
	switch Direction(value) {
	case Forward, Backward, Left, Right:
		return Direction(value), true
	default:
		return Stopped, false
	}
}

func (d Direction) IsLinear() bool {
	return d == Forward || d == Backward
}

func (d Direction) IsTurn() bool {
	return d == Left || d == Right
}

// WheelPower holds signed duty values per wheel, positive drives the wheel forward
type WheelPower struct {
	FrontLeft  int
	FrontRight int
	BackLeft   int
	BackRight  int
}

type MotorDriverIFace interface {
	Init() error
	SetWheelPower(fl, fr, bl, br int) error
	Stop() error
}

type RangerIFace interface {
	Init() error
	Distance(context.Context) (float64, error)
	Stop() error
}

type ADCIFace interface {
	Init() error
	ReadChannel(channel int) (float64, error)
	Stop() error
}

// AlerterIFace must never block the caller, patterns are played in the background
type AlerterIFace interface {
	Alert(time.Duration)
	PlayMorse(string)
}

func MapToRange(value, min, max, minReturn, maxReturn float64) float64 {
	mappedValue := (maxReturn-minReturn)*(value-min)/(max-min) + minReturn

	if mappedValue > maxReturn {
		return maxReturn
	} else if mappedValue < minReturn {
		return minReturn
	} else {
		return mappedValue
	}
}

func Clamp(value, min, max int) int {
	if value > max {
		return max
	} else if value < min {
		return min
	}
	return value
}
