package rover

import (
	"context"

	"github.com/Speshl/gorrc_rover/internal/models"
	log "github.com/sirupsen/logrus"
)

type reading struct {
	distance    float64
	distanceErr error
	volts       float64
	voltsErr    error
}

// Dispatch runs one client command and returns the state after it, with
// fresh ranging and battery telemetry.
func (r *Rover) Dispatch(ctx context.Context, raw string) models.Snapshot {
	cmd := ParseCommand(raw)
	log.Debugf("dispatching %s command %q", cmd.Kind, cmd.Raw)

	r.lock.Lock()
	r.apply(cmd)
	r.lock.Unlock()

	return r.Refresh(ctx)
}

// Refresh samples the sensors and returns the resulting state without
// running a command
func (r *Rover) Refresh(ctx context.Context) models.Snapshot {
	reading := r.sample(ctx)

	r.lock.Lock()
	defer r.lock.Unlock()
	r.applyReading(reading)
	return r.state.Snapshot()
}

// apply expects the lock to be held
func (r *Rover) apply(cmd Command) {
	switch cmd.Kind {
	case CommandUpdate:
		return

	case CommandMove:
		duration := cmd.Duration
		if duration == 0 {
			duration = r.defaultDuration
		}
		err := r.movement.IssueMove(cmd.Direction, duration, cmd.DistanceHint)
		if err != nil {
			log.Printf("rejected move %q - %s, stopping", cmd.Raw, err.Error())
			r.movement.Stop()
			break
		}
		if cmd.Duration != 0 {
			r.defaultDuration = cmd.Duration
		}

	case CommandToggleAutonomous:
		r.state.AutonomousMode = !r.state.AutonomousMode
		log.Printf("autonomous mode: %t", r.state.AutonomousMode)
		if !r.state.AutonomousMode {
			r.avoidance.Reset()
		}

	default:
		log.Printf("stopping on command %q - %s", cmd.Raw, cmd.Err)
		r.movement.Stop()
	}

	echo := EchoPrefix + cmd.Raw
	if echo == r.state.LastCommandEcho {
		return
	}
	r.state.LastCommandEcho = echo
	if cmd.HasMessage && cmd.Message != "" {
		log.Printf("playing message %q", cmd.Message)
		r.alerter.PlayMorse(cmd.Message)
	}
}

// sample reads the sensors, it must not be called with the lock held
func (r *Rover) sample(ctx context.Context) reading {
	var result reading
	result.distance, result.distanceErr = r.ranger.Distance(ctx)
	if result.distanceErr != nil {
		log.Printf("failed reading distance - %s", result.distanceErr.Error())
	}

	channel := r.cfg.ADCChannel
	result.volts, result.voltsErr = r.adc.ReadChannel(channel)
	if result.voltsErr != nil {
		log.Printf("failed reading battery - %s", result.voltsErr.Error())
	}
	return result
}

// applyReading expects the lock to be held
func (r *Rover) applyReading(reading reading) {
	if reading.distanceErr == nil {
		r.state.RangingDistance = reading.distance
	}
	if reading.voltsErr != nil {
		return
	}

	scale := r.cfg.BatteryScale
	if scale <= 0 {
		scale = 1
	}
	voltage := reading.volts * scale
	r.state.FilteredVoltage, r.state.BatteryPercent = r.battery.Update(voltage, r.movement.IsMoving())
	log.Debugf("battery raw: %.2fV filtered: %.2fV percent: %.1f%% moving: %t",
		voltage, r.state.FilteredVoltage, r.state.BatteryPercent, r.movement.IsMoving())
}
