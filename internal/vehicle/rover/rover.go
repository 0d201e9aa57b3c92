// Package rover is the control engine of the 4wd car. It owns the vehicle
// state and runs the movement and control loops next to command dispatch.
package rover

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Speshl/gorrc_rover/internal/battery"
	"github.com/Speshl/gorrc_rover/internal/config"
	"github.com/Speshl/gorrc_rover/internal/models"
	"github.com/Speshl/gorrc_rover/internal/vehicle"
	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

type Rover struct {
	cfg   config.RoverConfig
	clock clock.Clock

	motor   vehicle.MotorDriverIFace
	ranger  vehicle.RangerIFace
	adc     vehicle.ADCIFace
	alerter vehicle.AlerterIFace

	// guards everything below
	lock            sync.Mutex
	state           VehicleState
	movement        *MovementController
	avoidance       *ObstacleAvoidance
	battery         *battery.Estimator
	defaultDuration time.Duration
}

func NewRover(cfg config.RoverConfig, motor vehicle.MotorDriverIFace, ranger vehicle.RangerIFace, adc vehicle.ADCIFace, alerter vehicle.AlerterIFace, clk clock.Clock) *Rover {
	if clk == nil {
		clk = clock.New()
	}
	defaultDuration := cfg.MoveDuration
	if defaultDuration <= 0 {
		defaultDuration = FallbackMoveDuration
	}

	r := &Rover{
		cfg:             cfg,
		clock:           clk,
		motor:           motor,
		ranger:          ranger,
		adc:             adc,
		alerter:         alerter,
		state:           NewVehicleState(),
		battery:         battery.NewEstimator(cfg.BatteryWindow, cfg.BatteryHysteresis),
		defaultDuration: defaultDuration,
	}
	r.movement = NewMovementController(motor, clk, &r.state)
	r.avoidance = NewObstacleAvoidance(cfg, r.movement, alerter)
	return r
}

// Init brings up every driver. Failures are collected and returned but the
// drivers that did come up stay usable.
func (r *Rover) Init() error {
	log.Println("initializing rover")
	var errs error
	err := r.motor.Init()
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed initializing motor driver: %w", err))
	}
	err = r.ranger.Init()
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed initializing ranging sensor: %w", err))
	}
	err = r.adc.Init()
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed initializing adc: %w", err))
	}

	r.lock.Lock()
	r.movement.Stop()
	r.lock.Unlock()
	return errs
}

func (r *Rover) Stop() error {
	log.Println("stopping rover")
	r.lock.Lock()
	r.movement.Stop()
	r.lock.Unlock()

	return multierr.Combine(
		r.motor.Stop(),
		r.ranger.Stop(),
		r.adc.Stop(),
	)
}

func (r *Rover) Start(ctx context.Context) error {
	log.Println("starting rover")
	errGroup, errGroupCtx := errgroup.WithContext(ctx)

	defer func() {
		err := r.Stop()
		if err != nil {
			log.Printf("error stopping rover - %s", err.Error())
		}
	}()

	errGroup.Go(func() error {
		ticker := r.clock.Ticker(r.movementTick())
		defer ticker.Stop()
		for {
			select {
			case <-errGroupCtx.Done():
				log.Printf("stopping movement loop: %s", errGroupCtx.Err().Error())
				return nil
			case <-ticker.C:
				r.TickMovement()
			}
		}
	})

	errGroup.Go(func() error {
		ticker := r.clock.Ticker(r.controlTick())
		defer ticker.Stop()
		for {
			select {
			case <-errGroupCtx.Done():
				log.Printf("stopping control loop: %s", errGroupCtx.Err().Error())
				return nil
			case <-ticker.C:
				r.TickControl(errGroupCtx)
			}
		}
	})

	err := errGroup.Wait()
	if err != nil {
		return fmt.Errorf("rover error group closed: %w", err)
	}
	return nil
}

// TickMovement completes moves whose time is up
func (r *Rover) TickMovement() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.movement.Tick(r.clock.Now())
}

// TickControl refreshes telemetry and runs one autonomous step
func (r *Rover) TickControl(ctx context.Context) {
	reading := r.sample(ctx)

	r.lock.Lock()
	defer r.lock.Unlock()

	r.applyReading(reading)
	if !r.state.AutonomousMode {
		r.avoidance.Reset()
		return
	}
	r.avoidance.Step(r.clock.Now(), reading.distance, reading.distanceErr == nil, r.controlTick())
}

func (r *Rover) Snapshot() models.Snapshot {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.state.Snapshot()
}

func (r *Rover) AvoidanceState() AvoidanceState {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.avoidance.State()
}

func (r *Rover) movementTick() time.Duration {
	if r.cfg.MovementTick <= 0 {
		return config.DefaultMovementTick
	}
	return r.cfg.MovementTick
}

func (r *Rover) controlTick() time.Duration {
	if r.cfg.ControlTick <= 0 {
		return config.DefaultControlTick
	}
	return r.cfg.ControlTick
}
