// Package ultrasonic reads an hc-sr04 style ranging sensor wired to the pi gpio header.
package ultrasonic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Speshl/gorrc_rover/internal/config"
	"github.com/Speshl/gorrc_rover/internal/gpio"
	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
)

const (
	TriggerPulse = 10 * time.Microsecond
	SampleGap    = 10 * time.Millisecond

	// speed of sound in cm per second
	SpeedOfSound = 34300.0
)

var (
	ErrNotInitialized = errors.New("ultrasonic sensor not initialized")
	ErrEchoTimeout    = errors.New("timed out waiting for echo")
	ErrNoSamples      = errors.New("no valid distance samples")
)

type triggerPin interface {
	High()
	Low()
}

type echoPin interface {
	IsHigh() bool
}

type Sensor struct {
	cfg     config.SensorConfig
	lock    sync.Mutex
	clock   clock.Clock
	trigger triggerPin
	echo    echoPin
	opened  bool
}

func NewSensor(cfg config.SensorConfig) *Sensor {
	return &Sensor{
		cfg:   cfg,
		clock: clock.New(),
	}
}

func (s *Sensor) Init() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	err := gpio.Open()
	if err != nil {
		return fmt.Errorf("error opening gpio for ultrasonic sensor - %w", err)
	}
	s.opened = true
	s.trigger = gpio.NewOutputPin(s.cfg.TriggerPin)
	s.echo = gpio.NewInputPin(s.cfg.EchoPin)
	log.Printf("ultrasonic sensor ready - trigger: %d echo: %d", s.cfg.TriggerPin, s.cfg.EchoPin)
	return nil
}

func (s *Sensor) Stop() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.trigger = nil
	s.echo = nil
	if !s.opened {
		return nil
	}
	s.opened = false
	return gpio.Close()
}

// Distance returns the median of several samples in cm, failed samples are dropped
func (s *Sensor) Distance(ctx context.Context) (float64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.trigger == nil || s.echo == nil {
		return 0, ErrNotInitialized
	}

	count := s.cfg.RangingSamples
	if count < 1 {
		count = 1
	}

	samples := make([]float64, 0, count)
	var lastErr error
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if i > 0 {
			time.Sleep(SampleGap)
		}

		distance, err := s.measure()
		if err != nil {
			lastErr = err
			continue
		}
		samples = append(samples, distance)
	}

	if len(samples) == 0 {
		return 0, fmt.Errorf("%w: %w", ErrNoSamples, lastErr)
	}
	return median(samples), nil
}

func (s *Sensor) measure() (float64, error) {
	s.trigger.High()
	time.Sleep(TriggerPulse)
	s.trigger.Low()

	start := s.clock.Now()
	for !s.echo.IsHigh() {
		if s.clock.Since(start) > s.cfg.EchoTimeout {
			return 0, fmt.Errorf("%w: pulse never started", ErrEchoTimeout)
		}
	}

	pulseStart := s.clock.Now()
	for s.echo.IsHigh() {
		if s.clock.Since(pulseStart) > s.cfg.EchoTimeout {
			return 0, fmt.Errorf("%w: pulse never ended", ErrEchoTimeout)
		}
	}
	pulse := s.clock.Since(pulseStart)

	distance := pulse.Seconds() * SpeedOfSound / 2
	if s.cfg.MaxDistanceCm > 0 && distance > s.cfg.MaxDistanceCm {
		distance = s.cfg.MaxDistanceCm
	}
	return distance, nil
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
