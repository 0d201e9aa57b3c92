// Package adc reads the ads7830 8 channel adc on the motor board over i2c.
package adc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Speshl/gorrc_rover/internal/config"
	"github.com/Speshl/gorrc_rover/internal/vehicle"
	"github.com/googolgl/go-i2c"
	log "github.com/sirupsen/logrus"
)

const (
	CommandBase = 0x84
	MaxChannel  = 7
	MaxRaw      = 255.0
	StableReads = 5
)

var (
	ErrNotInitialized = errors.New("adc not initialized")
	ErrBadChannel     = errors.New("adc channel out of range")
)

type registerReader interface {
	ReadRegU8(reg byte) (byte, error)
}

type ADC struct {
	cfg    config.SensorConfig
	lock   sync.Mutex
	bus    *i2c.Options
	reader registerReader
}

func NewADC(cfg config.SensorConfig) *ADC {
	return &ADC{
		cfg: cfg,
	}
}

func (a *ADC) Init() error {
	a.lock.Lock()
	defer a.lock.Unlock()

	bus, err := i2c.New(a.cfg.ADCAddress, a.cfg.ADCI2CDevice)
	if err != nil {
		return fmt.Errorf("error starting adc i2c with address - %w", err)
	}
	a.bus = bus
	a.reader = bus
	log.Printf("adc ready on %s @ 0x%x", a.cfg.ADCI2CDevice, a.cfg.ADCAddress)
	return nil
}

func (a *ADC) Stop() error {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.reader = nil
	if a.bus == nil {
		return nil
	}
	err := a.bus.Close()
	a.bus = nil
	if err != nil {
		return fmt.Errorf("failed closing adc i2c bus: %w", err)
	}
	return nil
}

// ReadChannel returns the voltage seen on the adc pin
func (a *ADC) ReadChannel(channel int) (float64, error) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.reader == nil {
		return 0, ErrNotInitialized
	}
	if channel < 0 || channel > MaxChannel {
		return 0, fmt.Errorf("%w: %d", ErrBadChannel, channel)
	}

	raw, err := a.stableRead(channelCommand(channel))
	if err != nil {
		return 0, fmt.Errorf("failed reading adc channel %d: %w", channel, err)
	}
	return vehicle.MapToRange(float64(raw), 0, MaxRaw, 0, a.cfg.ADCReference), nil
}

// stableRead reads until two reads in a row agree, the converter settles
// after a channel switch
func (a *ADC) stableRead(command byte) (byte, error) {
	last, err := a.reader.ReadRegU8(command)
	if err != nil {
		return 0, err
	}
	for i := 0; i < StableReads; i++ {
		value, err := a.reader.ReadRegU8(command)
		if err != nil {
			return 0, err
		}
		if value == last {
			return value, nil
		}
		last = value
	}
	return last, nil
}

// channelCommand builds the single ended command byte, the ads7830 interleaves
// odd and even channels
func channelCommand(channel int) byte {
	return byte(CommandBase | ((((channel << 2) | (channel >> 1)) & 0x07) << 4))
}
