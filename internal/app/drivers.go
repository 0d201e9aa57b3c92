package app

import (
	"io"

	"github.com/Speshl/gorrc_rover/internal/buzzer"
	cmdfake "github.com/Speshl/gorrc_rover/internal/command/fake"
	pca9685 "github.com/Speshl/gorrc_rover/internal/command/pca9685"
	"github.com/Speshl/gorrc_rover/internal/config"
	"github.com/Speshl/gorrc_rover/internal/sensor/adc"
	sensorfake "github.com/Speshl/gorrc_rover/internal/sensor/fake"
	"github.com/Speshl/gorrc_rover/internal/sensor/ultrasonic"
	"github.com/Speshl/gorrc_rover/internal/vehicle"
	log "github.com/sirupsen/logrus"
)

const (
	DriverFake    = "fake"
	DriverPi      = "pi"
	DriverPCA9685 = "pca9685"
)

type buzzerPin interface {
	buzzer.PinIFace
	io.Closer
}

func newMotorDriver(cfg config.MotorConfig) vehicle.MotorDriverIFace {
	switch cfg.MotorDriver {
	case DriverPCA9685:
		return pca9685.NewCommand(cfg)
	case DriverFake:
		return cmdfake.NewCommand()
	default:
		log.Warnf("unknown motor driver %q, using fake", cfg.MotorDriver)
		return cmdfake.NewCommand()
	}
}

func newSensors(cfg config.SensorConfig) (vehicle.RangerIFace, vehicle.ADCIFace) {
	switch cfg.SensorDriver {
	case DriverPi:
		return ultrasonic.NewSensor(cfg), adc.NewADC(cfg)
	case DriverFake:
	default:
		log.Warnf("unknown sensor driver %q, using fake", cfg.SensorDriver)
	}

	fakeADC := sensorfake.NewADC()
	fakeADC.Set(cfg.ADCChannel, cfg.FakeADCPinVolts)
	return sensorfake.NewRanger(cfg.FakeDistanceCm), fakeADC
}

func newBuzzerPin(cfg config.BuzzerConfig) buzzerPin {
	switch cfg.BuzzerDriver {
	case DriverPi:
		pin, err := buzzer.NewPiPin(cfg.Pin)
		if err == nil {
			return pin
		}
		log.Warnf("buzzer not available, using fake - %s", err.Error())
	case DriverFake:
	default:
		log.Warnf("unknown buzzer driver %q, using fake", cfg.BuzzerDriver)
	}
	return &buzzer.FakePin{}
}
