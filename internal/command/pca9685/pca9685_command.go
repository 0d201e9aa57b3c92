package command

import (
	"fmt"
	"sync"

	"github.com/Speshl/gorrc_rover/internal/config"
	"github.com/Speshl/gorrc_rover/internal/vehicle"
	"github.com/googolgl/go-i2c"
	"github.com/googolgl/go-pca9685"
	log "github.com/sirupsen/logrus"
)

const (
	MaxDuty = 4095
	MinDuty = -4095
)

// Wheel is a dc motor driven through an h-bridge fed by two pca9685 channels
type Wheel struct {
	name           string
	forwardChannel int
	reverseChannel int
}

// WheelMap matches the freenove 4wd smart car motor board
var WheelMap = []Wheel{
	{name: "front_left", forwardChannel: 1, reverseChannel: 0},
	{name: "back_left", forwardChannel: 2, reverseChannel: 3},
	{name: "front_right", forwardChannel: 7, reverseChannel: 6},
	{name: "back_right", forwardChannel: 5, reverseChannel: 4},
}

type channelSetter interface {
	SetChannel(chn, on, off int) error
}

type CommandDriver struct {
	cfg    config.MotorConfig
	lock   sync.Mutex
	bus    *i2c.Options
	driver channelSetter
}

func NewCommand(cfg config.MotorConfig) *CommandDriver {
	return &CommandDriver{
		cfg: cfg,
	}
}

func (c *CommandDriver) Init() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	bus, err := i2c.New(c.cfg.Address, c.cfg.I2CDevice)
	if err != nil {
		return fmt.Errorf("error starting i2c with address - %w", err)
	}

	driver, err := pca9685.New(bus, nil)
	if err != nil {
		bus.Close()
		return fmt.Errorf("error getting motor driver - %w", err)
	}

	err = driver.SetFreq(float32(c.cfg.Frequency))
	if err != nil {
		bus.Close()
		return fmt.Errorf("error setting motor pwm frequency - %w", err)
	}

	c.bus = bus
	c.driver = driver
	log.Printf("motor driver ready on %s @ 0x%x", c.cfg.I2CDevice, c.cfg.Address)
	return c.setAll(vehicle.WheelPower{})
}

func (c *CommandDriver) Stop() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.driver == nil {
		return nil
	}

	log.Println("stopping motor driver")
	err := c.setAll(vehicle.WheelPower{})
	if err != nil {
		log.Printf("failed zeroing wheels on stop: %s", err.Error())
	}
	c.driver = nil

	err = c.bus.Close()
	if err != nil {
		return fmt.Errorf("failed closing motor i2c bus: %w", err)
	}
	return nil
}

func (c *CommandDriver) SetWheelPower(fl, fr, bl, br int) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.driver == nil {
		return fmt.Errorf("motor driver not initialized")
	}

	return c.setAll(vehicle.WheelPower{
		FrontLeft:  fl,
		FrontRight: fr,
		BackLeft:   bl,
		BackRight:  br,
	})
}

func (c *CommandDriver) setAll(power vehicle.WheelPower) error {
	duties := []int{power.FrontLeft, power.BackLeft, power.FrontRight, power.BackRight}
	for i := range WheelMap {
		err := setWheel(c.driver, WheelMap[i], duties[i])
		if err != nil {
			return err
		}
	}
	return nil
}

// setWheel drives one channel of the pair and grounds the other. Zero duty
// holds both channels high, which brakes the motor.
func setWheel(driver channelSetter, wheel Wheel, duty int) error {
	duty = vehicle.Clamp(duty, MinDuty, MaxDuty)

	var forward, reverse int
	switch {
	case duty > 0:
		forward, reverse = duty, 0
	case duty < 0:
		forward, reverse = 0, -duty
	default:
		forward, reverse = MaxDuty, MaxDuty
	}

	err := driver.SetChannel(wheel.reverseChannel, 0, reverse)
	if err != nil {
		return fmt.Errorf("failed setting wheel - name: %s duty: %d - error: %w", wheel.name, duty, err)
	}
	err = driver.SetChannel(wheel.forwardChannel, 0, forward)
	if err != nil {
		return fmt.Errorf("failed setting wheel - name: %s duty: %d - error: %w", wheel.name, duty, err)
	}
	return nil
}
