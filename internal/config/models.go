package config

import "time"

const (
	AppEnvBase = "ROVER_"

	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	// Default Server Options
	DefaultListenAddress   = "0.0.0.0:65432"
	DefaultSocketIOEnabled = true
	DefaultWebRTCEnabled   = true
	DefaultStunServer      = "stun:stun.l.google.com:19302"

	// Default Motor Options
	DefaultMotorDriver    = "pca9685"
	DefaultMotorAddress   = 0x40
	DefaultMotorI2CDevice = "/dev/i2c-1"
	DefaultMotorFrequency = 50.0

	// Default Sensor Options
	DefaultSensorDriver    = "pi"
	DefaultTriggerPin      = 27
	DefaultEchoPin         = 22
	DefaultEchoTimeout     = 30 * time.Millisecond
	DefaultRangingSamples  = 5
	DefaultMaxDistanceCm   = 300.0
	DefaultADCAddress      = 0x48
	DefaultADCI2CDevice    = "/dev/i2c-1"
	DefaultADCChannel      = 2
	DefaultADCReference    = 3.3
	DefaultBatteryScale    = 3.0
	DefaultFakeDistanceCm  = 100.0
	DefaultFakeADCPinVolts = 2.6

	// Default Buzzer Options
	DefaultBuzzerDriver    = "pi"
	DefaultBuzzerPin       = 17
	DefaultBuzzerQueueSize = 10

	// Default Rover Options
	DefaultMovementTick        = 100 * time.Millisecond
	DefaultControlTick         = 1 * time.Second
	DefaultMoveDuration        = 1 * time.Second
	DefaultObstacleThresholdCm = 20.0
	DefaultAlertDuration       = 500 * time.Millisecond
	DefaultBackDuration        = 1 * time.Second
	DefaultPivotDuration       = 500 * time.Millisecond
	DefaultBatteryWindow       = 30
	DefaultBatteryHysteresis   = 2.0

	// Default MQTT Options
	DefaultMQTTEnabled     = false
	DefaultMQTTBroker      = "tcp://127.0.0.1:1883"
	DefaultMQTTClientID    = "gorrc-rover"
	DefaultMQTTTopicPrefix = "rover"

	// Default Redis Options
	DefaultRedisEnabled  = false
	DefaultRedisAddress  = "127.0.0.1:6379"
	DefaultRedisPassword = ""
	DefaultRedisDB       = 0
	DefaultRedisKey      = "rover:state"
	DefaultRedisTTL      = 10 * time.Second

	// Default Health Options
	DefaultHealthInterval  = 30 * time.Second
	DefaultHealthInterface = "wlan0"
)

type Config struct {
	LogLevel string
	LogJSON  bool

	ServerCfg ServerConfig
	MotorCfg  MotorConfig
	SensorCfg SensorConfig
	BuzzerCfg BuzzerConfig
	RoverCfg  RoverConfig
	MQTTCfg   MQTTConfig
	RedisCfg  RedisConfig
	HealthCfg HealthConfig
}

type ServerConfig struct {
	ListenAddress   string
	SocketIOEnabled bool
	WebRTCEnabled   bool
	StunServer      string
}

type MotorConfig struct {
	MotorDriver string
	Address     byte
	I2CDevice   string
	Frequency   float64
}

type SensorConfig struct {
	SensorDriver   string
	TriggerPin     int
	EchoPin        int
	EchoTimeout    time.Duration
	RangingSamples int
	MaxDistanceCm  float64

	ADCAddress   byte
	ADCI2CDevice string
	ADCChannel   int
	ADCReference float64
	BatteryScale float64

	FakeDistanceCm  float64
	FakeADCPinVolts float64
}

type BuzzerConfig struct {
	BuzzerDriver string
	Pin          int
	QueueSize    int
}

type RoverConfig struct {
	MovementTick        time.Duration
	ControlTick         time.Duration
	MoveDuration        time.Duration
	ObstacleThresholdCm float64
	AlertDuration       time.Duration
	BackDuration        time.Duration
	PivotDuration       time.Duration
	BatteryWindow       int
	BatteryHysteresis   float64
	ADCChannel          int
	BatteryScale        float64
}

type MQTTConfig struct {
	Enabled     bool
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
}

type HealthConfig struct {
	Interval  time.Duration
	Interface string
}
