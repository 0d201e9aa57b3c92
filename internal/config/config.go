package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func GetConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("no .env file found, using environment only")
	}

	cfg := Config{
		LogLevel: GetStringEnv("LOGLEVEL", DefaultLogLevel),
		LogJSON:  GetBoolEnv("LOGJSON", DefaultLogJSON),

		ServerCfg: GetServerConfig(),
		MotorCfg:  GetMotorConfig(),
		SensorCfg: GetSensorConfig(),
		BuzzerCfg: GetBuzzerConfig(),
		MQTTCfg:   GetMQTTConfig(),
		RedisCfg:  GetRedisConfig(),
		HealthCfg: GetHealthConfig(),
	}
	cfg.RoverCfg = GetRoverConfig(cfg.SensorCfg)

	log.Printf("app config: %+v", redacted(cfg))
	return cfg
}

// SetupLogging applies the configured level and formatter to the standard logger
func SetupLogging(cfg Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Printf("warning: log level %s not parsed - error: %s", cfg.LogLevel, err)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddress:   GetStringEnv("LISTEN", DefaultListenAddress),
		SocketIOEnabled: GetBoolEnv("SOCKETIO", DefaultSocketIOEnabled),
		WebRTCEnabled:   GetBoolEnv("WEBRTC", DefaultWebRTCEnabled),
		StunServer:      GetStringEnv("STUNSERVER", DefaultStunServer),
	}
}

func GetMotorConfig() MotorConfig {
	return MotorConfig{
		MotorDriver: GetStringEnv("MOTORDRIVER", DefaultMotorDriver),
		Address:     byte(GetIntEnv("MOTORADDRESS", DefaultMotorAddress)),
		I2CDevice:   GetStringEnv("MOTORI2CDEVICE", DefaultMotorI2CDevice),
		Frequency:   GetFloatEnv("MOTORFREQUENCY", DefaultMotorFrequency),
	}
}

func GetSensorConfig() SensorConfig {
	return SensorConfig{
		SensorDriver:   GetStringEnv("SENSORDRIVER", DefaultSensorDriver),
		TriggerPin:     GetIntEnv("TRIGGERPIN", DefaultTriggerPin),
		EchoPin:        GetIntEnv("ECHOPIN", DefaultEchoPin),
		EchoTimeout:    GetDurationEnv("ECHOTIMEOUT", DefaultEchoTimeout),
		RangingSamples: GetIntEnv("RANGINGSAMPLES", DefaultRangingSamples),
		MaxDistanceCm:  GetFloatEnv("MAXDISTANCE", DefaultMaxDistanceCm),

		ADCAddress:   byte(GetIntEnv("ADCADDRESS", DefaultADCAddress)),
		ADCI2CDevice: GetStringEnv("ADCI2CDEVICE", DefaultADCI2CDevice),
		ADCChannel:   GetIntEnv("ADCCHANNEL", DefaultADCChannel),
		ADCReference: GetFloatEnv("ADCREFERENCE", DefaultADCReference),
		BatteryScale: GetFloatEnv("BATTERYSCALE", DefaultBatteryScale),

		FakeDistanceCm:  GetFloatEnv("FAKEDISTANCE", DefaultFakeDistanceCm),
		FakeADCPinVolts: GetFloatEnv("FAKEADCVOLTS", DefaultFakeADCPinVolts),
	}
}

func GetBuzzerConfig() BuzzerConfig {
	return BuzzerConfig{
		BuzzerDriver: GetStringEnv("BUZZERDRIVER", DefaultBuzzerDriver),
		Pin:          GetIntEnv("BUZZERPIN", DefaultBuzzerPin),
		QueueSize:    GetIntEnv("BUZZERQUEUE", DefaultBuzzerQueueSize),
	}
}

func GetRoverConfig(sensorCfg SensorConfig) RoverConfig {
	envPrefix := "DRIVE_"
	return RoverConfig{
		MovementTick:        GetDurationEnv(envPrefix+"MOVEMENT_TICK", DefaultMovementTick),
		ControlTick:         GetDurationEnv(envPrefix+"CONTROL_TICK", DefaultControlTick),
		MoveDuration:        GetDurationEnv(envPrefix+"MOVE_DURATION", DefaultMoveDuration),
		ObstacleThresholdCm: GetFloatEnv(envPrefix+"OBSTACLE_THRESHOLD", DefaultObstacleThresholdCm),
		AlertDuration:       GetDurationEnv(envPrefix+"ALERT_DURATION", DefaultAlertDuration),
		BackDuration:        GetDurationEnv(envPrefix+"BACK_DURATION", DefaultBackDuration),
		PivotDuration:       GetDurationEnv(envPrefix+"PIVOT_DURATION", DefaultPivotDuration),
		BatteryWindow:       GetIntEnv(envPrefix+"BATTERY_WINDOW", DefaultBatteryWindow),
		BatteryHysteresis:   GetFloatEnv(envPrefix+"BATTERY_HYSTERESIS", DefaultBatteryHysteresis),
		ADCChannel:          sensorCfg.ADCChannel,
		BatteryScale:        sensorCfg.BatteryScale,
	}
}

func GetMQTTConfig() MQTTConfig {
	envPrefix := "MQTT_"
	return MQTTConfig{
		Enabled:     GetBoolEnv(envPrefix+"ENABLED", DefaultMQTTEnabled),
		Broker:      GetStringEnv(envPrefix+"BROKER", DefaultMQTTBroker),
		ClientID:    GetStringEnv(envPrefix+"CLIENTID", DefaultMQTTClientID),
		Username:    GetRawStringEnv(envPrefix+"USERNAME", ""),
		Password:    GetRawStringEnv(envPrefix+"PASSWORD", ""),
		TopicPrefix: GetStringEnv(envPrefix+"TOPICPREFIX", DefaultMQTTTopicPrefix),
	}
}

func GetRedisConfig() RedisConfig {
	envPrefix := "REDIS_"
	return RedisConfig{
		Enabled:  GetBoolEnv(envPrefix+"ENABLED", DefaultRedisEnabled),
		Address:  GetStringEnv(envPrefix+"ADDRESS", DefaultRedisAddress),
		Password: GetRawStringEnv(envPrefix+"PASSWORD", DefaultRedisPassword),
		DB:       GetIntEnv(envPrefix+"DB", DefaultRedisDB),
		Key:      GetStringEnv(envPrefix+"KEY", DefaultRedisKey),
		TTL:      GetDurationEnv(envPrefix+"TTL", DefaultRedisTTL),
	}
}

func GetHealthConfig() HealthConfig {
	return HealthConfig{
		Interval:  GetDurationEnv("HEALTH_INTERVAL", DefaultHealthInterval),
		Interface: GetStringEnv("HEALTH_INTERFACE", DefaultHealthInterface),
	}
}

func redacted(cfg Config) Config {
	if cfg.MQTTCfg.Password != "" {
		cfg.MQTTCfg.Password = "***"
	}
	if cfg.RedisCfg.Password != "" {
		cfg.RedisCfg.Password = "***"
	}
	return cfg
}

func GetIntEnv(env string, defaultValue int) int {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := strconv.ParseInt(strings.Trim(envValue, "\r"), 0, 32)
		if err != nil {
			log.Printf("warning:%s not parsed - error: %s", env, err)
			return defaultValue
		} else {
			return int(value)
		}
	}
}

func GetBoolEnv(env string, defaultValue bool) bool {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := strconv.ParseBool(strings.Trim(envValue, "\r"))
		if err != nil {
			log.Printf("warning:%s not parsed - error: %s", env, err)
			return defaultValue
		} else {
			return value
		}
	}
}

func GetStringEnv(env string, defaultValue string) string {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		return strings.ToLower(strings.Trim(envValue, "\r"))
	}
}

// GetRawStringEnv keeps the case of the value, used for secrets
func GetRawStringEnv(env string, defaultValue string) string {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	}
	return strings.Trim(envValue, "\r")
}

func GetFloatEnv(env string, defaultValue float64) float64 {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := strconv.ParseFloat(strings.Trim(envValue, "\r"), 64)
		if err != nil {
			log.Printf("warning:%s not parsed - error: %s", env, err)
			return defaultValue
		}
		return value
	}
}

func GetDurationEnv(env string, defaultValue time.Duration) time.Duration {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	}
	value, err := time.ParseDuration(strings.Trim(envValue, "\r"))
	if err != nil || value <= 0 {
		log.Printf("warning:%s not parsed - error: %v", env, err)
		return defaultValue
	}
	return value
}
