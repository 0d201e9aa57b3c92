package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Speshl/gorrc_rover/internal/config"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

const (
	mqttQos            = 1
	mqttConnectTimeout = 5 * time.Second
	mqttDisconnectWait = 250
)

// MQTTSession takes commands from <prefix>/command and publishes every
// resulting state on <prefix>/state
type MQTTSession struct {
	cfg        config.MQTTConfig
	dispatcher Dispatcher
	sessions   *SessionRegistry
	client     mqtt.Client
	session    Session
	ctx        context.Context
}

func NewMQTTSession(cfg config.MQTTConfig, dispatcher Dispatcher, sessions *SessionRegistry) *MQTTSession {
	m := &MQTTSession{
		cfg:        cfg,
		dispatcher: dispatcher,
		sessions:   sessions,
		ctx:        context.Background(),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(1 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetMaxReconnectInterval(10 * time.Second).
		SetCleanSession(true)
	opts.SetOnConnectHandler(m.onConnect)
	opts.SetConnectionLostHandler(m.onConnectionLost)

	m.client = mqtt.NewClient(opts)
	return m
}

func (m *MQTTSession) CommandTopic() string {
	return topic(m.cfg.TopicPrefix, "command")
}

func (m *MQTTSession) StateTopic() string {
	return topic(m.cfg.TopicPrefix, "state")
}

func topic(prefix string, name string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func (m *MQTTSession) Start(ctx context.Context) error {
	log.Printf("connecting to mqtt broker %s", m.cfg.Broker)
	m.ctx = ctx
	m.session = m.sessions.Open(TransportMQTT, m.cfg.Broker)
	defer m.sessions.Close(m.session.ID)

	token := m.client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		log.Printf("mqtt broker %s not reachable yet, retrying in background", m.cfg.Broker)
	} else if token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	<-ctx.Done()
	log.Println("mqtt session stopped")
	m.client.Disconnect(mqttDisconnectWait)
	return nil
}

func (m *MQTTSession) onConnect(client mqtt.Client) {
	log.Printf("connected to mqtt broker, subscribing to %s", m.CommandTopic())
	token := client.Subscribe(m.CommandTopic(), mqttQos, m.onCommand)
	if token.Wait() && token.Error() != nil {
		log.Printf("failed to subscribe to %s - %s", m.CommandTopic(), token.Error())
	}
}

func (m *MQTTSession) onConnectionLost(client mqtt.Client, err error) {
	log.Printf("mqtt connection lost, reconnecting - %s", err)
}

func (m *MQTTSession) onCommand(client mqtt.Client, msg mqtt.Message) {
	reply, err := m.handlePayload(msg.Payload())
	if err != nil {
		m.session.Logger().Printf("failed handling mqtt command - %s", err.Error())
		return
	}

	token := client.Publish(m.StateTopic(), mqttQos, false, reply)
	if token.Wait() && token.Error() != nil {
		m.session.Logger().Printf("failed publishing state - %s", token.Error())
	}
}

func (m *MQTTSession) handlePayload(payload []byte) ([]byte, error) {
	m.session.Logger().Debugf("received command: %s", payload)
	snapshot := m.dispatcher.Dispatch(m.ctx, string(payload))
	reply, err := encode(snapshot)
	if err != nil {
		return nil, err
	}
	return []byte(reply), nil
}
