package app

import (
	"encoding/json"
	"time"

	"github.com/Speshl/gorrc_rover/internal/models"
	"github.com/pion/webrtc/v3"
)

const (
	PingSourceName = "rover"

	CommandChannelLabel = "command"
	PingChannelLabel    = "ping"
)

func (c *Connection) onICEConnectionStateChange(connectionState webrtc.ICEConnectionState) {
	c.logger.Printf("ice connection state has changed: %s", connectionState.String())
}

func (c *Connection) onConnectionStateChange(state webrtc.PeerConnectionState) {
	c.logger.Printf("peer connection state has changed: %s", state.String())
	switch state {
	case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed:
		go c.Disconnect()
	}
}

func (c *Connection) onICECandidate(candidate *webrtc.ICECandidate) {
	if candidate != nil {
		c.logger.Debugf("gathered ICE candidate: %s", candidate.String())
	}
}

func (c *Connection) onDataChannel(d *webrtc.DataChannel) {
	c.logger.Printf("new data channel: %s", d.Label())

	switch d.Label() {
	case CommandChannelLabel:
		d.OnOpen(func() {
			c.logger.Printf("data channel open: %s", d.Label())
			c.reply(d, c.dispatcher.Refresh(c.Ctx))
		})
		d.OnMessage(func(msg webrtc.DataChannelMessage) {
			c.onCommandHandler(d, msg.Data)
		})
	case PingChannelLabel:
		d.OnOpen(func() {
			c.logger.Printf("data channel open: %s", d.Label())
			c.lock.Lock()
			c.PingOutput = d
			c.lock.Unlock()
		})
		d.OnMessage(func(msg webrtc.DataChannelMessage) {
			c.onPingHandler(msg.Data)
		})
	default:
		c.logger.Printf("ignoring unsupported channel: %s", d.Label())
	}
}

func (c *Connection) onCommandHandler(d *webrtc.DataChannel, data []byte) {
	c.logger.Debugf("received command: %s", data)
	c.reply(d, c.dispatcher.Dispatch(c.Ctx, string(data)))
}

func (c *Connection) reply(d *webrtc.DataChannel, snapshot models.Snapshot) {
	encodedMsg, err := encode(snapshot)
	if err != nil {
		c.logger.Printf("error: failed encoding state - %s", err.Error())
		return
	}
	err = d.SendText(encodedMsg)
	if err != nil {
		c.logger.Printf("error: failed sending state - %s", err.Error())
	}
}

func (c *Connection) onPingHandler(data []byte) {
	ping := models.Ping{}
	err := json.Unmarshal(data, &ping)
	if err != nil {
		c.logger.Printf("failed unmarshalling ping msg: %s", data)
		return
	}
	if ping.Source != PingSourceName {
		return
	}

	roundTripTime := time.Now().UnixMilli() - ping.TimeStamp
	select {
	case c.PingInput <- roundTripTime:
	default:
	}
}
