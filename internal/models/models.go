package models

import (
	"github.com/google/uuid"
	"github.com/pion/webrtc/v3"
)

// Snapshot is the json reply sent to clients after every processed command
type Snapshot struct {
	Direction      string  `json:"direction"`
	Speed          float64 `json:"speed"`
	Distance       float64 `json:"distance"`
	Ultrasonic     float64 `json:"ultrasonic"`
	Bluetooth      string  `json:"bluetooth"`
	AutonomousMode bool    `json:"autonomous_mode"`
	TurnAngle      float64 `json:"turn_angle"`
	Voltage        string  `json:"voltage"`
	Battery        string  `json:"battery"`
}

type Offer struct {
	Offer     webrtc.SessionDescription `json:"offer"`
	SessionId uuid.UUID                 `json:"session_id"`
}

type Answer struct {
	Answer    *webrtc.SessionDescription `json:"answer"`
	SessionId uuid.UUID                  `json:"session_id"`
}

type IceCandidate struct {
	Candidate webrtc.ICECandidateInit `json:"candidate"`
	SessionId uuid.UUID               `json:"session_id"`
}

type Ping struct {
	Source    string `json:"source"`
	TimeStamp int64  `json:"time_stamp"`
}

type Health struct {
	Healthy   bool   `json:"healthy"`
	Interface string `json:"interface"`
	RxPackets uint64 `json:"rx_packets"`
	RxErrors  uint64 `json:"rx_errors"`
	RxDropped uint64 `json:"rx_dropped"`
	TxPackets uint64 `json:"tx_packets"`
	TxErrors  uint64 `json:"tx_errors"`
	TxDropped uint64 `json:"tx_dropped"`
	Sessions  int    `json:"sessions"`
	Error     string `json:"error,omitempty"`
}
