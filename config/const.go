package config

import "time"

const (
	DefaultBodyLimit = 64 * 1024
	MaxExpressionLen = 1024

	// feed websocket
	WSWriteTimeout = 10 * time.Second
	WSPingInterval = 15 * time.Second
	WSReadTimeout  = 60 * time.Second
	WSSendBuffer   = 64

	ShutdownTimeout = 10 * time.Second
)
