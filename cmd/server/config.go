package main

import "time"

type Config struct {
	LogLevel                  string        `env:"LOG_LEVEL,default=INFO"`
	Host                      string        `env:"HOST,default=0.0.0.0"`
	Port                      int           `env:"PORT,default=8080"`
	BadgerFilepath            string        `env:"BADGER_FILEPATH,required=true"`
	AuthSecret                string        `env:"AUTH_SECRET,required=true"`
	AuthTokenDuration         time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	ChatRooms                 string        `env:"CHAT_ROOMS"`
	AllowedOrigins            string        `env:"ALLOWED_ORIGINS,default=*"`
	ConnectionBufferSize      int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	ReadLimit                 int64         `env:"READ_LIMIT,default=65536"`
	IndexBufferSize           int           `env:"INDEX_BUFFER_SIZE,default=1024"`
	SearchLimit               int           `env:"SEARCH_LIMIT,default=10"`
	MetricInterval            time.Duration `env:"METRIC_INTERVAL,default=30s"`
	RestartInterval           time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	ModerationEnabled         bool          `env:"MODERATION_ENABLED,default=true"`
	ModerationCharReplacement string        `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
}
