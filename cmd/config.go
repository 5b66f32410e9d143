package main

import "time"

type Config struct {
	BadgerFilepath string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string        `env:"BLUGE_FILEPATH,required=true"`
	LogLevel       string        `env:"LOG_LEVEL,default=info"`
	Host           string        `env:"HOST,default=localhost"`
	Port           int           `env:"PORT,default=8080"`
	AdminSecret    string        `env:"ADMIN_SECRET,required=true"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL,default=1m"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	TelemetryEvery time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`
}
