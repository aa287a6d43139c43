package config

import (
	"time"

	"github.com/spf13/pflag"
)

// RunConfig holds configuration for replaying an operations file.
type RunConfig struct {
	In                string
	Out               string
	Errors            string
	Checkpoint        string
	CheckpointEnabled bool
	BatchSize         int
	PGDSN             string
	RPCURL            string
	MaxRetries        int
	RetryBackoff      time.Duration
	LogLevel          string
	Engine            EngineConfig
}

// LoadRun merges config file, environment variables, and flags into RunConfig.
func LoadRun(cfgFile string, flags *pflag.FlagSet) (RunConfig, error) {
	v, err := newViper(cfgFile, flags, engineDefaults(map[string]interface{}{
		"out":                "./data/events.jsonl",
		"errors":             "./data/op_errors.jsonl",
		"checkpoint":         "./data/checkpoint.json",
		"checkpoint-enabled": true,
		"batch-size":         500,
		"max-retries":        5,
		"retry-backoff":      500 * time.Millisecond,
	}))
	if err != nil {
		return RunConfig{}, err
	}

	engine, err := loadEngine(v)
	if err != nil {
		return RunConfig{}, err
	}

	return RunConfig{
		In:                v.GetString("in"),
		Out:               v.GetString("out"),
		Errors:            v.GetString("errors"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		BatchSize:         v.GetInt("batch-size"),
		PGDSN:             v.GetString("pg-dsn"),
		RPCURL:            v.GetString("rpc"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		LogLevel:          v.GetString("log-level"),
		Engine:            engine,
	}, nil
}
