// Package config loads per-command settings from flags, CURVE_* environment
// variables and an optional config file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/CasuinoOfficial/bonding-curve/internal/amm"
)

const envPrefix = "CURVE"

// EngineConfig holds the economic parameters shared by every command that
// builds an engine.
type EngineConfig struct {
	Supply          uint64
	CreationFee     uint64
	BootstrapOffset uint64
	TokenDecimals   uint8
}

// Params converts the config into validated engine parameters.
func (c EngineConfig) Params() (amm.Params, error) {
	params := amm.Params{
		Supply:          c.Supply,
		CreationFee:     c.CreationFee,
		BootstrapOffset: c.BootstrapOffset,
		TokenDecimals:   c.TokenDecimals,
	}
	if err := params.Validate(); err != nil {
		return amm.Params{}, err
	}
	return params, nil
}

// newViper applies defaults, binds flags and reads the config file.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func engineDefaults(defaults map[string]interface{}) map[string]interface{} {
	defaults["default-supply"] = amm.DefaultSupply
	defaults["creation-fee"] = amm.DefaultCreationFee
	defaults["bootstrap-offset"] = amm.DefaultBootstrapOffset
	defaults["token-decimals"] = uint(amm.DefaultTokenDecimals)
	defaults["log-level"] = "info"
	return defaults
}

func loadEngine(v *viper.Viper) (EngineConfig, error) {
	decimals := v.GetUint("token-decimals")
	if decimals > 255 {
		return EngineConfig{}, fmt.Errorf("token-decimals out of range: %d", decimals)
	}
	return EngineConfig{
		Supply:          v.GetUint64("default-supply"),
		CreationFee:     v.GetUint64("creation-fee"),
		BootstrapOffset: v.GetUint64("bootstrap-offset"),
		TokenDecimals:   uint8(decimals),
	}, nil
}
