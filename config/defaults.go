package config

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// defaults is both the viper default table and the file written by `config init`.
// Durations are strings so the generated file stays readable.
var defaults = yaml.MapSlice{
	{Key: "source", Value: yaml.MapSlice{
		{Key: "chain_id", Value: 0},
		{Key: "rpc_url", Value: ""},
		{Key: "core_contract", Value: ""},
		{Key: "emitter", Value: ""},
		{Key: "poll_interval", Value: "5s"},
		{Key: "start_block", Value: 0},
	}},
	{Key: "target", Value: yaml.MapSlice{
		{Key: "rpc_url", Value: ""},
		{Key: "receiver_contract", Value: ""},
		{Key: "private_key", Value: ""},
		{Key: "confirmation_timeout", Value: "5m"},
	}},
	{Key: "wormhole", Value: yaml.MapSlice{
		{Key: "guardian_rpcs", Value: []string{}},
		{Key: "guardian_set", Value: []string{}},
		{Key: "guardian_set_index", Value: 0},
		{Key: "fetch_attempts", Value: 30},
		{Key: "fetch_interval", Value: "2s"},
		{Key: "fetch_timeout", Value: "10s"},
		{Key: "rate_limit", Value: 5.0},
	}},
	{Key: "retry", Value: yaml.MapSlice{
		{Key: "attempts", Value: 0},
		{Key: "backoff", Value: "0s"},
		{Key: "max_backoff", Value: "1m"},
	}},
	{Key: "service", Value: yaml.MapSlice{
		{Key: "restart_attempts", Value: 10},
		{Key: "restart_backoff", Value: "1s"},
		{Key: "restart_max_backoff", Value: "30s"},
	}},
	{Key: "api", Value: yaml.MapSlice{
		{Key: "addr", Value: ""},
		{Key: "cache_size", Value: 1024},
	}},
	{Key: "reporting", Value: yaml.MapSlice{
		{Key: "postgres_dsn", Value: ""},
	}},
}

// walkDefaults calls f with the dotted key of every leaf of ms.
func walkDefaults(prefix string, ms yaml.MapSlice, f func(key string, value any)) {
	for _, item := range ms {
		key := fmt.Sprint(item.Key)
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := item.Value.(yaml.MapSlice); ok {
			walkDefaults(key, nested, f)
			continue
		}
		f(key, item.Value)
	}
}

// DefaultYAML renders the default config file.
func DefaultYAML() []byte {
	bz, err := yaml.Marshal(defaults)
	if err != nil {
		panic(err)
	}
	return bz
}
