package main

import (
	"flag"
	"log"
	"strconv"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Addr     string
	Seed     int64
	TPS      int
	AutoRun  bool
	Round    bool
	LogLevel string
}

// configResolver defines how to resolve a single configuration value.
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

// loadServerConfig resolves the configuration from CLI flags, environment
// variables and defaults, in that order of precedence. Adding an option is a
// matter of adding a resolver row.
func loadServerConfig(fs *flag.FlagSet, args []string, getenv func(string) string) (ServerConfig, error) {
	cfg := ServerConfig{}

	resolvers := []configResolver{
		{
			flagName:    "addr",
			envVarName:  "DAISYWORLD_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "seed",
			envVarName:  "DAISYWORLD_SEED",
			defaultVal:  "0",
			description: "world seed (0 keeps the configured default)",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.ParseInt(v, 10, 64); err == nil {
					c.Seed = val
				} else {
					log.Printf("Invalid value for seed: %s, using default 0", v)
				}
			},
		},
		{
			flagName:    "tps",
			envVarName:  "DAISYWORLD_TPS",
			defaultVal:  "60",
			description: "runner ticks per second",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.Atoi(v); err == nil {
					c.TPS = val
				} else {
					log.Printf("Invalid value for tps: %s, using default 60", v)
					c.TPS = 60
				}
			},
		},
		{
			flagName:    "run",
			envVarName:  "DAISYWORLD_RUN",
			defaultVal:  "false",
			description: "start the background runner at boot",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.ParseBool(v); err == nil {
					c.AutoRun = val
				}
			},
		},
		{
			flagName:    "round",
			envVarName:  "DAISYWORLD_ROUND",
			defaultVal:  "false",
			description: "start in the latitude-resolved mode",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.ParseBool(v); err == nil {
					c.Round = val
				}
			},
		},
		{
			flagName:    "log-level",
			envVarName:  "DAISYWORLD_LOG_LEVEL",
			defaultVal:  "info",
			description: "log level: debug, info, warn, error",
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
	}

	flagVars := make(map[string]*string)
	for _, resolver := range resolvers {
		flagVars[resolver.flagName] = fs.String(resolver.flagName, "", resolver.description)
	}

	if err := fs.Parse(args); err != nil {
		return ServerConfig{}, err
	}

	for _, resolver := range resolvers {
		var value string
		if *flagVars[resolver.flagName] != "" {
			value = *flagVars[resolver.flagName]
		} else if envValue := getenv(resolver.envVarName); envValue != "" {
			value = envValue
		} else {
			value = resolver.defaultVal
		}
		resolver.setter(&cfg, value)
	}

	return cfg, nil
}
