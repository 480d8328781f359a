package main

import (
	"context"
	"flag"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
)

type FlagType int
type FlagMap map[FlagType]string

const (
	listenAddress FlagType = iota
	servicePort

	policiesPath
	statesPath

	pexelsKey
	openWeatherKey
)

func defaultFlags() FlagMap {
	return FlagMap{
		listenAddress: "",
		servicePort:   "8080",

		policiesPath: "/opt/diwise/config/authz.rego",
		statesPath:   "/opt/diwise/config/states.yaml",
	}
}

// parseExternalConfig overlays environment variables and command line flags
// on top of the given defaults
func parseExternalConfig(ctx context.Context, flags FlagMap) FlagMap {
	flags[listenAddress] = env.GetVariableOrDefault(ctx, "LISTEN_ADDRESS", flags[listenAddress])
	flags[servicePort] = env.GetVariableOrDefault(ctx, "SERVICE_PORT", flags[servicePort])

	flags[pexelsKey] = env.GetVariableOrDefault(ctx, "PEXELS_API_KEY", flags[pexelsKey])
	flags[openWeatherKey] = env.GetVariableOrDefault(ctx, "OPEN_WEATHER_API_KEY", flags[openWeatherKey])

	apply := func(f FlagType) func(string) error {
		return func(value string) error {
			flags[f] = value
			return nil
		}
	}

	flag.Func("policies", "an authorization policy file (default "+flags[policiesPath]+")", apply(policiesPath))
	flag.Func("states", "a yaml file with the states to seed the datastore with (default "+flags[statesPath]+")", apply(statesPath))
	flag.Parse()

	return flags
}
