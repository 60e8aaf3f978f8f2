//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"
	"github.com/thebartekbanach/tinyrelay/pkg/config"
	"github.com/thebartekbanach/tinyrelay/pkg/keys"
	"github.com/thebartekbanach/tinyrelay/pkg/relay"
)

func InitializeRelay(cfg *config.Config, logger zerolog.Logger) relay.RelayService {
	wire.Build(
		InitializeKeyRing,
		wire.Bind(new(relay.KeyResolver), new(*keys.Ring)),

		InitializeCompressionService,
		InitializeFetcher,

		InitializeRelayConfig,
		relay.NewRelayService,
	)

	return nil
}
