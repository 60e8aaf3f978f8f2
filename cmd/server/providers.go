package main

import (
	"github.com/rs/zerolog"
	"github.com/thebartekbanach/tinyrelay/pkg/compressor"
	tinifycompressor "github.com/thebartekbanach/tinyrelay/pkg/compressor/tinify"
	"github.com/thebartekbanach/tinyrelay/pkg/config"
	"github.com/thebartekbanach/tinyrelay/pkg/filefetcher"
	"github.com/thebartekbanach/tinyrelay/pkg/keys"
	"github.com/thebartekbanach/tinyrelay/pkg/relay"
)

func InitializeKeyRing(cfg *config.Config, logger zerolog.Logger) *keys.Ring {
	ring, err := keys.NewRing(cfg.Keys)
	if err != nil {
		logger.Panic().Err(err).Msg("error ocurred when building API key ring")
	}

	for _, slot := range ring.Status() {
		if !slot.Configured {
			logger.Warn().Str("selector", slot.Selector).Msg("API key slot is not configured")
		}
	}

	logger.Info().Strs("selectors", ring.ConfiguredSlots()).Msg("API key ring ready")
	return ring
}

func InitializeCompressionService(cfg *config.Config) compressor.CompressionService {
	client := tinifycompressor.NewClient(tinifycompressor.Config{
		ServiceURL: cfg.UpstreamURL,
	})

	return &client
}

func InitializeRelayConfig(cfg *config.Config) relay.RelayServiceConfig {
	allowedDomains := cfg.AllowedProxyDomains
	if len(allowedDomains) == 0 {
		allowedDomains = []string{"*"}
	}

	return relay.RelayServiceConfig{
		AllowedProxyDomains: allowedDomains,
	}
}

func InitializeFetcher(relayConfig relay.RelayServiceConfig) filefetcher.Fetcher {
	return filefetcher.NewPassthroughFetcher(filefetcher.PassthroughFetcherConfig{
		AllowedDomains: relayConfig.AllowedProxyDomains,
	})
}
