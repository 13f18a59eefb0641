package config

import (
	"github.com/jpalmerr/livecheck"
)

// BuildOptions converts parsed configuration into SDK options.
//
// Names, logging and output are not covered; the caller supplies those.
func BuildOptions(cfg *Config) ([]livecheck.Option, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []livecheck.Option{
		livecheck.WithMaxWorkers(cfg.MaxWorkers),
		livecheck.WithMaxRequestsPerSecond(cfg.MaxRequestsPerSecond),
		livecheck.WithRetryLimit(cfg.RetryLimit),
		livecheck.WithRetryInterval(cfg.RetryInterval.Duration()),
		livecheck.WithTick(cfg.Tick.Duration()),
		livecheck.WithFetchTimeout(cfg.FetchTimeout.Duration()),
		livecheck.WithRenderInterval(cfg.RenderInterval.Duration()),
		livecheck.WithBaseURL(cfg.BaseURL),
		livecheck.WithClassifier(buildClassifier(cfg.Classifier)),
	}

	if cfg.Fetcher == FetcherBrowser {
		opts = append(opts, livecheck.WithBrowserFetcher())
	}
	if cfg.Listen != "" {
		opts = append(opts, livecheck.WithListenAddr(cfg.Listen))
	}
	if cfg.Title != "" {
		opts = append(opts, livecheck.WithTitle(cfg.Title))
	}

	return opts, nil
}

// ResolveNames returns the inline names followed by those read from the
// names file, if one is configured.
func ResolveNames(cfg *Config) ([]string, error) {
	names := append([]string(nil), cfg.Names...)
	if cfg.NamesFile == "" {
		return names, nil
	}

	fromFile, err := LoadNames(cfg.NamesFile)
	if err != nil {
		return nil, err
	}
	return append(names, fromFile...), nil
}

// buildClassifier creates a Classifier from configuration.
func buildClassifier(cc ClassifierConfig) livecheck.Classifier {
	switch cc.Type {
	case "marker":
		return livecheck.LiveMarkerClassifier(cc.Marker)
	case "mention":
		return livecheck.NameMentionClassifier()
	default:
		return livecheck.DefaultClassifier
	}
}
