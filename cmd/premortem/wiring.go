package main

import (
	"context"
	"fmt"

	"github.com/sharedcode/premortem"
	"github.com/sharedcode/premortem/analyzer"
	"github.com/sharedcode/premortem/cache"
	"github.com/sharedcode/premortem/gate"
	"github.com/sharedcode/premortem/generator"
	"github.com/sharedcode/premortem/lookup"
	"github.com/sharedcode/premortem/policy"
	"github.com/sharedcode/premortem/store"
)

func loadConfig() (premortem.Config, error) {
	cfg, err := premortem.LoadConfig(rootFlags.configPath)
	if err != nil {
		return cfg, err
	}
	if rootFlags.logLevel == "" {
		premortem.SetLogLevel(premortem.ParseLogLevel(cfg.LogLevel))
	}
	return cfg, nil
}

// buildGate assembles lookup, validator and gate from cfg.
func buildGate(cfg premortem.Config) (*gate.Gate, error) {
	l, err := lookup.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build reference lookup: %w", err)
	}
	v, err := policy.FromConfig(cfg.Policy)
	if err != nil {
		return nil, err
	}
	return gate.FromConfig(cfg, l, v), nil
}

// buildService assembles the full pipeline. A non-empty generatorName overrides cfg.Generator.Type.
func buildService(ctx context.Context, cfg premortem.Config, generatorName string) (*analyzer.Service, *gate.Gate, error) {
	gt, err := buildGate(cfg)
	if err != nil {
		return nil, nil, err
	}
	name := cfg.Generator.Type
	if generatorName != "" {
		name = generatorName
	}
	g, err := generator.New(name, cfg.Generator.Options)
	if err != nil {
		return nil, nil, err
	}
	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.New(ctx, cfg, c)
	if err != nil {
		return nil, nil, err
	}
	return analyzer.New(g, gt, analyzer.WithStore(st)), gt, nil
}
