package appstate

// EngineOption configures any of the built-in expression engines.
type EngineOption func(*engineConfig)

type engineConfig struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// EngineWithProgramCache shares cache between evaluations. Engines prefix
// their keys, so one cache can serve several engines.
func EngineWithProgramCache(cache ProgramCache) EngineOption {
	return func(cfg *engineConfig) {
		cfg.cache = cache
	}
}

// EngineWithFunctions exposes a copy of registry to expressions, both by name
// and through call(name, args...).
func EngineWithFunctions(registry *FunctionRegistry) EngineOption {
	return func(cfg *engineConfig) {
		cfg.functions = registry.Clone()
	}
}

func applyEngineOptions(opts []EngineOption) engineConfig {
	cfg := engineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// engineOptions translates store options for the default engine.
func (cfg storeConfig) engineOptions() []EngineOption {
	var opts []EngineOption
	if cfg.programCache != nil {
		opts = append(opts, EngineWithProgramCache(cfg.programCache))
	}
	if cfg.functions != nil {
		opts = append(opts, EngineWithFunctions(cfg.functions))
	}
	return opts
}
