package appstate

// MergeDocuments composes documents ordered from strongest to weakest. Nested
// maps are merged key by key; any other value in a stronger layer, nil
// included, replaces the weaker one. The result shares nothing with the
// inputs.
func MergeDocuments(layers ...map[string]any) map[string]any {
	merged := map[string]any{}
	for i := len(layers) - 1; i >= 0; i-- {
		merged = mergeMaps(layers[i], merged)
	}
	return merged
}

func mergeMaps(strong, weak map[string]any) map[string]any {
	result := make(map[string]any, len(strong)+len(weak))
	for key, value := range weak {
		result[key] = value
	}
	for key, value := range strong {
		strongMap, strongIsMap := value.(map[string]any)
		weakMap, weakIsMap := result[key].(map[string]any)
		if strongIsMap && weakIsMap {
			result[key] = mergeMaps(strongMap, weakMap)
			continue
		}
		result[key] = cloneValue(value)
	}
	return result
}

// WithDataLayers seeds the built-in document with MergeDocuments(layers...),
// e.g. WithDataLayers(userPrefs, defaults).
func WithDataLayers(layers ...map[string]any) Option {
	merged := MergeDocuments(layers...)
	return func(cfg *storeConfig) {
		cfg.data = merged
	}
}
