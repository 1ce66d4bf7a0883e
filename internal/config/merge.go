package config

// EngineOverrides carries per-session engine settings supplied by a
// client when it creates a session. Nil pointers and empty strings mean
// "keep the server default".
type EngineOverrides struct {
	ClarifyThreshold *float64 `json:"clarify_threshold,omitempty"`
	FeedbackPrompts  *bool    `json:"feedback_prompts,omitempty"`
	Classification   string   `json:"classification,omitempty"`
	Extraction       string   `json:"extraction,omitempty"`
	Generation       string   `json:"generation,omitempty"`
}

// EngineSettings is the resolved configuration one engine is built from.
type EngineSettings struct {
	ClarifyThreshold float64
	FeedbackPrompts  bool
	Classification   string
	Extraction       string
	Generation       string
}

// MergeEngine merges server config with per-session overrides.
// Override values take precedence over server defaults.
func MergeEngine(cfg *Config, o *EngineOverrides) EngineSettings {
	merged := EngineSettings{
		ClarifyThreshold: cfg.Engine.ClarifyThreshold,
		FeedbackPrompts:  cfg.Engine.FeedbackPrompts,
		Classification:   cfg.Strategies.Classification,
		Extraction:       cfg.Strategies.Extraction,
		Generation:       cfg.Strategies.Generation,
	}
	if o == nil {
		return merged
	}

	if o.ClarifyThreshold != nil {
		merged.ClarifyThreshold = *o.ClarifyThreshold
	}
	if o.FeedbackPrompts != nil {
		merged.FeedbackPrompts = *o.FeedbackPrompts
	}
	merged.Classification = coalesce(o.Classification, merged.Classification)
	merged.Extraction = coalesce(o.Extraction, merged.Extraction)
	merged.Generation = coalesce(o.Generation, merged.Generation)

	return merged
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
