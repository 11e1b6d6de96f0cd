package config

// DefaultGoal is the analysis instruction used when the user supplies none.
// It matches the behavior readers expect for public-domain prose: glosses for
// archaic vocabulary plus a short summary.
const DefaultGoal = "Explain archaic vocabulary and summarise the paragraph if not web code."

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8191,
		},
		Client: ClientConfig{
			ServerURL:   "http://localhost:8191",
			MaxChannels: 8,
		},
		Model:     "gpt-4o-mini",
		Goal:      DefaultGoal,
		MaxTokens: 256,
		Chunking: ChunkingConfig{
			MaxTokens: 300,
			Overlap:   0,
		},
	}
}
