package config

// Config is the top-level marginalia configuration, corresponding to .marginalia.yml.
type Config struct {
	Server    ServerConfig   `yaml:"server" koanf:"server"`
	Client    ClientConfig   `yaml:"client" koanf:"client"`
	Model     string         `yaml:"model" koanf:"model"`
	Goal      string         `yaml:"goal" koanf:"goal"`
	MaxTokens int            `yaml:"max_tokens" koanf:"max_tokens"`
	Chunking  ChunkingConfig `yaml:"chunking" koanf:"chunking"`
}

// ServerConfig holds settings for the annotation backend.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"` // allow all CORS origins (dev mode)
}

// ClientConfig holds settings for the reader/annotate client side.
type ClientConfig struct {
	ServerURL   string `yaml:"server_url" koanf:"server_url"`
	MaxChannels int    `yaml:"max_channels" koanf:"max_channels"` // cap on concurrently open annotation channels
}

// ChunkingConfig controls how ingested documents are split.
type ChunkingConfig struct {
	MaxTokens int `yaml:"max_tokens" koanf:"max_tokens"` // approximate token cap per chunk
	Overlap   int `yaml:"overlap" koanf:"overlap"`       // token overlap between adjacent chunks
}
