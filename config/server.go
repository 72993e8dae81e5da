package config

import "time"

type Server struct {
	Addr        string        `yaml:"addr" env:"ADDR" env-required:"true"`
	Name        string        `yaml:"name" env:"NAME" env-default:"stanbot"`
	Deadline    time.Duration `yaml:"deadline" env:"DEADLINE" env-default:"30s"`
	KeepAlive   time.Duration `yaml:"keep_alive" env:"SERVER_KEEP_ALIVE" env-default:"15s"`
	BufferSize  int           `yaml:"buffer_size" env:"BUFFER_SIZE" env-default:"1024"`
	SessionTTL  time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"30m"`
	MetricsAddr string        `yaml:"metrics_addr" env:"METRICS_ADDR"`
}

type Pow struct {
	Difficulty uint64 `yaml:"difficulty" env:"POW_DIFFICULTY" env-default:"0"`
}
