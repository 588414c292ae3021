package config

import (
	"encoding/json"
	"path/filepath"
	"time"
)

const (
	DefaultPort              = 8080
	DefaultCacheTTLSeconds   = 60
	DefaultCacheSweepSeconds = 300
	DefaultHeartbeatSeconds  = 25
	DefaultReconnectSeconds  = 5
	DefaultNavTimeoutSeconds = 30
)

func ParseConfig(byteConfig []byte) (*Config, error) {
	var cfg Config
	err := json.Unmarshal(byteConfig, &cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Chromedp.UserDataDir != "" {
		absPath, err := filepath.Abs(cfg.Chromedp.UserDataDir)
		if err != nil {
			return nil, err
		}
		cfg.Chromedp.UserDataDir = absPath
	}
	if cfg.Rod.UserDataDir != "" {
		absPath, err := filepath.Abs(cfg.Rod.UserDataDir)
		if err != nil {
			return nil, err
		}
		cfg.Rod.UserDataDir = absPath
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// 未配置的字段回退到默认值,保证零配置也可启动
func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.CacheTTLSeconds == 0 {
		cfg.Server.CacheTTLSeconds = DefaultCacheTTLSeconds
	}
	if cfg.Server.CacheSweepSeconds == 0 {
		cfg.Server.CacheSweepSeconds = DefaultCacheSweepSeconds
	}
	if cfg.Server.IgnoredUrls == nil {
		cfg.Server.IgnoredUrls = []string{"", "about:blank", "chrome://newtab/"}
	}
	if cfg.Agent.HeartbeatSeconds == 0 {
		cfg.Agent.HeartbeatSeconds = DefaultHeartbeatSeconds
	}
	if cfg.Agent.ReconnectSeconds == 0 {
		cfg.Agent.ReconnectSeconds = DefaultReconnectSeconds
	}
	if cfg.Extractor.Backend == "" {
		cfg.Extractor.Backend = "chromedp"
	}
	if cfg.Extractor.NavigationTimeoutSeconds == 0 {
		cfg.Extractor.NavigationTimeoutSeconds = DefaultNavTimeoutSeconds
	}
}

func (cfg *Config) CacheTTL() time.Duration {
	return time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
}

func (cfg *Config) CacheSweepInterval() time.Duration {
	return time.Duration(cfg.Server.CacheSweepSeconds) * time.Second
}

func (cfg *Config) Heartbeat() time.Duration {
	return time.Duration(cfg.Agent.HeartbeatSeconds) * time.Second
}

func (cfg *Config) ReconnectDelay() time.Duration {
	return time.Duration(cfg.Agent.ReconnectSeconds) * time.Second
}

func (cfg *Config) NavigationTimeout() time.Duration {
	if cfg.Extractor.NavigationTimeoutSeconds < 0 {
		return 0
	}
	return time.Duration(cfg.Extractor.NavigationTimeoutSeconds) * time.Second
}
