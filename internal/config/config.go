package config

type Config struct {
	Server struct {
		Port              int      `json:"port"`
		CacheTTLSeconds   int      `json:"cache_ttl_seconds"`
		CacheSweepSeconds int      `json:"cache_sweep_seconds"`
		IgnoredUrls       []string `json:"ignored_urls"`
	} `json:"server"`

	Agent struct {
		ServerUrl        string `json:"server_url"`
		HeartbeatSeconds int    `json:"heartbeat_seconds"`
		ReconnectSeconds int    `json:"reconnect_seconds"`
	} `json:"agent"`

	Extractor struct {
		// 提取后端: chromedp | rod | colly
		Backend                  string `json:"backend"`
		NavigationTimeoutSeconds int    `json:"navigation_timeout_seconds"`
	} `json:"extractor"`

	Rod struct {
		UserDataDir          string `json:"user_data_dir"`
		Headless             bool   `json:"headless"`
		DisableBlinkFeatures string `json:"disable_blink_features"`
		Incognito            bool   `json:"incognito"`
		DisableDevShmUsage   bool   `json:"disable_dev_shm_usage"`
		NoSandbox            bool   `json:"no_sandbox"`
		UserAgent            string `json:"user_agent"`
		Leakless             bool   `json:"leakless"`
		Bin                  string `json:"bin"`
	} `json:"rod"`

	Chromedp struct {
		UserDataDir          string `json:"user_data_dir"`
		Headless             bool   `json:"headless"`
		DisableBlinkFeatures string `json:"disable_blink_features"`
		Incognito            bool   `json:"incognito"`
		DisableDevShmUsage   bool   `json:"disable_dev_shm_usage"`
		NoSandbox            bool   `json:"no_sandbox"`
		UserAgent            string `json:"user_agent"`
	} `json:"chromedp"`

	Colly struct {
		UserAgent       string `json:"user_agent"`
		IgnoreRobotsTxt bool   `json:"ignore_robots_txt"`
		TimeoutSeconds  int    `json:"timeout_seconds"`
	} `json:"colly"`
}
