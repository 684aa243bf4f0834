// Package config holds the runtime settings for a wordbook export.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Wordbook WordbookConfig `yaml:"wordbook"`
	Browser  BrowserConfig  `yaml:"browser"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// WordbookConfig describes what to export and where to put it.
type WordbookConfig struct {
	URL        string `yaml:"url"        env:"WORDBOOK_URL"        env-default:"https://learn.dict.naver.com/wordbook/jakodict/#/my/main"`
	Collection string `yaml:"collection" env:"WORDBOOK_COLLECTION" env-default:"단어"`
	Pages      int    `yaml:"pages"      env:"WORDBOOK_PAGES"      env-default:"1"`
	OutputDir  string `yaml:"output_dir" env:"WORDBOOK_OUTPUT_DIR" env-default:"."`
	FileName   string `yaml:"file_name"  env:"WORDBOOK_FILE_NAME"  env-default:"word_list.csv"`

	// SkipLogin skips the manual sign-in pause before the collection is opened.
	SkipLogin bool `yaml:"skip_login" env:"WORDBOOK_SKIP_LOGIN"`
}

// BrowserConfig holds Chrome launch options and the bounded waits used
// while driving the page.
type BrowserConfig struct {
	Headless     bool   `yaml:"headless"      env:"BROWSER_HEADLESS"`
	NoSandbox    bool   `yaml:"no_sandbox"    env:"BROWSER_NO_SANDBOX"`
	ExecPath     string `yaml:"exec_path"     env:"BROWSER_EXEC_PATH"`
	UserDataDir  string `yaml:"user_data_dir" env:"BROWSER_USER_DATA_DIR"`
	UserAgent    string `yaml:"user_agent"    env:"BROWSER_USER_AGENT"`
	WindowWidth  int    `yaml:"window_width"  env:"BROWSER_WINDOW_WIDTH"  env-default:"1280"`
	WindowHeight int    `yaml:"window_height" env:"BROWSER_WINDOW_HEIGHT" env-default:"900"`

	ReloadTimeout     time.Duration `yaml:"reload_timeout"      env:"BROWSER_RELOAD_TIMEOUT"      env-default:"15s"`
	PageLoadTimeout   time.Duration `yaml:"page_load_timeout"   env:"BROWSER_PAGE_LOAD_TIMEOUT"   env-default:"60s"`
	LandmarkTimeout   time.Duration `yaml:"landmark_timeout"    env:"BROWSER_LANDMARK_TIMEOUT"    env-default:"30s"`
	FolderListTimeout time.Duration `yaml:"folder_list_timeout" env:"BROWSER_FOLDER_LIST_TIMEOUT" env-default:"20s"`
	CardsURLTimeout   time.Duration `yaml:"cards_url_timeout"   env:"BROWSER_CARDS_URL_TIMEOUT"   env-default:"15s"`
	SectionTimeout    time.Duration `yaml:"section_timeout"     env:"BROWSER_SECTION_TIMEOUT"     env-default:"20s"`
	PagerTimeout      time.Duration `yaml:"pager_timeout"       env:"BROWSER_PAGER_TIMEOUT"       env-default:"10s"`
	ActivePageTimeout time.Duration `yaml:"active_page_timeout" env:"BROWSER_ACTIVE_PAGE_TIMEOUT" env-default:"15s"`
	RerenderTimeout   time.Duration `yaml:"rerender_timeout"    env:"BROWSER_RERENDER_TIMEOUT"    env-default:"10s"`
	ReadyTimeout      time.Duration `yaml:"ready_timeout"       env:"BROWSER_READY_TIMEOUT"       env-default:"15s"`
	CardsTimeout      time.Duration `yaml:"cards_timeout"       env:"BROWSER_CARDS_TIMEOUT"       env-default:"10s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// MetricsConfig holds the optional Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr" env:"METRICS_ADDR"`
}

// DefaultBrowserConfig returns the browser settings used when nothing is configured.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		WindowWidth:       1280,
		WindowHeight:      900,
		ReloadTimeout:     15 * time.Second,
		PageLoadTimeout:   60 * time.Second,
		LandmarkTimeout:   30 * time.Second,
		FolderListTimeout: 20 * time.Second,
		CardsURLTimeout:   15 * time.Second,
		SectionTimeout:    20 * time.Second,
		PagerTimeout:      10 * time.Second,
		ActivePageTimeout: 15 * time.Second,
		RerenderTimeout:   10 * time.Second,
		ReadyTimeout:      15 * time.Second,
		CardsTimeout:      10 * time.Second,
	}
}

func (b BrowserConfig) timeouts() map[string]time.Duration {
	return map[string]time.Duration{
		"reload_timeout":      b.ReloadTimeout,
		"page_load_timeout":   b.PageLoadTimeout,
		"landmark_timeout":    b.LandmarkTimeout,
		"folder_list_timeout": b.FolderListTimeout,
		"cards_url_timeout":   b.CardsURLTimeout,
		"section_timeout":     b.SectionTimeout,
		"pager_timeout":       b.PagerTimeout,
		"active_page_timeout": b.ActivePageTimeout,
		"rerender_timeout":    b.RerenderTimeout,
		"ready_timeout":       b.ReadyTimeout,
		"cards_timeout":       b.CardsTimeout,
	}
}
