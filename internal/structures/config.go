package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"maxAttempts"`
	InitialDelay time.Duration `yaml:"initialDelay"`
	MaxDelay     time.Duration `yaml:"maxDelay"`
}

// ProviderConfig describes the YouTube Data API endpoint and query defaults.
type ProviderConfig struct {
	APIKey            string        `yaml:"apiKey"`
	BaseURL           string        `yaml:"baseUrl" validate:"required|fullUrl"`
	Region            string        `yaml:"region" validate:"required|minLen:2"`
	PageSize          int           `yaml:"pageSize" validate:"min:1|max:50"`
	SearchMaxResults  int           `yaml:"searchMaxResults" validate:"min:1|max:50"`
	SearchOrder       string        `yaml:"searchOrder" validate:"in:relevance,date,rating,viewCount,title"`
	PublishedAfter    string        `yaml:"publishedAfter"`
	SearchQueries     []string      `yaml:"searchQueries"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Timeout           time.Duration `yaml:"timeout"`
	Retry             RetryConfig   `yaml:"retry"`
}

type IngestionConfig struct {
	ShortsMaxSeconds int           `yaml:"shortsMaxSeconds" validate:"required|min:1"`
	Interval         time.Duration `yaml:"interval"`
}

type RankingConfig struct {
	CandidateWindow int `yaml:"candidateWindow" validate:"required|min:1"`
	TopN            int `yaml:"topN" validate:"required|min:1"`
}

type CatalogConfig struct {
	DBPath string `yaml:"dbPath" validate:"required"`
}

type MediaConfig struct {
	Dir       string `yaml:"dir" validate:"required"`
	Transcode bool   `yaml:"transcode"`
	PublicURL string `yaml:"publicUrl"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server          `yaml:"webServer"`
	Persistence Persistence     `yaml:"persistence"`
	Logger      LoggerConfig    `yaml:"logger"`
	Provider    ProviderConfig  `yaml:"provider"`
	Ingestion   IngestionConfig `yaml:"ingestion"`
	Ranking     RankingConfig   `yaml:"ranking"`
	Catalog     CatalogConfig   `yaml:"catalog"`
	Media       MediaConfig     `yaml:"media"`
	Cache       CacheConfig     `yaml:"cache"`
	Metrics     MetricsConfig   `yaml:"metrics"`
}
