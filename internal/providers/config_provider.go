package providers

import (
	"fmt"
	"path/filepath"
	"shortsd/internal/structures"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var defaultSearchQueries = []string{
	"trending music shorts",
	"viral sound tiktok",
	"popular audio shorts",
	"music trend 2024",
	"catchy beat shorts",
	"viral song snippet",
	"trending audio clip",
	"music short viral",
	"sound trend shorts",
	"popular music clip",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 5002)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", "logs")
	v.SetDefault("persistence.filePath", "data/catalog.bak")
	v.SetDefault("persistence.saveInterval", time.Hour)
	v.SetDefault("provider.baseUrl", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("provider.region", "US")
	v.SetDefault("provider.pageSize", 50)
	v.SetDefault("provider.searchMaxResults", 50)
	v.SetDefault("provider.searchOrder", "relevance")
	v.SetDefault("provider.publishedAfter", "2024-01-01T00:00:00Z")
	v.SetDefault("provider.searchQueries", defaultSearchQueries)
	v.SetDefault("provider.requestsPerSecond", 1.0)
	v.SetDefault("provider.timeout", 20*time.Second)
	v.SetDefault("provider.retry.maxAttempts", 5)
	v.SetDefault("provider.retry.initialDelay", 2*time.Second)
	v.SetDefault("provider.retry.maxDelay", 30*time.Second)
	v.SetDefault("ingestion.shortsMaxSeconds", 60)
	v.SetDefault("ranking.candidateWindow", 500)
	v.SetDefault("ranking.topN", 10)
	v.SetDefault("catalog.dbPath", "data/shorts.db")
	v.SetDefault("media.dir", "media")
	v.SetDefault("cache.ttl", 30*time.Second)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	setDefaults(v)

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.BindEnv("logger.level", "SHORTSD_LOG_LEVEL")
	v.BindEnv("provider.apiKey", "SHORTSD_API_KEY", "YOUTUBE_API_KEY")
	v.BindEnv("provider.region", "SHORTSD_REGION_CODE", "REGION_CODE")
	v.BindEnv("ingestion.shortsMaxSeconds", "SHORTSD_SHORTS_MAX_SECONDS", "SHORTS_MAX_SECONDS")
	v.BindEnv("ingestion.interval", "SHORTSD_INGESTION_INTERVAL")
	v.BindEnv("ranking.topN", "SHORTSD_TOP_N", "TOP_N_DOWNLOAD")
	v.BindEnv("catalog.dbPath", "SHORTSD_DB_PATH", "DB_PATH")
	v.BindEnv("media.dir", "SHORTSD_MEDIA_DIR", "MEDIA_DIR")
	v.BindEnv("webServer.port", "SHORTSD_PORT", "PORT")
	v.BindEnv("cache.enabled", "SHORTSD_CACHE_ENABLED")
	v.BindEnv("cache.size", "SHORTSD_CACHE_SIZE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "ShortsTrendDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
