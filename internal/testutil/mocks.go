package testutil

import (
	"context"
	"os"
	"path/filepath"
	"shortsd/internal/catalog"
	"shortsd/internal/media"
	"shortsd/internal/models"
	"shortsd/internal/providers"
	"sync"
	"testing"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu     sync.Mutex
	Data   map[string][]byte
	Purges int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Purges++
	m.Data = make(map[string][]byte)
}

func (m *MockCache) PurgeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Purges
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu                  sync.Mutex
	Ingested            map[string]int
	PipelineRuns        map[string]int
	Downloads           map[string]int
	PersistenceObserved int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Ingested:     map[string]int{},
		PipelineRuns: map[string]int{},
		Downloads:    map[string]int{},
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceObserved++
}
func (m *MockMetrics) AddIngested(source string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ingested[source] += count
}
func (m *MockMetrics) IncPipelineRuns(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PipelineRuns[status]++
}
func (m *MockMetrics) IncDownloads(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Downloads[status]++
}

// MockCompressor implements jobs.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

// MockResolver implements media.Resolver. DownloadAudio writes a small file
// so that served paths exist on disk.
type MockResolver struct {
	mu        sync.Mutex
	Streams   map[string]models.AudioStream
	Failing   map[string]error
	Warnings  map[string]error
	Fetched   []string
	Extension string
}

func NewMockResolver() *MockResolver {
	return &MockResolver{
		Streams:   map[string]models.AudioStream{},
		Failing:   map[string]error{},
		Warnings:  map[string]error{},
		Extension: "m4a",
	}
}

func (m *MockResolver) ResolveAudio(_ context.Context, videoID string) (models.AudioStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Failing[videoID]; ok {
		return models.AudioStream{}, err
	}
	s, ok := m.Streams[videoID]
	if !ok {
		return models.AudioStream{}, media.ErrNoAudio
	}
	return s, nil
}

func (m *MockResolver) DownloadAudio(_ context.Context, videoID, dir string) (media.Fetched, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Failing[videoID]; ok {
		return media.Fetched{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return media.Fetched{}, err
	}
	path := filepath.Join(dir, videoID+"."+m.Extension)
	if err := os.WriteFile(path, []byte("audio:"+videoID), 0o644); err != nil {
		return media.Fetched{}, err
	}
	m.Fetched = append(m.Fetched, videoID)
	return media.Fetched{
		Path:        path,
		Format:      m.Extension,
		DurationSec: 30,
		Bytes:       int64(6 + len(videoID)),
		Warning:     m.Warnings[videoID],
	}, nil
}

// NewCatalog opens an empty catalog in a temporary directory.
func NewCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	s, err := catalog.Open(filepath.Join(t.TempDir(), "shorts.db"))
	if err != nil {
		t.Fatalf("opening catalog: %s", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
