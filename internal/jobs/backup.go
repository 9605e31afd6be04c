package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"shortsd/internal/jobs/interfaces"
	"shortsd/internal/models"
	"shortsd/internal/providers"
	"shortsd/internal/services"

	json "github.com/goccy/go-json"
)

// BackupManager writes the catalog to a compressed JSON file and reads it
// back.
type BackupManager struct {
	catalog    services.CatalogInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewBackupManager(compressor interfaces.CompressorInterface, catalog services.CatalogInterface, logger providers.Logger) *BackupManager {
	return &BackupManager{
		compressor: compressor,
		catalog:    catalog,
		logger:     logger,
	}
}

// SaveToFile exports the catalog and replaces fileName atomically.
func (b *BackupManager) SaveToFile(ctx context.Context, fileName string) error {
	dump, err := b.catalog.Export(ctx)
	if err != nil {
		return err
	}

	jsonData, err := json.Marshal(dump)
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	data, err := b.compressor.Compress(jsonData)
	if err != nil {
		return fmt.Errorf("compressing backup: %w", err)
	}

	if dir := filepath.Dir(fileName); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

// LoadFromFile imports a backup. A missing file is not an error. Only an
// empty catalog is restored so that a backup never duplicates snapshots.
func (b *BackupManager) LoadFromFile(ctx context.Context, fileName string) (bool, error) {
	count, err := b.catalog.CountVideos(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		b.logger.Debugf(providers.TypeApp, "Catalog holds %d videos, backup not restored", count)
		return false, nil
	}

	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	decompressed, err := b.compressor.Decompress(data)
	if err != nil {
		return false, fmt.Errorf("decompressing backup: %w", err)
	}

	var dump models.Dump
	if err := json.Unmarshal(decompressed, &dump); err != nil {
		return false, fmt.Errorf("decoding backup: %w", err)
	}
	if err := b.catalog.Import(ctx, &dump); err != nil {
		return false, err
	}
	b.logger.Infof(providers.TypeApp, "Restored %d videos and %d snapshots from %s",
		len(dump.Videos), len(dump.Snapshots), fileName)
	return true, nil
}
