// Package backup snapshots the embedded database and restores guest-facing tables from a snapshot.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	historyLimit = 50
	filePrefix   = "snapshot_"
	fileSuffix   = ".db"
	batchSize    = 200
)

// Service writes snapshots into Dir.
type Service struct {
	DB  *gorm.DB
	Dir string
	Now func() time.Time
}

// Snapshot describes one file in Dir.
type Snapshot struct {
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) requireSQLite() error {
	if s.DB.Dialector.Name() != "sqlite" {
		return apperr.Validation("Backups are only available for the embedded sqlite database")
	}
	return nil
}

func (s *Service) record(ctx context.Context, action, filename, status string, details map[string]interface{}) {
	b, _ := json.Marshal(details)
	h := domain.BackupHistory{ActionType: action, Filename: filename, Status: status, Details: datatypes.JSON(b), CreatedAt: s.now()}
	if err := s.DB.WithContext(ctx).Create(&h).Error; err != nil {
		log.Error().Err(err).Str("action", action).Str("filename", filename).Msg("failed to record backup history")
	}
}

// sanitize reduces a client-supplied name to a snapshot file name inside Dir.
func sanitize(filename string) (string, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == string(filepath.Separator) || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return "", apperr.ValidationField("filename", "Invalid backup filename")
	}
	return name, nil
}

// Backup writes a consistent copy of the live database with VACUUM INTO.
func (s *Service) Backup(ctx context.Context) (*Snapshot, error) {
	if err := s.requireSQLite(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, apperr.Storage(err)
	}
	now := s.now()
	stamp := now.Format("2006-01-02_150405")
	name := filePrefix + stamp + fileSuffix
	for n := 1; ; n++ {
		if _, err := os.Stat(filepath.Join(s.Dir, name)); errors.Is(err, os.ErrNotExist) {
			break
		}
		name = fmt.Sprintf("%s%s_%d%s", filePrefix, stamp, n, fileSuffix)
	}
	path := filepath.Join(s.Dir, name)

	if err := s.DB.WithContext(ctx).Exec("VACUUM INTO ?", path).Error; err != nil {
		s.record(ctx, domain.BackupActionBackup, name, domain.BackupStatusFailed, map[string]interface{}{"error": err.Error()})
		return nil, apperr.Storage(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	s.record(ctx, domain.BackupActionBackup, name, domain.BackupStatusSuccess, map[string]interface{}{"message": "Stored on server", "size": info.Size()})
	log.Info().Str("filename", name).Int64("size", info.Size()).Msg("database snapshot written")
	return &Snapshot{Filename: name, Size: info.Size(), CreatedAt: now}, nil
}

type snapshotData struct {
	rsvps    []domain.RSVP
	wishes   []domain.Wish
	guests   []domain.Guest
	settings []domain.Setting
}

func readSnapshot(path string) (*snapshotData, error) {
	snap, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if sqlDB, err := snap.DB(); err == nil {
		defer sqlDB.Close()
	}

	data := &snapshotData{}
	load := func(model interface{}, dest interface{}) error {
		if !snap.Migrator().HasTable(model) {
			return nil
		}
		return snap.Find(dest).Error
	}
	if err := load(&domain.RSVP{}, &data.rsvps); err != nil {
		return nil, err
	}
	if err := load(&domain.Wish{}, &data.wishes); err != nil {
		return nil, err
	}
	if err := load(&domain.Guest{}, &data.guests); err != nil {
		return nil, err
	}
	if err := load(&domain.Setting{}, &data.settings); err != nil {
		return nil, err
	}
	return data, nil
}

func replace[T any](tx *gorm.DB, rows []T) error {
	var zero T
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&zero).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(&rows, batchSize).Error
}

// Restore replaces rsvps, wishes, guests and settings with the snapshot's rows in one transaction.
// Admin accounts and backup history are left alone.
func (s *Service) Restore(ctx context.Context, filename string) error {
	if err := s.requireSQLite(); err != nil {
		return err
	}
	name, err := sanitize(filename)
	if err != nil {
		return err
	}
	path := filepath.Join(s.Dir, name)
	if _, err := os.Stat(path); err != nil {
		return apperr.NotFound("Backup file not found").With("filename", name)
	}

	fail := func(err error) error {
		s.record(ctx, domain.BackupActionRestore, name, domain.BackupStatusFailed, map[string]interface{}{"error": err.Error()})
		return apperr.Storage(err)
	}
	data, err := readSnapshot(path)
	if err != nil {
		return fail(err)
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := replace(tx, data.rsvps); err != nil {
			return err
		}
		if err := replace(tx, data.wishes); err != nil {
			return err
		}
		if err := replace(tx, data.guests); err != nil {
			return err
		}
		return replace(tx, data.settings)
	})
	if err != nil {
		return fail(err)
	}
	s.record(ctx, domain.BackupActionRestore, name, domain.BackupStatusSuccess, map[string]interface{}{
		"message":  "Restored from server history",
		"rsvps":    len(data.rsvps),
		"wishes":   len(data.wishes),
		"guests":   len(data.guests),
		"settings": len(data.settings),
	})
	log.Info().Str("filename", name).Int("guests", len(data.guests)).Msg("database restored from snapshot")
	return nil
}

// Open returns the snapshot file for download. The caller closes it.
func (s *Service) Open(filename string) (*os.File, string, error) {
	name, err := sanitize(filename)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(filepath.Join(s.Dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", apperr.NotFound("Backup file not found").With("filename", name)
		}
		return nil, "", apperr.Storage(err)
	}
	return f, name, nil
}

// Snapshots lists files in Dir, newest first.
func (s *Service) Snapshots() ([]Snapshot, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Snapshot{}, nil
		}
		return nil, apperr.Storage(err)
	}
	out := []Snapshot{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Snapshot{Filename: e.Name(), Size: info.Size(), CreatedAt: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename > out[j].Filename })
	return out, nil
}

// History returns the most recent backup/restore records.
func (s *Service) History(ctx context.Context) ([]domain.BackupHistory, error) {
	out := []domain.BackupHistory{}
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(historyLimit).Find(&out).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return out, nil
}
