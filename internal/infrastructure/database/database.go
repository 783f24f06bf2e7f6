package database

import (
	"errors"
	"strings"

	"wedding-invitation/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// IsPostgres reports whether dsn points at a Postgres server rather than a sqlite file.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open opens a GORM DB. Postgres URLs use the pgx driver with PreferSimpleProtocol
// (poolers reject cached prepared statements); anything else is a sqlite file path.
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	if IsPostgres(dsn) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), cfg)
	}

	db, err := gorm.Open(sqlite.Open(sqliteDSN(dsn)), cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; serialising on a single connection avoids SQLITE_BUSY
	// and keeps ":memory:" databases shared.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// IsDuplicateKey reports whether err is a unique-constraint violation. TranslateError
// covers Postgres; the glebarez sqlite driver is matched on its message.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}

func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "wedding.db"
	}
	if dsn == ":memory:" || strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}

// Models lists every table the service owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		&domain.Guest{},
		&domain.RSVP{},
		&domain.Wish{},
		&domain.AdminUser{},
		&domain.PasswordResetToken{},
		&domain.Setting{},
		&domain.BackupHistory{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
