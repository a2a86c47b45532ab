package mock

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/streamshare/backend/internal/integration/persistence/model"
)

// Db is an in-memory SQLite database migrated with every service table.
type Db struct {
	DbConn *gorm.DB
	models []any
}

// NewDb opens a private in-memory database. Each call gets its own schema,
// so scenarios never observe each other's rows.
func NewDb() (*Db, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqlDB, err := dbConn.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection also keeps the shared cache alive.
	sqlDB.SetMaxOpenConns(1)

	d := &Db{DbConn: dbConn, models: model.All()}
	if err := dbConn.AutoMigrate(d.models...); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	if err := d.checkTables(); err != nil {
		return nil, err
	}
	return d, nil
}

// Reset deletes every row while keeping the schema.
func (d *Db) Reset() error {
	for _, m := range d.models {
		err := d.DbConn.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error
		if err != nil {
			return fmt.Errorf("failed to clear %T: %w", m, err)
		}
	}
	return nil
}

// Close releases the connection, dropping the in-memory database.
func (d *Db) Close() error {
	sqlDB, err := d.DbConn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Count returns the number of rows held by the table of m.
func (d *Db) Count(m any) (int64, error) {
	var count int64
	err := d.DbConn.Model(m).Count(&count).Error
	return count, err
}

func (d *Db) checkTables() error {
	for _, m := range d.models {
		if !d.DbConn.Migrator().HasTable(m) {
			return fmt.Errorf("table for model %T was not created", m)
		}
	}
	return nil
}
