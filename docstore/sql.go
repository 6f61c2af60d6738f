package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/etnz/fiado"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// record is a row of the documents table.
type record struct {
	Collection string `gorm:"primaryKey;size:32"`
	ID         string `gorm:"primaryKey;size:64"`
	Created    int64  `gorm:"index;not null"`
	Version    int64  `gorm:"not null"`
	Data       string `gorm:"type:text;not null"`
}

func (record) TableName() string { return "documents" }

func (r record) document() fiado.Document {
	return fiado.Document{ID: r.ID, Version: r.Version, Data: json.RawMessage(r.Data)}
}

// SQL is a DocumentStore persisted in a single table of a SQL database.
type SQL struct {
	db *gorm.DB
}

// OpenSQL connects to a database, driver is "sqlite" or "postgres", and
// creates the documents table if needed.
func OpenSQL(driver, dsn string) (*SQL, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown sql driver %q: want sqlite or postgres", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		// a single writer avoids "database is locked" errors.
		sqlDB.SetMaxOpenConns(1)
		_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
	}
	return NewSQL(db)
}

// NewSQL uses an existing gorm connection, and creates the documents table if
// needed.
func NewSQL(db *gorm.DB) (*SQL, error) {
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrate documents table: %w", err)
	}
	return &SQL{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// List returns documents in creation order.
func (s *SQL) List(ctx context.Context, c fiado.Collection) ([]fiado.Document, error) {
	var rows []record
	err := s.db.WithContext(ctx).Where("collection = ?", string(c)).Order("created, id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	docs := make([]fiado.Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, r.document())
	}
	return docs, nil
}

func (s *SQL) Get(ctx context.Context, c fiado.Collection, id string) (fiado.Document, error) {
	var r record
	err := s.db.WithContext(ctx).Where("collection = ? AND id = ?", string(c), id).Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiado.Document{}, fmt.Errorf("%s/%s: %w", c, id, fiado.ErrNotFound)
	}
	if err != nil {
		return fiado.Document{}, fmt.Errorf("get %s/%s: %w", c, id, err)
	}
	return r.document(), nil
}

func (s *SQL) Create(ctx context.Context, c fiado.Collection, data json.RawMessage) (fiado.Document, error) {
	return s.Put(ctx, c, uuid.NewString(), data, 0)
}

func (s *SQL) Put(ctx context.Context, c fiado.Collection, id string, data json.RawMessage, expect int64) (fiado.Document, error) {
	if !json.Valid(data) {
		return fiado.Document{}, fmt.Errorf("%s/%s: invalid json document", c, id)
	}
	var d fiado.Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old record
		err := tx.Where("collection = ? AND id = ?", string(c), id).Take(&old).Error
		exists := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if expect != fiado.AnyVersion && old.Version != expect {
			return fmt.Errorf("%s/%s at version %d, expected %d: %w", c, id, old.Version, expect, fiado.ErrConflict)
		}

		if !exists {
			r := record{Collection: string(c), ID: id, Created: stamp(), Version: 1, Data: string(data)}
			if err := tx.Create(&r).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("%s/%s created concurrently: %w", c, id, fiado.ErrConflict)
				}
				return err
			}
			d = r.document()
			return nil
		}

		res := tx.Model(&record{}).
			Where("collection = ? AND id = ? AND version = ?", string(c), id, old.Version).
			Updates(map[string]any{"version": old.Version + 1, "data": string(data)})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%s/%s changed concurrently: %w", c, id, fiado.ErrConflict)
		}
		d = fiado.Document{ID: id, Version: old.Version + 1, Data: data}
		return nil
	})
	if err != nil {
		if errors.Is(err, fiado.ErrConflict) {
			return fiado.Document{}, err
		}
		return fiado.Document{}, fmt.Errorf("put %s/%s: %w", c, id, err)
	}
	log.Debug().Str("collection", string(c)).Str("id", id).Int64("version", d.Version).Msg("document written")
	return d, nil
}

func (s *SQL) Delete(ctx context.Context, c fiado.Collection, id string, expect int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("collection = ? AND id = ?", string(c), id)
		if expect != fiado.AnyVersion {
			q = q.Where("version = ?", expect)
		}
		res := q.Delete(&record{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		var old record
		err := tx.Where("collection = ? AND id = ?", string(c), id).Take(&old).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%s/%s: %w", c, id, fiado.ErrNotFound)
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("%s/%s at version %d, expected %d: %w", c, id, old.Version, expect, fiado.ErrConflict)
	})
	if err != nil && !errors.Is(err, fiado.ErrNotFound) && !errors.Is(err, fiado.ErrConflict) {
		return fmt.Errorf("delete %s/%s: %w", c, id, err)
	}
	return err
}

// Find scans the collection, documents are opaque to the database.
func (s *SQL) Find(ctx context.Context, c fiado.Collection, field, value string) ([]fiado.Document, error) {
	docs, err := s.List(ctx, c)
	if err != nil {
		return nil, err
	}
	return filter(c, docs, field, value)
}
