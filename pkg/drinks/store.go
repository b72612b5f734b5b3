package drinks

import (
	"context"
	"database/sql"
	errs "errors"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when no drink exists with the requested ID
var ErrNotFound = errs.New("drink not found")

// ErrDuplicateTitle is returned when creating or renaming a drink to a title
// that is already on the menu
var ErrDuplicateTitle = errs.New("a drink with this title already exists")

// Store is the interface for the drinks menu storage
type Store interface {
	// List returns all drinks on the menu
	List(ctx context.Context) ([]Drink, error)
	// Get returns a single drink by ID
	Get(ctx context.Context, id int64) (Drink, error)
	// Create adds a new drink and returns it with its assigned ID
	Create(ctx context.Context, drink Drink) (Drink, error)
	// Update replaces the title and recipe of an existing drink
	Update(ctx context.Context, drink Drink) (Drink, error)
	// Delete removes a drink by ID
	Delete(ctx context.Context, id int64) error
}

// DB wraps gorm.DB and exposes Close
type DB struct {
	gorm *gorm.DB
	sql  *sql.DB
}

// Close closes the underlying connection pool
func (d *DB) Close() error { return d.sql.Close() }

// Open connects to the Postgres database at the given DSN
func Open(ctx context.Context, dsn string) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("missing DSN")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to the database")
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(10)
	sdb.SetMaxIdleConns(5)
	if err := sdb.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to ping the database")
	}
	return &DB{gorm: gdb, sql: sdb}, nil
}

// SQLStore is a Store backed by a Postgres database
type SQLStore struct {
	db *DB
}

// NewSQLStore creates a SQLStore on an open database
func NewSQLStore(db *DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) List(ctx context.Context) ([]Drink, error) {
	var list []Drink
	err := s.db.gorm.WithContext(ctx).
		Order("id").
		Find(&list).
		Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list drinks")
	}
	return list, nil
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Drink, error) {
	var drink Drink
	err := s.db.gorm.WithContext(ctx).
		First(&drink, id).
		Error
	if errs.Is(err, gorm.ErrRecordNotFound) {
		return Drink{}, ErrNotFound
	}
	if err != nil {
		return Drink{}, errors.Wrapf(err, "failed to get drink %d", id)
	}
	return drink, nil
}

func (s *SQLStore) Create(ctx context.Context, drink Drink) (Drink, error) {
	drink.ID = 0
	err := s.db.gorm.WithContext(ctx).
		Create(&drink).
		Error
	if errs.Is(err, gorm.ErrDuplicatedKey) {
		return Drink{}, ErrDuplicateTitle
	}
	if err != nil {
		return Drink{}, errors.Wrap(err, "failed to create drink")
	}
	return drink, nil
}

func (s *SQLStore) Update(ctx context.Context, drink Drink) (Drink, error) {
	res := s.db.gorm.WithContext(ctx).
		Model(&Drink{ID: drink.ID}).
		Select("Title", "Recipe").
		Updates(Drink{Title: drink.Title, Recipe: drink.Recipe})
	if errs.Is(res.Error, gorm.ErrDuplicatedKey) {
		return Drink{}, ErrDuplicateTitle
	}
	if res.Error != nil {
		return Drink{}, errors.Wrapf(res.Error, "failed to update drink %d", drink.ID)
	}
	if res.RowsAffected == 0 {
		return Drink{}, ErrNotFound
	}
	return s.Get(ctx, drink.ID)
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res := s.db.gorm.WithContext(ctx).
		Delete(&Drink{}, id)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "failed to delete drink %d", id)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
