package drinks

import (
	errs "errors"
	"net/url"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/pkg/errors"

	// Drivers for golang-migrate
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies all pending schema migrations from the SQL files in
// sourcePath to the database at the given DSN.
func Migrate(dsn string, sourcePath string) error {
	if dsn == "" {
		return errors.New("missing DSN")
	}

	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return err
	}
	src := url.URL{Scheme: "file", Path: abs}

	mig, err := migrate.New(src.String(), dsn)
	if err != nil {
		return errors.Wrap(err, "failed to init migrations")
	}
	defer mig.Close()

	err = mig.Up()
	if err != nil && !errs.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "failed to apply migrations")
	}
	return nil
}
