package db

import (
	"database/sql"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/taskforge-dev/taskforge/migrations"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	// TranslateError surfaces unique-constraint violations as
	// gorm.ErrDuplicatedKey, the backstop for the membership invariant.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

// MigrateDatabase applies the embedded SQL migrations on a dedicated
// connection, separate from the gorm pool.
func MigrateDatabase(dsn string) error {
	conn, err := sql.Open("postgres", dsn)

	if err != nil {
		return err
	}

	defer conn.Close()

	driver, err := migratepg.WithInstance(conn, &migratepg.Config{})

	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.FS, ".")

	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)

	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
