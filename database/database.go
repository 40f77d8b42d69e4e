package database

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql" // Load the mysql driver
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Database mysql DB
type Database struct {
	Conn *sqlx.DB
}

// New create new DB
func New(config *DBConfig) (*Database, error) {
	db, err := sqlx.Connect(config.Type, getDatabaseDSN(config))
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to database")
	}
	db.SetConnMaxLifetime(config.MaxLifetime)
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	return &Database{
		Conn: db,
	}, nil
}

// Close DB
func (d *Database) Close() error {
	return d.Conn.Close()
}

func getDatabaseDSN(config *DBConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", config.UserName, config.Password, config.Host, config.Port, config.Name)
}
