package persistence

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
)

type DatabaseConfig struct {
	DriverType string `env:"DB_DRIVER_TYPE" env-default:"mysql"`
	DriverArgs string `env:"DB_DRIVER_ARGS" env-required:"true"`

	MaxOpenConns int  `env:"DB_MAX_OPEN_CONNS" env-default:"0"`
	MaxIdleConns int  `env:"DB_MAX_IDLE_CONNS" env-default:"0"`
	LogSQL       bool `env:"DB_LOG_SQL" env-default:"false"`
}

func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	c := DatabaseConfig{}
	if err := cleanenv.ReadEnv(&c); err != nil {
		return nil, err
	}
	c.DriverType = strings.TrimSpace(c.DriverType)
	c.DriverArgs = strings.TrimSpace(c.DriverArgs)
	if c.DriverArgs == "" {
		return nil, errors.New("DB_DRIVER_ARGS must not be blank")
	}
	return &c, nil
}

// PrepareMysqlDatabase creates the database named in the DSN if it does not exist yet.
func PrepareMysqlDatabase(driverArgs string) error {
	cfg, err := mysql.ParseDSN(driverArgs)
	if err != nil {
		return err
	}
	databaseName := cfg.DBName
	if databaseName == "" {
		return errors.New("database name is missing in " + driverArgs)
	}
	cfg.DBName = ""

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS `" + databaseName + "` DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci")
	return err
}
