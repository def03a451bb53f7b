package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc регистрирует драйвер под именем "sqlite", sqlx о нём не знает
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Connector открывает подключение к хранилищу на время одного запуска ETL
type Connector func(ctx context.Context) (*sqlx.DB, error)

// DriverName возвращает имя драйвера database/sql для выбранного хранилища
func (c DatabaseConfig) DriverName() string {
	switch c.Driver {
	case "postgres":
		return "pgx"
	default:
		return c.Driver
	}
}

// ConnectionString формирует строку подключения
func (c DatabaseConfig) ConnectionString() string {
	if c.DSN != "" {
		return c.DSN
	}

	switch c.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	case "postgres":
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
			Path:     c.DBName,
			RawQuery: "sslmode=disable",
		}
		return u.String()
	default:
		return c.Path
	}
}

// NewConnector возвращает Connector для заданной конфигурации
func NewConnector(cfg DatabaseConfig) Connector {
	return func(ctx context.Context) (*sqlx.DB, error) {
		return ConnectDatabase(ctx, cfg)
	}
}

// ConnectDatabase устанавливает подключение к хранилищу
func ConnectDatabase(ctx context.Context, cfg DatabaseConfig) (*sqlx.DB, error) {
	if cfg.Driver == "sqlite" && cfg.DSN == "" {
		// Каталог для файла базы может ещё не существовать
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("ошибка создания каталога базы данных: %w", err)
			}
		}
	}

	db, err := sqlx.Open(cfg.DriverName(), cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных %s: %w", cfg.Driver, err)
	}

	// Настройка параметров подключения
	if cfg.Driver == "sqlite" {
		// SQLite допускает только одного писателя
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	// Проверка подключения
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось установить соединение с базой данных %s: %w", cfg.Driver, err)
	}

	return db, nil
}
