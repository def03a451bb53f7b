package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ETLConfig содержит конфигурацию для ETL-процесса
type ETLConfig struct {
	// Хранилище профилей сотрудников и журнала запусков
	Storage DatabaseConfig `envPrefix:"DB_"`

	// Адреса отчётов-источников
	Sources SourcesConfig `envPrefix:"RAAS_"`

	// Политика повторов при загрузке отчётов
	Fetch FetchConfig `envPrefix:"FETCH_"`

	// Интервал запуска ETL в режиме scheduled
	RunInterval time.Duration `env:"ETL_RUN_INTERVAL" envDefault:"1h" validate:"gt=0"`

	// Количество строк в одном INSERT при загрузке
	BatchSize int `env:"ETL_BATCH_SIZE" envDefault:"500" validate:"gt=0,lte=2000"`

	// Извлекать три отчёта параллельно
	ConcurrentExtract bool `env:"ETL_CONCURRENT_EXTRACT" envDefault:"false"`

	// Адрес HTTP-сервера статуса (/metrics, /healthz, /ws/runs) в режиме scheduled
	StatusAddr string `env:"ETL_STATUS_ADDR" envDefault:":9108"`

	// Включение/отключение подробного логирования
	EnableDetailedLogging bool `env:"ETL_VERBOSE" envDefault:"false"`

	// Каталог для файлов лога; пусто - только stdout
	LogDir string `env:"LOG_DIR"`

	// Формат лога: text или json
	LogFormat string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
}

// SourcesConfig описывает три отчёта-источника
type SourcesConfig struct {
	EmployeesURL    string `env:"EMPLOYEES_URL" envDefault:"http://localhost:5000/raas/employees" validate:"required,url"`
	CompensationURL string `env:"COMPENSATION_URL" envDefault:"http://localhost:5000/raas/compensation" validate:"required,url"`
	DepartmentsURL  string `env:"DEPARTMENTS_URL" envDefault:"http://localhost:5000/raas/departments" validate:"required,url"`

	// Ключ со списком записей в ответе отчёта
	PayloadKey string `env:"PAYLOAD_KEY" envDefault:"Report_Entry" validate:"required"`

	// Базовая авторизация для отчётов (необязательно)
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`

	// Запрашивать ответы, сжатые snappy
	Snappy bool `env:"SNAPPY" envDefault:"false"`
}

// FetchConfig содержит параметры повторов HTTP-запросов
type FetchConfig struct {
	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"3" validate:"gte=1,lte=10"`
	BackoffBase float64       `env:"BACKOFF_BASE" envDefault:"2" validate:"gte=1"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"10s" validate:"gt=0"`
}

// DatabaseConfig содержит настройки подключения к базе данных
type DatabaseConfig struct {
	Driver string `env:"DRIVER" envDefault:"sqlite" validate:"oneof=sqlite mysql postgres"`

	// Путь к файлу SQLite
	Path string `env:"PATH" envDefault:"data/workday.db"`

	// Полная строка подключения; если задана, остальные поля игнорируются
	DSN string `env:"DSN"`

	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"3306"`
	User     string `env:"USER" envDefault:"root"`
	Password string `env:"PASSWORD"`
	DBName   string `env:"NAME" envDefault:"workforce"`
}

// LoadEnvFiles загружает переменные окружения из существующих .env файлов
func LoadEnvFiles(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// GetConfig возвращает конфигурацию ETL из окружения
func GetConfig() (ETLConfig, error) {
	var cfg ETLConfig

	if _, err := LoadEnvFiles(".env", ".env.local"); err != nil {
		return cfg, fmt.Errorf("ошибка чтения .env: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("ошибка разбора переменных окружения: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate проверяет конфигурацию
func (c ETLConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("некорректная конфигурация ETL: %w", err)
	}
	if c.Storage.Driver == "sqlite" && c.Storage.Path == "" && c.Storage.DSN == "" {
		return fmt.Errorf("некорректная конфигурация ETL: для sqlite нужен DB_PATH или DB_DSN")
	}
	return nil
}
