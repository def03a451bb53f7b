package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggerOptions задаёт параметры логгера ETL
type LoggerOptions struct {
	// Выводить отладочные сообщения
	Verbose bool
	// Каталог для ежедневного файла лога; пустая строка - только stdout
	Dir string
	// "text" или "json"
	Format string
	// Куда писать помимо файла (по умолчанию os.Stdout)
	Output io.Writer
}

// ETLLogger представляет логгер для ETL-процесса
type ETLLogger struct {
	entry     *logrus.Entry
	file      *os.File
	isVerbose bool
}

// NewETLLogger создает новый экземпляр логгера для ETL
func NewETLLogger(opts LoggerOptions) (*ETLLogger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var file *os.File
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("не удалось создать каталог логов: %w", err)
		}

		// Создаем или открываем лог-файл текущего дня
		logFileName := fmt.Sprintf("etl_log_%s.log", time.Now().Format("2006-01-02"))
		f, err := os.OpenFile(filepath.Join(opts.Dir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			return nil, fmt.Errorf("не удалось открыть или создать файл лога: %w", err)
		}
		file = f
		out = io.MultiWriter(out, f)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	if opts.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logger.SetLevel(logrus.InfoLevel)
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	return &ETLLogger{
		entry:     logrus.NewEntry(logger).WithField("component", "etl"),
		file:      file,
		isVerbose: opts.Verbose,
	}, nil
}

// NewDiscardLogger возвращает логгер, который ничего не выводит (для тестов)
func NewDiscardLogger() *ETLLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &ETLLogger{entry: logrus.NewEntry(logger)}
}

// With возвращает логгер с дополнительными полями
func (l *ETLLogger) With(fields logrus.Fields) *ETLLogger {
	return &ETLLogger{
		entry:     l.entry.WithFields(fields),
		file:      l.file,
		isVerbose: l.isVerbose,
	}
}

// Entry возвращает logrus.Entry для компонентов, которые логируют через logrus напрямую
func (l *ETLLogger) Entry() *logrus.Entry {
	return l.entry
}

// Close закрывает файл лога, если он был открыт
func (l *ETLLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Info логирует информационное сообщение
func (l *ETLLogger) Info(format string, v ...interface{}) {
	l.entry.Infof(format, v...)
}

// Warn логирует предупреждение
func (l *ETLLogger) Warn(format string, v ...interface{}) {
	l.entry.Warnf(format, v...)
}

// Error логирует сообщение об ошибке
func (l *ETLLogger) Error(format string, v ...interface{}) {
	l.entry.Errorf(format, v...)
}

// Debug логирует отладочное сообщение (только если включен verbose режим)
func (l *ETLLogger) Debug(format string, v ...interface{}) {
	l.entry.Debugf(format, v...)
}

// LogETLStart логирует начало ETL-процесса
func (l *ETLLogger) LogETLStart() {
	l.Info("Начало выполнения ETL-процесса")
}

// LogETLComplete логирует завершение ETL-процесса
func (l *ETLLogger) LogETLComplete(startTime time.Time, rowsLoaded int) {
	l.entry.WithFields(logrus.Fields{
		"duration":    time.Since(startTime).String(),
		"rows_loaded": rowsLoaded,
	}).Info("ETL-процесс завершён")
}

// LogExtractStart логирует начало фазы извлечения данных
func (l *ETLLogger) LogExtractStart() {
	l.Info("Начало фазы Extract (Извлечение данных)")
}

// LogExtractComplete логирует завершение фазы извлечения данных
func (l *ETLLogger) LogExtractComplete(employees, compensation, departments int, duration time.Duration) {
	l.entry.WithFields(logrus.Fields{
		"employees":    employees,
		"compensation": compensation,
		"departments":  departments,
		"duration":     duration.String(),
	}).Info("Фаза Extract завершена")
}
