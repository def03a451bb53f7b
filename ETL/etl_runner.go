package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LilVoxy/workforce_etl/ETL/config"
	"github.com/LilVoxy/workforce_etl/ETL/extractors"
	"github.com/LilVoxy/workforce_etl/ETL/load"
	"github.com/LilVoxy/workforce_etl/ETL/models"
	"github.com/LilVoxy/workforce_etl/ETL/runner"
	"github.com/LilVoxy/workforce_etl/ETL/utils"
	"github.com/LilVoxy/workforce_etl/ETL/validate"
	"github.com/LilVoxy/workforce_etl/ETL/verify"
	"github.com/LilVoxy/workforce_etl/websocket"
	"github.com/spf13/cobra"
)

// Коды завершения для планировщиков вне процесса (cron, k8s Job)
const (
	exitOK          = 0
	exitFailure     = 1
	exitValidation  = 2
	exitFetch       = 3
	exitPersistence = 4
)

// exitCode сопоставляет ошибку запуска с кодом завершения процесса
func exitCode(err error) int {
	var (
		validationErr *validate.ValidationError
		fetchErr      *extractors.FetchExhaustedError
		payloadErr    *extractors.PayloadError
		persistErr    *load.PersistenceError
	)

	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &validationErr):
		return exitValidation
	case errors.As(err, &fetchErr), errors.As(err, &payloadErr):
		return exitFetch
	case errors.As(err, &persistErr):
		return exitPersistence
	default:
		return exitFailure
	}
}

// setup загружает конфигурацию и создает логгер
func setup() (config.ETLConfig, *utils.ETLLogger, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return cfg, nil, err
	}

	logger, err := utils.NewETLLogger(utils.LoggerOptions{
		Verbose: cfg.EnableDetailedLogging,
		Dir:     cfg.LogDir,
		Format:  cfg.LogFormat,
	})
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

func newOnceCmd(code *int) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Выполнить один запуск ETL и вывести итог в JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Close()

			etl, err := runner.NewETLRunner(cfg, logger)
			if err != nil {
				return err
			}

			summary, runErr := etl.ExecuteETL(cmd.Context())
			*code = exitCode(runErr)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return err
			}
			return runErr
		},
	}
}

func newScheduledCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "scheduled",
		Short: "Запускать ETL по расписанию и обслуживать /metrics, /healthz, /ws/runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Close()

			if interval <= 0 {
				interval = cfg.RunInterval
			}

			ctx := cmd.Context()
			feed := websocket.NewManager(logger.Entry())
			go feed.Run(ctx)

			etl, err := runner.NewETLRunner(cfg, logger, runner.WithPublisher(feed))
			if err != nil {
				return err
			}

			server := &http.Server{
				Addr:              cfg.StatusAddr,
				Handler:           runner.NewStatusRouter(etl, feed),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				logger.Info("Сервер статуса ETL запущен на %s", cfg.StatusAddr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("Ошибка сервера статуса: %v", err)
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				server.Shutdown(shutdownCtx)
			}()

			return etl.StartScheduler(ctx, interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Интервал запуска (по умолчанию ETL_RUN_INTERVAL)")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var (
		xlsxPath string
		runLimit int
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Показать содержимое employee_profile и последние запуски",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			dialect, err := models.DialectFor(cfg.Storage.Driver)
			if err != nil {
				return err
			}

			db, err := config.ConnectDatabase(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			defer db.Close()

			snap, err := verify.Load(cmd.Context(), db, dialect, runLimit)
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				if err := verify.WriteXLSX(xlsxPath, snap); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Сохранено в %s: %d профилей, %d запусков\n", xlsxPath, len(snap.Profiles), len(snap.Runs))
				return nil
			}
			return verify.WriteTable(cmd.OutOrStdout(), snap)
		},
	}

	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Сохранить в файл Excel вместо вывода в консоль")
	cmd.Flags().IntVar(&runLimit, "runs", 10, "Сколько последних запусков показать")
	return cmd
}

func newRootCmd(code *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "etl",
		Short:         "ETL профилей сотрудников из отчётов RaaS",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newOnceCmd(code), newScheduledCmd(), newVerifyCmd())
	return cmd
}

func main() {
	// Контекст отменяется при получении сигнала завершения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := exitOK
	if err := newRootCmd(&code).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		if code == exitOK {
			code = exitFailure
		}
	}

	stop()
	os.Exit(code)
}
