// main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LilVoxy/workforce_etl/routes"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func main() {
	addr := flag.String("addr", ":5000", "Адрес тестового сервера отчётов")
	failFirst := flag.Int("fail-first", 0, "Число ответов 503 на каждый отчёт перед успешным")
	username := flag.String("username", os.Getenv("RAAS_USERNAME"), "Логин базовой авторизации (пусто - без авторизации)")
	password := flag.String("password", os.Getenv("RAAS_PASSWORD"), "Пароль базовой авторизации")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logrus.NewEntry(logger).WithField("component", "raas_mock")

	// Создаем маршрутизатор
	router := mux.NewRouter()
	routes.SetupRoutes(router, routes.DefaultFixtures(), routes.Options{
		FailFirst: *failFirst,
		Username:  *username,
		Password:  *password,
	}, entry)

	// Настраиваем сервер
	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в отдельной горутине
	go func() {
		entry.Infof("Сервер отчётов запущен на http://localhost%s/raas", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			entry.Fatalf("Ошибка запуска сервера: %v", err)
		}
	}()

	// Канал для сигналов завершения
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Ожидаем сигнал завершения
	<-stop
	entry.Info("Получен сигнал завершения, останавливаем сервер...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		entry.Errorf("Ошибка остановки сервера: %v", err)
	}

	entry.Info("Сервер остановлен")
}
