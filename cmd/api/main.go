package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	httpadp "debt-ledger/internal/adapter/http"
	"debt-ledger/internal/adapter/idempotency"
	"debt-ledger/internal/adapter/repository/mysql"
	"debt-ledger/internal/config"
	"debt-ledger/internal/infrastructure/cache"
	"debt-ledger/internal/infrastructure/db"
	"debt-ledger/internal/infrastructure/logging"
	loanuc "debt-ledger/internal/usecase/loan"
	"debt-ledger/internal/usecase/settlement"
	walletuc "debt-ledger/internal/usecase/wallet"
)

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		fatal(logger, "invalid config", err)
	}

	gdb, err := openDB(cfg)
	if err != nil {
		fatal(logger, "database unavailable", err)
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			fatal(logger, "migration failed", err)
		}
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		fatal(logger, "database handle", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		fatal(logger, "redis unavailable", err)
	}
	defer rdb.Close()

	loans := mysql.NewLoanRepository(gdb)
	investments := mysql.NewInvestmentRepository(gdb)
	wallets := mysql.NewWalletRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	engine := settlement.NewUsecase(loans, investments, wallets, tx,
		idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL()), logger)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	// routes
	httpadp.RegisterRoutes(e, httpadp.Handlers{
		Health: httpadp.NewHandler(map[string]httpadp.Check{
			"db":    sqlDB.PingContext,
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Loans:       httpadp.NewLoanHandler(loanuc.NewUsecase(loans, tx), engine),
		Investments: httpadp.NewInvestmentHandler(engine),
		Wallets:     httpadp.NewWalletHandler(walletuc.NewUsecase(wallets), engine),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	go func() {
		logger.Info("listening", "addr", addr, "db", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server stopped", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == config.DriverSQLite {
		return db.OpenSQLite(cfg.SQLitePath, gormlogger.Warn)
	}
	return db.OpenGorm(cfg.MySQLDSN(), gormlogger.Warn)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
