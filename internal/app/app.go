package app

import (
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/advance"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/agent"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/contract"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/middleware"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/payroll"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/config"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/connection"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/counter"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/sursalaire"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func BuildApp(router *gin.Engine, cfg config.Config) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPass,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
		5,
	)
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		return err
	}

	if cfg.RunMigrations {
		if err := migrate(gormDB); err != nil {
			return err
		}
	}

	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))
	router.Use(middleware.RateLimitByIP(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst))

	return registerModules(router, gormDB, redisClient)
}

func migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&counter.ReferenceCounter{},
		&agent.Agent{},
		&contract.Contract{},
		&payroll.Payroll{},
		&advance.Advance{},
		&advance.Repayment{},
		&sursalaire.Sursalaire{},
	); err != nil {
		return err
	}

	// The outbox is written through database/sql, outside gorm's models.
	return gormDB.Exec(`
CREATE TABLE IF NOT EXISTS outbox_events (
	id UUID PRIMARY KEY,
	request_id TEXT,
	aggregate_type TEXT NOT NULL,
	aggregate_id UUID NOT NULL,
	event_type TEXT NOT NULL,
	topic TEXT NOT NULL,
	payload JSONB NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	retry_count INT NOT NULL DEFAULT 0,
	error_message TEXT,
	next_retry_at TIMESTAMPTZ,
	processed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`).Error
}
