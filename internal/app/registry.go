package app

import (
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/advance"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/agent"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/contract"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/messaging/kafka"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/payroll"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/periodguard"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/counter"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/sursalaire"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	// --- Repositories ---
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	agentRepo := agent.NewRepository(gormDB)
	contractRepo := contract.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	advanceRepo := advance.NewRepository(gormDB)
	sursalaireRepo := sursalaire.NewRepository(gormDB)

	// The guard reads payrolls; both the generator and the ledger consult it.
	guard := periodguard.New(payrollRepo)

	// --- Services ---
	agentService := agent.NewService(agentRepo, counterRepo)
	contractService := contract.NewService(contractRepo, counterRepo)
	advanceService := advance.NewService(advanceRepo, guard, counterRepo, outboxRepo)
	payrollService := payroll.NewService(
		payrollRepo,
		agentService,
		contractService,
		advanceService,
		guard,
		counterRepo,
		outboxRepo,
	)
	sursalaireService := sursalaire.NewService(
		sursalaireRepo,
		payrollRepo,
		payrollService,
		advanceRepo,
		counterRepo,
		outboxRepo,
	)

	// --- Handlers ---
	agentHandler := agent.NewHandler(agentService)
	contractHandler := contract.NewHandler(contractService)
	payrollHandler := payroll.NewHandler(payrollService, rdb)
	advanceHandler := advance.NewHandler(advanceService)
	sursalaireHandler := sursalaire.NewHandler(sursalaireService)

	// --- Routes ---
	api := router.Group("/api/v1")
	{
		agent.RegisterRoutes(api, agentHandler)
		contract.RegisterRoutes(api, contractHandler)
		payroll.RegisterRoutes(api, payrollHandler, rdb)
		advance.RegisterRoutes(api, advanceHandler)
		sursalaire.RegisterRoutes(api, sursalaireHandler)
	}

	return nil
}
