package router

import (
	"net/http"

	allocsvc "goodplay-backend/internal/application/allocation"
	compliancesvc "goodplay-backend/internal/application/compliance"
	donsvc "goodplay-backend/internal/application/donations"
	onlussvc "goodplay-backend/internal/application/onlus"
	poolsvc "goodplay-backend/internal/application/pools"
	reqsvc "goodplay-backend/internal/application/requests"
	"goodplay-backend/internal/audit"
	"goodplay-backend/internal/config"
	"goodplay-backend/internal/infrastructure/cache"
	"goodplay-backend/internal/infrastructure/database"
	allochandler "goodplay-backend/internal/interfaces/handlers/allocation"
	healthhandler "goodplay-backend/internal/interfaces/handlers/health"
	onlushandler "goodplay-backend/internal/interfaces/handlers/onlus"
	poolhandler "goodplay-backend/internal/interfaces/handlers/pools"
	reqhandler "goodplay-backend/internal/interfaces/handlers/requests"
	"goodplay-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp wires middleware, services and routes into a Fiber app. The DB and
// Redis handles are returned so callers can ping them on startup and close them
// on shutdown.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		var errRdb error
		rdb, errRdb = cache.Open(cfg.RedisURL)
		if errRdb != nil {
			return nil, nil, nil, errRdb
		}
		app.Use(middleware.HealthMarker(rdb))
	}
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	if db != nil {
		pools := &poolsvc.Service{DB: db}
		donations := &donsvc.Service{DB: db}
		compliance := &compliancesvc.Provider{DB: db, Redis: rdb}
		engine := allocsvc.NewEngine(db, pools, compliance, donations, audit.ZerologSink{}, allocsvc.Config{
			ScoreThreshold:   cfg.ScoreThreshold,
			ExecutionEpsilon: cfg.ExecutionEpsilon,
			FeeRate:          cfg.FeeRate,
			BatchSize:        cfg.BatchSize,
			BatchWorkers:     cfg.BatchWorkers,
		})

		// Pools
		ph := &poolhandler.Handlers{Service: pools}
		pg := app.Group("/api/v1/pools")
		pg.Post("/create-pool", ph.CreatePool)
		pg.Get("/view-pools", ph.ViewPools)
		pg.Get("/view-pool/:pool_id", ph.ViewPool)
		pg.Get("/pool-statistics/:pool_id", ph.PoolStatistics)
		pg.Post("/add-funds", ph.AddFunds)
		pg.Post("/release-reservation", ph.ReleaseReservation)
		pg.Post("/pause-pool", ph.PausePool)
		pg.Post("/reactivate-pool", ph.ReactivatePool)
		pg.Post("/close-pool", ph.ClosePool)
		pg.Delete("/delete-pool/:pool_id", ph.DeletePool)

		// Requests
		reqs := &reqsvc.Service{DB: db}
		rh := &reqhandler.Handlers{Service: reqs}
		rg := app.Group("/api/v1/requests")
		rg.Post("/create-request", rh.CreateRequest)
		rg.Get("/view-request/:request_id", rh.ViewRequest)
		rg.Get("/view-pending", rh.ViewPending)
		rg.Post("/cancel-request", rh.CancelRequest)

		// Allocations
		ah := &allochandler.Handlers{Engine: engine, Donations: donations}
		ag := app.Group("/api/v1/allocations")
		ag.Post("/process", ah.Process)
		ag.Post("/execute", ah.Execute)
		ag.Post("/process-batch", ah.ProcessBatch)
		ag.Post("/emergency", ah.Emergency)
		ag.Post("/retry-result", ah.RetryResult)
		ag.Get("/view-result/:result_id", ah.ViewResult)
		ag.Get("/view-result-transactions/:result_id", ah.ViewResultTransactions)
		ag.Get("/rank-pools/:request_id", ah.RankPools)

		// ONLUS registry + compliance scores
		orgs := &onlussvc.Service{DB: db}
		oh := &onlushandler.Handlers{Service: orgs, Compliance: compliance}
		og := app.Group("/api/v1/onlus")
		og.Post("/register-onlus", oh.RegisterOnlus)
		og.Get("/view-all-onlus", oh.ViewAllOnlus)
		og.Get("/view-onlus/:onlus_id", oh.ViewOnlus)
		og.Patch("/update-onlus", oh.UpdateOnlus)
		og.Post("/record-funding", oh.RecordFunding)
		og.Post("/record-compliance-score", oh.RecordComplianceScore)
		og.Get("/view-compliance-score/:onlus_id", oh.ViewComplianceScore)
	}

	return app, db, rdb, nil
}

// Handler adapts the Fiber app for net/http serving (serverless entry).
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
