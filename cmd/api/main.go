package main

import (
	"context"
	"fmt"

	"goodplay-backend/internal/config"
	"goodplay-backend/internal/interfaces/router"
	"goodplay-backend/internal/jobs"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var fiberApp *fiber.App
var appCfg *config.Config
var startupDB *gorm.DB
var startupRdb *redis.Client

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load: " + err.Error())
	}
	appCfg = cfg
	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		panic("app create: " + err.Error())
	}
	fiberApp = app
	startupDB = db
	startupRdb = rdb
}

func main() {
	port := appCfg.Port

	// Verify connections before printing startup logs
	if startupDB != nil {
		sqlDB, err := startupDB.DB()
		if err != nil {
			panic("Postgres: get DB: " + err.Error())
		}
		if err := sqlDB.Ping(); err != nil {
			panic("Postgres connection failed: " + err.Error())
		}
		fmt.Println("Postgres connected")
	}
	if startupRdb != nil {
		if err := startupRdb.Ping(context.Background()).Err(); err != nil {
			panic("Redis connection failed: " + err.Error())
		}
		fmt.Println("Redis connected")
	}

	// Background auto-allocation runs only here, never in the serverless entry.
	if startupDB != nil {
		manager, err := jobs.Start(startupDB, startupRdb, appCfg)
		if err != nil {
			panic("jobs start: " + err.Error())
		}
		defer manager.Stop()
	}

	fmt.Printf("Server running at http://localhost:%s\n", port)
	fmt.Printf("Health check: http://localhost:%s/health/json\n", port)
	fmt.Println("---")

	if err := fiberApp.Listen(":" + port); err != nil {
		panic(err)
	}
}
