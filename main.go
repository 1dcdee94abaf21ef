package main

import (
	"context"
	"log"
	"strings"

	"campus-records-go/classroom"
	"campus-records-go/config"
	"campus-records-go/db"
	"campus-records-go/handlers"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	store, closeStore, err := db.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open record store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("error closing record store", zap.Error(err))
		}
	}()

	classrooms := classroom.NewService(store, logger)

	if cfg.SeedData {
		checkAndSeedData(ctx, classrooms, logger)
	}

	apiHandler := handlers.NewAPIHandler(store, classrooms, logger, cfg.BannerTTL, cfg.SessionTTL)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", handlers.HeaderRole, handlers.HeaderStudentID, handlers.HeaderSessionID},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: !allowsAnyOrigin(cfg.CORSOrigins),
	}))

	apiHandler.Register(router.Group("/api"))

	addr := ":" + cfg.Port
	logger.Info("starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("failed to run server", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	if cfg.LogDev {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}

// checkAndSeedData adds demo classrooms when the store holds none
func checkAndSeedData(ctx context.Context, classrooms *classroom.Service, logger *zap.Logger) {
	existing := classrooms.ListClassrooms(ctx)
	if len(existing) > 0 {
		logger.Info("found existing classrooms, skipping seed data", zap.Int("count", len(existing)))
		return
	}
	logger.Info("no classrooms found, adding seed data")
	seedInitialData(ctx, classrooms, logger)
}

// seedInitialData creates a demo classroom with subjects and students
func seedInitialData(ctx context.Context, classrooms *classroom.Service, logger *zap.Logger) {
	demo, err := classrooms.CreateClassroom(ctx, "II B.Tech CSE - A")
	if err != nil {
		logger.Error("error adding seed classroom", zap.Error(err))
		return
	}
	if _, err := classrooms.ImportTimetableSubjects(ctx, demo.ID); err != nil {
		logger.Error("error adding seed subjects", zap.String("classroom_id", demo.ID), zap.Error(err))
	}

	students := []struct{ roll, name string }{
		{"22CS001", "Aarav Sharma"},
		{"22CS002", "Diya Patel"},
		{"22CS003", "Rohan Iyer"},
	}
	for _, st := range students {
		if _, err := classrooms.JoinClass(ctx, demo.ClassCode, st.roll, st.name); err != nil {
			logger.Error("error adding seed student", zap.String("roll_number", st.roll), zap.Error(err))
		}
	}
	logger.Info("seed data added", zap.String("classroom_id", demo.ID), zap.String("class_code", demo.ClassCode))
}
