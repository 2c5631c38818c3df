package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/workpulse/workpulse-backend/internal/attendance/consumers"
	"github.com/workpulse/workpulse-backend/internal/attendance/engine"
	attendanceevents "github.com/workpulse/workpulse-backend/internal/attendance/events"
	attendancehandler "github.com/workpulse/workpulse-backend/internal/attendance/handler"
	attendancerepo "github.com/workpulse/workpulse-backend/internal/attendance/repository"
	attendanceservice "github.com/workpulse/workpulse-backend/internal/attendance/service"
	kioskevents "github.com/workpulse/workpulse-backend/internal/kiosk/events"
	kioskhandler "github.com/workpulse/workpulse-backend/internal/kiosk/handler"
	kioskjwt "github.com/workpulse/workpulse-backend/internal/kiosk/jwt"
	kioskrepo "github.com/workpulse/workpulse-backend/internal/kiosk/repository"
	kioskservice "github.com/workpulse/workpulse-backend/internal/kiosk/service"
	orgevents "github.com/workpulse/workpulse-backend/internal/organization/events"
	orghandler "github.com/workpulse/workpulse-backend/internal/organization/handler"
	orgrepo "github.com/workpulse/workpulse-backend/internal/organization/repository"
	orgservice "github.com/workpulse/workpulse-backend/internal/organization/service"
	"github.com/workpulse/workpulse-backend/pkg/config"
	"github.com/workpulse/workpulse-backend/pkg/database"
	"github.com/workpulse/workpulse-backend/pkg/httputil"
	"github.com/workpulse/workpulse-backend/pkg/logger"
	"github.com/workpulse/workpulse-backend/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.Load("attendance-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("attendance-service", cfg.Server.Environment)
	log.Info().Msg("starting Attendance Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publishers
	attendancePublisher, err := attendanceevents.NewAttendanceEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create attendance event publisher")
	}
	organizationPublisher, err := orgevents.NewOrganizationEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create organization event publisher")
	}
	kioskPublisher, err := kioskevents.NewKioskEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create kiosk event publisher")
	}

	// Initialize repositories
	shiftRepo := attendancerepo.NewShiftRepository(db)
	employeeCacheRepo := attendancerepo.NewEmployeeCacheRepository(db)
	organizationRepo := orgrepo.NewOrganizationRepository(db)
	terminalRepo := kioskrepo.NewTerminalRepository(db)

	// Initialize services. The organization service feeds schedules into the
	// resolver and invalidates its cache on schedule changes.
	organizationService := orgservice.NewOrganizationService(organizationRepo, organizationPublisher, log)
	resolver := engine.NewResolver(organizationService,
		engine.WithCacheTTL(cfg.Engine.ScheduleCacheTTL),
		engine.WithFallbackSchedule(fallbackSchedule(&cfg.Engine)),
	)
	organizationService.BindResolver(resolver)

	attendanceService := attendanceservice.NewAttendanceService(shiftRepo, attendancePublisher, organizationService, resolver, log)
	reportService := attendanceservice.NewReportService(shiftRepo, organizationService, resolver, log)

	jwtManager := kioskjwt.NewManager(&cfg.JWT)
	kioskService := kioskservice.NewKioskService(terminalRepo, jwtManager, kioskPublisher, log)

	// Initialize handlers
	attendanceHandler := attendancehandler.NewAttendanceHandler(attendanceService, log)
	reportHandler := attendancehandler.NewReportHandler(reportService, log)
	organizationHandler := orghandler.NewOrganizationHandler(organizationService, log)
	kioskHandler := kioskhandler.NewKioskHandler(kioskService, attendanceService, log)

	// Start event consumers
	scheduleConsumer, err := consumers.NewScheduleEventConsumer(rmq, resolver, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create schedule event consumer")
	}
	employeeConsumer, err := consumers.NewEmployeeEventConsumer(rmq, employeeCacheRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create employee event consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduleConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start schedule event consumer")
	}
	if err := employeeConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start employee event consumer")
	}

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))

	// CORS - supports subdomain-based multi-tenancy
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			if origin == "http://localhost:3000" || origin == "http://localhost:5173" {
				return true
			}
			// Allow *.localhost:3000 subdomains for development
			if len(origin) > 21 && origin[len(origin)-15:] == ".localhost:3000" {
				return true
			}
			// Allow *.workpulse.io for production
			if len(origin) > 13 && origin[len(origin)-13:] == ".workpulse.io" {
				return true
			}
			if origin == "https://workpulse.io" || origin == "http://workpulse.io" {
				return true
			}
			return false
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(httputil.TenantMiddleware) // Tenant middleware with /health and kiosk punch exceptions

	// Health check (no tenant required - handled by middleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "attendance-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes (tenant required)
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/attendance", func(r chi.Router) {
			r.Route("/employees/{id}", func(r chi.Router) {
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/check-out", attendanceHandler.CheckOut)
				r.Post("/break/start", attendanceHandler.StartBreak)
				r.Post("/break/end", attendanceHandler.EndBreak)
				r.Get("/status", attendanceHandler.GetStatus)
				r.Post("/manual-check-in", attendanceHandler.ManualCheckIn)
				r.Post("/manual-check-out", attendanceHandler.ManualCheckOut)
				r.Get("/corrections", attendanceHandler.GetEmployeeCorrections)
				r.Get("/summary", reportHandler.GetEmployeeSummary)
			})

			r.Route("/shifts", func(r chi.Router) {
				r.Get("/{id}", attendanceHandler.GetShift)
				r.Delete("/{id}", attendanceHandler.DeleteShift)
				r.Post("/{id}/correct", attendanceHandler.CorrectShift)
			})

			r.Get("/reports/daily", reportHandler.GetDailyReport)
			r.Get("/reports/shifts", reportHandler.GetShiftsByDate)
		})

		r.Route("/organizations", func(r chi.Router) {
			r.Get("/", organizationHandler.List)
			r.Post("/", organizationHandler.Create)
			r.Get("/{id}", organizationHandler.Get)
			r.Put("/{id}", organizationHandler.Update)
			r.Delete("/{id}", organizationHandler.Delete)
			r.Put("/{id}/holiday-mode", organizationHandler.SetHolidayMode)
			r.Get("/{id}/special-dates", organizationHandler.ListSpecialDates)
			r.Put("/{id}/special-dates", organizationHandler.SetSpecialDate)
			r.Delete("/{id}/special-dates", organizationHandler.RemoveSpecialDate)
		})

		r.Route("/kiosk", func(r chi.Router) {
			r.Route("/terminals", func(r chi.Router) {
				r.Get("/", kioskHandler.ListTerminals)
				r.Post("/", kioskHandler.RegisterTerminal)
				r.Post("/{id}/revoke", kioskHandler.RevokeTerminal)
				r.Post("/{id}/token", kioskHandler.RenewToken)
			})
			r.Put("/employees/{id}/pin", kioskHandler.SetEmployeePIN)
			r.Post("/punch", kioskHandler.Punch)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop consumers
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// fallbackSchedule builds the schedule used for shifts without an
// organization, overlaying the configured window on the built-in default.
func fallbackSchedule(cfg *config.EngineConfig) *engine.OrganizationSchedule {
	schedule := engine.DefaultSchedule()

	open, okOpen := engine.ParseTimeOfDay(cfg.DefaultOpenTime)
	closeAt, okClose := engine.ParseTimeOfDay(cfg.DefaultCloseTime)
	if okOpen && okClose && closeAt > open {
		schedule.DefaultOpen = open
		schedule.DefaultClose = closeAt
	}
	if cfg.GraceMinutes > 0 {
		schedule.GraceMinutes = cfg.GraceMinutes
	}

	return schedule
}
