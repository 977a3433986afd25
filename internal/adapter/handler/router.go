package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/clinic-assistant/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg                *config.Config
	patientHandler     *Patient
	bookingHandler     *Booking
	examinationHandler *Examination
	storageHandler     *Storage
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, patientHandler *Patient, bookingHandler *Booking, examinationHandler *Examination, storageHandler *Storage) *Router {
	return &Router{
		cfg:                cfg,
		patientHandler:     patientHandler,
		bookingHandler:     bookingHandler,
		examinationHandler: examinationHandler,
		storageHandler:     storageHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupPatientRoutes(v1)
	rt.setupBookingRoutes(v1)
	rt.setupExaminationRoutes(v1)

	if rt.storageHandler != nil {
		v1.GET("/storage/info", rt.storageHandler.Info)
	}
}

// setupPatientRoutes configures patient CRUD routes
func (rt *Router) setupPatientRoutes(g *echo.Group) {
	patients := g.Group("/patients")
	patients.POST("", rt.patientHandler.Create)
	patients.GET("", rt.patientHandler.List)
	patients.GET("/:id", rt.patientHandler.Get)
	patients.PUT("/:id", rt.patientHandler.Update)
	patients.DELETE("/:id", rt.patientHandler.Delete)
}

// setupBookingRoutes configures appointment scheduling routes
func (rt *Router) setupBookingRoutes(g *echo.Group) {
	bookings := g.Group("/bookings")
	bookings.POST("", rt.bookingHandler.Create)
	bookings.GET("", rt.bookingHandler.List)
	bookings.GET("/:id", rt.bookingHandler.Get)
	bookings.PUT("/:id", rt.bookingHandler.Update)
}

// setupExaminationRoutes configures the examination workflow routes
func (rt *Router) setupExaminationRoutes(g *echo.Group) {
	sessions := g.Group("/sessions")
	sessions.POST("", rt.examinationHandler.StartSession)
	sessions.GET("", rt.examinationHandler.ListSessions)
	sessions.GET("/:id", rt.examinationHandler.GetSession)
	sessions.POST("/:id/recordings", rt.examinationHandler.UploadRecording)
	sessions.POST("/:id/analyze", rt.examinationHandler.Analyze)
	sessions.GET("/:id/analysis", rt.examinationHandler.GetAnalysis)
	sessions.PUT("/:id/note", rt.examinationHandler.SaveNote)
	sessions.POST("/:id/note/finalize", rt.examinationHandler.FinalizeNote)
	sessions.POST("/:id/comparison", rt.examinationHandler.RunComparison)
	sessions.GET("/:id/comparison", rt.examinationHandler.GetComparison)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().Format(time.RFC3339),
		"environment": rt.cfg.Server.Environment,
	})
}
