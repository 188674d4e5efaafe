package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"

	"github.com/bst-contable/invoice-api/internal/api/handler"
	"github.com/bst-contable/invoice-api/internal/api/middleware"
	"github.com/bst-contable/invoice-api/internal/core/domain"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Invoices  *handler.InvoiceHandler
	Intake    *handler.IntakeHandler
	Gmail     *handler.GmailHandler
	Dashboard *handler.DashboardHandler
	Health    *handler.HealthHandler
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(h Handlers, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("facturas"))

	// --- Unauthenticated surface ---
	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/login", h.Auth.Login)

	e.GET("/health", h.Health.Liveness)
	e.GET("/health/ready", h.Health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Authenticated API ---
	auth := middleware.Auth(jwtSecret)
	reviewers := middleware.Reviewers()
	admins := middleware.RBAC(domain.RoleAdmin)

	v1 := e.Group("/v1", auth)

	users := v1.Group("/users")
	users.POST("", h.Users.Create, admins)
	users.GET("", h.Users.List)
	users.GET("/:id", h.Users.Get)
	users.PUT("/:id", h.Users.Update, admins)
	users.DELETE("/:id", h.Users.Delete, admins)

	invoices := v1.Group("/invoices")
	invoices.POST("", h.Invoices.Create)
	invoices.GET("", h.Invoices.List)
	invoices.GET("/export/excel", h.Invoices.Export)
	invoices.GET("/:id", h.Invoices.Get)
	invoices.PUT("/:id", h.Invoices.Update)
	invoices.DELETE("/:id", h.Invoices.Delete, reviewers)
	invoices.PATCH("/:id/validate", h.Invoices.Validate, reviewers)
	invoices.GET("/:id/download", h.Invoices.Download)

	ocr := v1.Group("/ocr")
	ocr.POST("/process", h.Intake.Process)
	ocr.POST("/process-and-create", h.Intake.Commit)
	ocr.GET("/supported-formats", h.Intake.Formats)
	ocr.GET("/invoice/:id/ocr-data", h.Intake.OCRData)

	gmail := v1.Group("/gmail", reviewers)
	gmail.GET("/auth/status", h.Gmail.Status)
	gmail.GET("/auth/url", h.Gmail.AuthURL)
	gmail.GET("/auth/callback", h.Gmail.Callback)
	gmail.POST("/process-invoices", h.Gmail.Process)
	gmail.POST("/process-invoices/sync", h.Gmail.ProcessSync)
	gmail.GET("/stats", h.Gmail.Stats)
	gmail.GET("/emails/search", h.Gmail.SearchEmails)
	gmail.GET("/emails/:id", h.Gmail.GetEmail)
	gmail.GET("/emails/:id/attachments/:attachment_id", h.Gmail.DownloadAttachment)
	gmail.POST("/emails/:id/mark-read", h.Gmail.MarkRead)

	dashboard := v1.Group("/dashboard")
	dashboard.GET("/stats", h.Dashboard.Stats)
	dashboard.GET("/basic", h.Dashboard.Basic)
	dashboard.GET("/trends", h.Dashboard.Trends)
	dashboard.GET("/users", h.Dashboard.Users)
	dashboard.GET("/categories", h.Dashboard.Categories)
	dashboard.GET("/payment-methods", h.Dashboard.PaymentMethods)
	dashboard.GET("/validation", h.Dashboard.Validation)
	dashboard.GET("/activity", h.Dashboard.Activity)

	return e
}
