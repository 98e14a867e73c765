package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	handlers "github.com/thugpay/payments/internal/adapter/handler/http"
	"github.com/thugpay/payments/internal/config"
	"github.com/thugpay/payments/internal/infrastructure/database"
	"github.com/thugpay/payments/internal/infrastructure/gateway/pagbank"
	"github.com/thugpay/payments/internal/middleware/auth"
	"github.com/thugpay/payments/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	repos    *database.Repositories
	notifier *usecase.Notifier
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func NewServer(cfg *config.Config, logger *zap.Logger, repos *database.Repositories) *Server {
	e := echo.New()
	e.Validator = &requestValidator{validate: validator.New()}

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	return &Server{
		config:   cfg,
		logger:   logger,
		echo:     e,
		repos:    repos,
		notifier: usecase.NewNotifier(&cfg.Notification, logger),
	}
}

func (s *Server) Start() error {
	// Setup routes
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return err
	}

	// Let in-flight status notifications finish before exiting.
	s.notifier.Wait()
	return nil
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Initialize gateway client and the reconciliation core
	gatewayClient := pagbank.NewClient(&s.config.Gateway, s.logger)
	resolver := usecase.NewStatusResolver(gatewayClient, s.logger)
	reconciler := usecase.NewReconciler(s.repos.Payment, resolver, s.notifier, s.logger)

	paymentHandler := handlers.NewPaymentHandler(gatewayClient, s.repos.Payment, reconciler, s.logger)
	webhookHandler := handlers.NewWebhookHandler(reconciler, s.logger)

	api := s.echo.Group("/api/payments")

	// Webhook routes: called by the gateway, which carries no system key
	api.POST("/notifications", webhookHandler.HandleGatewayNotification)
	api.POST("/webhook", webhookHandler.HandleDirectWebhook)

	// System routes (require the system key)
	protected := api.Group("", auth.SystemKeyMiddleware(auth.SystemKeyConfig{
		Key:    s.config.Auth.SystemKey,
		Logger: s.logger,
	}))

	protected.POST("/credit-card", paymentHandler.CreateCreditCardPayment)
	protected.POST("/pix", paymentHandler.CreatePixPayment)
	protected.POST("/checkout", paymentHandler.CreateCheckoutPayment)

	protected.GET("/status/:referenceId", paymentHandler.GetPaymentStatus)
	protected.GET("/status/filter/:status", paymentHandler.GetPaymentsByStatus)
	protected.GET("/all", paymentHandler.GetAllPayments)
	protected.GET("/user/:userId", paymentHandler.GetUserPayments)
}
