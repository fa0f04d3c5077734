package config

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"WA-Order-Bot/internal/api/handlers"
	"WA-Order-Bot/internal/api/presenters"
	"WA-Order-Bot/internal/api/routes"
	"WA-Order-Bot/internal/database"
	"WA-Order-Bot/internal/middleware"
	"WA-Order-Bot/internal/utils"
	"WA-Order-Bot/internal/utils/mailing"
	"WA-Order-Bot/internal/utils/storage"
	"WA-Order-Bot/pkg/category"
	"WA-Order-Bot/pkg/chat"
	"WA-Order-Bot/pkg/jwt"
	"WA-Order-Bot/pkg/midtrans"
	"WA-Order-Bot/pkg/order"
	"WA-Order-Bot/pkg/product"
	"WA-Order-Bot/pkg/user"
	"WA-Order-Bot/pkg/whatsapp"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App is the HTTP server together with the background webhook workers it
// owns.
type App struct {
	*fiber.App
	webhookHandler handlers.WebhookHandler
}

// Shutdown stops accepting requests, then waits for webhook messages that
// are still being processed.
func (a *App) Shutdown(timeout time.Duration) error {
	err := a.App.ShutdownWithTimeout(timeout)
	a.webhookHandler.Wait()
	return err
}

func NewApp(db *gorm.DB, cfg *utils.Config, accessLog io.Writer) (*App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		AppName:           "WA Order Bot",
		EnablePrintRoutes: !cfg.IsProduction(),
		ErrorHandler:      errorHandler,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${locals:requestid} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		Output:     accessLog,
	}))
	app.Use(middlewares.CORSMiddleware(cfg.FrontendURL))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
		// provider callbacks are bursty and must never be throttled
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/whatsapp/") || strings.HasPrefix(c.Path(), "/webhook/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			return presenters.ErrorResponse(c, fiber.StatusTooManyRequests, "too many requests", nil)
		},
	}))

	// utils
	var s3 storage.AwsS3
	if cfg.StorageEnabled() {
		client, err := storage.NewAwsS3(context.Background(), storage.S3Config{
			Bucket:    cfg.AWSS3Bucket,
			Region:    cfg.AWSS3Region,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
		})
		if err != nil {
			return nil, err
		}
		s3 = client
	} else {
		logrus.Info("AWS S3 not configured, product image upload disabled")
	}

	var notifier order.OrderNotifier
	if cfg.MailEnabled() {
		mailer, err := mailing.NewMailer(mailing.MailConfig{
			SMTPHost:     cfg.SMTPHost,
			SMTPPort:     cfg.SMTPPort,
			SMTPSender:   cfg.SMTPSenderName,
			SMTPEmail:    cfg.SMTPAuthEmail,
			SMTPPassword: cfg.SMTPAuthPassword,
			NotifyEmail:  cfg.NotifyEmail,
			Currency:     cfg.Currency,
		})
		if err != nil {
			return nil, err
		}
		notifier = mailer
	}

	whatsappClient := whatsapp.NewWhatsAppClient(whatsapp.ClientConfig{
		APIURL:        cfg.WhatsAppAPIURL,
		AccessToken:   cfg.WhatsAppAccessToken,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
	})

	// Repository
	userRepository := user.NewUserRepository(db)
	categoryRepository := category.NewCategoryRepository(db)
	productRepository := product.NewProductRepository(db)
	orderRepository := order.NewOrderRepository(db)
	sessionRepository := chat.NewChatSessionRepository(db)
	transactor := database.NewTransactor(db)

	// Service
	jwtService := jwt.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTExpiryMinutes)*time.Minute)
	userService := user.NewUserService(userRepository, jwtService)

	var midtransService midtrans.MidtransService
	var payment order.PaymentGateway
	if cfg.MidtransEnabled() {
		midtransService = midtrans.NewMidtransService(orderRepository, cfg.MidtransServerKey, cfg.MidtransIsProd)
		payment = midtransService
	}

	categoryService := category.NewCategoryService(categoryRepository)
	productService := product.NewProductService(productRepository, categoryRepository, s3)
	orderService := order.NewOrderService(orderRepository, productRepository, transactor, payment, notifier)
	processor := chat.NewMessageProcessor(categoryRepository, productRepository, sessionRepository, orderService, cfg.Currency)
	chatService := chat.NewChatService(transactor, sessionRepository, processor, whatsappClient)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := userService.EnsureAdmin(context.Background(), cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return nil, err
		}
	}

	// Handler
	webhookHandler := handlers.NewWebhookHandler(
		chatService,
		cfg.WhatsAppVerifyToken,
		time.Duration(cfg.WebhookProcessTimeoutSeconds)*time.Second,
	)

	// routes
	routesConfig := routes.Config{
		App:                app,
		AuthHandler:        handlers.NewAuthHandler(userService, validator),
		CategoryHandler:    handlers.NewCategoryHandler(categoryService, validator),
		ProductHandler:     handlers.NewProductHandler(productService, validator),
		OrderHandler:       handlers.NewOrderHandler(orderService, validator),
		ChatSessionHandler: handlers.NewChatSessionHandler(chatService),
		WebhookHandler:     webhookHandler,
		MidtransHandler:    handlers.NewMidtransHandler(midtransService),
		Middleware:         middlewares,
		JWTService:         jwtService,
	}
	routesConfig.Setup()

	return &App{App: app, webhookHandler: webhookHandler}, nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.Path()).Error("unhandled request error")
	}
	return presenters.ErrorResponse(c, code, fiberutils.StatusMessage(code), err)
}
