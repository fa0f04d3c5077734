package routes

import (
	"WA-Order-Bot/domain"
	"WA-Order-Bot/internal/api/handlers"
	"WA-Order-Bot/internal/middleware"
	"WA-Order-Bot/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App                *fiber.App
	AuthHandler        handlers.AuthHandler
	CategoryHandler    handlers.CategoryHandler
	ProductHandler     handlers.ProductHandler
	OrderHandler       handlers.OrderHandler
	ChatSessionHandler handlers.ChatSessionHandler
	WebhookHandler     handlers.WebhookHandler
	MidtransHandler    handlers.MidtransHandler
	Middleware         middleware.Middleware
	JWTService         jwt.JWTService
}

func (c *Config) Setup() {
	c.GuestRoute()
	c.Auth()
	c.Products()
	c.Orders()
	c.ChatSessions()
	c.Webhooks()
}

func (c *Config) GuestRoute() {
	c.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}

func (c *Config) Auth() {
	auth := c.App.Group("/api/auth")
	{
		auth.Post("/login", c.AuthHandler.Login)
		auth.Get("/me", c.Middleware.AuthMiddleware(c.JWTService), c.AuthHandler.Me)
	}
}

// adminOnly authenticates the request and requires the admin role.
func (c *Config) adminOnly() []fiber.Handler {
	return []fiber.Handler{
		c.Middleware.AuthMiddleware(c.JWTService),
		c.Middleware.RequireRole(domain.RoleAdmin),
	}
}

func (c *Config) Products() {
	admin := c.adminOnly()
	guarded := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, admin...), h)
	}

	// categories are registered first so /categories is not captured by /:id
	categories := c.App.Group("/api/products/categories")
	{
		categories.Get("", c.CategoryHandler.GetCategories)
		categories.Get("/:id", c.CategoryHandler.GetCategory)
		categories.Post("", guarded(c.CategoryHandler.CreateCategory)...)
		categories.Put("/:id", guarded(c.CategoryHandler.UpdateCategory)...)
		categories.Delete("/:id", guarded(c.CategoryHandler.DeleteCategory)...)
	}

	products := c.App.Group("/api/products")
	{
		products.Get("", c.ProductHandler.GetProducts)
		products.Get("/:id", c.ProductHandler.GetProduct)
		products.Post("", guarded(c.ProductHandler.CreateProduct)...)
		products.Put("/:id", guarded(c.ProductHandler.UpdateProduct)...)
		products.Delete("/:id", guarded(c.ProductHandler.DeleteProduct)...)
		products.Post("/:id/image", guarded(c.ProductHandler.UploadProductImage)...)
	}
}

func (c *Config) Orders() {
	orders := c.App.Group("/api/orders", c.adminOnly()...)
	{
		orders.Get("", c.OrderHandler.GetOrders)
		orders.Get("/:id", c.OrderHandler.GetOrder)
		orders.Post("", c.OrderHandler.CreateOrder)
		orders.Patch("/:id/status", c.OrderHandler.UpdateOrderStatus)
	}
}

func (c *Config) ChatSessions() {
	sessions := c.App.Group("/api/chat-sessions", c.adminOnly()...)
	{
		sessions.Get("", c.ChatSessionHandler.GetSessions)
		sessions.Get("/:phone", c.ChatSessionHandler.GetSession)
		sessions.Delete("/:phone", c.ChatSessionHandler.ResetSession)
	}
}

func (c *Config) Webhooks() {
	c.App.Get("/whatsapp/webhook", c.WebhookHandler.VerifyWebhook)
	c.App.Post("/whatsapp/webhook", c.WebhookHandler.ReceiveWebhook)
	c.App.Post("/webhook/midtrans", c.MidtransHandler.MidtransWebhookHandler)
}
