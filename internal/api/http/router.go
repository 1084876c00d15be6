package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpfast/helpdesk/internal/api/http/handlers"
	"github.com/helpfast/helpdesk/internal/auth"
	"github.com/helpfast/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	Chat           *handlers.ChatHandler
	Assistant      *handlers.AssistantHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	api := app.Group("/api")

	tickets := api.Group("/tickets")
	tickets.Post("/abrir", cfg.Tickets.OpenTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/meus/:clienteId", cfg.Tickets.ListByOwner)
	tickets.Get("/status/:id", cfg.Tickets.PollStatus)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/historico", cfg.Tickets.ListHistory)
	tickets.Put("/:id/status",
		cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RoleTechnician, domain.RoleAdmin),
		cfg.Tickets.UpdateStatus)

	users := api.Group("/users")
	users.Post("/", cfg.Users.CreateUser)
	users.Get("/", cfg.Users.ListUsers)
	users.Get("/:id", cfg.Users.GetUser)
	users.Delete("/:id",
		cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RoleAdmin),
		cfg.Users.RemoveUser)

	chat := api.Group("/chat")
	chat.Post("/resultados", cfg.Chat.SaveAIResult)
	chat.Get("/resultados/:id", cfg.Chat.GetAIResult)
	chat.Get("/resultados", cfg.Chat.ListAIResults)
	chat.Post("/", cfg.Chat.PostMessage)
	chat.Get("/", cfg.Chat.ListMessages)
	chat.Get("/:id", cfg.Chat.GetMessage)

	assistant := api.Group("/assistente")
	assistant.Post("/perguntar", cfg.Assistant.AskDocument)
	assistant.Post("/chat", cfg.Assistant.Chat)
	assistant.Post("/categorizar", cfg.Assistant.Categorize)
	assistant.Post("/faqs", cfg.Assistant.SuggestFAQs)
	assistant.Get("/padroes", cfg.Assistant.AnalyzePatterns)
}
