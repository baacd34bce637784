package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/walletvault/internal/logging"
	"github.com/gofiber/fiber/v2"
)

// Server owns the fiber app and its lifecycle.
type Server struct {
	app    *fiber.App
	addr   string
	logger logging.Logger
}

func NewServer(addr string, h *Handler, l logging.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})

	registerRoutes(app, h)

	return &Server{app: app, addr: addr, logger: l.With("module", "http_server")}
}

func registerRoutes(app *fiber.App, h *Handler) {
	api := app.Group("/api/v1")
	api.Get("/ping", h.Ping)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Register)
	authGroup.Post("/login", h.Login)
	authGroup.Post("/verify-2fa", h.VerifySecondFactor)
	authGroup.Post("/refresh", h.Refresh)
	authGroup.Post("/logout", h.Logout)
	authGroup.Patch("/password", h.RequireAuth, h.ChangePassword)
	authGroup.Get("/check-username", h.CheckUsername)
	authGroup.Post("/request-password-reset", h.RequestPasswordReset)
	authGroup.Post("/verify-reset-code", h.VerifyResetCode)
	authGroup.Post("/reset-password", h.ResetPassword)

	wallet := api.Group("/wallet", h.RequireAuth)
	wallet.Get("/", h.GetWallet)
	wallet.Put("/seed", h.PutWalletSeed)
}

// Run serves until ctx is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "http server starting", "addr", s.addr)
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "http server stopping")
		return s.app.ShutdownWithTimeout(10 * time.Second)
	}
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
