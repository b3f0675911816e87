package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/postgres/v3"
	"github.com/gofiber/template/html/v2"
	"github.com/joho/godotenv"

	"github.com/VannaNotGianna/DBP-PROYECTO/internal/account"
	"github.com/VannaNotGianna/DBP-PROYECTO/internal/config"
	"github.com/VannaNotGianna/DBP-PROYECTO/internal/database"
	"github.com/VannaNotGianna/DBP-PROYECTO/internal/middleware"
	"github.com/VannaNotGianna/DBP-PROYECTO/internal/patient"
	"github.com/VannaNotGianna/DBP-PROYECTO/internal/validator"
	"github.com/VannaNotGianna/DBP-PROYECTO/internal/web"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Server.Environment)

	db, err := database.NewPostgresDatabase(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	sessionStorage := postgres.New(postgres.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Name,
		Username: cfg.Database.User,
		Password: cfg.Database.Password,
		Table:    cfg.Session.Table,
		Reset:    false,
	})

	store := session.New(session.Config{
		Storage:        sessionStorage,
		KeyLookup:      "cookie:" + cfg.Session.CookieName,
		CookiePath:     "/",
		CookieSecure:   cfg.Server.Environment == "production",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		Expiration:     cfg.Session.Expiration,
	})

	validate := validator.New()
	logger := slog.Default()
	accounts := account.NewManager(logger, db)
	patients := patient.NewManager(logger, db)
	handler := web.NewHandler(store, accounts, patients, validate, db)

	engine := html.New("./views", ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: errorHandler,
	})

	app.Use(middleware.RequestLogger())

	// Rate limiting for the identity-registration endpoints.
	signupLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Demasiados intentos de registro",
			})
		},
	})

	auth := middleware.AuthenticatedSession(store)

	app.Get("/", handler.ShowHomePage)
	app.Get("/health", handler.Health)

	// Login routes
	app.Get("/login", handler.ShowLoginPage)
	app.Post("/login", handler.Login)
	app.Get("/logout", auth, handler.Logout)

	// Identity registration
	app.Get("/registro_usuario", handler.ShowRegistroUsuarioPage)
	app.Post("/usuarios/:user/registrar", signupLimiter, handler.RegistrarUsuario)

	// Patient routes (browser flow)
	app.Get("/registro_paciente", auth, handler.ShowRegistroPacientePage)
	app.Post("/registro_paciente", auth, handler.RegistroPaciente)
	app.Get("/pacientes", auth, handler.ShowPacientesPage)
	app.Get("/editar-paciente/:dni", auth, handler.ShowEditarPacientePage)
	app.Post("/pacientes/:dni/editar", auth, handler.EditarPaciente)
	app.Post("/pacientes/:id/registrar", auth, handler.RegistrarPacienteByID)
	app.Delete("/pacientes/:dni/delete-paciente", auth, handler.DeletePaciente)

	// JSON API mirror
	api := app.Group("/api")
	api.Post("/login", handler.APILogin)
	api.Post("/usuarios/:user/registrar", signupLimiter, handler.RegistrarUsuario)
	api.Post("/registro_paciente", handler.APIRegistroPaciente)
	api.Get("/ver_pacientes", handler.APIVerPacientes)
	api.Post("/pacientes/:id/registrar", handler.RegistrarPacienteByID)
	api.Post("/pacientes/:dni/editar", handler.EditarPaciente)

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, os.Interrupt)
		<-ch
		slog.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("Failed to shut down server", "error", err)
		}
	}()

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	slog.Info("Starting server", "addr", addr)
	if err := app.Listen(addr); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func setupLogger(environment string) {
	var handler slog.Handler
	if environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}

// errorHandler keeps unexpected failures generic: JSON envelope on the API
// surface, the 500 page on the browser surface.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	slog.Error("Unhandled error", "error", err, "path", c.Path(), "status", code)

	if strings.HasPrefix(c.Path(), "/api") {
		return c.Status(code).JSON(fiber.Map{"message": "Error en el BE", "error": true})
	}
	return c.Status(code).Render("500", fiber.Map{})
}
