package web

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/VannaNotGianna/DBP-PROYECTO/internal/account"
	"github.com/VannaNotGianna/DBP-PROYECTO/internal/database"
	"github.com/VannaNotGianna/DBP-PROYECTO/internal/patient"
	"github.com/VannaNotGianna/DBP-PROYECTO/internal/validator"
)

// Canonical response messages, kept byte-for-byte with the observed contract.
const (
	msgLoginOK            = "Correcto inicio de sesion"
	msgLoginOKPage        = "Correcto inicio sesion"
	msgWrongPassword      = "Contraseña incorrecta"
	msgNoUsuario          = "Usuario no existe"
	msgInvalidDNI         = "DNI inválido"
	msgUsuarioExists      = "Usuario ya existe"
	msgStaffUsuarioOK     = "Usuario creado correctamente"
	msgPatientUsuarioOK   = "Usuario creado"
	msgAlreadyLinked      = "Paciente ya registrado"
	msgPacienteDNIMissing = "DNI de paciente no existe"
	msgPersonExists       = "Persona con este DNI ya ha sido registrada"
	msgPacienteOK         = "Paciente registrado correctamente"
	msgPacienteEdited     = "Paciente editado correctamente"
	msgPacienteDeleted    = "Paciente eliminado con exito"
	msgNoPaciente         = "No existe paciente"
	msgNoResidencia       = "Residencia no existe"
	msgBackendError       = "Error en el BE"
	msgBackendErrorEdit   = "Error en BE"
	msgBadRequest         = "Solicitud inválida"
)

type Handler struct {
	store    *session.Store
	accounts account.Manager
	patients patient.Manager
	validate *validator.Validator
	db       database.Store
}

func NewHandler(store *session.Store, accounts account.Manager, patients patient.Manager, validate *validator.Validator, db database.Store) Handler {
	return Handler{store: store, accounts: accounts, patients: patients, validate: validate, db: db}
}

// currentUser resolves the logged-in usuario from the session, or nil.
func (h *Handler) currentUser(c *fiber.Ctx) *database.Usuario {
	sess, err := h.store.Get(c)
	if err != nil {
		return nil
	}
	id, ok := sess.Get("user_id").(int)
	if !ok {
		return nil
	}
	usuario, err := h.accounts.GetUsuarioByID(c.Context(), id)
	if err != nil {
		return nil
	}
	return &usuario
}

func (h *Handler) ShowHomePage(c *fiber.Ctx) error {
	return c.Render("home", fiber.Map{
		"User":    h.currentUser(c),
		"Flashes": consumeFlashes(c, h.store),
	})
}

func (h *Handler) ShowLoginPage(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{
		"User":    h.currentUser(c),
		"Flashes": consumeFlashes(c, h.store),
	})
}

// Login handles the browser form flow: flash the outcome, redirect home on
// success, re-render the login page otherwise.
func (h *Handler) Login(c *fiber.Ctx) error {
	login := c.FormValue("user")
	password := c.FormValue("password")

	usuario, err := h.accounts.Authenticate(c.Context(), login, password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrUsuarioNotFound):
			addFlash(c, h.store, "error", msgNoUsuario)
		case errors.Is(err, account.ErrInvalidCredentials):
			addFlash(c, h.store, "error", msgWrongPassword)
		default:
			slog.Error("Failed to authenticate", "error", err)
			return err
		}
		return h.ShowLoginPage(c)
	}

	if err := h.establishSession(c, usuario); err != nil {
		slog.Error("Failed to establish session", "error", err)
		return err
	}

	addFlash(c, h.store, "success", msgLoginOKPage)
	return c.Redirect("/")
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		slog.Error("Failed to get session", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to get session")
	}

	userID := sess.Get("user_id")
	if err := sess.Destroy(); err != nil {
		slog.Error("Failed to destroy session", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to destroy session")
	}

	if userID != nil {
		slog.Info("User logged out", "user_id", userID, "ip", c.IP())
	}

	return c.Redirect("/login")
}

func (h *Handler) ShowRegistroUsuarioPage(c *fiber.Ctx) error {
	return c.Render("registro_usuario", fiber.Map{
		"User":    h.currentUser(c),
		"Flashes": consumeFlashes(c, h.store),
	})
}

func (h *Handler) ShowRegistroPacientePage(c *fiber.Ctx) error {
	return c.Render("registro_paciente", fiber.Map{
		"User":    h.currentUser(c),
		"Flashes": consumeFlashes(c, h.store),
	})
}

// RegistroPaciente is the page-flow registration: a JSON body posted from the
// form page, outcome delivered as a flash on the re-rendered page.
func (h *Handler) RegistroPaciente(c *fiber.Ctx) error {
	var req registroPacienteRequest
	if err := c.BodyParser(&req); err != nil {
		addFlash(c, h.store, "error", msgBadRequest)
		return h.ShowRegistroPacientePage(c)
	}
	if err := h.validate.Validate(req); err != nil {
		addFlash(c, h.store, "error", msgBadRequest)
		return h.ShowRegistroPacientePage(c)
	}

	err := h.patients.Register(c.Context(), patient.RegisterParam{
		DNI:          req.DNI,
		Nombre:       req.Nombre,
		Apellido:     req.Apellido,
		Edad:         req.Edad,
		Habitacion:   req.Habitacion,
		ResidenciaID: req.Residencia,
	})
	switch {
	case err == nil:
		addFlash(c, h.store, "success", msgPacienteOK)
	case errors.Is(err, patient.ErrPacienteExists):
		addFlash(c, h.store, "error", msgPersonExists)
	case errors.Is(err, patient.ErrResidenciaNotFound):
		addFlash(c, h.store, "error", msgNoResidencia)
	default:
		slog.Error("Failed to register paciente", "error", err)
		addFlash(c, h.store, "error", msgBackendError)
	}

	return h.ShowRegistroPacientePage(c)
}

func (h *Handler) ShowPacientesPage(c *fiber.Ctx) error {
	pacientes, err := h.patients.List(c.Context())
	if err != nil {
		slog.Error("Failed to list pacientes", "error", err)
		return err
	}

	return c.Render("ver_pacientes", fiber.Map{
		"User":      h.currentUser(c),
		"Pacientes": pacientes,
		"Flashes":   consumeFlashes(c, h.store),
	})
}

func (h *Handler) ShowEditarPacientePage(c *fiber.Ctx) error {
	paciente, err := h.patients.Get(c.Context(), c.Params("dni"))
	if err != nil && !errors.Is(err, patient.ErrPacienteNotFound) {
		slog.Error("Failed to get paciente", "error", err)
		return err
	}

	data := fiber.Map{
		"User":    h.currentUser(c),
		"Flashes": consumeFlashes(c, h.store),
	}
	if err == nil {
		data["Paciente"] = paciente
	}
	return c.Render("editar_paciente", data)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		slog.Error("Health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// establishSession is the remember-me login: the session (and its cookie)
// lives for the store-configured expiration.
func (h *Handler) establishSession(c *fiber.Ctx, usuario database.Usuario) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set("user_id", usuario.ID)
	if err := sess.Save(); err != nil {
		return err
	}

	slog.Info("User logged in", "login", usuario.Usuario, "user_id", usuario.ID, "ip", c.IP())
	return nil
}
