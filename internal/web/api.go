package web

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/VannaNotGianna/DBP-PROYECTO/internal/account"
	"github.com/VannaNotGianna/DBP-PROYECTO/internal/patient"
)

type loginRequest struct {
	User     string `json:"user" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registrarUsuarioRequest struct {
	User     string `json:"user" validate:"required"`
	Password string `json:"password" validate:"required"`
	// "1" means admin, anything else does not.
	EsAdmin string `json:"es_admin"`
	DNI     string `json:"dni" validate:"required"`

	// Staff fields, only meaningful on the admin path.
	Nombre       string `json:"nombre" validate:"required_if=EsAdmin 1"`
	Apellido     string `json:"apellido" validate:"required_if=EsAdmin 1"`
	Titulo       string `json:"titulo" validate:"required_if=EsAdmin 1"`
	Especialidad string `json:"especialidad" validate:"required_if=EsAdmin 1"`
	ResidenciaID int    `json:"residencia_id" validate:"required_if=EsAdmin 1"`
}

type registroPacienteRequest struct {
	DNI      string `json:"dni" validate:"required"`
	Nombre   string `json:"nombre" validate:"required"`
	Apellido string `json:"apellido" validate:"required"`
	// Zero is a valid edad and habitacion, only negatives are rejected.
	Edad       int `json:"edad" validate:"min=0"`
	Habitacion int `json:"habitacion" validate:"min=0"`
	Residencia int `json:"residencia" validate:"required"`
}

type registrarPacientePorIDRequest struct {
	Nombre       string `json:"nombre" validate:"required"`
	Apellido     string `json:"apellido" validate:"required"`
	Edad         int    `json:"edad" validate:"min=0"`
	Habitacion   int    `json:"habitacion" validate:"min=0"`
	ResidenciaID int    `json:"residencia_id" validate:"required"`
}

type editarPacienteRequest struct {
	DNI          string `json:"dni" validate:"required"`
	Nombre       string `json:"nombre" validate:"required"`
	Apellido     string `json:"apellido" validate:"required"`
	Edad         int    `json:"edad" validate:"min=0"`
	Habitacion   int    `json:"habitacion" validate:"min=0"`
	ResidenciaID int    `json:"residencia_id" validate:"required"`
}

type pacienteResponse struct {
	DNI        string  `json:"dni"`
	Nombre     string  `json:"nombre"`
	Apellido   string  `json:"apellido"`
	Edad       int     `json:"edad"`
	Habitacion int     `json:"habitacion"`
	Residencia string  `json:"residencia"`
	Usuario    *string `json:"usuario"`
}

// APILogin mirrors the browser login but answers with a message envelope.
// Domain failures keep HTTP 200; the message is the contract.
func (h *Handler) APILogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msgBadRequest})
	}
	if err := h.validate.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msgBadRequest})
	}

	usuario, err := h.accounts.Authenticate(c.Context(), req.User, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrUsuarioNotFound):
			return c.JSON(fiber.Map{"message": msgNoUsuario})
		case errors.Is(err, account.ErrInvalidCredentials):
			return c.JSON(fiber.Map{"message": msgWrongPassword})
		default:
			slog.Error("Failed to authenticate", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": msgBackendError})
		}
	}

	if err := h.establishSession(c, usuario); err != nil {
		slog.Error("Failed to establish session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": msgBackendError})
	}

	return c.JSON(fiber.Map{"message": msgLoginOK})
}

// RegistrarUsuario serves both surfaces (/usuarios/:user/registrar and its
// /api twin): admin creates usuario+personal atomically, non-admin attaches a
// usuario to an existing paciente.
func (h *Handler) RegistrarUsuario(c *fiber.Ctx) error {
	var req registrarUsuarioRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msgBadRequest, "error": true})
	}
	if err := h.validate.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msgBadRequest, "error": true})
	}

	var err error
	var message string
	if req.EsAdmin == "1" {
		_, err = h.accounts.CreateStaffAccount(c.Context(), account.CreateStaffAccountParam{
			Login:        req.User,
			Password:     req.Password,
			DNI:          req.DNI,
			Nombre:       req.Nombre,
			Apellido:     req.Apellido,
			Titulo:       req.Titulo,
			Especialidad: req.Especialidad,
			ResidenciaID: req.ResidenciaID,
		})
		message = msgStaffUsuarioOK
	} else {
		_, err = h.accounts.CreatePatientAccount(c.Context(), account.CreatePatientAccountParam{
			Login:    req.User,
			Password: req.Password,
			DNI:      req.DNI,
		})
		message = msgPatientUsuarioOK
	}

	switch {
	case err == nil:
	case errors.Is(err, account.ErrInvalidDNI):
		message = msgInvalidDNI
	case errors.Is(err, account.ErrUsuarioExists):
		message = msgUsuarioExists
	case errors.Is(err, account.ErrPersonExists):
		message = msgPersonExists
	case errors.Is(err, account.ErrResidenciaNotFound):
		message = msgNoResidencia
	case errors.Is(err, account.ErrPacienteNotFound):
		message = msgPacienteDNIMissing
	case errors.Is(err, account.ErrAlreadyLinked):
		message = msgAlreadyLinked
	default:
		slog.Error("Failed to register usuario", "error", err)
		return c.JSON(fiber.Map{"message": msgBackendError, "error": true})
	}

	return c.JSON(fiber.Map{"message": message, "error": false})
}

func (h *Handler) APIRegistroPaciente(c *fiber.Ctx) error {
	var req registroPacienteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msgBadRequest})
	}
	if err := h.validate.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msgBadRequest})
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
		return c.JSON(fiber.Map{"message": msgPacienteOK})
	case errors.Is(err, patient.ErrPacienteExists):
		return c.JSON(fiber.Map{"message": msgPersonExists})
	case errors.Is(err, patient.ErrResidenciaNotFound):
		return c.JSON(fiber.Map{"message": msgNoResidencia})
	default:
		slog.Error("Failed to register paciente", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": msgBackendError})
	}
}

// RegistrarPacienteByID registers a paciente keyed by the path id; the id is
// the DNI and must pass the length rule first.
func (h *Handler) RegistrarPacienteByID(c *fiber.Ctx) error {
	dni := c.Params("id")
	if !h.validate.ValidDNI(dni) {
		return c.JSON(fiber.Map{"message": msgInvalidDNI, "error": false})
	}

	var req registrarPacientePorIDRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msgBadRequest, "error": true})
	}
	if err := h.validate.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msgBadRequest, "error": true})
	}

	err := h.patients.Register(c.Context(), patient.RegisterParam{
		DNI:          dni,
		Nombre:       req.Nombre,
		Apellido:     req.Apellido,
		Edad:         req.Edad,
		Habitacion:   req.Habitacion,
		ResidenciaID: req.ResidenciaID,
	})
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": msgPacienteOK, "category": "success", "error": false})
	case errors.Is(err, patient.ErrPacienteExists):
		return c.JSON(fiber.Map{"message": msgPersonExists, "category": "error", "error": false})
	case errors.Is(err, patient.ErrResidenciaNotFound):
		return c.JSON(fiber.Map{"message": msgNoResidencia, "error": false})
	default:
		slog.Error("Failed to register paciente", "error", err)
		return c.JSON(fiber.Map{"message": msgBackendError, "error": true})
	}
}

func (h *Handler) APIVerPacientes(c *fiber.Ctx) error {
	pacientes, err := h.patients.List(c.Context())
	if err != nil {
		slog.Error("Failed to list pacientes", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": msgBackendError})
	}

	response := make([]pacienteResponse, 0, len(pacientes))
	for _, p := range pacientes {
		response = append(response, pacienteResponse{
			DNI:        p.DNI,
			Nombre:     p.Nombre,
			Apellido:   p.Apellido,
			Edad:       p.Edad,
			Habitacion: p.Habitacion,
			Residencia: p.Residencia,
			Usuario:    p.Usuario,
		})
	}
	return c.JSON(response)
}

// EditarPaciente is a full-replace edit; the body dni selects the record,
// like the observed contract.
func (h *Handler) EditarPaciente(c *fiber.Ctx) error {
	var req editarPacienteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msgBadRequest, "error": true})
	}
	if err := h.validate.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msgBadRequest, "error": true})
	}

	err := h.patients.Edit(c.Context(), patient.EditParam{
		DNI:          req.DNI,
		Nombre:       req.Nombre,
		Apellido:     req.Apellido,
		Edad:         req.Edad,
		Habitacion:   req.Habitacion,
		ResidenciaID: req.ResidenciaID,
	})
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": msgPacienteEdited, "error": false})
	case errors.Is(err, patient.ErrPacienteNotFound):
		return c.JSON(fiber.Map{"message": msgNoPaciente, "error": false})
	case errors.Is(err, patient.ErrResidenciaNotFound):
		return c.JSON(fiber.Map{"message": msgNoResidencia, "error": false})
	default:
		slog.Error("Failed to edit paciente", "error", err)
		return c.JSON(fiber.Map{"message": msgBackendErrorEdit, "error": true})
	}
}

// DeletePaciente removes the paciente and cascades to its linked usuario.
func (h *Handler) DeletePaciente(c *fiber.Ctx) error {
	dni := c.Params("dni")

	err := h.patients.Delete(c.Context(), dni)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": msgPacienteDeleted})
	case errors.Is(err, patient.ErrPacienteNotFound):
		return c.JSON(fiber.Map{"message": msgNoPaciente})
	default:
		slog.Error("Failed to delete paciente", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": msgBackendError})
	}
}
