package database

import (
	"context"
	"errors"
)

var (
	ErrUsuarioNotFound    = errors.New("usuario not found")
	ErrPacienteNotFound   = errors.New("paciente not found")
	ErrPersonalNotFound   = errors.New("personal not found")
	ErrResidenciaNotFound = errors.New("residencia not found")
)

// Usuario is a login-capable account, optionally linked to exactly one
// personal or paciente row through their usuario column.
type Usuario struct {
	ID           int    `json:"id"`
	Usuario      string `json:"user"`
	PasswordHash string `json:"-"`
	EsAdmin      bool   `json:"es_admin"`
}

type Residencia struct {
	ID             int    `json:"id"`
	Nombre         string `json:"nombre"`
	Direccion      string `json:"direccion"`
	NoHabitaciones int    `json:"no_habitaciones"`
	Director       string `json:"director"`
}

type Personal struct {
	DNI          string  `json:"dni"`
	Nombre       string  `json:"nombre"`
	Apellido     string  `json:"apellido"`
	Titulo       string  `json:"titulo"`
	Especialidad string  `json:"especialidad"`
	Usuario      *string `json:"usuario"`
	ResidenciaID int     `json:"residencia_id"`
}

type Paciente struct {
	DNI          string  `json:"dni"`
	Nombre       string  `json:"nombre"`
	Apellido     string  `json:"apellido"`
	Edad         int     `json:"edad"`
	Habitacion   int     `json:"habitacion"`
	ResidenciaID int     `json:"residencia_id"`
	Usuario      *string `json:"usuario"`
}

// PacienteDetalle is a listing row with the residence name resolved.
type PacienteDetalle struct {
	Paciente
	Residencia string `json:"residencia"`
}

// Store defines the persistence contract the managers depend on.
type Store interface {
	// Usuario operations
	GetUsuarioByID(ctx context.Context, id int) (Usuario, error)
	GetUsuarioByLogin(ctx context.Context, login string) (Usuario, error)

	// Residencia operations
	CreateResidencia(ctx context.Context, residencia Residencia) (Residencia, error)
	GetResidenciaByID(ctx context.Context, id int) (Residencia, error)

	// Personal operations
	GetPersonalByDNI(ctx context.Context, dni string) (Personal, error)
	// CreatePersonalConUsuario inserts the usuario and its linked personal
	// row in a single transaction.
	CreatePersonalConUsuario(ctx context.Context, personal Personal, usuario Usuario) (Usuario, error)

	// Paciente operations
	GetPacienteByDNI(ctx context.Context, dni string) (Paciente, error)
	CreatePaciente(ctx context.Context, paciente Paciente) error
	UpdatePaciente(ctx context.Context, paciente Paciente) error
	ListPacientes(ctx context.Context) ([]PacienteDetalle, error)
	// LinkUsuarioToPaciente inserts the usuario and points the existing
	// paciente row at it in a single transaction.
	LinkUsuarioToPaciente(ctx context.Context, dni string, usuario Usuario) (Usuario, error)
	// DeletePacienteConUsuario removes the paciente and, when linked, its
	// usuario in the same transaction.
	DeletePacienteConUsuario(ctx context.Context, dni string) error

	Ping(ctx context.Context) error
}
