package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/VannaNotGianna/DBP-PROYECTO/internal/database"
)

const dniLength = 8

var (
	ErrInvalidDNI         = errors.New("dni must be 8 characters")
	ErrUsuarioExists      = errors.New("usuario already exists")
	ErrPersonExists       = errors.New("a person with this dni is already registered")
	ErrPacienteNotFound   = errors.New("paciente does not exist")
	ErrResidenciaNotFound = errors.New("residencia does not exist")
	ErrAlreadyLinked      = errors.New("paciente already has a usuario")
	ErrUsuarioNotFound    = errors.New("usuario does not exist")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Manager keeps the usuario/person linkage consistent: a usuario is created
// linked to exactly one personal or paciente row and stays linked until the
// person is deleted.
type Manager struct {
	logger *slog.Logger
	store  database.Store
}

func NewManager(logger *slog.Logger, store database.Store) Manager {
	return Manager{logger: logger, store: store}
}

type CreateStaffAccountParam struct {
	Login        string
	Password     string
	DNI          string
	Nombre       string
	Apellido     string
	Titulo       string
	Especialidad string
	ResidenciaID int
}

// CreateStaffAccount creates an admin usuario together with its personal row.
// The DNI must be free in both person classes: a paciente with the same DNI
// makes the identity ambiguous and blocks creation.
func (m *Manager) CreateStaffAccount(ctx context.Context, param CreateStaffAccountParam) (database.Usuario, error) {
	var usuario database.Usuario

	if len(param.DNI) != dniLength {
		return usuario, ErrInvalidDNI
	}

	_, err := m.store.GetPacienteByDNI(ctx, param.DNI)
	if err == nil {
		return usuario, ErrPersonExists
	}
	if !errors.Is(err, database.ErrPacienteNotFound) {
		return usuario, fmt.Errorf("failed to check paciente dni: %w", err)
	}

	_, err = m.store.GetPersonalByDNI(ctx, param.DNI)
	if err == nil {
		return usuario, ErrPersonExists
	}
	if !errors.Is(err, database.ErrPersonalNotFound) {
		return usuario, fmt.Errorf("failed to check personal dni: %w", err)
	}

	_, err = m.store.GetUsuarioByLogin(ctx, param.Login)
	if err == nil {
		return usuario, ErrUsuarioExists
	}
	if !errors.Is(err, database.ErrUsuarioNotFound) {
		return usuario, fmt.Errorf("failed to check usuario login: %w", err)
	}

	if _, err := m.store.GetResidenciaByID(ctx, param.ResidenciaID); err != nil {
		if errors.Is(err, database.ErrResidenciaNotFound) {
			return usuario, ErrResidenciaNotFound
		}
		return usuario, fmt.Errorf("failed to get residencia %d: %w", param.ResidenciaID, err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(param.Password), bcrypt.DefaultCost)
	if err != nil {
		return usuario, fmt.Errorf("failed to hash password: %w", err)
	}

	usuario, err = m.store.CreatePersonalConUsuario(ctx,
		database.Personal{
			DNI:          param.DNI,
			Nombre:       param.Nombre,
			Apellido:     param.Apellido,
			Titulo:       param.Titulo,
			Especialidad: param.Especialidad,
			ResidenciaID: param.ResidenciaID,
		},
		database.Usuario{
			Usuario:      param.Login,
			PasswordHash: string(passwordHash),
			EsAdmin:      true,
		})
	if err != nil {
		return usuario, fmt.Errorf("failed to create personal with usuario: %w", err)
	}

	m.logger.Info("Staff account created", "login", param.Login, "dni", param.DNI)
	return usuario, nil
}

type CreatePatientAccountParam struct {
	Login    string
	Password string
	DNI      string
}

// CreatePatientAccount attaches a new usuario to an already registered
// paciente. Patients are registered as persons first, the identity comes
// later.
func (m *Manager) CreatePatientAccount(ctx context.Context, param CreatePatientAccountParam) (database.Usuario, error) {
	var usuario database.Usuario

	if len(param.DNI) != dniLength {
		return usuario, ErrInvalidDNI
	}

	paciente, err := m.store.GetPacienteByDNI(ctx, param.DNI)
	if err != nil {
		if errors.Is(err, database.ErrPacienteNotFound) {
			return usuario, ErrPacienteNotFound
		}
		return usuario, fmt.Errorf("failed to get paciente %s: %w", param.DNI, err)
	}
	if paciente.Usuario != nil {
		return usuario, ErrAlreadyLinked
	}

	_, err = m.store.GetUsuarioByLogin(ctx, param.Login)
	if err == nil {
		return usuario, ErrUsuarioExists
	}
	if !errors.Is(err, database.ErrUsuarioNotFound) {
		return usuario, fmt.Errorf("failed to check usuario login: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(param.Password), bcrypt.DefaultCost)
	if err != nil {
		return usuario, fmt.Errorf("failed to hash password: %w", err)
	}

	usuario, err = m.store.LinkUsuarioToPaciente(ctx, param.DNI, database.Usuario{
		Usuario:      param.Login,
		PasswordHash: string(passwordHash),
		EsAdmin:      false,
	})
	if err != nil {
		return usuario, fmt.Errorf("failed to link usuario to paciente: %w", err)
	}

	m.logger.Info("Patient account created", "login", param.Login, "dni", param.DNI)
	return usuario, nil
}

// Authenticate looks the usuario up by login and compares the password
// against the stored bcrypt hash. Repeated failures carry no penalty.
func (m *Manager) Authenticate(ctx context.Context, login, password string) (database.Usuario, error) {
	usuario, err := m.store.GetUsuarioByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, database.ErrUsuarioNotFound) {
			return usuario, ErrUsuarioNotFound
		}
		return usuario, fmt.Errorf("failed to get usuario by login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usuario.PasswordHash), []byte(password)); err != nil {
		return database.Usuario{}, ErrInvalidCredentials
	}

	return usuario, nil
}

func (m *Manager) GetUsuarioByID(ctx context.Context, id int) (database.Usuario, error) {
	usuario, err := m.store.GetUsuarioByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrUsuarioNotFound) {
			return usuario, ErrUsuarioNotFound
		}
		return usuario, fmt.Errorf("failed to get usuario by id %d: %w", id, err)
	}
	return usuario, nil
}
