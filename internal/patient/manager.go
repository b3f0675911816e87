package patient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/VannaNotGianna/DBP-PROYECTO/internal/database"
)

var (
	ErrPacienteExists     = errors.New("paciente already registered")
	ErrPacienteNotFound   = errors.New("paciente does not exist")
	ErrResidenciaNotFound = errors.New("residencia does not exist")
)

// Manager handles the paciente lifecycle. Deleting a paciente cascades to its
// linked usuario so no orphaned account survives the person.
type Manager struct {
	logger *slog.Logger
	store  database.Store
}

func NewManager(logger *slog.Logger, store database.Store) Manager {
	return Manager{logger: logger, store: store}
}

type RegisterParam struct {
	DNI          string
	Nombre       string
	Apellido     string
	Edad         int
	Habitacion   int
	ResidenciaID int
}

// Register inserts a paciente with no linked usuario.
func (m *Manager) Register(ctx context.Context, param RegisterParam) error {
	_, err := m.store.GetPacienteByDNI(ctx, param.DNI)
	if err == nil {
		return ErrPacienteExists
	}
	if !errors.Is(err, database.ErrPacienteNotFound) {
		return fmt.Errorf("failed to check paciente dni: %w", err)
	}

	if _, err := m.store.GetResidenciaByID(ctx, param.ResidenciaID); err != nil {
		if errors.Is(err, database.ErrResidenciaNotFound) {
			return ErrResidenciaNotFound
		}
		return fmt.Errorf("failed to get residencia %d: %w", param.ResidenciaID, err)
	}

	if err := m.store.CreatePaciente(ctx, database.Paciente{
		DNI:          param.DNI,
		Nombre:       param.Nombre,
		Apellido:     param.Apellido,
		Edad:         param.Edad,
		Habitacion:   param.Habitacion,
		ResidenciaID: param.ResidenciaID,
	}); err != nil {
		return fmt.Errorf("failed to create paciente: %w", err)
	}

	m.logger.Info("Paciente registered", "dni", param.DNI, "residencia", param.ResidenciaID)
	return nil
}

type EditParam struct {
	DNI          string
	Nombre       string
	Apellido     string
	Edad         int
	Habitacion   int
	ResidenciaID int
}

// Edit replaces every editable field, residence association included.
func (m *Manager) Edit(ctx context.Context, param EditParam) error {
	paciente, err := m.store.GetPacienteByDNI(ctx, param.DNI)
	if err != nil {
		if errors.Is(err, database.ErrPacienteNotFound) {
			return ErrPacienteNotFound
		}
		return fmt.Errorf("failed to get paciente %s: %w", param.DNI, err)
	}

	if _, err := m.store.GetResidenciaByID(ctx, param.ResidenciaID); err != nil {
		if errors.Is(err, database.ErrResidenciaNotFound) {
			return ErrResidenciaNotFound
		}
		return fmt.Errorf("failed to get residencia %d: %w", param.ResidenciaID, err)
	}

	paciente.Nombre = param.Nombre
	paciente.Apellido = param.Apellido
	paciente.Edad = param.Edad
	paciente.Habitacion = param.Habitacion
	paciente.ResidenciaID = param.ResidenciaID

	if err := m.store.UpdatePaciente(ctx, paciente); err != nil {
		if errors.Is(err, database.ErrPacienteNotFound) {
			return ErrPacienteNotFound
		}
		return fmt.Errorf("failed to update paciente %s: %w", param.DNI, err)
	}

	m.logger.Info("Paciente edited", "dni", param.DNI)
	return nil
}

func (m *Manager) Get(ctx context.Context, dni string) (database.Paciente, error) {
	paciente, err := m.store.GetPacienteByDNI(ctx, dni)
	if err != nil {
		if errors.Is(err, database.ErrPacienteNotFound) {
			return paciente, ErrPacienteNotFound
		}
		return paciente, fmt.Errorf("failed to get paciente %s: %w", dni, err)
	}
	return paciente, nil
}

// Delete removes the paciente and, when one is linked, its usuario in the
// same transaction.
func (m *Manager) Delete(ctx context.Context, dni string) error {
	if err := m.store.DeletePacienteConUsuario(ctx, dni); err != nil {
		if errors.Is(err, database.ErrPacienteNotFound) {
			return ErrPacienteNotFound
		}
		return fmt.Errorf("failed to delete paciente %s: %w", dni, err)
	}

	m.logger.Info("Paciente deleted", "dni", dni)
	return nil
}

func (m *Manager) List(ctx context.Context) ([]database.PacienteDetalle, error) {
	pacientes, err := m.store.ListPacientes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pacientes: %w", err)
	}
	return pacientes, nil
}
