// Package mocks provides testify mocks shared by the package tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/VannaNotGianna/DBP-PROYECTO/internal/database"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetUsuarioByID(ctx context.Context, id int) (database.Usuario, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(database.Usuario), args.Error(1)
}

func (m *MockStore) GetUsuarioByLogin(ctx context.Context, login string) (database.Usuario, error) {
	args := m.Called(ctx, login)
	return args.Get(0).(database.Usuario), args.Error(1)
}

func (m *MockStore) CreateResidencia(ctx context.Context, residencia database.Residencia) (database.Residencia, error) {
	args := m.Called(ctx, residencia)
	return args.Get(0).(database.Residencia), args.Error(1)
}

func (m *MockStore) GetResidenciaByID(ctx context.Context, id int) (database.Residencia, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(database.Residencia), args.Error(1)
}

func (m *MockStore) GetPersonalByDNI(ctx context.Context, dni string) (database.Personal, error) {
	args := m.Called(ctx, dni)
	return args.Get(0).(database.Personal), args.Error(1)
}

func (m *MockStore) CreatePersonalConUsuario(ctx context.Context, personal database.Personal, usuario database.Usuario) (database.Usuario, error) {
	args := m.Called(ctx, personal, usuario)
	return args.Get(0).(database.Usuario), args.Error(1)
}

func (m *MockStore) GetPacienteByDNI(ctx context.Context, dni string) (database.Paciente, error) {
	args := m.Called(ctx, dni)
	return args.Get(0).(database.Paciente), args.Error(1)
}

func (m *MockStore) CreatePaciente(ctx context.Context, paciente database.Paciente) error {
	args := m.Called(ctx, paciente)
	return args.Error(0)
}

func (m *MockStore) UpdatePaciente(ctx context.Context, paciente database.Paciente) error {
	args := m.Called(ctx, paciente)
	return args.Error(0)
}

func (m *MockStore) ListPacientes(ctx context.Context) ([]database.PacienteDetalle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.PacienteDetalle), args.Error(1)
}

func (m *MockStore) LinkUsuarioToPaciente(ctx context.Context, dni string, usuario database.Usuario) (database.Usuario, error) {
	args := m.Called(ctx, dni, usuario)
	return args.Get(0).(database.Usuario), args.Error(1)
}

func (m *MockStore) DeletePacienteConUsuario(ctx context.Context, dni string) error {
	args := m.Called(ctx, dni)
	return args.Error(0)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
