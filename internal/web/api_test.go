package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/VannaNotGianna/DBP-PROYECTO/internal/account"
	"github.com/VannaNotGianna/DBP-PROYECTO/internal/database"
	"github.com/VannaNotGianna/DBP-PROYECTO/internal/mocks"
	"github.com/VannaNotGianna/DBP-PROYECTO/internal/patient"
	"github.com/VannaNotGianna/DBP-PROYECTO/internal/validator"
)

type envelope struct {
	Message  string `json:"message"`
	Error    bool   `json:"error"`
	Category string `json:"category"`
}

func newTestApp(store *mocks.MockStore) *fiber.App {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewHandler(
		session.New(),
		account.NewManager(logger, store),
		patient.NewManager(logger, store),
		validator.New(),
		store,
	)

	app := fiber.New()
	app.Get("/health", handler.Health)

	api := app.Group("/api")
	api.Post("/login", handler.APILogin)
	api.Post("/usuarios/:user/registrar", handler.RegistrarUsuario)
	api.Post("/registro_paciente", handler.APIRegistroPaciente)
	api.Get("/ver_pacientes", handler.APIVerPacientes)
	api.Post("/pacientes/:id/registrar", handler.RegistrarPacienteByID)
	api.Post("/pacientes/:dni/editar", handler.EditarPaciente)
	app.Delete("/pacientes/:dni/delete-paciente", handler.DeletePaciente)

	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (*http.Response, envelope) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestAPILogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := database.Usuario{ID: 1, Usuario: "drlopez", PasswordHash: string(hash)}

	tests := []struct {
		name        string
		body        any
		setup       func(store *mocks.MockStore)
		wantStatus  int
		wantMessage string
	}{
		{
			name: "success",
			body: fiber.Map{"user": "drlopez", "password": "secret123"},
			setup: func(store *mocks.MockStore) {
				store.On("GetUsuarioByLogin", mock.Anything, "drlopez").Return(stored, nil)
			},
			wantStatus:  fiber.StatusOK,
			wantMessage: "Correcto inicio de sesion",
		},
		{
			name: "wrong password keeps http 200",
			body: fiber.Map{"user": "drlopez", "password": "nope"},
			setup: func(store *mocks.MockStore) {
				store.On("GetUsuarioByLogin", mock.Anything, "drlopez").Return(stored, nil)
			},
			wantStatus:  fiber.StatusOK,
			wantMessage: "Contraseña incorrecta",
		},
		{
			name: "unknown usuario",
			body: fiber.Map{"user": "ghost", "password": "secret123"},
			setup: func(store *mocks.MockStore) {
				store.On("GetUsuarioByLogin", mock.Anything, "ghost").
					Return(database.Usuario{}, database.ErrUsuarioNotFound)
			},
			wantStatus:  fiber.StatusOK,
			wantMessage: "Usuario no existe",
		},
		{
			name:        "missing password",
			body:        fiber.Map{"user": "drlopez"},
			setup:       func(store *mocks.MockStore) {},
			wantStatus:  fiber.StatusBadRequest,
			wantMessage: "Solicitud inválida",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.MockStore)
			tt.setup(store)

			app := newTestApp(store)
			resp, env := postJSON(t, app, "/api/login", tt.body)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantMessage, env.Message)
			store.AssertExpectations(t)
		})
	}
}

func TestRegistrarUsuario(t *testing.T) {
	staffBody := fiber.Map{
		"user":          "drlopez",
		"password":      "secret123",
		"es_admin":      "1",
		"dni":           "11223344",
		"nombre":        "Carlos",
		"apellido":      "López",
		"titulo":        "Dr.",
		"especialidad":  "Geriatría",
		"residencia_id": 1,
	}
	patientBody := fiber.Map{
		"user":     "anagarcia",
		"password": "secret123",
		"es_admin": "0",
		"dni":      "12345678",
	}

	linked := "other"

	tests := []struct {
		name        string
		body        any
		setup       func(store *mocks.MockStore)
		wantMessage string
		wantError   bool
	}{
		{
			name: "staff created",
			body: staffBody,
			setup: func(store *mocks.MockStore) {
				store.On("GetPacienteByDNI", mock.Anything, "11223344").
					Return(database.Paciente{}, database.ErrPacienteNotFound)
				store.On("GetPersonalByDNI", mock.Anything, "11223344").
					Return(database.Personal{}, database.ErrPersonalNotFound)
				store.On("GetUsuarioByLogin", mock.Anything, "drlopez").
					Return(database.Usuario{}, database.ErrUsuarioNotFound)
				store.On("GetResidenciaByID", mock.Anything, 1).
					Return(database.Residencia{ID: 1}, nil)
				store.On("CreatePersonalConUsuario", mock.Anything, mock.Anything, mock.Anything).
					Return(database.Usuario{ID: 9, Usuario: "drlopez", EsAdmin: true}, nil)
			},
			wantMessage: "Usuario creado correctamente",
		},
		{
			name: "staff dni held by a paciente",
			body: staffBody,
			setup: func(store *mocks.MockStore) {
				store.On("GetPacienteByDNI", mock.Anything, "11223344").
					Return(database.Paciente{DNI: "11223344"}, nil)
			},
			wantMessage: "Persona con este DNI ya ha sido registrada",
		},
		{
			name: "patient account created",
			body: patientBody,
			setup: func(store *mocks.MockStore) {
				store.On("GetPacienteByDNI", mock.Anything, "12345678").
					Return(database.Paciente{DNI: "12345678"}, nil)
				store.On("GetUsuarioByLogin", mock.Anything, "anagarcia").
					Return(database.Usuario{}, database.ErrUsuarioNotFound)
				store.On("LinkUsuarioToPaciente", mock.Anything, "12345678", mock.Anything).
					Return(database.Usuario{ID: 4, Usuario: "anagarcia"}, nil)
			},
			wantMessage: "Usuario creado",
		},
		{
			name: "paciente already linked",
			body: patientBody,
			setup: func(store *mocks.MockStore) {
				store.On("GetPacienteByDNI", mock.Anything, "12345678").
					Return(database.Paciente{DNI: "12345678", Usuario: &linked}, nil)
			},
			wantMessage: "Paciente ya registrado",
		},
		{
			name: "paciente dni missing",
			body: patientBody,
			setup: func(store *mocks.MockStore) {
				store.On("GetPacienteByDNI", mock.Anything, "12345678").
					Return(database.Paciente{}, database.ErrPacienteNotFound)
			},
			wantMessage: "DNI de paciente no existe",
		},
		{
			name: "invalid dni",
			body: fiber.Map{"user": "anagarcia", "password": "secret123", "es_admin": "0", "dni": "123"},
			setup: func(store *mocks.MockStore) {
			},
			wantMessage: "DNI inválido",
		},
		{
			name: "login taken",
			body: patientBody,
			setup: func(store *mocks.MockStore) {
				store.On("GetPacienteByDNI", mock.Anything, "12345678").
					Return(database.Paciente{DNI: "12345678"}, nil)
				store.On("GetUsuarioByLogin", mock.Anything, "anagarcia").
					Return(database.Usuario{ID: 2, Usuario: "anagarcia"}, nil)
			},
			wantMessage: "Usuario ya existe",
		},
		{
			name: "backend failure",
			body: patientBody,
			setup: func(store *mocks.MockStore) {
				store.On("GetPacienteByDNI", mock.Anything, "12345678").
					Return(database.Paciente{}, errors.New("connection refused"))
			},
			wantMessage: "Error en el BE",
			wantError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.MockStore)
			tt.setup(store)

			app := newTestApp(store)
			resp, env := postJSON(t, app, "/api/usuarios/anagarcia/registrar", tt.body)

			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.wantMessage, env.Message)
			assert.Equal(t, tt.wantError, env.Error)
			store.AssertExpectations(t)
		})
	}
}

func TestAPIRegistroPaciente(t *testing.T) {
	body := fiber.Map{
		"dni":        "12345678",
		"nombre":     "Ana",
		"apellido":   "García",
		"edad":       82,
		"habitacion": 101,
		"residencia": 1,
	}

	tests := []struct {
		name        string
		setup       func(store *mocks.MockStore)
		wantMessage string
	}{
		{
			name: "registered",
			setup: func(store *mocks.MockStore) {
				store.On("GetPacienteByDNI", mock.Anything, "12345678").
					Return(database.Paciente{}, database.ErrPacienteNotFound)
				store.On("GetResidenciaByID", mock.Anything, 1).
					Return(database.Residencia{ID: 1}, nil)
				store.On("CreatePaciente", mock.Anything, mock.Anything).Return(nil)
			},
			wantMessage: "Paciente registrado correctamente",
		},
		{
			name: "duplicate",
			setup: func(store *mocks.MockStore) {
				store.On("GetPacienteByDNI", mock.Anything, "12345678").
					Return(database.Paciente{DNI: "12345678"}, nil)
			},
			wantMessage: "Persona con este DNI ya ha sido registrada",
		},
		{
			name: "residencia missing",
			setup: func(store *mocks.MockStore) {
				store.On("GetPacienteByDNI", mock.Anything, "12345678").
					Return(database.Paciente{}, database.ErrPacienteNotFound)
				store.On("GetResidenciaByID", mock.Anything, 1).
					Return(database.Residencia{}, database.ErrResidenciaNotFound)
			},
			wantMessage: "Residencia no existe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.MockStore)
			tt.setup(store)

			app := newTestApp(store)
			resp, env := postJSON(t, app, "/api/registro_paciente", body)

			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.wantMessage, env.Message)
			store.AssertExpectations(t)
		})
	}
}

// Newborn-style zero values are valid; only negative ints are malformed.
func TestAPIRegistroPacienteZeroValues(t *testing.T) {
	t.Run("zero edad and habitacion register", func(t *testing.T) {
		store := new(mocks.MockStore)
		store.On("GetPacienteByDNI", mock.Anything, "12345678").
			Return(database.Paciente{}, database.ErrPacienteNotFound)
		store.On("GetResidenciaByID", mock.Anything, 1).
			Return(database.Residencia{ID: 1}, nil)
		store.On("CreatePaciente", mock.Anything,
			mock.MatchedBy(func(p database.Paciente) bool {
				return p.Edad == 0 && p.Habitacion == 0
			})).Return(nil)

		app := newTestApp(store)
		resp, env := postJSON(t, app, "/api/registro_paciente", fiber.Map{
			"dni":        "12345678",
			"nombre":     "Ana",
			"apellido":   "García",
			"edad":       0,
			"habitacion": 0,
			"residencia": 1,
		})

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "Paciente registrado correctamente", env.Message)
		store.AssertExpectations(t)
	})

	t.Run("negative edad is rejected", func(t *testing.T) {
		store := new(mocks.MockStore)

		app := newTestApp(store)
		resp, env := postJSON(t, app, "/api/registro_paciente", fiber.Map{
			"dni":        "12345678",
			"nombre":     "Ana",
			"apellido":   "García",
			"edad":       -1,
			"habitacion": 101,
			"residencia": 1,
		})

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Solicitud inválida", env.Message)
		store.AssertExpectations(t)
	})
}

func TestRegistrarPacienteByID(t *testing.T) {
	body := fiber.Map{
		"nombre":        "Ana",
		"apellido":      "García",
		"edad":          82,
		"habitacion":    101,
		"residencia_id": 1,
	}

	t.Run("rejects short path dni before touching the store", func(t *testing.T) {
		store := new(mocks.MockStore)
		app := newTestApp(store)

		resp, env := postJSON(t, app, "/api/pacientes/123/registrar", body)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "DNI inválido", env.Message)
		assert.Empty(t, env.Category)
		store.AssertExpectations(t)
	})

	t.Run("registered with success category", func(t *testing.T) {
		store := new(mocks.MockStore)
		store.On("GetPacienteByDNI", mock.Anything, "12345678").
			Return(database.Paciente{}, database.ErrPacienteNotFound)
		store.On("GetResidenciaByID", mock.Anything, 1).
			Return(database.Residencia{ID: 1}, nil)
		store.On("CreatePaciente", mock.Anything, mock.Anything).Return(nil)

		app := newTestApp(store)
		resp, env := postJSON(t, app, "/api/pacientes/12345678/registrar", body)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "Paciente registrado correctamente", env.Message)
		assert.Equal(t, "success", env.Category)
		store.AssertExpectations(t)
	})

	t.Run("duplicate carries error category", func(t *testing.T) {
		store := new(mocks.MockStore)
		store.On("GetPacienteByDNI", mock.Anything, "12345678").
			Return(database.Paciente{DNI: "12345678"}, nil)

		app := newTestApp(store)
		_, env := postJSON(t, app, "/api/pacientes/12345678/registrar", body)

		assert.Equal(t, "Persona con este DNI ya ha sido registrada", env.Message)
		assert.Equal(t, "error", env.Category)
		store.AssertExpectations(t)
	})
}

func TestEditarPaciente(t *testing.T) {
	body := fiber.Map{
		"dni":           "12345678",
		"nombre":        "Ana María",
		"apellido":      "García",
		"edad":          83,
		"habitacion":    205,
		"residencia_id": 2,
	}

	tests := []struct {
		name        string
		setup       func(store *mocks.MockStore)
		wantMessage string
		wantError   bool
	}{
		{
			name: "edited",
			setup: func(store *mocks.MockStore) {
				store.On("GetPacienteByDNI", mock.Anything, "12345678").
					Return(database.Paciente{DNI: "12345678", ResidenciaID: 1}, nil)
				store.On("GetResidenciaByID", mock.Anything, 2).
					Return(database.Residencia{ID: 2}, nil)
				store.On("UpdatePaciente", mock.Anything, mock.Anything).Return(nil)
			},
			wantMessage: "Paciente editado correctamente",
		},
		{
			name: "paciente missing",
			setup: func(store *mocks.MockStore) {
				store.On("GetPacienteByDNI", mock.Anything, "12345678").
					Return(database.Paciente{}, database.ErrPacienteNotFound)
			},
			wantMessage: "No existe paciente",
		},
		{
			name: "backend failure uses the short variant",
			setup: func(store *mocks.MockStore) {
				store.On("GetPacienteByDNI", mock.Anything, "12345678").
					Return(database.Paciente{}, errors.New("connection refused"))
			},
			wantMessage: "Error en BE",
			wantError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.MockStore)
			tt.setup(store)

			app := newTestApp(store)
			resp, env := postJSON(t, app, "/api/pacientes/12345678/editar", body)

			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.wantMessage, env.Message)
			assert.Equal(t, tt.wantError, env.Error)
			store.AssertExpectations(t)
		})
	}
}

func TestDeletePaciente(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(store *mocks.MockStore)
		wantMessage string
	}{
		{
			name: "deleted",
			setup: func(store *mocks.MockStore) {
				store.On("DeletePacienteConUsuario", mock.Anything, "12345678").Return(nil)
			},
			wantMessage: "Paciente eliminado con exito",
		},
		{
			name: "paciente missing",
			setup: func(store *mocks.MockStore) {
				store.On("DeletePacienteConUsuario", mock.Anything, "12345678").
					Return(database.ErrPacienteNotFound)
			},
			wantMessage: "No existe paciente",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.MockStore)
			tt.setup(store)

			app := newTestApp(store)
			req := httptest.NewRequest(fiber.MethodDelete, "/pacientes/12345678/delete-paciente", nil)

			resp, err := app.Test(req, 5000)
			require.NoError(t, err)

			var env envelope
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))

			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.wantMessage, env.Message)
			store.AssertExpectations(t)
		})
	}
}

func TestAPIVerPacientes(t *testing.T) {
	linked := "anagarcia"
	store := new(mocks.MockStore)
	store.On("ListPacientes", mock.Anything).Return([]database.PacienteDetalle{
		{
			Paciente: database.Paciente{
				DNI: "12345678", Nombre: "Ana", Apellido: "García",
				Edad: 82, Habitacion: 101, ResidenciaID: 1, Usuario: &linked,
			},
			Residencia: "Residencia Central",
		},
		{
			Paciente: database.Paciente{
				DNI: "87654321", Nombre: "Luis", Apellido: "Torres",
				Edad: 76, Habitacion: 102, ResidenciaID: 1,
			},
			Residencia: "Residencia Central",
		},
	}, nil)

	app := newTestApp(store)
	req := httptest.NewRequest(fiber.MethodGet, "/api/ver_pacientes", nil)

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got []pacienteResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, "Residencia Central", got[0].Residencia)
	require.NotNil(t, got[0].Usuario)
	assert.Equal(t, "anagarcia", *got[0].Usuario)
	assert.Nil(t, got[1].Usuario)
	store.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	store := new(mocks.MockStore)
	store.On("Ping", mock.Anything).Return(nil)

	app := newTestApp(store)
	req := httptest.NewRequest(fiber.MethodGet, "/health", nil)

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	store.AssertExpectations(t)
}
