package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidDNI(t *testing.T) {
	tests := []struct {
		name string
		dni  string
		want bool
	}{
		{name: "eight characters", dni: "12345678", want: true},
		{name: "too short", dni: "1234567", want: false},
		{name: "too long", dni: "123456789", want: false},
		{name: "empty", dni: "", want: false},
		{name: "non numeric but right length", dni: "A234567B", want: true},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.ValidDNI(tt.dni))
		})
	}
}

type registroForm struct {
	Usuario  string `validate:"required"`
	Password string `validate:"required"`
	EsAdmin  string `validate:"required"`
	Nombre   string `validate:"required_if=EsAdmin 1"`
}

func TestRequiredIfAdmin(t *testing.T) {
	v := New()

	assert.Error(t, v.Validate(registroForm{Usuario: "u", Password: "p", EsAdmin: "1"}))
	assert.NoError(t, v.Validate(registroForm{Usuario: "u", Password: "p", EsAdmin: "0"}))
	assert.NoError(t, v.Validate(registroForm{Usuario: "u", Password: "p", EsAdmin: "1", Nombre: "Carlos"}))
}

type pacienteForm struct {
	Edad       int `validate:"min=0"`
	Habitacion int `validate:"min=0"`
}

// Zero is a legitimate value for edad and habitacion; only negatives fail.
func TestMinZeroAcceptsZero(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(pacienteForm{Edad: 0, Habitacion: 0}))
	assert.NoError(t, v.Validate(pacienteForm{Edad: 82, Habitacion: 101}))
	assert.Error(t, v.Validate(pacienteForm{Edad: -1, Habitacion: 101}))
	assert.Error(t, v.Validate(pacienteForm{Edad: 82, Habitacion: -1}))
}
