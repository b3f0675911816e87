package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

func (db *PostgresDatabase) GetUsuarioByID(ctx context.Context, id int) (Usuario, error) {
	var u Usuario
	err := db.pool.QueryRow(ctx, `SELECT id, usuario, password_hash, es_admin FROM usuario WHERE id = $1`, id).
		Scan(&u.ID, &u.Usuario, &u.PasswordHash, &u.EsAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return u, ErrUsuarioNotFound
		}
		return u, err
	}
	return u, nil
}

func (db *PostgresDatabase) GetUsuarioByLogin(ctx context.Context, login string) (Usuario, error) {
	var u Usuario
	err := db.pool.QueryRow(ctx, `SELECT id, usuario, password_hash, es_admin FROM usuario WHERE usuario = $1`, login).
		Scan(&u.ID, &u.Usuario, &u.PasswordHash, &u.EsAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return u, ErrUsuarioNotFound
		}
		return u, err
	}
	return u, nil
}

func (db *PostgresDatabase) CreateResidencia(ctx context.Context, residencia Residencia) (Residencia, error) {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO residencia (nombre, direccion, no_habitaciones, director) VALUES ($1, $2, $3, $4) RETURNING id`,
		residencia.Nombre, residencia.Direccion, residencia.NoHabitaciones, residencia.Director).
		Scan(&residencia.ID)
	if err != nil {
		return residencia, err
	}
	return residencia, nil
}

func (db *PostgresDatabase) GetResidenciaByID(ctx context.Context, id int) (Residencia, error) {
	var r Residencia
	err := db.pool.QueryRow(ctx,
		`SELECT id, nombre, direccion, COALESCE(no_habitaciones, 0), director FROM residencia WHERE id = $1`, id).
		Scan(&r.ID, &r.Nombre, &r.Direccion, &r.NoHabitaciones, &r.Director)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r, ErrResidenciaNotFound
		}
		return r, err
	}
	return r, nil
}

func (db *PostgresDatabase) GetPersonalByDNI(ctx context.Context, dni string) (Personal, error) {
	var p Personal
	err := db.pool.QueryRow(ctx,
		`SELECT dni, nombre, apellido, titulo, especialidad, usuario, residencia FROM personal WHERE dni = $1`, dni).
		Scan(&p.DNI, &p.Nombre, &p.Apellido, &p.Titulo, &p.Especialidad, &p.Usuario, &p.ResidenciaID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, ErrPersonalNotFound
		}
		return p, err
	}
	return p, nil
}

func (db *PostgresDatabase) CreatePersonalConUsuario(ctx context.Context, personal Personal, usuario Usuario) (Usuario, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return usuario, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	err = tx.QueryRow(ctx,
		`INSERT INTO usuario (usuario, password_hash, es_admin) VALUES ($1, $2, $3) RETURNING id`,
		usuario.Usuario, usuario.PasswordHash, usuario.EsAdmin).
		Scan(&usuario.ID)
	if err != nil {
		return usuario, fmt.Errorf("failed to create usuario: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO personal (dni, nombre, apellido, titulo, especialidad, usuario, residencia) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		personal.DNI, personal.Nombre, personal.Apellido, personal.Titulo, personal.Especialidad, usuario.Usuario, personal.ResidenciaID)
	if err != nil {
		return usuario, fmt.Errorf("failed to create personal: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return usuario, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return usuario, nil
}

func (db *PostgresDatabase) GetPacienteByDNI(ctx context.Context, dni string) (Paciente, error) {
	var p Paciente
	err := db.pool.QueryRow(ctx,
		`SELECT dni, nombre, apellido, edad, habitacion, residencia, usuario FROM paciente WHERE dni = $1`, dni).
		Scan(&p.DNI, &p.Nombre, &p.Apellido, &p.Edad, &p.Habitacion, &p.ResidenciaID, &p.Usuario)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, ErrPacienteNotFound
		}
		return p, err
	}
	return p, nil
}

func (db *PostgresDatabase) CreatePaciente(ctx context.Context, paciente Paciente) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO paciente (dni, nombre, apellido, edad, habitacion, residencia) VALUES ($1, $2, $3, $4, $5, $6)`,
		paciente.DNI, paciente.Nombre, paciente.Apellido, paciente.Edad, paciente.Habitacion, paciente.ResidenciaID)
	return err
}

func (db *PostgresDatabase) UpdatePaciente(ctx context.Context, paciente Paciente) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE paciente SET nombre = $1, apellido = $2, edad = $3, habitacion = $4, residencia = $5 WHERE dni = $6`,
		paciente.Nombre, paciente.Apellido, paciente.Edad, paciente.Habitacion, paciente.ResidenciaID, paciente.DNI)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPacienteNotFound
	}
	return nil
}

func (db *PostgresDatabase) ListPacientes(ctx context.Context) ([]PacienteDetalle, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT p.dni, p.nombre, p.apellido, p.edad, p.habitacion, p.residencia, p.usuario, r.nombre
		FROM paciente p
		JOIN residencia r ON r.id = p.residencia
		ORDER BY p.dni`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pacientes []PacienteDetalle
	for rows.Next() {
		var p PacienteDetalle
		if err := rows.Scan(&p.DNI, &p.Nombre, &p.Apellido, &p.Edad, &p.Habitacion, &p.ResidenciaID, &p.Usuario, &p.Residencia); err != nil {
			return nil, err
		}
		pacientes = append(pacientes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pacientes, nil
}

func (db *PostgresDatabase) LinkUsuarioToPaciente(ctx context.Context, dni string, usuario Usuario) (Usuario, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return usuario, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	err = tx.QueryRow(ctx,
		`INSERT INTO usuario (usuario, password_hash, es_admin) VALUES ($1, $2, $3) RETURNING id`,
		usuario.Usuario, usuario.PasswordHash, usuario.EsAdmin).
		Scan(&usuario.ID)
	if err != nil {
		return usuario, fmt.Errorf("failed to create usuario: %w", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE paciente SET usuario = $1 WHERE dni = $2`, usuario.Usuario, dni)
	if err != nil {
		return usuario, fmt.Errorf("failed to link usuario to paciente: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return usuario, ErrPacienteNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return usuario, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return usuario, nil
}

func (db *PostgresDatabase) DeletePacienteConUsuario(ctx context.Context, dni string) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	var login *string
	err = tx.QueryRow(ctx, `SELECT usuario FROM paciente WHERE dni = $1 FOR UPDATE`, dni).Scan(&login)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPacienteNotFound
		}
		return fmt.Errorf("failed to get paciente: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM paciente WHERE dni = $1`, dni); err != nil {
		return fmt.Errorf("failed to delete paciente: %w", err)
	}

	// No orphaned identities: the linked usuario goes in the same transaction.
	if login != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM usuario WHERE usuario = $1`, *login); err != nil {
			return fmt.Errorf("failed to delete usuario: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Error("failed to rollback transaction", "error", err)
	}
}
