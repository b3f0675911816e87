// Residences are created out of band: there is no HTTP route for them. This
// tool inserts a residencia (and optionally demo data) for local setups.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/VannaNotGianna/DBP-PROYECTO/internal/config"
	"github.com/VannaNotGianna/DBP-PROYECTO/internal/database"
)

func main() {
	var (
		nombre       = flag.String("nombre", "", "Residence name")
		direccion    = flag.String("direccion", "", "Residence address")
		habitaciones = flag.Int("habitaciones", 0, "Number of rooms")
		director     = flag.String("director", "", "Residence director")
		demo         = flag.Bool("demo", false, "Insert a demo residence with sample patients")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if *demo {
		if err := seedDemo(ctx, db); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
		log.Println("Demo data created")
		return
	}

	if *nombre == "" || *direccion == "" || *director == "" {
		log.Fatal("Usage: go run cmd/seed/main.go -nombre NAME -direccion ADDRESS -director DIRECTOR [-habitaciones N]")
	}

	residencia, err := db.CreateResidencia(ctx, database.Residencia{
		Nombre:         *nombre,
		Direccion:      *direccion,
		NoHabitaciones: *habitaciones,
		Director:       *director,
	})
	if err != nil {
		log.Fatalf("Failed to create residencia: %v", err)
	}

	log.Printf("Residencia created with id %d", residencia.ID)
}

func seedDemo(ctx context.Context, db *database.PostgresDatabase) error {
	residencia, err := db.CreateResidencia(ctx, database.Residencia{
		Nombre:         "Residencia San Martín",
		Direccion:      "Av. Arequipa 1234",
		NoHabitaciones: 40,
		Director:       "M. Delgado",
	})
	if err != nil {
		return err
	}

	pacientes := []database.Paciente{
		{DNI: "12345678", Nombre: "Ana", Apellido: "García", Edad: 82, Habitacion: 101, ResidenciaID: residencia.ID},
		{DNI: "87654321", Nombre: "Luis", Apellido: "Torres", Edad: 76, Habitacion: 102, ResidenciaID: residencia.ID},
	}
	for _, p := range pacientes {
		if err := db.CreatePaciente(ctx, p); err != nil {
			return err
		}
	}

	return nil
}
