// Command seed loads demo data: one demo user, the room catalog and a
// sample reservation. All writes are idempotent upserts so the command
// can run repeatedly against the same database.
package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/room-reservation/internal/config"
	"github.com/iliyamo/room-reservation/internal/database"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/utils"
)

func strPtr(s string) *string { return &s }

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// Demo user, recreated only when absent so repeated runs keep its id.
	hash, err := utils.HashPassword("password123", cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE name = VALUES(name)`,
		"Demo User", "demo@rooms.test", hash); err != nil {
		log.Fatalf("seed user: %v", err)
	}
	var userID uint64
	if err := db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE email = ?`, "demo@rooms.test").Scan(&userID); err != nil {
		log.Fatalf("lookup demo user: %v", err)
	}

	rooms := repository.NewRoomRepo(db)
	catalog := []model.Room{
		{
			Name:        "Sala de Conferencias A",
			Description: strPtr("Sala principal para reuniones grandes"),
			Capacity:    20,
			Location:    strPtr("Piso 1"),
			Amenities:   []string{"Proyector", "Pizarra", "Video conferencia"},
		},
		{
			Name:        "Sala de Reuniones B",
			Description: strPtr("Sala mediana ideal para equipos"),
			Capacity:    10,
			Location:    strPtr("Piso 2"),
			Amenities:   []string{"TV", "Pizarra"},
		},
		{
			Name:        "Sala Creativa",
			Description: strPtr("Espacio para brainstorming"),
			Capacity:    8,
			Location:    strPtr("Piso 2"),
			Amenities:   []string{"Pizarra", "Post-its", "Marcadores"},
		},
		{
			Name:        "Sala Ejecutiva",
			Description: strPtr("Sala privada para reuniones importantes"),
			Capacity:    6,
			Location:    strPtr("Piso 3"),
			Amenities:   []string{"Proyector", "Video conferencia", "Café"},
		},
		{
			Name:        "Sala VIP",
			Description: strPtr("Sala VIP para clientes especiales"),
			Capacity:    10,
			Location:    strPtr("Piso 4"),
			Amenities:   []string{"Catering", "Servicio personalizado", "Vista panorámica"},
		},
	}
	var firstRoomID uint64
	for i := range catalog {
		if err := rooms.Upsert(ctx, &catalog[i]); err != nil {
			log.Fatalf("seed room %q: %v", catalog[i].Name, err)
		}
		if i == 0 {
			firstRoomID = catalog[i].ID
		}
	}

	// One sample reservation on the first room. Matched by its title so
	// reruns update the row instead of stacking duplicates.
	start := time.Date(2024, time.January, 1, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	var existingID uint64
	err = db.QueryRowContext(ctx,
		`SELECT id FROM reservations WHERE user_id = ? AND title = ? LIMIT 1`,
		userID, "Reserva de ejemplo").Scan(&existingID)
	switch {
	case err == nil:
		if _, err := db.ExecContext(ctx,
			`UPDATE reservations SET room_id = ?, description = ?, start_time = ?, end_time = ? WHERE id = ?`,
			firstRoomID, "Consulta de disponibilidad", start, end, existingID); err != nil {
			log.Fatalf("update sample reservation: %v", err)
		}
	case err != sql.ErrNoRows:
		log.Fatalf("lookup sample reservation: %v", err)
	default:
		if _, err := db.ExecContext(ctx,
			`INSERT INTO reservations (user_id, room_id, title, description, start_time, end_time)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			userID, firstRoomID, "Reserva de ejemplo", "Consulta de disponibilidad", start, end); err != nil {
			log.Fatalf("insert sample reservation: %v", err)
		}
	}

	log.Printf("seeded %d rooms, demo user id=%d", len(catalog), userID)
}
