package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/rekamteknik/fieldservice-backend/internal/modules/assignment"
	"github.com/rekamteknik/fieldservice-backend/internal/modules/invoice"
	"github.com/rekamteknik/fieldservice-backend/internal/modules/payment"
	"github.com/rekamteknik/fieldservice-backend/internal/modules/technician"
	"github.com/rekamteknik/fieldservice-backend/internal/store"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	db, err := store.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	fmt.Println("Successfully connected to the database!")

	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := store.RunMigrations(databaseURL, migrationsDir); err != nil {
		log.Fatal(err)
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Roster ──────────────────────────────────────────────
	technicianRepo := technician.NewPostgresRepository(db)
	technicianService := technician.NewService(technicianRepo)
	technician.NewHandler(technicianService).RegisterRoutes(router)

	// ── Invoices & derived state ────────────────────────────
	invoiceRepo := invoice.NewPostgresRepository(db)
	invoiceService := invoice.NewService(invoiceRepo)
	invoice.NewHandler(invoiceService).RegisterRoutes(router)

	// ── Assignment engine ───────────────────────────────────
	assignmentRepo := assignment.NewPostgresRepository(db)
	assignmentService := assignment.NewService(assignmentRepo, invoiceService)
	assignment.NewHandler(assignmentService).RegisterRoutes(router)

	// ── Payments ────────────────────────────────────────────
	paymentRepo := payment.NewPostgresRepository(db)
	paymentService := payment.NewService(paymentRepo, invoiceService)
	payment.NewHandler(paymentService).RegisterRoutes(router)

	// ── Start Server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Rekamteknik API server starting on :%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
