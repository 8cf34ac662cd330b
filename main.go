package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/higbec/project-portal-backend/api"
	"github.com/higbec/project-portal-backend/database"
	"github.com/higbec/project-portal-backend/models"
	"github.com/higbec/project-portal-backend/storage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Info().Msg("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded, relying on environment")
	}

	connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", ""),
		getEnv("DB_NAME", "project_portal"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_SSLMODE", "require"),
	)

	gormLogger := logger.New(
		&zerologWriter{},
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	currentDB := database.New(db)

	// Schema setup runs exactly once, before any traffic is accepted.
	if err := currentDB.Bootstrap(); err != nil {
		log.Fatal().Err(err).Msg("Error bootstrapping database schema")
	}

	// If seeding the initial admin account, run the seed and exit.
	if strings.ToLower(os.Getenv("SEED_ADMIN")) == "true" {
		seedAdmin(currentDB)
		return
	}

	files, err := storage.NewS3Store(context.Background(), storage.Config{
		Endpoint:        os.Getenv("STORAGE_ENDPOINT"),
		Region:          getEnv("STORAGE_REGION", "us-east-1"),
		AccessKeyID:     os.Getenv("STORAGE_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
		Bucket:          getEnv("STORAGE_BUCKET", "uploads"),
		PublicURL:       os.Getenv("STORAGE_PUBLIC_URL"),
		Folder:          getEnv("STORAGE_FOLDER", "payment-screenshots"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing file storage")
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(currentDB, files)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Error().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// seedAdmin creates the initial back-office account from the environment.
// Safe to re-run: an existing username or email leaves the table untouched.
func seedAdmin(db database.Database) {
	username := getEnv("ADMIN_USERNAME", "admin")
	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	password := os.Getenv("ADMIN_PASSWORD")

	if email == "" || password == "" {
		log.Fatal().Msg("ADMIN_EMAIL and ADMIN_PASSWORD must be set to seed an admin")
	}

	existing, err := db.AdminRepo().FindByUsernameOrEmail(username, email)
	if err != nil {
		log.Fatal().Err(err).Msg("Error checking for existing admin")
	}
	if existing != nil {
		log.Info().Str("username", existing.Username).Msg("Admin already exists, nothing to do")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("Error hashing admin password")
	}

	admin := models.Admin{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         getEnv("ADMIN_ROLE", models.RoleAdmin),
		IsActive:     true,
	}
	if err := db.AdminRepo().Add(&admin); err != nil {
		log.Fatal().Err(err).Msg("Error creating admin")
	}

	log.Info().Str("username", admin.Username).Str("email", admin.Email).Msg("Admin seeded")
}

// zerologWriter adapts gorm's logger onto the global zerolog instance.
type zerologWriter struct{}

func (zerologWriter) Printf(format string, args ...any) {
	log.Warn().Msgf(format, args...)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}

// getEnv returns the value of the environment variable key or a fallback value.
func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
