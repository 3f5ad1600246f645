package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
	MediaPath   string // carpeta para fotos de perfil e imágenes de clientes
}

func Load() *Config {
	// .env es opcional: en producción las variables vienen del entorno.
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("Variables cargadas desde .env")
	}

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=ovopacific port=5432 sslmode=disable"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		MediaPath:   getEnv("MEDIA_PATH", "./media"),
	}

	// Controles de arranque para producción
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET no está definido, es obligatorio")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal().Msg("JWT_SECRET debe tener al menos 32 caracteres")
	}
	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=ovopacific port=5432 sslmode=disable" {
		log.Warn().Msg("DATABASE_DSN usa el valor por defecto, define tu propia conexión para producción")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Warn().Msg("CORS_ALLOWED_ORIGINS usa el valor por defecto, define tu propio dominio para producción")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
