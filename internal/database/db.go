package database

import (
	"ovopacific-backend/internal/config"
	"ovopacific-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("No se pudo conectar a la base de datos")
	}

	// Migración manual previa: perfiles creados antes del rol "produccion"
	// quedaron con rol "programador"; se conservan pero los nuevos índices
	// asumen que la columna ciudad existe y no es nula.
	if DB.Migrator().HasTable(&models.Usuario{}) {
		if !DB.Migrator().HasColumn(&models.Usuario{}, "ciudad") {
			log.Info().Msg("Agregando columna ciudad a usuarios...")
			if err := DB.Exec("ALTER TABLE usuarios ADD COLUMN ciudad VARCHAR(20)").Error; err != nil {
				log.Warn().Err(err).Msg("No se pudo agregar la columna ciudad (puede existir)")
			}
			DB.Exec("UPDATE usuarios SET ciudad = ? WHERE ciudad IS NULL OR ciudad = ''", models.CiudadBogota)
		}
	}

	err = DB.AutoMigrate(
		&models.Usuario{},
		&models.Proveedor{},
		&models.Cliente{},
		&models.Pedido{},
		&models.EntregaPedido{},
		&models.RegistroEstadoPedido{},
		&models.Notificacion{},
		&models.MateriaPrima{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Error en AutoMigrate")
	}

	log.Info().Msg("Conexión a la base de datos lista, migración completa")
}
