package notifications

import (
	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/permissions"

	"github.com/gofiber/fiber/v2"
)

type NotificacionResponse struct {
	ID               uint   `json:"id"`
	Mensaje          string `json:"mensaje"`
	TipoEvento       string `json:"tipo_evento"`
	ReproducirSonido bool   `json:"reproducir_sonido"`
	Leida            bool   `json:"leida"`
	FechaCreacion    string `json:"fecha_creacion"`
}

// GET /api/notificaciones
// Feed del usuario autenticado: las no leídas más recientes y el total.
func ListNotificacionesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}

		var notificaciones []models.Notificacion
		if err := database.DB.
			Where("usuario_id = ? AND leida = ?", perfil.ID, false).
			Order("fecha_creacion DESC").
			Limit(5).
			Find(&notificaciones).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las notificaciones")
		}

		var total int64
		database.DB.Model(&models.Notificacion{}).
			Where("usuario_id = ? AND leida = ?", perfil.ID, false).
			Count(&total)

		resp := make([]NotificacionResponse, 0, len(notificaciones))
		for _, n := range notificaciones {
			resp = append(resp, NotificacionResponse{
				ID:               n.ID,
				Mensaje:          n.Mensaje,
				TipoEvento:       string(n.TipoEvento),
				ReproducirSonido: n.ReproducirSonido,
				Leida:            n.Leida,
				FechaCreacion:    n.FechaCreacion.Format("2006-01-02T15:04:05Z07:00"),
			})
		}

		return c.JSON(fiber.Map{
			"notificaciones":       resp,
			"total_notificaciones": total,
		})
	}
}

// GET /api/notificaciones/ultimo-evento
// Endpoint liviano de polling: el cliente compara last_event_id y decide si
// reproduce el sonido, sin mantener una conexión abierta.
func UltimoEventoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}

		var ultimo models.Notificacion
		err = database.DB.
			Where("usuario_id = ? AND reproducir_sonido = ?", perfil.ID, true).
			Order("fecha_creacion DESC").
			First(&ultimo).Error
		if err != nil {
			return c.JSON(fiber.Map{
				"last_event_id": nil,
				"last_event_ts": nil,
			})
		}

		return c.JSON(fiber.Map{
			"last_event_id":      ultimo.ID,
			"last_event_ts":      ultimo.FechaCreacion.Format("2006-01-02T15:04:05Z07:00"),
			"last_event_message": ultimo.Mensaje,
		})
	}
}

// POST /api/notificaciones/limpiar
func LimpiarNotificacionesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}

		if err := database.DB.
			Where("usuario_id = ?", perfil.ID).
			Delete(&models.Notificacion{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron limpiar las notificaciones")
		}

		return c.JSON(fiber.Map{"message": "Notificaciones eliminadas"})
	}
}
