package reports

import (
	"fmt"

	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/permissions"

	"github.com/gofiber/fiber/v2"
)

// GET /api/reportes/calendario
// Entregas pendientes como eventos de calendario.
func CalendarioEntregasHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := permissions.RequierePerfil(c); err != nil {
			return err
		}

		var entregas []models.EntregaPedido
		if err := database.DB.
			Preload("Pedido").
			Preload("Pedido.Proveedor").
			Where("estado = ?", models.EntregaPendiente).
			Order("fecha_entrega").
			Find(&entregas).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar el calendario de entregas")
		}

		eventos := make([]fiber.Map, 0, len(entregas))
		for _, e := range entregas {
			proveedor := "Sin compañía"
			if e.Pedido != nil && e.Pedido.Proveedor != nil {
				proveedor = e.Pedido.Proveedor.Nombre
			}
			eventos = append(eventos, fiber.Map{
				"title": fmt.Sprintf("%s - %dkg", proveedor, e.Cantidad),
				"start": e.FechaEntrega.Format("2006-01-02"),
			})
		}

		return c.JSON(eventos)
	}
}
