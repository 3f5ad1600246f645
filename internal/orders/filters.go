package orders

import (
	"time"

	"ovopacific-backend/internal/semana"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AplicarFiltros agrega al query los filtros de listado de pedidos que
// comparten el tablero, el historial y los paneles.
func AplicarFiltros(dbq *gorm.DB, c *fiber.Ctx) *gorm.DB {
	if proveedorID := c.QueryInt("proveedor", 0); proveedorID > 0 {
		dbq = dbq.Where("proveedor_id = ?", proveedorID)
	}

	if ciudad := c.Query("ciudad"); ciudad != "" {
		dbq = dbq.Where("ciudad = ?", ciudad)
	}

	if tipoHuevo := c.Query("tipo_huevo"); tipoHuevo != "" {
		dbq = dbq.Where("tipo_huevo = ?", tipoHuevo)
	}

	if presentacion := c.Query("presentacion"); presentacion != "" {
		dbq = dbq.Where("presentacion = ?", presentacion)
	}

	if estado := c.Query("estado"); estado != "" {
		dbq = dbq.Where("estado = ?", estado)
	}

	if fechaCreacion := c.Query("fecha_creacion"); fechaCreacion != "" {
		if fecha, err := time.Parse("2006-01-02", fechaCreacion); err == nil {
			dbq = dbq.Where("fecha_creacion >= ? AND fecha_creacion < ?", fecha, fecha.AddDate(0, 0, 1))
		}
	}

	if semanaStr := c.Query("semana"); semanaStr != "" {
		if lunes := semana.ParsearYAjustar(semanaStr); !lunes.IsZero() {
			dbq = dbq.Where("semana = ?", lunes)
		}
	}

	if desde := c.Query("fecha_desde"); desde != "" {
		dbq = dbq.Where("fecha_entrega >= ?", desde)
	}

	if hasta := c.Query("fecha_hasta"); hasta != "" {
		dbq = dbq.Where("fecha_entrega <= ?", hasta)
	}

	return dbq
}
