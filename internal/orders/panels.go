package orders

import (
	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/permissions"
	"ovopacific-backend/internal/semana"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DespachoRequest struct {
	Entregas      []uint `json:"entregas"`
	MarcarPedido  bool   `json:"marcar_pedido"`
	Descripcion   string `json:"descripcion"`
	EstadoDestino string `json:"estado_destino"`
}

// GET /api/pedidos/panel/produccion?semana=YYYY-MM-DD
// Pedidos confirmados o en producción de la semana, con totales por tipo.
func PanelProduccionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := permissions.RequierePerfil(c); err != nil {
			return err
		}

		lunes := semana.ParsearYAjustar(c.Query("semana"))
		if lunes.IsZero() {
			lunes = semana.LunesActual()
		}

		var pedidos []models.Pedido
		if err := database.DB.
			Preload("Proveedor").
			Preload("Comercial").
			Preload("Entregas", func(dbq *gorm.DB) *gorm.DB { return dbq.Order("fecha_entrega") }).
			Where("semana = ?", lunes).
			Where("estado IN ?", []models.EstadoPedido{models.EstadoConfirmado, models.EstadoEnProduccion}).
			Order("fecha_entrega, id").
			Find(&pedidos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar el panel de producción")
		}

		totales := map[models.TipoHuevo]int{}
		resp := make([]PedidoResponse, 0, len(pedidos))
		for i := range pedidos {
			totales[pedidos[i].TipoHuevo] += pedidos[i].CantidadEfectiva()
			resp = append(resp, pedidoResponse(&pedidos[i]))
		}

		totalesResp := make([]fiber.Map, 0, len(models.TiposHuevo))
		for _, tipo := range models.TiposHuevo {
			totalesResp = append(totalesResp, fiber.Map{
				"tipo_huevo": tipo,
				"label":      tipo.Label(),
				"kilos":      totales[tipo],
			})
		}

		return c.JSON(fiber.Map{
			"semana":  lunes.Format("2006-01-02"),
			"pedidos": resp,
			"totales": totalesResp,
		})
	}
}

// GET /api/pedidos/panel/logistica?semana=YYYY-MM-DD
// Pedidos en producción o despachados, con sus entregas pendientes.
func PanelLogisticaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := permissions.RequierePerfil(c); err != nil {
			return err
		}

		dbq := database.DB.
			Preload("Proveedor").
			Preload("Comercial").
			Preload("Entregas", func(q *gorm.DB) *gorm.DB { return q.Order("fecha_entrega") }).
			Where("estado IN ?", []models.EstadoPedido{models.EstadoEnProduccion, models.EstadoDespachado})

		if lunes := semana.ParsearYAjustar(c.Query("semana")); !lunes.IsZero() {
			dbq = dbq.Where("semana = ?", lunes)
		}
		if ciudad := c.Query("ciudad"); ciudad != "" {
			dbq = dbq.Where("ciudad = ?", ciudad)
		}

		var pedidos []models.Pedido
		if err := dbq.Order("fecha_entrega, id").Find(&pedidos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar el panel de logística")
		}

		pendientes := 0
		resp := make([]PedidoResponse, 0, len(pedidos))
		for i := range pedidos {
			for _, e := range pedidos[i].Entregas {
				if e.Estado == models.EntregaPendiente {
					pendientes++
				}
			}
			resp = append(resp, pedidoResponse(&pedidos[i]))
		}

		return c.JSON(fiber.Map{
			"pedidos":             resp,
			"entregas_pendientes": pendientes,
		})
	}
}

// POST /api/pedidos/:id/despacho
// Marca entregas puntuales como entregadas y, si se pide, mueve el pedido a
// despachado o entregado con la maquinaria normal de transiciones.
func GuardarDespachoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.PuedeCambiarEstado(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para registrar despachos")
		}

		var pedido models.Pedido
		if err := database.DB.Preload("Entregas").First(&pedido, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pedido no encontrado")
		}

		var body DespachoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		if len(body.Entregas) > 0 {
			propias := map[uint]bool{}
			for _, e := range pedido.Entregas {
				propias[e.ID] = true
			}
			for _, id := range body.Entregas {
				if !propias[id] {
					return fiber.NewError(fiber.StatusBadRequest, "Hay entregas que no pertenecen a este pedido")
				}
			}
			if err := database.DB.Model(&models.EntregaPedido{}).
				Where("id IN ? AND pedido_id = ?", body.Entregas, pedido.ID).
				Update("estado", models.EntregaEntregada).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron actualizar las entregas")
			}
		}

		if body.MarcarPedido {
			destino := models.EstadoDespachado
			if body.EstadoDestino != "" {
				destino = models.EstadoPedido(body.EstadoDestino)
			}
			if err := CambiarEstado(&pedido, destino, perfil, body.Descripcion); err != nil {
				return err
			}
		}

		database.DB.Preload("Proveedor").Preload("Comercial").First(&pedido, pedido.ID)
		database.DB.Where("pedido_id = ?", pedido.ID).Order("fecha_entrega").Find(&pedido.Entregas)

		return c.JSON(pedidoResponse(&pedido))
	}
}
