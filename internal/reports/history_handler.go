package reports

import (
	"time"

	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/orders"
	"ovopacific-backend/internal/permissions"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var mesesCortos = []string{
	"Ene", "Feb", "Mar", "Abr", "May", "Jun",
	"Jul", "Ago", "Sep", "Oct", "Nov", "Dic",
}

type cierreHistorial struct {
	Estado      string `json:"estado"`
	EstadoLabel string `json:"estado_label"`
	Fecha       string `json:"fecha"`
	Usuario     string `json:"usuario"`
	Detalle     string `json:"detalle"`
}

// GET /api/reportes/historial?anio=&proveedor=&ciudad=&estado=...
// Pedidos cerrados del año, cada uno con el registro que lo cerró, más la
// serie mensual en kilos para la gráfica anual.
func HistorialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}

		// Años en los que hay pedidos cerrados, del más reciente hacia atrás.
		var fechas []time.Time
		database.DB.Model(&models.Pedido{}).
			Where("estado IN ?", models.EstadosHistorial).
			Order("fecha_creacion DESC").
			Pluck("fecha_creacion", &fechas)

		aniosDisponibles := []int{}
		visto := map[int]bool{}
		for _, f := range fechas {
			if !visto[f.Year()] {
				visto[f.Year()] = true
				aniosDisponibles = append(aniosDisponibles, f.Year())
			}
		}

		anio := c.QueryInt("anio", 0)
		if anio == 0 {
			if len(aniosDisponibles) > 0 {
				anio = aniosDisponibles[0]
			} else {
				anio = time.Now().Year()
			}
		}
		if !visto[anio] {
			aniosDisponibles = append([]int{anio}, aniosDisponibles...)
		}

		inicioAnio := time.Date(anio, 1, 1, 0, 0, 0, 0, time.UTC)
		finAnio := inicioAnio.AddDate(1, 0, 0)

		dbq := database.DB.Model(&models.Pedido{}).
			Preload("Proveedor").
			Preload("Comercial").
			Preload("Entregas", func(q *gorm.DB) *gorm.DB { return q.Order("fecha_entrega") }).
			Where("estado IN ?", models.EstadosHistorial).
			Where("fecha_creacion >= ? AND fecha_creacion < ?", inicioAnio, finAnio)
		dbq = orders.AplicarFiltros(dbq, c)

		var pedidos []models.Pedido
		if err := dbq.Order("fecha_creacion DESC, id DESC").Find(&pedidos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar el historial")
		}

		chart := make([]int, 12)
		ids := make([]uint, 0, len(pedidos))
		for i := range pedidos {
			chart[int(pedidos[i].FechaCreacion.Month())-1] += pedidos[i].CantidadEfectiva()
			ids = append(ids, pedidos[i].ID)
		}

		// El registro más reciente con estado de cierre, por pedido.
		cierres := map[uint]cierreHistorial{}
		if len(ids) > 0 {
			var registros []models.RegistroEstadoPedido
			database.DB.
				Preload("Usuario").
				Where("pedido_id IN ?", ids).
				Where("estado_nuevo IN ?", models.EstadosHistorial).
				Order("fecha_creacion DESC").
				Find(&registros)
			for i := range registros {
				r := &registros[i]
				if _, ok := cierres[r.PedidoID]; ok {
					continue
				}
				cierres[r.PedidoID] = cierreHistorial{
					Estado:      string(r.EstadoNuevo),
					EstadoLabel: r.EstadoNuevo.Label(),
					Fecha:       r.FechaCreacion.Format("2006-01-02 15:04:05"),
					Usuario:     models.NombreUsuario(r.Usuario),
					Detalle:     r.Descripcion,
				}
			}
		}

		resp := make([]fiber.Map, 0, len(pedidos))
		for i := range pedidos {
			p := &pedidos[i]
			fila := fiber.Map{
				"id":             p.ID,
				"proveedor":      "",
				"comercial":      models.NombreUsuario(p.Comercial),
				"ciudad":         p.Ciudad,
				"ciudad_label":   p.Ciudad.Label(),
				"tipo_huevo":     p.TipoHuevo.Label(),
				"presentacion":   p.Presentacion.Label(),
				"cantidad":       p.CantidadEfectiva(),
				"estado":         p.Estado,
				"estado_label":   p.Estado.Label(),
				"fecha_creacion": p.FechaCreacion.Format("2006-01-02 15:04:05"),
			}
			if p.Proveedor != nil {
				fila["proveedor"] = p.Proveedor.Nombre
			}
			if cierre, ok := cierres[p.ID]; ok {
				fila["cierre"] = cierre
			} else {
				fila["cierre"] = cierreHistorial{
					Estado:      string(p.Estado),
					EstadoLabel: p.Estado.Label(),
					Usuario:     "Sistema",
				}
			}
			resp = append(resp, fila)
		}

		return c.JSON(fiber.Map{
			"pedidos":           resp,
			"anio":              anio,
			"anios_disponibles": aniosDisponibles,
			"chart_labels":      mesesCortos,
			"chart_data":        chart,
			"puede_editar":      permissions.EsAdmin(perfil),
		})
	}
}
