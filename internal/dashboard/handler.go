package dashboard

import (
	"sort"
	"time"

	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/orders"
	"ovopacific-backend/internal/permissions"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Estados que cuentan como actividad en el tablero de inicio.
var (
	estadosDashboard            = []models.EstadoPedido{models.EstadoPendiente, models.EstadoConfirmado, models.EstadoEnProduccion}
	estadosConfirmadosDashboard = map[models.EstadoPedido]bool{
		models.EstadoConfirmado:   true,
		models.EstadoEnProduccion: true,
	}
)

var mesesCortos = []string{
	"Ene", "Feb", "Mar", "Abr", "May", "Jun",
	"Jul", "Ago", "Sep", "Oct", "Nov", "Dic",
}

type PedidoResumen struct {
	ID            uint   `json:"id"`
	Proveedor     string `json:"proveedor"`
	Comercial     string `json:"comercial"`
	Ciudad        string `json:"ciudad"`
	TipoHuevo     string `json:"tipo_huevo"`
	Presentacion  string `json:"presentacion"`
	Cantidad      int    `json:"cantidad"`
	Estado        string `json:"estado"`
	EstadoLabel   string `json:"estado_label"`
	FechaEntrega  string `json:"fecha_entrega"`
	FechaCreacion string `json:"fecha_creacion"`
}

type TotalComercial struct {
	Comercial      string  `json:"comercial"`
	TotalKg        int     `json:"total_kg"`
	TotalToneladas float64 `json:"total_toneladas"`
}

type TablaCiudad struct {
	Codigo         models.Ciudad    `json:"codigo"`
	Nombre         string           `json:"nombre"`
	Pedidos        []PedidoResumen  `json:"pedidos"`
	Totales        []TotalComercial `json:"totales"`
	TotalToneladas float64          `json:"total_toneladas"`
}

type ChartsAnio struct {
	Anio         int      `json:"anio"`
	Labels       []string `json:"labels"`
	Pendientes   []int    `json:"pendientes"`
	Confirmados  []int    `json:"confirmados"`
	MateriaPrima []int    `json:"materia_prima"`
	Comerciales  []int    `json:"comerciales"`
	Balance      []int    `json:"balance"`
}

type DashboardResponse struct {
	UltimosPedidos     []PedidoResumen `json:"ultimos_pedidos"`
	TablasCiudades     []TablaCiudad   `json:"tablas_ciudades"`
	PedidosPendientes  int             `json:"pedidos_pendientes"`
	PedidosConfirmados int             `json:"pedidos_confirmados"`
	Charts             ChartsAnio      `json:"charts"`
	CityLabels         []string        `json:"city_labels"`
	CityData           []float64       `json:"city_data"`
	TotalToneladas     float64         `json:"total_toneladas"`
}

func resumenDePedido(p *models.Pedido) PedidoResumen {
	resumen := PedidoResumen{
		ID:            p.ID,
		Comercial:     models.NombreUsuario(p.Comercial),
		Ciudad:        p.Ciudad.Label(),
		TipoHuevo:     p.TipoHuevo.Label(),
		Presentacion:  p.Presentacion.Label(),
		Cantidad:      p.CantidadEfectiva(),
		Estado:        string(p.Estado),
		EstadoLabel:   p.Estado.Label(),
		FechaCreacion: p.FechaCreacion.Format("2006-01-02 15:04:05"),
	}
	if p.Proveedor != nil {
		resumen.Proveedor = p.Proveedor.Nombre
	}
	if p.FechaEntrega != nil {
		resumen.FechaEntrega = p.FechaEntrega.Format("2006-01-02")
	}
	return resumen
}

// GET /api/dashboard
// Tablero de inicio: últimos pedidos pendientes, tablas por ciudad y las
// series mensuales del año en curso.
func DashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := permissions.RequierePerfil(c); err != nil {
			return err
		}

		anio := time.Now().Year()
		inicioAnio := time.Date(anio, 1, 1, 0, 0, 0, 0, time.UTC)
		finAnio := inicioAnio.AddDate(1, 0, 0)

		base := func() *gorm.DB {
			return orders.AplicarFiltros(database.DB.Model(&models.Pedido{}), c)
		}

		var ultimos []models.Pedido
		base().
			Preload("Proveedor").
			Preload("Comercial").
			Where("estado = ?", models.EstadoPendiente).
			Order("fecha_creacion DESC").
			Limit(3).
			Find(&ultimos)

		var activos []models.Pedido
		if err := base().
			Preload("Proveedor").
			Preload("Comercial").
			Where("estado IN ?", estadosDashboard).
			Order("semana, fecha_entrega").
			Find(&activos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar el tablero")
		}

		pendientes, confirmados := 0, 0
		porCiudad := map[models.Ciudad][]PedidoResumen{}
		totalesCiudad := map[models.Ciudad]int{}
		type acumComercial struct {
			nombre string
			kilos  int
		}
		comercialesCiudad := map[models.Ciudad]map[uint]*acumComercial{}

		for i := range activos {
			p := &activos[i]
			if p.Estado == models.EstadoPendiente {
				pendientes++
			} else if estadosConfirmadosDashboard[p.Estado] {
				confirmados++
			}
			porCiudad[p.Ciudad] = append(porCiudad[p.Ciudad], resumenDePedido(p))
			totalesCiudad[p.Ciudad] += p.CantidadEfectiva()

			if comercialesCiudad[p.Ciudad] == nil {
				comercialesCiudad[p.Ciudad] = map[uint]*acumComercial{}
			}
			acum, ok := comercialesCiudad[p.Ciudad][p.ComercialID]
			if !ok {
				acum = &acumComercial{nombre: models.NombreUsuario(p.Comercial)}
				comercialesCiudad[p.Ciudad][p.ComercialID] = acum
			}
			acum.kilos += p.CantidadEfectiva()
		}

		charts := chartsDelAnio(c, inicioAnio, finAnio)

		cityLabels := make([]string, 0, len(models.Ciudades))
		cityData := make([]float64, 0, len(models.Ciudades))
		totalKg := 0
		tablas := make([]TablaCiudad, 0, len(models.Ciudades))
		for _, ciudad := range models.Ciudades {
			totalKg += totalesCiudad[ciudad]
			cityLabels = append(cityLabels, ciudad.Label())
			cityData = append(cityData, float64(totalesCiudad[ciudad])/1000)

			totales := make([]TotalComercial, 0, len(comercialesCiudad[ciudad]))
			for _, acum := range comercialesCiudad[ciudad] {
				totales = append(totales, TotalComercial{
					Comercial:      acum.nombre,
					TotalKg:        acum.kilos,
					TotalToneladas: float64(acum.kilos) / 1000,
				})
			}
			sort.Slice(totales, func(i, j int) bool { return totales[i].Comercial < totales[j].Comercial })

			pedidosCiudad := porCiudad[ciudad]
			if pedidosCiudad == nil {
				pedidosCiudad = []PedidoResumen{}
			}
			tablas = append(tablas, TablaCiudad{
				Codigo:         ciudad,
				Nombre:         ciudad.Label(),
				Pedidos:        pedidosCiudad,
				Totales:        totales,
				TotalToneladas: float64(totalesCiudad[ciudad]) / 1000,
			})
		}

		ultimosResp := make([]PedidoResumen, 0, len(ultimos))
		for i := range ultimos {
			ultimosResp = append(ultimosResp, resumenDePedido(&ultimos[i]))
		}

		return c.JSON(DashboardResponse{
			UltimosPedidos:     ultimosResp,
			TablasCiudades:     tablas,
			PedidosPendientes:  pendientes,
			PedidosConfirmados: confirmados,
			Charts:             charts,
			CityLabels:         cityLabels,
			CityData:           cityData,
			TotalToneladas:     float64(totalKg) / 1000,
		})
	}
}

// chartsDelAnio arma las cinco series mensuales del año: kilos pendientes y
// confirmados, materia prima ingresada, kilos creados por comerciales y el
// balance entre ambos.
func chartsDelAnio(c *fiber.Ctx, inicio, fin time.Time) ChartsAnio {
	charts := ChartsAnio{
		Anio:         inicio.Year(),
		Labels:       mesesCortos,
		Pendientes:   make([]int, 12),
		Confirmados:  make([]int, 12),
		MateriaPrima: make([]int, 12),
		Comerciales:  make([]int, 12),
		Balance:      make([]int, 12),
	}

	var pedidosAnio []models.Pedido
	orders.AplicarFiltros(database.DB.Model(&models.Pedido{}), c).
		Preload("Comercial").
		Where("fecha_creacion >= ? AND fecha_creacion < ?", inicio, fin).
		Find(&pedidosAnio)

	for i := range pedidosAnio {
		p := &pedidosAnio[i]
		mes := int(p.FechaCreacion.Month()) - 1
		switch {
		case p.Estado == models.EstadoPendiente:
			charts.Pendientes[mes] += p.CantidadEfectiva()
		case estadosConfirmadosDashboard[p.Estado]:
			charts.Confirmados[mes] += p.CantidadEfectiva()
		}
		if p.Comercial != nil && p.Comercial.Rol == models.RolComercial {
			charts.Comerciales[mes] += p.CantidadEfectiva()
		}
	}

	var ingresos []models.MateriaPrima
	database.DB.
		Where("fecha >= ? AND fecha < ?", inicio, fin).
		Find(&ingresos)
	for _, ingreso := range ingresos {
		charts.MateriaPrima[int(ingreso.Fecha.Month())-1] += ingreso.CantidadKg
	}

	for i := 0; i < 12; i++ {
		charts.Balance[i] = charts.MateriaPrima[i] - charts.Comerciales[i]
	}
	return charts
}
