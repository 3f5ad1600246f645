package reports

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/permissions"
	"ovopacific-backend/internal/semana"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Días de programación de la semana, de lunes a sábado.
var diasSemana = []struct {
	Key   int
	Label string
	Corto string
}{
	{1, "Lunes", "Lun"},
	{2, "Martes", "Mar"},
	{3, "Miércoles", "Mié"},
	{4, "Jueves", "Jue"},
	{5, "Viernes", "Vie"},
	{6, "Sábado", "Sáb"},
}

type filaPresentacion struct {
	forecast map[models.TipoHuevo]int
	dias     []map[models.TipoHuevo]int
}

func nuevaFila() *filaPresentacion {
	fila := &filaPresentacion{
		forecast: map[models.TipoHuevo]int{},
		dias:     make([]map[models.TipoHuevo]int, len(diasSemana)),
	}
	for i := range fila.dias {
		fila.dias[i] = map[models.TipoHuevo]int{}
	}
	return fila
}

// pivotSemana acumula por presentación el forecast por tipo de huevo y lo
// programado por día. El forecast cuenta todo pedido de la semana por su
// cantidad efectiva; lo programado viene de entregas explícitas dentro de
// lunes a sábado, más los pedidos sin entregas por su fecha de entrega.
func pivotSemana(pedidos []models.Pedido, lunes time.Time) (map[models.Presentacion]*filaPresentacion, []models.Presentacion) {
	inicio, fin := semana.Rango(lunes)

	indicePorFecha := map[string]int{}
	for idx := range diasSemana {
		indicePorFecha[lunes.AddDate(0, 0, idx).Format("2006-01-02")] = idx
	}

	filas := map[models.Presentacion]*filaPresentacion{}
	orden := append([]models.Presentacion{}, models.Presentaciones...)
	for _, p := range models.Presentaciones {
		filas[p] = nuevaFila()
	}
	obtenerFila := func(p models.Presentacion) *filaPresentacion {
		if fila, ok := filas[p]; ok {
			return fila
		}
		fila := nuevaFila()
		filas[p] = fila
		orden = append(orden, p)
		return fila
	}

	for i := range pedidos {
		p := &pedidos[i]
		fila := obtenerFila(p.Presentacion)
		fila.forecast[p.TipoHuevo] += p.CantidadEfectiva()

		if len(p.Entregas) > 0 {
			for _, e := range p.Entregas {
				fecha := semana.Truncar(e.FechaEntrega)
				if fecha.Before(inicio) || fecha.After(fin) {
					continue
				}
				if idx, ok := indicePorFecha[fecha.Format("2006-01-02")]; ok {
					fila.dias[idx][p.TipoHuevo] += e.Cantidad
				}
			}
		} else if p.FechaEntrega != nil {
			fecha := semana.Truncar(*p.FechaEntrega)
			if !fecha.Before(inicio) && !fecha.After(fin) {
				if idx, ok := indicePorFecha[fecha.Format("2006-01-02")]; ok {
					fila.dias[idx][p.TipoHuevo] += p.CantidadEfectiva()
				}
			}
		}
	}

	return filas, orden
}

type detalleDia struct {
	Proveedor    string `json:"proveedor"`
	Presentacion string `json:"presentacion"`
	TipoHuevo    string `json:"tipo_huevo"`
	Cantidad     int    `json:"cantidad"`
}

// cargarPedidosSemana trae los pedidos de la semana en los estados que
// cuentan para el resumen, con proveedor, comercial y entregas.
func cargarPedidosSemana(lunes time.Time, ciudad string) ([]models.Pedido, error) {
	dbq := database.DB.
		Preload("Proveedor").
		Preload("Comercial").
		Preload("Entregas", func(q *gorm.DB) *gorm.DB { return q.Order("fecha_entrega") }).
		Where("semana = ?", lunes).
		Where("estado IN ?", models.EstadosResumen)
	if ciudad != "" {
		dbq = dbq.Where("ciudad = ?", ciudad)
	}

	var pedidos []models.Pedido
	err := dbq.Order("fecha_entrega, id").Find(&pedidos).Error
	return pedidos, err
}

// semanasDisponibles devuelve las últimas 52 semanas con pedidos, más la
// seleccionada si no estaba entre ellas.
func semanasDisponibles(seleccionada time.Time) []time.Time {
	var fechas []time.Time
	database.DB.Model(&models.Pedido{}).
		Where("semana IS NOT NULL").
		Where("estado IN ?", models.EstadosResumen).
		Distinct("semana").
		Order("semana DESC").
		Limit(52).
		Pluck("semana", &fechas)

	encontrada := false
	for i := range fechas {
		fechas[i] = semana.Truncar(fechas[i])
		if fechas[i].Equal(seleccionada) {
			encontrada = true
		}
	}
	if !encontrada && !seleccionada.IsZero() {
		fechas = append(fechas, seleccionada)
		sort.Slice(fechas, func(i, j int) bool { return fechas[i].After(fechas[j]) })
	}
	return fechas
}

// GET /api/reportes/resumen-semanal?semana=YYYY-MM-DD&dia=1..6&ciudad=
func ResumenSemanalHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := permissions.RequierePerfil(c); err != nil {
			return err
		}

		seleccionada := semana.ParsearYAjustar(c.Query("semana"))

		semanas := semanasDisponibles(seleccionada)
		if seleccionada.IsZero() {
			if len(semanas) > 0 {
				seleccionada = semanas[0]
			} else {
				seleccionada = semana.LunesActual()
				semanas = []time.Time{seleccionada}
			}
		}

		pedidos, err := cargarPedidosSemana(seleccionada, c.Query("ciudad"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular el resumen semanal")
		}

		filas, ordenPresentaciones := pivotSemana(pedidos, seleccionada)

		totalForecastTipo := map[models.TipoHuevo]int{}
		totalProgramadoTipo := map[models.TipoHuevo]int{}
		totalesDiaTipo := make([]map[models.TipoHuevo]int, len(diasSemana))
		for i := range totalesDiaTipo {
			totalesDiaTipo[i] = map[models.TipoHuevo]int{}
		}

		filasResp := make([]fiber.Map, 0, len(ordenPresentaciones))
		for _, codigo := range ordenPresentaciones {
			fila := filas[codigo]

			forecast := make([]int, 0, len(models.TiposHuevo))
			totalForecast := 0
			for _, tipo := range models.TiposHuevo {
				forecast = append(forecast, fila.forecast[tipo])
				totalForecast += fila.forecast[tipo]
				totalForecastTipo[tipo] += fila.forecast[tipo]
			}

			diasResp := make([]fiber.Map, 0, len(diasSemana))
			totalProgramado := 0
			for idx, dia := range diasSemana {
				cantidades := make([]int, 0, len(models.TiposHuevo))
				totalDia := 0
				for _, tipo := range models.TiposHuevo {
					cantidad := fila.dias[idx][tipo]
					cantidades = append(cantidades, cantidad)
					totalDia += cantidad
					totalesDiaTipo[idx][tipo] += cantidad
					totalProgramadoTipo[tipo] += cantidad
				}
				totalProgramado += totalDia
				diasResp = append(diasResp, fiber.Map{
					"label":       dia.Label,
					"short_label": dia.Corto,
					"fecha":       seleccionada.AddDate(0, 0, idx).Format("2006-01-02"),
					"cantidades":  cantidades,
					"total":       totalDia,
				})
			}

			if totalForecast == 0 && totalProgramado == 0 {
				continue
			}
			filasResp = append(filasResp, fiber.Map{
				"codigo":               codigo,
				"presentacion":         codigo.Label(),
				"forecast":             forecast,
				"dias":                 diasResp,
				"total_forecast":       totalForecast,
				"total_programado":     totalProgramado,
				"pendiente_programar":  totalForecast - totalProgramado,
			})
		}

		resumenTipos := make([]fiber.Map, 0, len(models.TiposHuevo))
		totalForecastSemana, totalProgramadoSemana := 0, 0
		for _, tipo := range models.TiposHuevo {
			forecast := totalForecastTipo[tipo]
			programado := totalProgramadoTipo[tipo]
			totalForecastSemana += forecast
			totalProgramadoSemana += programado
			resumenTipos = append(resumenTipos, fiber.Map{
				"codigo":              tipo,
				"label":               tipo.Label(),
				"forecast":            forecast,
				"programado":          programado,
				"pendiente_programar": forecast - programado,
			})
		}

		totalesDia := make([]fiber.Map, 0, len(diasSemana))
		for idx, dia := range diasSemana {
			cantidades := make([]int, 0, len(models.TiposHuevo))
			totalDia := 0
			for _, tipo := range models.TiposHuevo {
				cantidades = append(cantidades, totalesDiaTipo[idx][tipo])
				totalDia += totalesDiaTipo[idx][tipo]
			}
			totalesDia = append(totalesDia, fiber.Map{
				"key":         dia.Key,
				"label":       dia.Label,
				"short_label": dia.Corto,
				"fecha":       seleccionada.AddDate(0, 0, idx).Format("2006-01-02"),
				"cantidades":  cantidades,
				"total":       totalDia,
			})
		}

		diaKey := c.QueryInt("dia", 1)
		if diaKey < 1 || diaKey > len(diasSemana) {
			diaKey = 1
		}
		detalle, totalDetalle := detalleDelDia(pedidos, seleccionada.AddDate(0, 0, diaKey-1))

		return c.JSON(fiber.Map{
			"semana":                  seleccionada.Format("2006-01-02"),
			"semanas_disponibles":     formatearSemanas(semanas, seleccionada),
			"filas_presentacion":      filasResp,
			"resumen_tipos":           resumenTipos,
			"totales_dia":             totalesDia,
			"total_forecast_semana":   totalForecastSemana,
			"total_programado_semana": totalProgramadoSemana,
			"total_pendiente_semana":  totalForecastSemana - totalProgramadoSemana,
			"dia_seleccionado":        diaKey,
			"detalle_dia":             detalle,
			"total_dia_seleccionado":  totalDetalle,
			"ciudades":                tablasCiudades(pedidos),
		})
	}
}

// detalleDelDia agrupa lo programado de una fecha por proveedor,
// presentación y tipo de huevo.
func detalleDelDia(pedidos []models.Pedido, fecha time.Time) ([]detalleDia, int) {
	fecha = semana.Truncar(fecha)
	acumulado := map[string]*detalleDia{}

	acumular := func(p *models.Pedido, cantidad int) {
		proveedor := "Sin compañía"
		if p.Proveedor != nil && p.Proveedor.Nombre != "" {
			proveedor = p.Proveedor.Nombre
		}
		clave := proveedor + "|" + string(p.Presentacion) + "|" + string(p.TipoHuevo)
		fila, ok := acumulado[clave]
		if !ok {
			fila = &detalleDia{
				Proveedor:    proveedor,
				Presentacion: p.Presentacion.Label(),
				TipoHuevo:    p.TipoHuevo.Label(),
			}
			acumulado[clave] = fila
		}
		fila.Cantidad += cantidad
	}

	for i := range pedidos {
		p := &pedidos[i]
		if len(p.Entregas) > 0 {
			for _, e := range p.Entregas {
				if semana.Truncar(e.FechaEntrega).Equal(fecha) {
					acumular(p, e.Cantidad)
				}
			}
		} else if p.FechaEntrega != nil && semana.Truncar(*p.FechaEntrega).Equal(fecha) {
			acumular(p, p.CantidadEfectiva())
		}
	}

	filas := make([]detalleDia, 0, len(acumulado))
	total := 0
	for _, fila := range acumulado {
		filas = append(filas, *fila)
		total += fila.Cantidad
	}
	sort.Slice(filas, func(i, j int) bool {
		a, b := filas[i], filas[j]
		if !strings.EqualFold(a.Proveedor, b.Proveedor) {
			return strings.ToLower(a.Proveedor) < strings.ToLower(b.Proveedor)
		}
		if !strings.EqualFold(a.Presentacion, b.Presentacion) {
			return strings.ToLower(a.Presentacion) < strings.ToLower(b.Presentacion)
		}
		return strings.ToLower(a.TipoHuevo) < strings.ToLower(b.TipoHuevo)
	})
	return filas, total
}

// tablasCiudades arma, por ciudad, el total en kilos y toneladas y el
// desglose por comercial.
func tablasCiudades(pedidos []models.Pedido) []fiber.Map {
	type comercialAcum struct {
		nombre string
		kilos  int
	}
	totales := map[models.Ciudad]int{}
	porComercial := map[models.Ciudad]map[uint]*comercialAcum{}

	for i := range pedidos {
		p := &pedidos[i]
		totales[p.Ciudad] += p.CantidadEfectiva()
		if porComercial[p.Ciudad] == nil {
			porComercial[p.Ciudad] = map[uint]*comercialAcum{}
		}
		acum, ok := porComercial[p.Ciudad][p.ComercialID]
		if !ok {
			acum = &comercialAcum{nombre: models.NombreUsuario(p.Comercial)}
			porComercial[p.Ciudad][p.ComercialID] = acum
		}
		acum.kilos += p.CantidadEfectiva()
	}

	tablas := make([]fiber.Map, 0, len(models.Ciudades))
	for _, ciudad := range models.Ciudades {
		comerciales := make([]fiber.Map, 0, len(porComercial[ciudad]))
		for _, acum := range porComercial[ciudad] {
			comerciales = append(comerciales, fiber.Map{
				"comercial":       acum.nombre,
				"total_kg":        acum.kilos,
				"total_toneladas": toneladas(acum.kilos),
			})
		}
		sort.Slice(comerciales, func(i, j int) bool {
			return comerciales[i]["comercial"].(string) < comerciales[j]["comercial"].(string)
		})
		tablas = append(tablas, fiber.Map{
			"codigo":          ciudad,
			"nombre":          ciudad.Label(),
			"total_kg":        totales[ciudad],
			"total_toneladas": toneladas(totales[ciudad]),
			"comerciales":     comerciales,
		})
	}
	return tablas
}

func toneladas(kilos int) float64 {
	return float64(kilos) / 1000
}

func formatearSemanas(semanas []time.Time, seleccionada time.Time) []fiber.Map {
	resp := make([]fiber.Map, 0, len(semanas))
	for _, s := range semanas {
		resp = append(resp, fiber.Map{
			"value":    s.Format("2006-01-02"),
			"label":    fmt.Sprintf("Semana del %s", s.Format("02/01/2006")),
			"selected": s.Equal(seleccionada),
		})
	}
	return resp
}
