package reports

import (
	"fmt"

	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/permissions"
	"ovopacific-backend/internal/semana"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/reportes/resumen-semanal/exportar?semana=YYYY-MM-DD&ciudad=
// Descarga el resumen semanal como un libro de Excel con una hoja de
// programación y otra de totales por ciudad.
func ExportarResumenHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := permissions.RequierePerfil(c); err != nil {
			return err
		}

		seleccionada := semana.ParsearYAjustar(c.Query("semana"))
		if seleccionada.IsZero() {
			seleccionada = semana.LunesActual()
		}

		pedidos, err := cargarPedidosSemana(seleccionada, c.Query("ciudad"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el archivo de resumen")
		}
		filas, orden := pivotSemana(pedidos, seleccionada)

		libro := excelize.NewFile()
		defer libro.Close()

		hoja := "Programación"
		libro.SetSheetName("Sheet1", hoja)

		encabezados := []string{"Presentación"}
		for _, tipo := range models.TiposHuevo {
			encabezados = append(encabezados, "Forecast "+tipo.Label())
		}
		for idx, dia := range diasSemana {
			fecha := seleccionada.AddDate(0, 0, idx)
			encabezados = append(encabezados, fmt.Sprintf("%s %s", dia.Corto, fecha.Format("02/01")))
		}
		encabezados = append(encabezados, "Total forecast", "Total programado", "Pendiente")
		for col, titulo := range encabezados {
			celda, _ := excelize.CoordinatesToCellName(col+1, 1)
			libro.SetCellValue(hoja, celda, titulo)
		}

		filaExcel := 2
		for _, codigo := range orden {
			fila := filas[codigo]

			totalForecast := 0
			for _, tipo := range models.TiposHuevo {
				totalForecast += fila.forecast[tipo]
			}
			totalProgramado := 0
			totalesDia := make([]int, len(diasSemana))
			for idx := range diasSemana {
				for _, tipo := range models.TiposHuevo {
					totalesDia[idx] += fila.dias[idx][tipo]
				}
				totalProgramado += totalesDia[idx]
			}
			if totalForecast == 0 && totalProgramado == 0 {
				continue
			}

			valores := []any{codigo.Label()}
			for _, tipo := range models.TiposHuevo {
				valores = append(valores, fila.forecast[tipo])
			}
			for idx := range diasSemana {
				valores = append(valores, totalesDia[idx])
			}
			valores = append(valores, totalForecast, totalProgramado, totalForecast-totalProgramado)

			for col, valor := range valores {
				celda, _ := excelize.CoordinatesToCellName(col+1, filaExcel)
				libro.SetCellValue(hoja, celda, valor)
			}
			filaExcel++
		}

		hojaCiudades := "Ciudades"
		if _, err := libro.NewSheet(hojaCiudades); err == nil {
			libro.SetCellValue(hojaCiudades, "A1", "Ciudad")
			libro.SetCellValue(hojaCiudades, "B1", "Total kg")
			libro.SetCellValue(hojaCiudades, "C1", "Total toneladas")

			filaCiudad := 2
			for _, tabla := range tablasCiudades(pedidos) {
				libro.SetCellValue(hojaCiudades, fmt.Sprintf("A%d", filaCiudad), tabla["nombre"])
				libro.SetCellValue(hojaCiudades, fmt.Sprintf("B%d", filaCiudad), tabla["total_kg"])
				libro.SetCellValue(hojaCiudades, fmt.Sprintf("C%d", filaCiudad), tabla["total_toneladas"])
				filaCiudad++
			}
		}

		buf, err := libro.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el archivo de resumen")
		}

		nombre := fmt.Sprintf("resumen_semanal_%s.xlsx", seleccionada.Format("2006-01-02"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", nombre))
		return c.Send(buf.Bytes())
	}
}
