package reports

import (
	"testing"
	"time"

	"ovopacific-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dia(valor string) time.Time {
	f, err := time.Parse("2006-01-02", valor)
	if err != nil {
		panic(err)
	}
	return f
}

func TestPivotSemanaEntregasExplicitas(t *testing.T) {
	lunes := dia("2026-08-24")
	pedidos := []models.Pedido{
		{
			Presentacion:  models.PresentacionOV20,
			TipoHuevo:     models.TipoHuevoLiquidoEntero,
			CantidadTotal: 500,
			Entregas: []models.EntregaPedido{
				{FechaEntrega: dia("2026-08-24"), Cantidad: 200},
				{FechaEntrega: dia("2026-08-27"), Cantidad: 300},
			},
		},
	}

	filas, orden := pivotSemana(pedidos, lunes)
	require.Contains(t, orden, models.PresentacionOV20)

	fila := filas[models.PresentacionOV20]
	assert.Equal(t, 500, fila.forecast[models.TipoHuevoLiquidoEntero])
	assert.Equal(t, 200, fila.dias[0][models.TipoHuevoLiquidoEntero], "lunes")
	assert.Equal(t, 300, fila.dias[3][models.TipoHuevoLiquidoEntero], "jueves")
	assert.Zero(t, fila.dias[1][models.TipoHuevoLiquidoEntero])
}

func TestPivotSemanaPedidoSinEntregasUsaFechaPrincipal(t *testing.T) {
	lunes := dia("2026-08-24")
	fechaEntrega := dia("2026-08-26")
	pedidos := []models.Pedido{
		{
			Presentacion: models.PresentacionSaco20,
			TipoHuevo:    models.TipoYemaLiquida,
			Cantidad:     120,
			FechaEntrega: &fechaEntrega,
		},
	}

	filas, _ := pivotSemana(pedidos, lunes)
	fila := filas[models.PresentacionSaco20]
	assert.Equal(t, 120, fila.forecast[models.TipoYemaLiquida])
	assert.Equal(t, 120, fila.dias[2][models.TipoYemaLiquida], "miércoles")
}

func TestPivotSemanaCantidadTotalPrimaSobreCantidad(t *testing.T) {
	lunes := dia("2026-08-24")
	fechaEntrega := dia("2026-08-24")
	pedidos := []models.Pedido{
		{
			Presentacion:  models.PresentacionOV15,
			TipoHuevo:     models.TipoClaraLiquida,
			Cantidad:      100,
			CantidadTotal: 250,
			FechaEntrega:  &fechaEntrega,
		},
	}

	filas, _ := pivotSemana(pedidos, lunes)
	fila := filas[models.PresentacionOV15]
	assert.Equal(t, 250, fila.forecast[models.TipoClaraLiquida])
	assert.Equal(t, 250, fila.dias[0][models.TipoClaraLiquida])
}

func TestPivotSemanaIgnoraEntregasFueraDeRango(t *testing.T) {
	lunes := dia("2026-08-24")
	pedidos := []models.Pedido{
		{
			Presentacion:  models.PresentacionOV20,
			TipoHuevo:     models.TipoHuevoLiquidoEntero,
			CantidadTotal: 400,
			Entregas: []models.EntregaPedido{
				// Domingo: fuera del tramo lunes a sábado.
				{FechaEntrega: dia("2026-08-30"), Cantidad: 150},
				{FechaEntrega: dia("2026-08-29"), Cantidad: 250},
			},
		},
	}

	filas, _ := pivotSemana(pedidos, lunes)
	fila := filas[models.PresentacionOV20]

	programado := 0
	for idx := range diasSemana {
		for _, tipo := range models.TiposHuevo {
			programado += fila.dias[idx][tipo]
		}
	}
	assert.Equal(t, 250, programado, "solo cuenta la entrega del sábado")
	// El pendiente de programar sale del forecast menos lo programado.
	assert.Equal(t, 150, fila.forecast[models.TipoHuevoLiquidoEntero]-programado)
}

func TestDetalleDelDiaAgrupaPorProveedor(t *testing.T) {
	proveedor := &models.Proveedor{Nombre: "Avícola El Roble"}
	pedidos := []models.Pedido{
		{
			Proveedor:    proveedor,
			Presentacion: models.PresentacionOV20,
			TipoHuevo:    models.TipoHuevoLiquidoEntero,
			Entregas: []models.EntregaPedido{
				{FechaEntrega: dia("2026-08-25"), Cantidad: 100},
			},
		},
		{
			Proveedor:    proveedor,
			Presentacion: models.PresentacionOV20,
			TipoHuevo:    models.TipoHuevoLiquidoEntero,
			Entregas: []models.EntregaPedido{
				{FechaEntrega: dia("2026-08-25"), Cantidad: 60},
				{FechaEntrega: dia("2026-08-26"), Cantidad: 40},
			},
		},
	}

	filas, total := detalleDelDia(pedidos, dia("2026-08-25"))
	require.Len(t, filas, 1)
	assert.Equal(t, "Avícola El Roble", filas[0].Proveedor)
	assert.Equal(t, 160, filas[0].Cantidad)
	assert.Equal(t, 160, total)
}
