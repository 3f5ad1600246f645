package semana

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fecha(valor string) time.Time {
	f, err := time.Parse("2006-01-02", valor)
	if err != nil {
		panic(err)
	}
	return f
}

func TestAjustarALunes(t *testing.T) {
	casos := []struct {
		nombre   string
		entrada  string
		esperado string
	}{
		{"lunes queda igual", "2026-08-24", "2026-08-24"},
		{"martes retrocede", "2026-08-25", "2026-08-24"},
		{"miercoles retrocede", "2026-08-26", "2026-08-24"},
		{"viernes avanza", "2026-08-28", "2026-08-31"},
		{"sabado avanza", "2026-08-29", "2026-08-31"},
		{"domingo avanza", "2026-08-30", "2026-08-31"},
		{"jueves retrocede, el lunes anterior queda a tres dias", "2026-08-27", "2026-08-24"},
	}

	for _, caso := range casos {
		t.Run(caso.nombre, func(t *testing.T) {
			resultado := AjustarALunes(fecha(caso.entrada))
			assert.Equal(t, caso.esperado, resultado.Format("2006-01-02"))
			assert.Equal(t, time.Monday, resultado.Weekday())
		})
	}
}

func TestAjustarALunesDescartaHora(t *testing.T) {
	conHora := time.Date(2026, 8, 25, 17, 30, 12, 0, time.Local)
	resultado := AjustarALunes(conHora)
	assert.Equal(t, "2026-08-24", resultado.Format("2006-01-02"))
	assert.Zero(t, resultado.Hour())
	assert.Equal(t, time.UTC, resultado.Location())
}

func TestParsearYAjustar(t *testing.T) {
	assert.Equal(t, "2026-08-24", ParsearYAjustar("2026-08-26").Format("2006-01-02"))

	assert.True(t, ParsearYAjustar("").IsZero())
	assert.True(t, ParsearYAjustar("no-es-fecha").IsZero())
	assert.True(t, ParsearYAjustar("26/08/2026").IsZero())
}

func TestRango(t *testing.T) {
	inicio, fin := Rango(fecha("2026-08-24"))
	assert.Equal(t, "2026-08-24", inicio.Format("2006-01-02"))
	assert.Equal(t, "2026-08-29", fin.Format("2006-01-02"))
	assert.Equal(t, time.Saturday, fin.Weekday())
}

func TestLunesActual(t *testing.T) {
	lunes := LunesActual()
	assert.Equal(t, time.Monday, lunes.Weekday())
	assert.False(t, lunes.After(Truncar(time.Now())))
}
