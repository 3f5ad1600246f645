// Package semana maneja el ancla semanal de planeación: todo pedido se
// agenda contra el lunes de su semana.
package semana

import "time"

// AjustarALunes normaliza una fecha al lunes más cercano: el anterior o el
// siguiente según cuál quede a menos días (en empate gana el siguiente).
func AjustarALunes(fecha time.Time) time.Time {
	fecha = Truncar(fecha)
	weekday := int(fecha.Weekday())
	// time.Weekday cuenta desde domingo; la semana de planeación arranca lunes.
	distPrev := (weekday + 6) % 7
	if distPrev == 0 {
		return fecha
	}
	distNext := 7 - distPrev
	if distNext < distPrev {
		return fecha.AddDate(0, 0, distNext)
	}
	return fecha.AddDate(0, 0, -distPrev)
}

// ParsearYAjustar interpreta una fecha YYYY-MM-DD y la ajusta al lunes.
// Devuelve el cero de time.Time si el valor no es una fecha válida.
func ParsearYAjustar(valor string) time.Time {
	if valor == "" {
		return time.Time{}
	}
	fecha, err := time.Parse("2006-01-02", valor)
	if err != nil {
		return time.Time{}
	}
	return AjustarALunes(fecha)
}

// LunesActual devuelve el lunes de la semana en curso.
func LunesActual() time.Time {
	hoy := Truncar(time.Now())
	weekday := (int(hoy.Weekday()) + 6) % 7
	return hoy.AddDate(0, 0, -weekday)
}

// Rango devuelve el inicio y fin del tramo programable de la semana
// (lunes a sábado).
func Rango(lunes time.Time) (time.Time, time.Time) {
	return lunes, lunes.AddDate(0, 0, 5)
}

// Truncar descarta la hora dejando la fecha en UTC, que es como se
// persisten las columnas de tipo date.
func Truncar(fecha time.Time) time.Time {
	return time.Date(fecha.Year(), fecha.Month(), fecha.Day(), 0, 0, 0, 0, time.UTC)
}
