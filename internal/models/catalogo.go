package models

type TipoHuevo string

const (
	TipoHuevoLiquidoEntero TipoHuevo = "HELU"
	TipoYemaLiquida        TipoHuevo = "YELU"
	TipoClaraLiquida       TipoHuevo = "CLLU"
	TipoMezclaEnPolvo      TipoHuevo = "MEPU"
)

var TipoHuevoLabels = map[TipoHuevo]string{
	TipoHuevoLiquidoEntero: "Huevo Líquido Entero",
	TipoYemaLiquida:        "Yema Líquida",
	TipoClaraLiquida:       "Clara Líquida",
	TipoMezclaEnPolvo:      "Mezcla en Polvo",
}

// TiposHuevo mantiene el orden de presentación de las columnas del resumen.
var TiposHuevo = []TipoHuevo{
	TipoHuevoLiquidoEntero,
	TipoYemaLiquida,
	TipoClaraLiquida,
	TipoMezclaEnPolvo,
}

func (t TipoHuevo) Valido() bool {
	_, ok := TipoHuevoLabels[t]
	return ok
}

func (t TipoHuevo) Label() string {
	if label, ok := TipoHuevoLabels[t]; ok {
		return label
	}
	return string(t)
}

type Presentacion string

const (
	PresentacionOV20 Presentacion = "OV20_1000"
	PresentacionOV15 Presentacion = "OV15_200"
	PresentacionSaco20 Presentacion = "SAC_20"
	PresentacionSaco5  Presentacion = "SAC_5"
)

var PresentacionLabels = map[Presentacion]string{
	PresentacionOV20:   "OV20 - 1000g",
	PresentacionOV15:   "OV15 - 200g",
	PresentacionSaco20: "Saco 20kg",
	PresentacionSaco5:  "Saco 5kg",
}

var Presentaciones = []Presentacion{
	PresentacionOV20,
	PresentacionOV15,
	PresentacionSaco20,
	PresentacionSaco5,
}

func (p Presentacion) Valida() bool {
	_, ok := PresentacionLabels[p]
	return ok
}

func (p Presentacion) Label() string {
	if label, ok := PresentacionLabels[p]; ok {
		return label
	}
	return string(p)
}

type Ciudad string

const (
	CiudadBogota   Ciudad = "BOGOTA"
	CiudadCali     Ciudad = "CALI"
	CiudadMedellin Ciudad = "MEDELLIN"
)

var CiudadLabels = map[Ciudad]string{
	CiudadBogota:   "Bogotá",
	CiudadCali:     "Cali",
	CiudadMedellin: "Medellín",
}

var Ciudades = []Ciudad{CiudadBogota, CiudadCali, CiudadMedellin}

func (c Ciudad) Valida() bool {
	_, ok := CiudadLabels[c]
	return ok
}

func (c Ciudad) Label() string {
	if label, ok := CiudadLabels[c]; ok {
		return label
	}
	return string(c)
}
