package models

import "time"

type EstadoPedido string

const (
	EstadoPendiente    EstadoPedido = "PENDIENTE"
	EstadoConfirmado   EstadoPedido = "CONFIRMADO"
	EstadoEnProduccion EstadoPedido = "EN_PRODUCCION"
	EstadoDespachado   EstadoPedido = "DESPACHADO"
	EstadoEntregado    EstadoPedido = "ENTREGADO"
	EstadoCancelado    EstadoPedido = "CANCELADO"
	EstadoDevuelto     EstadoPedido = "DEVUELTO"
)

var EstadoPedidoLabels = map[EstadoPedido]string{
	EstadoPendiente:    "Pendiente",
	EstadoConfirmado:   "Confirmado",
	EstadoEnProduccion: "En producción",
	EstadoDespachado:   "Despachado",
	EstadoEntregado:    "Entregado",
	EstadoCancelado:    "Cancelado",
	EstadoDevuelto:     "Devuelto",
}

// Subconjuntos de estados que usan los tableros y el resumen semanal.
var (
	EstadosActivos = []EstadoPedido{
		EstadoPendiente, EstadoConfirmado, EstadoEnProduccion, EstadoDespachado,
	}
	EstadosResumen = []EstadoPedido{
		EstadoPendiente, EstadoConfirmado, EstadoEnProduccion, EstadoEntregado,
	}
	EstadosHistorial = []EstadoPedido{
		EstadoEntregado, EstadoCancelado, EstadoDevuelto,
	}
	// Cerrar un pedido como entregado o devuelto exige una descripción.
	EstadosRequierenDescripcion = map[EstadoPedido]bool{
		EstadoEntregado: true,
		EstadoDevuelto:  true,
	}
)

func (e EstadoPedido) Valido() bool {
	_, ok := EstadoPedidoLabels[e]
	return ok
}

func (e EstadoPedido) Label() string {
	if label, ok := EstadoPedidoLabels[e]; ok {
		return label
	}
	return string(e)
}

func (e EstadoPedido) EsHistorial() bool {
	for _, h := range EstadosHistorial {
		if e == h {
			return true
		}
	}
	return false
}

type Pedido struct {
	ID          uint `gorm:"primaryKey"`
	ProveedorID uint `gorm:"not null;index"`
	Proveedor   *Proveedor
	ComercialID uint `gorm:"not null;index"`
	Comercial   *Usuario `gorm:"foreignKey:ComercialID"`

	Ciudad       Ciudad       `gorm:"size:20;not null;index"`
	TipoHuevo    TipoHuevo    `gorm:"size:10;not null"`
	Presentacion Presentacion `gorm:"size:20;not null"`

	Cantidad      int `gorm:"default:0"`
	CantidadTotal int `gorm:"default:0"`

	FechaEntrega *time.Time `gorm:"type:date"`
	// Semana siempre apunta al lunes de la semana de planeación.
	Semana *time.Time `gorm:"type:date;index"`

	Estado        EstadoPedido `gorm:"size:15;not null;default:PENDIENTE;index"`
	Observaciones string       `gorm:"type:text"`

	FechaCreacion time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time

	Entregas []EntregaPedido `gorm:"foreignKey:PedidoID"`
}

// CantidadEfectiva es la cantidad que cuentan los resúmenes: cantidad_total
// cuando fue indicada, si no la cantidad simple.
func (p *Pedido) CantidadEfectiva() int {
	if p.CantidadTotal > 0 {
		return p.CantidadTotal
	}
	return p.Cantidad
}
