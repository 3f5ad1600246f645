package models

import "time"

type EstadoEntrega string

const (
	EntregaPendiente EstadoEntrega = "PENDIENTE"
	EntregaEntregada EstadoEntrega = "ENTREGADO"
)

// EntregaPedido es una entrega parcial programada contra un pedido.
type EntregaPedido struct {
	ID       uint `gorm:"primaryKey"`
	PedidoID uint `gorm:"not null;index"`
	Pedido   *Pedido

	FechaEntrega time.Time     `gorm:"type:date;not null"`
	Cantidad     int           `gorm:"not null"`
	Estado       EstadoEntrega `gorm:"size:10;not null;default:PENDIENTE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
