package models

import "time"

// RegistroEstadoPedido es el registro inmutable de un cambio de estado.
// Solo se crea cuando el estado nuevo difiere del anterior.
type RegistroEstadoPedido struct {
	ID       uint `gorm:"primaryKey"`
	PedidoID uint `gorm:"not null;index"`
	Pedido   *Pedido

	// UsuarioID es nulo para cambios generados por el sistema.
	UsuarioID *uint `gorm:"index"`
	Usuario   *Usuario

	EstadoAnterior EstadoPedido `gorm:"size:15;not null"`
	EstadoNuevo    EstadoPedido `gorm:"size:15;not null;index"`
	Descripcion    string       `gorm:"size:500"`

	FechaCreacion time.Time `gorm:"autoCreateTime;index"`
}
