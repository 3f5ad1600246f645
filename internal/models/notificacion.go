package models

import "time"

type TipoEvento string

const (
	EventoInfo               TipoEvento = "INFO"
	EventoPedidoCreado       TipoEvento = "PEDIDO_CREADO"
	EventoPedidoCambioEstado TipoEvento = "PEDIDO_CAMBIO_ESTADO"
	EventoPedidoConfirmado   TipoEvento = "PEDIDO_CONFIRMADO"
	EventoPedidoCancelado    TipoEvento = "PEDIDO_CANCELADO"
	EventoPedidoDevuelto     TipoEvento = "PEDIDO_DEVUELTO"
)

// Notificacion es una entrada del feed acotado por usuario: tras cada
// fan-out se conservan a lo sumo las 5 más recientes de cada usuario.
type Notificacion struct {
	ID        uint `gorm:"primaryKey"`
	UsuarioID uint `gorm:"not null;index"`
	Usuario   *Usuario

	Mensaje           string     `gorm:"type:text;not null"`
	TipoEvento        TipoEvento `gorm:"size:30;not null;default:INFO"`
	ReproducirSonido  bool       `gorm:"default:false"`
	Leida             bool       `gorm:"default:false"`

	FechaCreacion time.Time `gorm:"autoCreateTime;index"`
}
