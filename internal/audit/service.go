package audit

import (
	"fmt"

	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
)

type RegistroOptions struct {
	Pedido         *models.Pedido
	Usuario        *models.Usuario // nil para cambios del sistema
	EstadoAnterior models.EstadoPedido
	EstadoNuevo    models.EstadoPedido
	Descripcion    string
}

// RegistrarCambioEstado escribe el registro inmutable de un cambio de estado.
// No escribe nada si el estado no cambió.
func RegistrarCambioEstado(opts RegistroOptions) error {
	if opts.EstadoAnterior == "" || opts.EstadoAnterior == opts.EstadoNuevo {
		return nil
	}

	var usuarioID *uint
	if opts.Usuario != nil {
		id := opts.Usuario.ID
		usuarioID = &id
	}

	registro := models.RegistroEstadoPedido{
		PedidoID:       opts.Pedido.ID,
		UsuarioID:      usuarioID,
		EstadoAnterior: opts.EstadoAnterior,
		EstadoNuevo:    opts.EstadoNuevo,
		Descripcion:    opts.Descripcion,
	}

	if err := database.DB.Create(&registro).Error; err != nil {
		return fmt.Errorf("no se pudo guardar el registro de estado: %w", err)
	}

	return nil
}

// UltimoRegistroHistorial devuelve el registro que cerró el pedido (paso a
// entregado, cancelado o devuelto), o nil si no existe.
func UltimoRegistroHistorial(pedidoID uint) *models.RegistroEstadoPedido {
	var registro models.RegistroEstadoPedido
	err := database.DB.
		Preload("Usuario").
		Where("pedido_id = ? AND estado_nuevo IN ?", pedidoID, models.EstadosHistorial).
		Order("fecha_creacion DESC").
		First(&registro).Error
	if err != nil {
		return nil
	}
	return &registro
}
