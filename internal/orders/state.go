package orders

import (
	"strings"

	"ovopacific-backend/internal/audit"
	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/notifications"
	"ovopacific-backend/internal/permissions"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ValidarTransicion aplica el contrato de cambios de estado sin persistir
// nada: estado dentro del catálogo, permitido para el rol del usuario, y con
// descripción cuando el destino cierra el pedido.
func ValidarTransicion(usuario *models.Usuario, actual, nuevo models.EstadoPedido, descripcion string) error {
	if !nuevo.Valido() {
		return fiber.NewError(fiber.StatusBadRequest, "Debes seleccionar un estado válido")
	}

	if nuevo == actual {
		return nil
	}

	if !permissions.EstadosPermitidos(usuario)[nuevo] {
		return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para cambiar el pedido a ese estado")
	}

	if models.EstadosRequierenDescripcion[nuevo] && strings.TrimSpace(descripcion) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Debes agregar una descripción para cerrar el pedido")
	}

	return nil
}

// registrarCambio escribe el registro inmutable y dispara el fan-out de
// notificaciones para un cambio ya persistido. No hace nada si el estado no
// cambió.
func registrarCambio(pedido *models.Pedido, estadoAnterior models.EstadoPedido, usuario *models.Usuario, descripcion string) {
	if estadoAnterior == "" || estadoAnterior == pedido.Estado {
		return
	}

	if err := audit.RegistrarCambioEstado(audit.RegistroOptions{
		Pedido:         pedido,
		Usuario:        usuario,
		EstadoAnterior: estadoAnterior,
		EstadoNuevo:    pedido.Estado,
		Descripcion:    strings.TrimSpace(descripcion),
	}); err != nil {
		log.Error().Err(err).Uint("pedido_id", pedido.ID).Msg("No se pudo guardar el registro de estado")
	}

	notifications.RegistrarCambioEstado(pedido, estadoAnterior, usuario)
}

// CambiarEstado valida y aplica una transición sobre un pedido ya cargado.
// El permiso se verifica antes de cualquier escritura: una transición
// rechazada no deja rastro ni en el pedido ni en los registros.
func CambiarEstado(pedido *models.Pedido, nuevo models.EstadoPedido, usuario *models.Usuario, descripcion string) error {
	if err := ValidarTransicion(usuario, pedido.Estado, nuevo, descripcion); err != nil {
		return err
	}

	estadoAnterior := pedido.Estado
	if nuevo == estadoAnterior {
		return nil
	}

	if err := database.DB.Model(pedido).Update("estado", nuevo).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el estado del pedido")
	}
	pedido.Estado = nuevo

	registrarCambio(pedido, estadoAnterior, usuario, descripcion)
	return nil
}
