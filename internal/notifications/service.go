package notifications

import (
	"fmt"

	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// maxPorUsuario es el tope del feed: tras cada fan-out cada usuario conserva
// solo sus notificaciones más recientes.
const maxPorUsuario = 5

// CrearGlobales inserta una notificación por cada usuario activo y después
// poda el feed de cada uno al tope.
func CrearGlobales(mensaje string, tipoEvento models.TipoEvento, sonido bool) error {
	var usuarios []models.Usuario
	if err := database.DB.Select("id").Where("activo = ?", true).Find(&usuarios).Error; err != nil {
		return fmt.Errorf("no se pudieron cargar los usuarios activos: %w", err)
	}
	if len(usuarios) == 0 {
		return nil
	}

	notificaciones := make([]models.Notificacion, 0, len(usuarios))
	for _, usuario := range usuarios {
		notificaciones = append(notificaciones, models.Notificacion{
			UsuarioID:        usuario.ID,
			Mensaje:          mensaje,
			TipoEvento:       tipoEvento,
			ReproducirSonido: sonido,
		})
	}

	if err := database.DB.CreateInBatches(notificaciones, 100).Error; err != nil {
		return fmt.Errorf("no se pudieron crear las notificaciones: %w", err)
	}

	for _, usuario := range usuarios {
		if err := podarFeed(usuario.ID); err != nil {
			log.Warn().Err(err).Uint("usuario_id", usuario.ID).Msg("No se pudo podar el feed de notificaciones")
		}
	}

	return nil
}

func podarFeed(usuarioID uint) error {
	var idsExceso []uint
	err := database.DB.Model(&models.Notificacion{}).
		Where("usuario_id = ?", usuarioID).
		Order("fecha_creacion DESC, id DESC").
		Offset(maxPorUsuario).
		Limit(-1).
		Pluck("id", &idsExceso).Error
	if err != nil {
		return err
	}
	if len(idsExceso) == 0 {
		return nil
	}
	return database.DB.Delete(&models.Notificacion{}, idsExceso).Error
}

// RegistrarCreacionPedido notifica a todos los usuarios activos que se creó
// un pedido. La creación siempre suena.
func RegistrarCreacionPedido(pedido *models.Pedido, usuario *models.Usuario) {
	mensaje := fmt.Sprintf("Pedido #%d creado por %s", pedido.ID, models.NombreUsuario(usuario))
	if err := CrearGlobales(mensaje, models.EventoPedidoCreado, true); err != nil {
		log.Error().Err(err).Uint("pedido_id", pedido.ID).Msg("Fan-out de creación de pedido falló")
	}
}

// RegistrarCambioEstado notifica un cambio de estado ya persistido. Los pasos
// a CONFIRMADO, CANCELADO y DEVUELTO disparan el sonido en los clientes.
func RegistrarCambioEstado(pedido *models.Pedido, estadoAnterior models.EstadoPedido, usuario *models.Usuario) {
	if estadoAnterior == "" || estadoAnterior == pedido.Estado {
		return
	}

	nombre := models.NombreUsuario(usuario)
	tipoEvento := models.EventoPedidoCambioEstado
	sonido := false
	var mensaje string

	switch pedido.Estado {
	case models.EstadoConfirmado:
		mensaje = fmt.Sprintf("Pedido #%d confirmado por %s", pedido.ID, nombre)
		tipoEvento = models.EventoPedidoConfirmado
		sonido = true
	case models.EstadoCancelado:
		mensaje = fmt.Sprintf("Pedido #%d cancelado por %s", pedido.ID, nombre)
		tipoEvento = models.EventoPedidoCancelado
		sonido = true
	case models.EstadoDevuelto:
		mensaje = fmt.Sprintf("Pedido #%d marcado como devuelto por %s", pedido.ID, nombre)
		tipoEvento = models.EventoPedidoDevuelto
		sonido = true
	default:
		mensaje = fmt.Sprintf(
			"Pedido #%d cambio de %s a %s por %s",
			pedido.ID, estadoAnterior.Label(), pedido.Estado.Label(), nombre,
		)
	}

	if err := CrearGlobales(mensaje, tipoEvento, sonido); err != nil {
		log.Error().Err(err).Uint("pedido_id", pedido.ID).Msg("Fan-out de cambio de estado falló")
	}
}
