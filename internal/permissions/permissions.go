package permissions

import (
	"ovopacific-backend/internal/auth"
	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	ctxPerfilKey        = "perfil_usuario"
	ctxPerfilCargadoKey = "perfil_usuario_cargado"
)

// PerfilActual carga el usuario autenticado una sola vez por request y lo
// deja cacheado en c.Locals para que el resto de handlers no repitan la
// consulta. Devuelve nil si el token no corresponde a un usuario activo.
func PerfilActual(c *fiber.Ctx) *models.Usuario {
	if cargado, _ := c.Locals(ctxPerfilCargadoKey).(bool); cargado {
		perfil, _ := c.Locals(ctxPerfilKey).(*models.Usuario)
		return perfil
	}

	var perfil *models.Usuario
	if userID, ok := c.Locals(auth.CtxUserIDKey).(uint); ok && userID != 0 {
		var usuario models.Usuario
		if err := database.DB.First(&usuario, userID).Error; err == nil && usuario.Activo {
			perfil = &usuario
		}
	}

	c.Locals(ctxPerfilKey, perfil)
	c.Locals(ctxPerfilCargadoKey, true)
	return perfil
}

// RequierePerfil es como PerfilActual pero convierte la ausencia de perfil
// en el error HTTP estándar.
func RequierePerfil(c *fiber.Ctx) (*models.Usuario, error) {
	perfil := PerfilActual(c)
	if perfil == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Usuario no encontrado o inactivo")
	}
	return perfil, nil
}

// rolEstadosPermitidos define a qué estados puede mover un pedido cada rol.
// Nadie, ni siquiera un superusuario, marca DEVUELTO salvo producción y
// logística, que son quienes reciben el producto de vuelta.
var rolEstadosPermitidos = map[models.Rol][]models.EstadoPedido{
	models.RolComercial: {
		models.EstadoPendiente, models.EstadoConfirmado, models.EstadoCancelado,
	},
	models.RolProduccion: {
		models.EstadoEnProduccion, models.EstadoDevuelto,
	},
	models.RolProgramador: {
		models.EstadoEnProduccion, models.EstadoDevuelto,
	},
	models.RolLogistica: {
		models.EstadoDespachado, models.EstadoEntregado, models.EstadoDevuelto,
	},
}

// EstadosPermitidos devuelve el conjunto de estados destino que el usuario
// puede fijar. Para admin y superusuario son todos menos DEVUELTO.
func EstadosPermitidos(usuario *models.Usuario) map[models.EstadoPedido]bool {
	permitidos := make(map[models.EstadoPedido]bool)
	if usuario == nil {
		return permitidos
	}

	if usuario.Superusuario || usuario.Rol == models.RolAdmin {
		for estado := range models.EstadoPedidoLabels {
			if estado != models.EstadoDevuelto {
				permitidos[estado] = true
			}
		}
		return permitidos
	}

	for _, estado := range rolEstadosPermitidos[usuario.Rol] {
		permitidos[estado] = true
	}
	return permitidos
}

func PuedeCambiarEstado(usuario *models.Usuario) bool {
	return len(EstadosPermitidos(usuario)) > 0
}

func EsAdmin(usuario *models.Usuario) bool {
	if usuario == nil {
		return false
	}
	return usuario.Superusuario || usuario.Rol == models.RolAdmin
}

func PuedeGestionarUsuarios(usuario *models.Usuario) bool {
	return EsAdmin(usuario)
}

func PuedeGestionarProveedores(usuario *models.Usuario) bool {
	if usuario == nil {
		return false
	}
	if usuario.Superusuario {
		return true
	}
	return usuario.Rol == models.RolAdmin || usuario.Rol == models.RolComercial
}

func PuedeGestionarPedidos(usuario *models.Usuario) bool {
	if usuario == nil {
		return false
	}
	if usuario.Superusuario {
		return true
	}
	return usuario.Rol == models.RolAdmin || usuario.Rol == models.RolComercial
}

// PuedeEditarPedido aplica la regla de ciudad: un comercial solo toca pedidos
// de su propia ciudad, y los pedidos ya cerrados (historial) quedan
// reservados al administrador.
func PuedeEditarPedido(usuario *models.Usuario, pedido *models.Pedido) bool {
	if usuario == nil || pedido == nil {
		return false
	}
	if pedido.Estado.EsHistorial() {
		return EsAdmin(usuario)
	}
	if EsAdmin(usuario) {
		return true
	}
	return usuario.Rol == models.RolComercial && usuario.Ciudad == pedido.Ciudad
}
