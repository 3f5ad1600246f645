package permissions

import (
	"testing"

	"ovopacific-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func usuarioConRol(rol models.Rol) *models.Usuario {
	return &models.Usuario{ID: 1, Username: "test", Rol: rol, Ciudad: models.CiudadBogota, Activo: true}
}

func TestEstadosPermitidosPorRol(t *testing.T) {
	comercial := EstadosPermitidos(usuarioConRol(models.RolComercial))
	assert.True(t, comercial[models.EstadoPendiente])
	assert.True(t, comercial[models.EstadoConfirmado])
	assert.True(t, comercial[models.EstadoCancelado])
	assert.False(t, comercial[models.EstadoEnProduccion])
	assert.False(t, comercial[models.EstadoEntregado])
	assert.False(t, comercial[models.EstadoDevuelto])

	produccion := EstadosPermitidos(usuarioConRol(models.RolProduccion))
	assert.True(t, produccion[models.EstadoEnProduccion])
	assert.True(t, produccion[models.EstadoDevuelto])
	assert.False(t, produccion[models.EstadoCancelado])
	assert.False(t, produccion[models.EstadoDespachado])

	// El rol programador es un alias histórico de producción.
	assert.Equal(t, produccion, EstadosPermitidos(usuarioConRol(models.RolProgramador)))

	logistica := EstadosPermitidos(usuarioConRol(models.RolLogistica))
	assert.True(t, logistica[models.EstadoDespachado])
	assert.True(t, logistica[models.EstadoEntregado])
	assert.True(t, logistica[models.EstadoDevuelto])
	assert.False(t, logistica[models.EstadoConfirmado])
}

func TestEstadosPermitidosAdminNoIncluyeDevuelto(t *testing.T) {
	admin := EstadosPermitidos(usuarioConRol(models.RolAdmin))
	assert.False(t, admin[models.EstadoDevuelto])
	for _, estado := range []models.EstadoPedido{
		models.EstadoPendiente, models.EstadoConfirmado, models.EstadoEnProduccion,
		models.EstadoDespachado, models.EstadoEntregado, models.EstadoCancelado,
	} {
		assert.True(t, admin[estado], "admin debería poder fijar %s", estado)
	}

	super := usuarioConRol(models.RolComercial)
	super.Superusuario = true
	assert.Equal(t, admin, EstadosPermitidos(super))
}

func TestEstadosPermitidosUsuarioNulo(t *testing.T) {
	assert.Empty(t, EstadosPermitidos(nil))
	assert.False(t, PuedeCambiarEstado(nil))
}

func TestCapacidadesPorRol(t *testing.T) {
	assert.True(t, PuedeGestionarProveedores(usuarioConRol(models.RolAdmin)))
	assert.True(t, PuedeGestionarProveedores(usuarioConRol(models.RolComercial)))
	assert.False(t, PuedeGestionarProveedores(usuarioConRol(models.RolLogistica)))

	assert.True(t, PuedeGestionarUsuarios(usuarioConRol(models.RolAdmin)))
	assert.False(t, PuedeGestionarUsuarios(usuarioConRol(models.RolComercial)))

	super := usuarioConRol(models.RolLogistica)
	super.Superusuario = true
	assert.True(t, PuedeGestionarProveedores(super))
	assert.True(t, PuedeGestionarPedidos(super))
	assert.True(t, PuedeGestionarUsuarios(super))
}

func TestPuedeEditarPedido(t *testing.T) {
	pedidoBogota := &models.Pedido{Ciudad: models.CiudadBogota, Estado: models.EstadoPendiente}
	pedidoCali := &models.Pedido{Ciudad: models.CiudadCali, Estado: models.EstadoPendiente}

	comercial := usuarioConRol(models.RolComercial)
	assert.True(t, PuedeEditarPedido(comercial, pedidoBogota))
	assert.False(t, PuedeEditarPedido(comercial, pedidoCali), "la ciudad del comercial debe coincidir")

	assert.True(t, PuedeEditarPedido(usuarioConRol(models.RolAdmin), pedidoCali))
	assert.False(t, PuedeEditarPedido(usuarioConRol(models.RolLogistica), pedidoBogota))
}

func TestPuedeEditarPedidoHistorialSoloAdmin(t *testing.T) {
	entregado := &models.Pedido{Ciudad: models.CiudadBogota, Estado: models.EstadoEntregado}

	assert.False(t, PuedeEditarPedido(usuarioConRol(models.RolComercial), entregado))
	assert.True(t, PuedeEditarPedido(usuarioConRol(models.RolAdmin), entregado))

	super := usuarioConRol(models.RolComercial)
	super.Superusuario = true
	assert.True(t, PuedeEditarPedido(super, entregado))
}
