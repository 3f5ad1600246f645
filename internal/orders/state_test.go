package orders

import (
	"fmt"
	"testing"

	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Usuario{},
		&models.Proveedor{},
		&models.Pedido{},
		&models.EntregaPedido{},
		&models.RegistroEstadoPedido{},
		&models.Notificacion{},
	))
	database.DB = db
}

func crearUsuario(t *testing.T, username string, rol models.Rol) *models.Usuario {
	t.Helper()
	usuario := models.Usuario{
		Username:     username,
		PasswordHash: "x",
		Rol:          rol,
		Ciudad:       models.CiudadBogota,
		Activo:       true,
	}
	require.NoError(t, database.DB.Create(&usuario).Error)
	return &usuario
}

var proveedorSeq int

func crearPedido(t *testing.T, comercial *models.Usuario, estado models.EstadoPedido) *models.Pedido {
	t.Helper()
	proveedorSeq++
	proveedor := models.Proveedor{
		Nombre:       fmt.Sprintf("Avícola San Jorge %d", proveedorSeq),
		Ciudad:       models.CiudadBogota,
		Presentacion: models.PresentacionOV20,
		Activo:       true,
	}
	require.NoError(t, database.DB.Create(&proveedor).Error)

	pedido := models.Pedido{
		ProveedorID:  proveedor.ID,
		ComercialID:  comercial.ID,
		Ciudad:       models.CiudadBogota,
		TipoHuevo:    models.TipoHuevoLiquidoEntero,
		Presentacion: models.PresentacionOV20,
		Cantidad:     500,
		Estado:       estado,
	}
	require.NoError(t, database.DB.Create(&pedido).Error)
	return &pedido
}

func contarRegistros(pedidoID uint) int64 {
	var n int64
	database.DB.Model(&models.RegistroEstadoPedido{}).Where("pedido_id = ?", pedidoID).Count(&n)
	return n
}

func TestCambiarEstadoPersisteYRegistra(t *testing.T) {
	setupDB(t)
	comercial := crearUsuario(t, "ana", models.RolComercial)
	pedido := crearPedido(t, comercial, models.EstadoPendiente)

	require.NoError(t, CambiarEstado(pedido, models.EstadoConfirmado, comercial, ""))
	assert.Equal(t, models.EstadoConfirmado, pedido.Estado)

	var enBase models.Pedido
	require.NoError(t, database.DB.First(&enBase, pedido.ID).Error)
	assert.Equal(t, models.EstadoConfirmado, enBase.Estado)

	var registro models.RegistroEstadoPedido
	require.NoError(t, database.DB.Where("pedido_id = ?", pedido.ID).First(&registro).Error)
	assert.Equal(t, models.EstadoPendiente, registro.EstadoAnterior)
	assert.Equal(t, models.EstadoConfirmado, registro.EstadoNuevo)
	require.NotNil(t, registro.UsuarioID)
	assert.Equal(t, comercial.ID, *registro.UsuarioID)

	// El fan-out llega a todos los usuarios activos.
	var notificaciones int64
	database.DB.Model(&models.Notificacion{}).Count(&notificaciones)
	assert.EqualValues(t, 1, notificaciones)
}

func TestCambiarEstadoMismoEstadoNoRegistra(t *testing.T) {
	setupDB(t)
	comercial := crearUsuario(t, "ana", models.RolComercial)
	pedido := crearPedido(t, comercial, models.EstadoConfirmado)

	require.NoError(t, CambiarEstado(pedido, models.EstadoConfirmado, comercial, ""))
	assert.Zero(t, contarRegistros(pedido.ID))
}

func TestCambiarEstadoInvalidoRechazado(t *testing.T) {
	setupDB(t)
	comercial := crearUsuario(t, "ana", models.RolComercial)
	pedido := crearPedido(t, comercial, models.EstadoPendiente)

	err := CambiarEstado(pedido, models.EstadoPedido("INVENTADO"), comercial, "")
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)

	var enBase models.Pedido
	require.NoError(t, database.DB.First(&enBase, pedido.ID).Error)
	assert.Equal(t, models.EstadoPendiente, enBase.Estado)
	assert.Zero(t, contarRegistros(pedido.ID))
}

func TestProduccionNoPuedeCancelar(t *testing.T) {
	setupDB(t)
	comercial := crearUsuario(t, "ana", models.RolComercial)
	produccion := crearUsuario(t, "pedro", models.RolProduccion)
	pedido := crearPedido(t, comercial, models.EstadoConfirmado)

	err := CambiarEstado(pedido, models.EstadoCancelado, produccion, "")
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusForbidden, fe.Code)

	// El rechazo no deja rastro: ni estado nuevo ni registro.
	var enBase models.Pedido
	require.NoError(t, database.DB.First(&enBase, pedido.ID).Error)
	assert.Equal(t, models.EstadoConfirmado, enBase.Estado)
	assert.Zero(t, contarRegistros(pedido.ID))
}

func TestCerrarPedidoExigeDescripcion(t *testing.T) {
	setupDB(t)
	comercial := crearUsuario(t, "ana", models.RolComercial)
	logistica := crearUsuario(t, "laura", models.RolLogistica)

	for _, destino := range []models.EstadoPedido{models.EstadoEntregado, models.EstadoDevuelto} {
		pedido := crearPedido(t, comercial, models.EstadoDespachado)

		err := CambiarEstado(pedido, destino, logistica, "   ")
		var fe *fiber.Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, fiber.StatusBadRequest, fe.Code)
		assert.Zero(t, contarRegistros(pedido.ID))

		require.NoError(t, CambiarEstado(pedido, destino, logistica, "Recibido conforme"))
		var registro models.RegistroEstadoPedido
		require.NoError(t, database.DB.Where("pedido_id = ?", pedido.ID).First(&registro).Error)
		assert.Equal(t, "Recibido conforme", registro.Descripcion)
	}
}

func TestAdminNoPuedeMarcarDevuelto(t *testing.T) {
	setupDB(t)
	admin := crearUsuario(t, "admin", models.RolAdmin)
	pedido := crearPedido(t, admin, models.EstadoDespachado)

	err := CambiarEstado(pedido, models.EstadoDevuelto, admin, "llegó en mal estado")
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusForbidden, fe.Code)
}

func TestValidarTransicionNoToca(t *testing.T) {
	setupDB(t)
	comercial := crearUsuario(t, "ana", models.RolComercial)
	pedido := crearPedido(t, comercial, models.EstadoPendiente)

	require.NoError(t, ValidarTransicion(comercial, pedido.Estado, models.EstadoConfirmado, ""))

	// Validar no persiste nada.
	var enBase models.Pedido
	require.NoError(t, database.DB.First(&enBase, pedido.ID).Error)
	assert.Equal(t, models.EstadoPendiente, enBase.Estado)
	assert.Zero(t, contarRegistros(pedido.ID))
}
