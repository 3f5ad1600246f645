package notifications

import (
	"fmt"
	"testing"

	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"

	"github.com/glebarez/sqlite"
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
		&models.Notificacion{},
	))
	database.DB = db
}

func crearUsuario(t *testing.T, username string, activo bool) models.Usuario {
	t.Helper()
	usuario := models.Usuario{
		Username:     username,
		PasswordHash: "x",
		Rol:          models.RolComercial,
		Ciudad:       models.CiudadBogota,
		Activo:       activo,
	}
	require.NoError(t, database.DB.Create(&usuario).Error)
	return usuario
}

func TestCrearGlobalesSoloUsuariosActivos(t *testing.T) {
	setupDB(t)
	activo1 := crearUsuario(t, "ana", true)
	activo2 := crearUsuario(t, "bernardo", true)
	inactivo := crearUsuario(t, "carla", false)

	require.NoError(t, CrearGlobales("mensaje de prueba", models.EventoInfo, false))

	var total int64
	database.DB.Model(&models.Notificacion{}).Count(&total)
	assert.EqualValues(t, 2, total)

	for _, id := range []uint{activo1.ID, activo2.ID} {
		var n int64
		database.DB.Model(&models.Notificacion{}).Where("usuario_id = ?", id).Count(&n)
		assert.EqualValues(t, 1, n)
	}

	var paraInactivo int64
	database.DB.Model(&models.Notificacion{}).Where("usuario_id = ?", inactivo.ID).Count(&paraInactivo)
	assert.Zero(t, paraInactivo)
}

func TestCrearGlobalesSinUsuarios(t *testing.T) {
	setupDB(t)
	require.NoError(t, CrearGlobales("sin destinatarios", models.EventoInfo, false))

	var total int64
	database.DB.Model(&models.Notificacion{}).Count(&total)
	assert.Zero(t, total)
}

func TestFeedNuncaSuperaElTope(t *testing.T) {
	setupDB(t)
	usuario := crearUsuario(t, "ana", true)
	otro := crearUsuario(t, "bernardo", true)

	for i := 0; i < 9; i++ {
		require.NoError(t, CrearGlobales(fmt.Sprintf("evento %d", i), models.EventoInfo, false))
	}

	for _, id := range []uint{usuario.ID, otro.ID} {
		var n int64
		database.DB.Model(&models.Notificacion{}).Where("usuario_id = ?", id).Count(&n)
		assert.EqualValues(t, maxPorUsuario, n)
	}

	// Sobreviven las más recientes.
	var mensajes []string
	database.DB.Model(&models.Notificacion{}).
		Where("usuario_id = ?", usuario.ID).
		Order("id DESC").
		Pluck("mensaje", &mensajes)
	require.Len(t, mensajes, maxPorUsuario)
	assert.Equal(t, "evento 8", mensajes[0])
	assert.Equal(t, "evento 4", mensajes[len(mensajes)-1])
}

func TestRegistrarCambioEstadoSonidoPorEstado(t *testing.T) {
	casos := []struct {
		estado models.EstadoPedido
		tipo   models.TipoEvento
		sonido bool
	}{
		{models.EstadoConfirmado, models.EventoPedidoConfirmado, true},
		{models.EstadoCancelado, models.EventoPedidoCancelado, true},
		{models.EstadoDevuelto, models.EventoPedidoDevuelto, true},
		{models.EstadoEnProduccion, models.EventoPedidoCambioEstado, false},
		{models.EstadoDespachado, models.EventoPedidoCambioEstado, false},
	}

	for _, caso := range casos {
		t.Run(string(caso.estado), func(t *testing.T) {
			setupDB(t)
			usuario := crearUsuario(t, "ana", true)

			pedido := models.Pedido{ID: 7, Estado: caso.estado}
			RegistrarCambioEstado(&pedido, models.EstadoPendiente, &usuario)

			var notificacion models.Notificacion
			require.NoError(t, database.DB.First(&notificacion).Error)
			assert.Equal(t, caso.tipo, notificacion.TipoEvento)
			assert.Equal(t, caso.sonido, notificacion.ReproducirSonido)
			assert.Contains(t, notificacion.Mensaje, "#7")
			assert.False(t, notificacion.Leida)
		})
	}
}

func TestRegistrarCambioEstadoSinCambioNoNotifica(t *testing.T) {
	setupDB(t)
	usuario := crearUsuario(t, "ana", true)

	pedido := models.Pedido{ID: 3, Estado: models.EstadoConfirmado}
	RegistrarCambioEstado(&pedido, models.EstadoConfirmado, &usuario)

	var total int64
	database.DB.Model(&models.Notificacion{}).Count(&total)
	assert.Zero(t, total)
}

func TestRegistrarCreacionPedidoSiempreSuena(t *testing.T) {
	setupDB(t)
	usuario := crearUsuario(t, "ana", true)
	crearUsuario(t, "bernardo", true)

	pedido := models.Pedido{ID: 11, Estado: models.EstadoPendiente}
	RegistrarCreacionPedido(&pedido, &usuario)

	var notificaciones []models.Notificacion
	database.DB.Find(&notificaciones)
	require.Len(t, notificaciones, 2)
	for _, n := range notificaciones {
		assert.True(t, n.ReproducirSonido)
		assert.Equal(t, models.EventoPedidoCreado, n.TipoEvento)
		assert.Contains(t, n.Mensaje, "ana")
	}
}
