package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ovopacific-backend/internal/auth"
	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appParaUsuario monta las rutas de pedidos con la identidad ya resuelta,
// como la dejaría el middleware JWT.
func appParaUsuario(usuarioID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, usuarioID)
		return c.Next()
	})
	app.Post("/api/pedidos", CreatePedidoHandler())
	app.Get("/api/pedidos", ListPedidosHandler())
	app.Delete("/api/pedidos/:id", DeletePedidoHandler())
	return app
}

func postJSON(t *testing.T, app *fiber.App, ruta string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPost, ruta, bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func crearProveedorActivo(t *testing.T, ciudad models.Ciudad) *models.Proveedor {
	t.Helper()
	proveedorSeq++
	proveedor := models.Proveedor{
		Nombre:       fmt.Sprintf("Huevos del Valle %d", proveedorSeq),
		Ciudad:       ciudad,
		Presentacion: models.PresentacionOV20,
		Activo:       true,
	}
	require.NoError(t, database.DB.Create(&proveedor).Error)
	return &proveedor
}

func TestCrearPedidoConEntregas(t *testing.T) {
	setupDB(t)
	comercial := crearUsuario(t, "ana", models.RolComercial)
	crearUsuario(t, "laura", models.RolLogistica)
	proveedor := crearProveedorActivo(t, models.CiudadBogota)

	app := appParaUsuario(comercial.ID)
	resp := postJSON(t, app, "/api/pedidos", fiber.Map{
		"proveedor_id":   proveedor.ID,
		"tipo_huevo":     "HELU",
		"cantidad_total": 500,
		"semana":         "2026-08-26",
		"entregas": []fiber.Map{
			{"fecha_entrega": "2026-08-25", "cantidad": 200},
			{"fecha_entrega": "2026-08-27", "cantidad": 300},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var pedido models.Pedido
	require.NoError(t, database.DB.Preload("Entregas").First(&pedido).Error)
	assert.Equal(t, 500, pedido.CantidadTotal)
	assert.Equal(t, models.EstadoPendiente, pedido.Estado)
	assert.Equal(t, models.CiudadBogota, pedido.Ciudad)
	assert.Equal(t, comercial.ID, pedido.ComercialID)
	// La presentación baja del proveedor, no del formulario.
	assert.Equal(t, models.PresentacionOV20, pedido.Presentacion)
	// La semana se normaliza al lunes.
	require.NotNil(t, pedido.Semana)
	assert.Equal(t, "2026-08-24", pedido.Semana.Format("2006-01-02"))
	// La fecha principal es la última entrega.
	require.NotNil(t, pedido.FechaEntrega)
	assert.Equal(t, "2026-08-27", pedido.FechaEntrega.Format("2006-01-02"))
	require.Len(t, pedido.Entregas, 2)

	// Una notificación audible por cada usuario activo.
	var notificaciones []models.Notificacion
	database.DB.Find(&notificaciones)
	require.Len(t, notificaciones, 2)
	for _, n := range notificaciones {
		assert.True(t, n.ReproducirSonido)
		assert.Equal(t, models.EventoPedidoCreado, n.TipoEvento)
	}
}

func TestCrearPedidoSemanaInvalida(t *testing.T) {
	setupDB(t)
	comercial := crearUsuario(t, "ana", models.RolComercial)
	proveedor := crearProveedorActivo(t, models.CiudadBogota)

	app := appParaUsuario(comercial.ID)
	resp := postJSON(t, app, "/api/pedidos", fiber.Map{
		"proveedor_id": proveedor.ID,
		"tipo_huevo":   "HELU",
		"semana":       "no-es-fecha",
		"entregas":     []fiber.Map{{"fecha_entrega": "2026-08-25", "cantidad": 100}},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var total int64
	database.DB.Model(&models.Pedido{}).Count(&total)
	assert.Zero(t, total)
}

func TestCrearPedidoEntregasFueraDeSemana(t *testing.T) {
	setupDB(t)
	comercial := crearUsuario(t, "ana", models.RolComercial)
	proveedor := crearProveedorActivo(t, models.CiudadBogota)

	app := appParaUsuario(comercial.ID)
	resp := postJSON(t, app, "/api/pedidos", fiber.Map{
		"proveedor_id": proveedor.ID,
		"tipo_huevo":   "HELU",
		"semana":       "2026-08-24",
		"entregas": []fiber.Map{
			// Domingo siguiente: fuera del tramo lunes a sábado.
			{"fecha_entrega": "2026-08-30", "cantidad": 100},
		},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCrearPedidoSumaEntregasDebeCoincidir(t *testing.T) {
	setupDB(t)
	comercial := crearUsuario(t, "ana", models.RolComercial)
	proveedor := crearProveedorActivo(t, models.CiudadBogota)

	app := appParaUsuario(comercial.ID)
	resp := postJSON(t, app, "/api/pedidos", fiber.Map{
		"proveedor_id":   proveedor.ID,
		"tipo_huevo":     "HELU",
		"cantidad_total": 500,
		"semana":         "2026-08-24",
		"entregas": []fiber.Map{
			{"fecha_entrega": "2026-08-25", "cantidad": 200},
			{"fecha_entrega": "2026-08-27", "cantidad": 200},
		},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCrearPedidoProveedorDeOtraCiudad(t *testing.T) {
	setupDB(t)
	comercial := crearUsuario(t, "ana", models.RolComercial)
	proveedorCali := crearProveedorActivo(t, models.CiudadCali)

	app := appParaUsuario(comercial.ID)
	resp := postJSON(t, app, "/api/pedidos", fiber.Map{
		"proveedor_id": proveedorCali.ID,
		"tipo_huevo":   "HELU",
		"semana":       "2026-08-24",
		"entregas":     []fiber.Map{{"fecha_entrega": "2026-08-25", "cantidad": 100}},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCrearPedidoRolSinPermiso(t *testing.T) {
	setupDB(t)
	logistica := crearUsuario(t, "laura", models.RolLogistica)
	proveedor := crearProveedorActivo(t, models.CiudadBogota)

	app := appParaUsuario(logistica.ID)
	resp := postJSON(t, app, "/api/pedidos", fiber.Map{
		"proveedor_id": proveedor.ID,
		"tipo_huevo":   "HELU",
		"semana":       "2026-08-24",
		"entregas":     []fiber.Map{{"fecha_entrega": "2026-08-25", "cantidad": 100}},
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestEliminarPedidoComercialOtraCiudad(t *testing.T) {
	setupDB(t)
	comercialBogota := crearUsuario(t, "ana", models.RolComercial)
	comercialCali := models.Usuario{
		Username: "carlos", PasswordHash: "x",
		Rol: models.RolComercial, Ciudad: models.CiudadCali, Activo: true,
	}
	require.NoError(t, database.DB.Create(&comercialCali).Error)

	pedido := crearPedido(t, comercialBogota, models.EstadoPendiente)

	app := appParaUsuario(comercialCali.ID)
	req := httptest.NewRequest(fiber.MethodDelete, fmt.Sprintf("/api/pedidos/%d", pedido.ID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var sigue int64
	database.DB.Model(&models.Pedido{}).Where("id = ?", pedido.ID).Count(&sigue)
	assert.EqualValues(t, 1, sigue)
}
