package main

import (
	"os"
	"strings"

	"ovopacific-backend/internal/audit"
	"ovopacific-backend/internal/auth"
	"ovopacific-backend/internal/clients"
	"ovopacific-backend/internal/config"
	"ovopacific-backend/internal/dashboard"
	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/materials"
	"ovopacific-backend/internal/notifications"
	"ovopacific-backend/internal/orders"
	"ovopacific-backend/internal/reports"
	"ovopacific-backend/internal/suppliers"
	"ovopacific-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Error().Err(err).Str("path", c.Path()).Msg("Error no controlado")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error inesperado del servidor",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Static("/media", cfg.MediaPath)

	api := app.Group("/api")

	// Autenticación pública
	api.Post("/auth/register-superusuario", auth.RegisterSuperusuarioHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Todo lo demás exige token
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/me", users.MeHandler())
	protected.Put("/me/perfil", users.MiPerfilHandler(cfg.MediaPath))

	// Tablero de inicio
	protected.Get("/dashboard", dashboard.DashboardHandler())

	// Pedidos
	protected.Get("/pedidos", orders.ListPedidosHandler())
	protected.Post("/pedidos", orders.CreatePedidoHandler())
	protected.Get("/pedidos/panel/produccion", orders.PanelProduccionHandler())
	protected.Get("/pedidos/panel/logistica", orders.PanelLogisticaHandler())
	protected.Get("/pedidos/:id", orders.GetPedidoHandler())
	protected.Put("/pedidos/:id", orders.UpdatePedidoHandler())
	protected.Delete("/pedidos/:id", orders.DeletePedidoHandler())
	protected.Put("/pedidos/:id/estado", orders.CambiarEstadoHandler())
	protected.Post("/pedidos/:id/realizado", orders.MarcarRealizadoHandler())
	protected.Post("/pedidos/:id/despacho", orders.GuardarDespachoHandler())

	// Reportes
	protected.Get("/reportes/resumen-semanal", reports.ResumenSemanalHandler())
	protected.Get("/reportes/resumen-semanal/exportar", reports.ExportarResumenHandler())
	protected.Get("/reportes/historial", reports.HistorialHandler())
	protected.Get("/reportes/calendario", reports.CalendarioEntregasHandler())

	// Registros de cambio de estado
	protected.Get("/registros-estado", audit.ListRegistrosHandler())

	// Notificaciones
	protected.Get("/notificaciones", notifications.ListNotificacionesHandler())
	protected.Get("/notificaciones/ultimo-evento", notifications.UltimoEventoHandler())
	protected.Post("/notificaciones/limpiar", notifications.LimpiarNotificacionesHandler())

	// Proveedores
	protected.Get("/proveedores", suppliers.ListProveedoresHandler())
	protected.Post("/proveedores", suppliers.CreateProveedorHandler())
	protected.Put("/proveedores/:id", suppliers.UpdateProveedorHandler())
	protected.Delete("/proveedores/:id", suppliers.DeleteProveedorHandler())

	// Usuarios
	protected.Get("/usuarios", users.ListUsuariosHandler())
	protected.Post("/usuarios", users.CreateUsuarioHandler())
	protected.Put("/usuarios/:id", users.UpdateUsuarioHandler())
	protected.Delete("/usuarios/:id", users.DeleteUsuarioHandler())

	// Clientes de la página institucional
	protected.Get("/clientes", clients.ListClientesHandler())
	protected.Post("/clientes", clients.CreateClienteHandler(cfg.MediaPath))
	protected.Put("/clientes/:id", clients.UpdateClienteHandler(cfg.MediaPath))
	protected.Delete("/clientes/:id", clients.DeleteClienteHandler())

	// Materia prima
	protected.Get("/materia-prima", materials.ListMateriaPrimaHandler())
	protected.Post("/materia-prima", materials.CreateMateriaPrimaHandler())

	log.Info().Str("puerto", cfg.HTTPPort).Msg("Servidor iniciado")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal().Err(err).Msg("El servidor no pudo iniciar")
	}
}
