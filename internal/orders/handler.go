package orders

import (
	"fmt"
	"strings"
	"time"

	"ovopacific-backend/internal/audit"
	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/notifications"
	"ovopacific-backend/internal/permissions"
	"ovopacific-backend/internal/semana"
	"ovopacific-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// -------------------------
// Request/Response Types
// -------------------------

type EntregaInput struct {
	FechaEntrega string `json:"fecha_entrega" validate:"required"`
	Cantidad     int    `json:"cantidad" validate:"required,gt=0"`
}

type CreatePedidoRequest struct {
	ProveedorID   uint           `json:"proveedor_id" validate:"required"`
	TipoHuevo     string         `json:"tipo_huevo" validate:"required"`
	CantidadTotal int            `json:"cantidad_total" validate:"gte=0"`
	Semana        string         `json:"semana" validate:"required"`
	Observaciones string         `json:"observaciones"`
	Entregas      []EntregaInput `json:"entregas" validate:"dive"`
}

type UpdatePedidoRequest struct {
	ProveedorID   uint           `json:"proveedor_id" validate:"required"`
	ComercialID   uint           `json:"comercial_id"`
	TipoHuevo     string         `json:"tipo_huevo" validate:"required"`
	CantidadTotal int            `json:"cantidad_total" validate:"gte=0"`
	Semana        string         `json:"semana"`
	Estado        string         `json:"estado"`
	Observaciones string         `json:"observaciones"`
	Entregas      []EntregaInput `json:"entregas" validate:"dive"`
}

type CambioEstadoRequest struct {
	Estado      string `json:"estado" validate:"required"`
	Descripcion string `json:"descripcion"`
}

type EntregaResponse struct {
	ID           uint   `json:"id"`
	FechaEntrega string `json:"fecha_entrega"`
	Cantidad     int    `json:"cantidad"`
	Estado       string `json:"estado"`
}

type PedidoResponse struct {
	ID                uint              `json:"id"`
	ProveedorID       uint              `json:"proveedor_id"`
	Proveedor         string            `json:"proveedor"`
	ComercialID       uint              `json:"comercial_id"`
	Comercial         string            `json:"comercial"`
	Ciudad            string            `json:"ciudad"`
	CiudadLabel       string            `json:"ciudad_label"`
	TipoHuevo         string            `json:"tipo_huevo"`
	TipoHuevoLabel    string            `json:"tipo_huevo_label"`
	Presentacion      string            `json:"presentacion"`
	PresentacionLabel string            `json:"presentacion_label"`
	Cantidad          int               `json:"cantidad"`
	CantidadTotal     int               `json:"cantidad_total"`
	FechaEntrega      *string           `json:"fecha_entrega"`
	Semana            *string           `json:"semana"`
	Estado            string            `json:"estado"`
	EstadoLabel       string            `json:"estado_label"`
	Observaciones     string            `json:"observaciones"`
	FechaCreacion     string            `json:"fecha_creacion"`
	Entregas          []EntregaResponse `json:"entregas"`
}

func pedidoResponse(p *models.Pedido) PedidoResponse {
	resp := PedidoResponse{
		ID:                p.ID,
		ProveedorID:       p.ProveedorID,
		ComercialID:       p.ComercialID,
		Comercial:         models.NombreUsuario(p.Comercial),
		Ciudad:            string(p.Ciudad),
		CiudadLabel:       p.Ciudad.Label(),
		TipoHuevo:         string(p.TipoHuevo),
		TipoHuevoLabel:    p.TipoHuevo.Label(),
		Presentacion:      string(p.Presentacion),
		PresentacionLabel: p.Presentacion.Label(),
		Cantidad:          p.Cantidad,
		CantidadTotal:     p.CantidadTotal,
		Estado:            string(p.Estado),
		EstadoLabel:       p.Estado.Label(),
		Observaciones:     p.Observaciones,
		FechaCreacion:     p.FechaCreacion.Format("2006-01-02T15:04:05Z07:00"),
		Entregas:          make([]EntregaResponse, 0, len(p.Entregas)),
	}
	if p.Proveedor != nil {
		resp.Proveedor = p.Proveedor.Nombre
	}
	if p.FechaEntrega != nil {
		fecha := p.FechaEntrega.Format("2006-01-02")
		resp.FechaEntrega = &fecha
	}
	if p.Semana != nil {
		lunes := p.Semana.Format("2006-01-02")
		resp.Semana = &lunes
	}
	for _, e := range p.Entregas {
		resp.Entregas = append(resp.Entregas, EntregaResponse{
			ID:           e.ID,
			FechaEntrega: e.FechaEntrega.Format("2006-01-02"),
			Cantidad:     e.Cantidad,
			Estado:       string(e.Estado),
		})
	}
	return resp
}

type entregaParsed struct {
	fecha    time.Time
	cantidad int
}

func parsearEntregas(entradas []EntregaInput) ([]entregaParsed, error) {
	entregas := make([]entregaParsed, 0, len(entradas))
	for _, e := range entradas {
		fecha, err := time.Parse("2006-01-02", e.FechaEntrega)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Las entregas tienen una fecha inválida (YYYY-MM-DD)")
		}
		if e.Cantidad <= 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Las entregas deben tener una cantidad mayor a cero")
		}
		entregas = append(entregas, entregaParsed{fecha: semana.Truncar(fecha), cantidad: e.Cantidad})
	}
	return entregas, nil
}

// validarEntregasEnSemana exige que toda entrega quede entre el lunes y el
// sábado de la semana del pedido.
func validarEntregasEnSemana(entregas []entregaParsed, lunes time.Time) error {
	if lunes.IsZero() || len(entregas) == 0 {
		return nil
	}
	inicio, fin := semana.Rango(lunes)
	for _, e := range entregas {
		if e.fecha.Before(inicio) || e.fecha.After(fin) {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf(
				"Las entregas programadas deben estar entre %s y %s",
				inicio.Format("02/01/2006"), fin.Format("02/01/2006"),
			))
		}
	}
	return nil
}

func calcularCantidadTotal(cantidadTotal int, entregas []entregaParsed) int {
	if cantidadTotal > 0 {
		return cantidadTotal
	}
	suma := 0
	for _, e := range entregas {
		suma += e.cantidad
	}
	return suma
}

func sumaEntregas(entregas []entregaParsed) int {
	suma := 0
	for _, e := range entregas {
		suma += e.cantidad
	}
	return suma
}

// proveedorDisponible carga un proveedor activo. Un comercial solo ve los de
// su propia ciudad; admin y superusuario ven todos.
func proveedorDisponible(usuario *models.Usuario, proveedorID uint) *models.Proveedor {
	dbq := database.DB.Where("id = ? AND activo = ?", proveedorID, true)
	if !permissions.EsAdmin(usuario) && usuario.Rol == models.RolComercial {
		dbq = dbq.Where("ciudad = ?", usuario.Ciudad)
	}
	var proveedor models.Proveedor
	if err := dbq.First(&proveedor).Error; err != nil {
		return nil
	}
	return &proveedor
}

func reemplazarEntregas(pedidoID uint, entregas []entregaParsed) error {
	if err := database.DB.Where("pedido_id = ?", pedidoID).Delete(&models.EntregaPedido{}).Error; err != nil {
		return err
	}
	if len(entregas) == 0 {
		return nil
	}
	filas := make([]models.EntregaPedido, 0, len(entregas))
	for _, e := range entregas {
		filas = append(filas, models.EntregaPedido{
			PedidoID:     pedidoID,
			FechaEntrega: e.fecha,
			Cantidad:     e.cantidad,
		})
	}
	return database.DB.CreateInBatches(filas, 100).Error
}

// -------------------------
// Handlers
// -------------------------

// POST /api/pedidos
func CreatePedidoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.PuedeGestionarPedidos(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para crear pedidos")
		}

		var body CreatePedidoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if campos := validation.Struct(&body); campos != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "Datos inválidos",
				"campos": campos,
			})
		}

		tipoHuevo := models.TipoHuevo(body.TipoHuevo)
		if !tipoHuevo.Valido() {
			return fiber.NewError(fiber.StatusBadRequest, "Debes seleccionar un tipo de huevo válido")
		}

		lunes := semana.ParsearYAjustar(body.Semana)
		if lunes.IsZero() {
			return fiber.NewError(fiber.StatusBadRequest, "La fecha de semana es inválida")
		}

		entregas, err := parsearEntregas(body.Entregas)
		if err != nil {
			return err
		}
		if err := validarEntregasEnSemana(entregas, lunes); err != nil {
			return err
		}

		cantidadTotal := calcularCantidadTotal(body.CantidadTotal, entregas)
		if body.CantidadTotal > 0 && len(entregas) > 0 && sumaEntregas(entregas) != body.CantidadTotal {
			return fiber.NewError(fiber.StatusBadRequest,
				"Las entregas programadas deben sumar la misma cantidad que la cantidad total (kg) indicada en la semana")
		}

		if !perfil.Ciudad.Valida() {
			return fiber.NewError(fiber.StatusBadRequest,
				"El comercial no tiene ciudad asignada. Actualiza la ciudad del usuario antes de crear el pedido")
		}

		proveedor := proveedorDisponible(perfil, body.ProveedorID)
		if proveedor == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Debes seleccionar un proveedor válido y activo")
		}

		var fechaPrincipal *time.Time
		for _, e := range entregas {
			if fechaPrincipal == nil || e.fecha.After(*fechaPrincipal) {
				fecha := e.fecha
				fechaPrincipal = &fecha
			}
		}

		pedido := models.Pedido{
			ProveedorID:   proveedor.ID,
			ComercialID:   perfil.ID,
			Ciudad:        perfil.Ciudad,
			TipoHuevo:     tipoHuevo,
			Presentacion:  proveedor.Presentacion,
			Cantidad:      cantidadTotal,
			CantidadTotal: cantidadTotal,
			FechaEntrega:  fechaPrincipal,
			Semana:        &lunes,
			Estado:        models.EstadoPendiente,
			Observaciones: strings.TrimSpace(body.Observaciones),
		}

		if err := database.DB.Create(&pedido).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar el pedido")
		}

		if err := reemplazarEntregas(pedido.ID, entregas); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron guardar las entregas del pedido")
		}

		notifications.RegistrarCreacionPedido(&pedido, perfil)

		pedido.Proveedor = proveedor
		pedido.Comercial = perfil
		database.DB.Where("pedido_id = ?", pedido.ID).Find(&pedido.Entregas)

		return c.Status(fiber.StatusCreated).JSON(pedidoResponse(&pedido))
	}
}

// GET /api/pedidos?alcance=activos|historial|todos&proveedor=&ciudad=&...
func ListPedidosHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := permissions.RequierePerfil(c); err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Pedido{}).
			Preload("Proveedor").
			Preload("Comercial").
			Preload("Entregas")

		switch c.Query("alcance", "activos") {
		case "historial":
			dbq = dbq.Where("estado IN ?", models.EstadosHistorial)
		case "todos":
		default:
			dbq = dbq.Where("estado IN ?", models.EstadosActivos)
		}

		dbq = AplicarFiltros(dbq, c)

		var pedidos []models.Pedido
		if err := dbq.Order("semana, fecha_entrega, id").Find(&pedidos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los pedidos")
		}

		// Totales por familia de producto, como los muestra el tablero.
		totalLiquido, totalYema, totalMezcla := 0, 0, 0
		resp := make([]PedidoResponse, 0, len(pedidos))
		for i := range pedidos {
			p := &pedidos[i]
			switch p.TipoHuevo {
			case models.TipoHuevoLiquidoEntero, models.TipoClaraLiquida:
				totalLiquido += p.CantidadEfectiva()
			case models.TipoYemaLiquida:
				totalYema += p.CantidadEfectiva()
			case models.TipoMezclaEnPolvo:
				totalMezcla += p.CantidadEfectiva()
			}
			resp = append(resp, pedidoResponse(p))
		}

		return c.JSON(fiber.Map{
			"pedidos":       resp,
			"total_liquido": totalLiquido,
			"total_yema":    totalYema,
			"total_mezcla":  totalMezcla,
		})
	}
}

// GET /api/pedidos/:id
func GetPedidoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := permissions.RequierePerfil(c); err != nil {
			return err
		}

		var pedido models.Pedido
		if err := database.DB.
			Preload("Proveedor").
			Preload("Comercial").
			Preload("Entregas", func(dbq *gorm.DB) *gorm.DB { return dbq.Order("fecha_entrega") }).
			First(&pedido, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pedido no encontrado")
		}

		resp := fiber.Map{"pedido": pedidoResponse(&pedido)}

		// Para pedidos cerrados se adjunta el registro que los cerró.
		if pedido.Estado.EsHistorial() {
			if cierre := audit.UltimoRegistroHistorial(pedido.ID); cierre != nil {
				resp["cierre"] = fiber.Map{
					"estado":       cierre.EstadoNuevo,
					"estado_label": cierre.EstadoNuevo.Label(),
					"usuario":      models.NombreUsuario(cierre.Usuario),
					"descripcion":  cierre.Descripcion,
					"fecha":        cierre.FechaCreacion.Format("2006-01-02 15:04:05"),
				}
			}
		}

		return c.JSON(resp)
	}
}

// PUT /api/pedidos/:id
func UpdatePedidoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}

		var pedido models.Pedido
		if err := database.DB.First(&pedido, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pedido no encontrado")
		}

		if !permissions.PuedeEditarPedido(perfil, &pedido) {
			if pedido.Estado.EsHistorial() {
				return fiber.NewError(fiber.StatusForbidden, "Solo un administrador puede editar pedidos del historial")
			}
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para editar este pedido")
		}

		var body UpdatePedidoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if campos := validation.Struct(&body); campos != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "Datos inválidos",
				"campos": campos,
			})
		}

		tipoHuevo := models.TipoHuevo(body.TipoHuevo)
		if !tipoHuevo.Valido() {
			return fiber.NewError(fiber.StatusBadRequest, "Debes seleccionar un tipo de huevo válido")
		}

		var lunes time.Time
		if body.Semana != "" {
			lunes = semana.ParsearYAjustar(body.Semana)
			if lunes.IsZero() {
				return fiber.NewError(fiber.StatusBadRequest, "La fecha de semana es inválida")
			}
		}

		entregas, err := parsearEntregas(body.Entregas)
		if err != nil {
			return err
		}
		if err := validarEntregasEnSemana(entregas, lunes); err != nil {
			return err
		}

		cantidadTotal := calcularCantidadTotal(body.CantidadTotal, entregas)
		if body.CantidadTotal > 0 && len(entregas) > 0 && sumaEntregas(entregas) != body.CantidadTotal {
			return fiber.NewError(fiber.StatusBadRequest,
				"Las entregas programadas deben sumar la misma cantidad que la cantidad total (kg) indicada en la semana")
		}

		// El comercial del pedido puede reasignarse; la ciudad del pedido
		// sigue siempre a la del comercial asignado.
		comercialID := pedido.ComercialID
		if body.ComercialID != 0 {
			comercialID = body.ComercialID
		}
		var comercial models.Usuario
		if err := database.DB.First(&comercial, comercialID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "El comercial seleccionado no existe")
		}
		if !comercial.Ciudad.Valida() {
			return fiber.NewError(fiber.StatusBadRequest,
				"El comercial seleccionado no tiene ciudad asignada. Actualiza la ciudad del usuario antes de editar el pedido")
		}

		proveedor := proveedorDisponible(perfil, body.ProveedorID)
		if proveedor == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Debes seleccionar un proveedor válido y activo")
		}

		estadoAnterior := pedido.Estado
		nuevoEstado := estadoAnterior
		descripcionCambio := ""
		if body.Estado != "" {
			nuevoEstado = models.EstadoPedido(body.Estado)
			descripcionCambio = strings.TrimSpace(body.Observaciones)
			if err := ValidarTransicion(perfil, estadoAnterior, nuevoEstado, descripcionCambio); err != nil {
				return err
			}
		}

		var fechaPrincipal *time.Time
		for _, e := range entregas {
			if fechaPrincipal == nil || e.fecha.After(*fechaPrincipal) {
				fecha := e.fecha
				fechaPrincipal = &fecha
			}
		}

		pedido.ProveedorID = proveedor.ID
		pedido.ComercialID = comercial.ID
		pedido.Ciudad = comercial.Ciudad
		pedido.TipoHuevo = tipoHuevo
		pedido.Presentacion = proveedor.Presentacion
		pedido.Cantidad = cantidadTotal
		pedido.CantidadTotal = cantidadTotal
		pedido.FechaEntrega = fechaPrincipal
		if lunes.IsZero() {
			pedido.Semana = nil
		} else {
			pedido.Semana = &lunes
		}
		pedido.Observaciones = strings.TrimSpace(body.Observaciones)
		pedido.Estado = nuevoEstado

		if err := database.DB.Save(&pedido).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el pedido")
		}

		registrarCambio(&pedido, estadoAnterior, perfil, descripcionCambio)

		if err := reemplazarEntregas(pedido.ID, entregas); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron actualizar las entregas del pedido")
		}

		pedido.Proveedor = proveedor
		pedido.Comercial = &comercial
		database.DB.Where("pedido_id = ?", pedido.ID).Find(&pedido.Entregas)

		return c.JSON(pedidoResponse(&pedido))
	}
}

// DELETE /api/pedidos/:id
func DeletePedidoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}

		var pedido models.Pedido
		if err := database.DB.First(&pedido, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pedido no encontrado")
		}

		if !permissions.PuedeEditarPedido(perfil, &pedido) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para eliminar este pedido")
		}

		database.DB.Where("pedido_id = ?", pedido.ID).Delete(&models.EntregaPedido{})
		database.DB.Where("pedido_id = ?", pedido.ID).Delete(&models.RegistroEstadoPedido{})
		if err := database.DB.Delete(&pedido).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el pedido")
		}

		return c.JSON(fiber.Map{"message": "Pedido eliminado"})
	}
}

// PUT /api/pedidos/:id/estado
func CambiarEstadoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.PuedeCambiarEstado(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para cambiar el estado del pedido")
		}

		var pedido models.Pedido
		if err := database.DB.First(&pedido, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pedido no encontrado")
		}

		var body CambioEstadoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		if err := CambiarEstado(&pedido, models.EstadoPedido(body.Estado), perfil, body.Descripcion); err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"id":           pedido.ID,
			"estado":       pedido.Estado,
			"estado_label": pedido.Estado.Label(),
		})
	}
}

// POST /api/pedidos/:id/realizado
// Atajo de logística para cerrar un pedido como entregado.
func MarcarRealizadoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.EstadosPermitidos(perfil)[models.EstadoEntregado] {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para cambiar el pedido a entregado")
		}

		var pedido models.Pedido
		if err := database.DB.First(&pedido, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pedido no encontrado")
		}

		detalle := fmt.Sprintf(
			"Pedido entregado por %s el %s.",
			models.NombreUsuario(perfil), time.Now().Format("02/01/2006"),
		)
		if err := CambiarEstado(&pedido, models.EstadoEntregado, perfil, detalle); err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"id":           pedido.ID,
			"estado":       pedido.Estado,
			"estado_label": pedido.Estado.Label(),
		})
	}
}
