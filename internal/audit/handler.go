package audit

import (
	"fmt"
	"time"

	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/permissions"

	"github.com/gofiber/fiber/v2"
)

type RegistroEstadoResponse struct {
	ID             uint   `json:"id"`
	PedidoID       uint   `json:"pedido_id"`
	UsuarioID      *uint  `json:"usuario_id"`
	Usuario        string `json:"usuario"`
	EstadoAnterior string `json:"estado_anterior"`
	EstadoNuevo    string `json:"estado_nuevo"`
	EstadoLabel    string `json:"estado_nuevo_label"`
	Descripcion    string `json:"descripcion"`
	FechaCreacion  string `json:"fecha_creacion"`
}

// GET /api/registros-estado?usuario=1&fecha=2026-03-02&page=1&page_size=10
func ListRegistrosHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := permissions.RequierePerfil(c); err != nil {
			return err
		}

		dbq := database.DB.Model(&models.RegistroEstadoPedido{}).
			Preload("Usuario").
			Preload("Pedido")

		if usuarioIDStr := c.Query("usuario"); usuarioIDStr != "" {
			var uid uint
			if _, err := fmt.Sscan(usuarioIDStr, &uid); err == nil && uid > 0 {
				dbq = dbq.Where("usuario_id = ?", uid)
			}
		}

		if fechaStr := c.Query("fecha"); fechaStr != "" {
			fecha, err := time.Parse("2006-01-02", fechaStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "fecha inválida (YYYY-MM-DD)")
			}
			dbq = dbq.Where("fecha_creacion >= ? AND fecha_creacion < ?", fecha, fecha.AddDate(0, 0, 1))
		}

		if pedidoIDStr := c.Query("pedido"); pedidoIDStr != "" {
			var pid uint
			if _, err := fmt.Sscan(pedidoIDStr, &pid); err == nil && pid > 0 {
				dbq = dbq.Where("pedido_id = ?", pid)
			}
		}

		page := c.QueryInt("page", 1)
		if page < 1 {
			page = 1
		}
		pageSize := c.QueryInt("page_size", 10)
		if pageSize < 1 || pageSize > 100 {
			pageSize = 10
		}

		var total int64
		dbq.Count(&total)

		var registros []models.RegistroEstadoPedido
		if err := dbq.Order("fecha_creacion DESC").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Find(&registros).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los registros")
		}

		resp := make([]RegistroEstadoResponse, 0, len(registros))
		for _, r := range registros {
			resp = append(resp, RegistroEstadoResponse{
				ID:             r.ID,
				PedidoID:       r.PedidoID,
				UsuarioID:      r.UsuarioID,
				Usuario:        models.NombreUsuario(r.Usuario),
				EstadoAnterior: string(r.EstadoAnterior),
				EstadoNuevo:    string(r.EstadoNuevo),
				EstadoLabel:    r.EstadoNuevo.Label(),
				Descripcion:    r.Descripcion,
				FechaCreacion:  r.FechaCreacion.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(fiber.Map{
			"registros": resp,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		})
	}
}
