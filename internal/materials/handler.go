package materials

import (
	"strings"
	"time"

	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/permissions"

	"github.com/gofiber/fiber/v2"
)

type MateriaPrimaRequest struct {
	Fecha         string `json:"fecha"`
	TipoHuevo     string `json:"tipo_huevo"`
	CantidadKg    int    `json:"cantidad_kg"`
	Observaciones string `json:"observaciones"`
}

func materiaPrimaJSON(m *models.MateriaPrima) fiber.Map {
	return fiber.Map{
		"id":               m.ID,
		"fecha":            m.Fecha.Format("2006-01-02"),
		"tipo_huevo":       m.TipoHuevo,
		"tipo_huevo_label": m.TipoHuevo.Label(),
		"cantidad_kg":      m.CantidadKg,
		"observaciones":    m.Observaciones,
		"creado_por":       models.NombreUsuario(m.CreadoPor),
	}
}

// POST /api/materia-prima
// Registra un ingreso del día y devuelve los últimos 20 registros.
func CreateMateriaPrimaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.PuedeGestionarPedidos(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para registrar materia prima")
		}

		var body MateriaPrimaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		fecha, err := time.Parse("2006-01-02", body.Fecha)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Debes seleccionar una fecha válida")
		}

		tipoHuevo := models.TipoHuevo(body.TipoHuevo)
		if !tipoHuevo.Valido() {
			return fiber.NewError(fiber.StatusBadRequest, "Debes seleccionar un tipo de huevo válido")
		}

		if body.CantidadKg == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "La cantidad de materia prima no puede ser 0")
		}

		registro := models.MateriaPrima{
			Fecha:         fecha,
			TipoHuevo:     tipoHuevo,
			CantidadKg:    body.CantidadKg,
			Observaciones: strings.TrimSpace(body.Observaciones),
			CreadoPorID:   &perfil.ID,
		}

		if err := database.DB.Create(&registro).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo registrar la materia prima")
		}

		registro.CreadoPor = perfil

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  "Materia prima registrada correctamente",
			"registro": materiaPrimaJSON(&registro),
		})
	}
}

// GET /api/materia-prima
func ListMateriaPrimaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.PuedeGestionarPedidos(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para ver materia prima")
		}

		limit := c.QueryInt("limit", 20)
		if limit < 1 || limit > 100 {
			limit = 20
		}

		var registros []models.MateriaPrima
		if err := database.DB.
			Preload("CreadoPor").
			Order("fecha DESC, id DESC").
			Limit(limit).
			Find(&registros).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los registros")
		}

		resp := make([]fiber.Map, 0, len(registros))
		for i := range registros {
			resp = append(resp, materiaPrimaJSON(&registros[i]))
		}
		return c.JSON(fiber.Map{"registros": resp})
	}
}
