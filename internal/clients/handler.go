package clients

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/permissions"

	"github.com/gofiber/fiber/v2"
)

func clienteJSON(cliente *models.Cliente) fiber.Map {
	return fiber.Map{
		"id":          cliente.ID,
		"titulo":      cliente.Titulo,
		"imagen":      cliente.Imagen,
		"descripcion": cliente.Descripcion,
	}
}

// GET /api/clientes
func ListClientesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := permissions.RequierePerfil(c); err != nil {
			return err
		}

		var clientes []models.Cliente
		if err := database.DB.Order("titulo").Find(&clientes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los clientes")
		}

		resp := make([]fiber.Map, 0, len(clientes))
		for i := range clientes {
			resp = append(resp, clienteJSON(&clientes[i]))
		}
		return c.JSON(fiber.Map{"clientes": resp})
	}
}

// POST /api/clientes (multipart: titulo, descripcion, imagen)
func CreateClienteHandler(mediaPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.EsAdmin(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para gestionar clientes")
		}

		titulo := strings.TrimSpace(c.FormValue("titulo"))
		if titulo == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El título es obligatorio")
		}

		cliente := models.Cliente{
			Titulo:      titulo,
			Descripcion: strings.TrimSpace(c.FormValue("descripcion")),
		}

		if imagen, err := c.FormFile("imagen"); err == nil && imagen != nil {
			nombre := fmt.Sprintf("clientes/%d%s", time.Now().UnixNano(), filepath.Ext(imagen.Filename))
			if err := c.SaveFile(imagen, filepath.Join(mediaPath, nombre)); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar la imagen")
			}
			cliente.Imagen = nombre
		}

		if err := database.DB.Create(&cliente).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el cliente")
		}

		return c.Status(fiber.StatusCreated).JSON(clienteJSON(&cliente))
	}
}

// PUT /api/clientes/:id
func UpdateClienteHandler(mediaPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.EsAdmin(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para gestionar clientes")
		}

		var cliente models.Cliente
		if err := database.DB.First(&cliente, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cliente no encontrado")
		}

		if titulo := strings.TrimSpace(c.FormValue("titulo")); titulo != "" {
			cliente.Titulo = titulo
		}
		cliente.Descripcion = strings.TrimSpace(c.FormValue("descripcion"))

		if imagen, err := c.FormFile("imagen"); err == nil && imagen != nil {
			nombre := fmt.Sprintf("clientes/%d%s", time.Now().UnixNano(), filepath.Ext(imagen.Filename))
			if err := c.SaveFile(imagen, filepath.Join(mediaPath, nombre)); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar la imagen")
			}
			cliente.Imagen = nombre
		}

		if err := database.DB.Save(&cliente).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el cliente")
		}

		return c.JSON(clienteJSON(&cliente))
	}
}

// DELETE /api/clientes/:id
func DeleteClienteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.EsAdmin(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para gestionar clientes")
		}

		var cliente models.Cliente
		if err := database.DB.First(&cliente, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cliente no encontrado")
		}

		if err := database.DB.Delete(&cliente).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el cliente")
		}

		return c.JSON(fiber.Map{"message": "Cliente eliminado"})
	}
}
