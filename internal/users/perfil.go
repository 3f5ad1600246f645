package users

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/permissions"
	"ovopacific-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type MiPerfilRequest struct {
	Nombre         string `json:"nombre" validate:"max=100"`
	Apellido       string `json:"apellido" validate:"max=100"`
	Email          string `json:"email" validate:"omitempty,email"`
	PasswordActual string `json:"password_actual"`
	PasswordNueva  string `json:"password_nueva" validate:"omitempty,min=8"`
	EliminarFoto   bool   `json:"eliminar_foto"`
}

// GET /api/me
// Identidad y permisos efectivos del usuario autenticado.
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}

		estados := permissions.EstadosPermitidos(perfil)
		estadosResp := make([]models.EstadoPedido, 0, len(estados))
		for _, estado := range []models.EstadoPedido{
			models.EstadoPendiente, models.EstadoConfirmado, models.EstadoEnProduccion,
			models.EstadoDespachado, models.EstadoEntregado, models.EstadoCancelado,
			models.EstadoDevuelto,
		} {
			if estados[estado] {
				estadosResp = append(estadosResp, estado)
			}
		}

		return c.JSON(fiber.Map{
			"user": usuarioJSON(perfil),
			"permisos": fiber.Map{
				"es_admin":              permissions.EsAdmin(perfil),
				"gestionar_usuarios":    permissions.PuedeGestionarUsuarios(perfil),
				"gestionar_proveedores": permissions.PuedeGestionarProveedores(perfil),
				"gestionar_pedidos":     permissions.PuedeGestionarPedidos(perfil),
				"cambiar_estado":        permissions.PuedeCambiarEstado(perfil),
				"estados_permitidos":    estadosResp,
			},
		})
	}
}

// PUT /api/me/perfil
// Acepta multipart para la foto de perfil o JSON para los demás campos.
func MiPerfilHandler(mediaPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}

		var body MiPerfilRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if campos := validation.Struct(&body); campos != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "Datos inválidos",
				"campos": campos,
			})
		}

		if body.PasswordNueva != "" {
			if err := bcrypt.CompareHashAndPassword(
				[]byte(perfil.PasswordHash), []byte(body.PasswordActual)); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "La contraseña actual no es correcta")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(body.PasswordNueva), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cifrar la contraseña")
			}
			perfil.PasswordHash = string(hash)
		}

		if body.Nombre != "" || body.Apellido != "" || body.Email != "" {
			perfil.Nombre = strings.TrimSpace(body.Nombre)
			perfil.Apellido = strings.TrimSpace(body.Apellido)
			perfil.Email = strings.TrimSpace(strings.ToLower(body.Email))
		}

		if body.EliminarFoto {
			perfil.FotoPerfil = ""
		}

		if foto, err := c.FormFile("foto_perfil"); err == nil && foto != nil {
			ext := strings.ToLower(filepath.Ext(foto.Filename))
			if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
				return fiber.NewError(fiber.StatusBadRequest, "La foto de perfil debe ser JPG o PNG")
			}
			nombre := fmt.Sprintf("perfiles/%d_%d%s", perfil.ID, time.Now().Unix(), ext)
			if err := c.SaveFile(foto, filepath.Join(mediaPath, nombre)); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar la foto de perfil")
			}
			perfil.FotoPerfil = nombre
		}

		if err := database.DB.Save(perfil).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el perfil")
		}

		return c.JSON(fiber.Map{
			"message": "Perfil actualizado correctamente",
			"user":    usuarioJSON(perfil),
		})
	}
}
