package users

import (
	"strings"

	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/permissions"
	"ovopacific-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateUsuarioRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Nombre   string `json:"nombre" validate:"max=100"`
	Apellido string `json:"apellido" validate:"max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8"`
	Rol      string `json:"rol" validate:"required"`
	Ciudad   string `json:"ciudad" validate:"required"`
	Activo   *bool  `json:"activo"`
}

type UpdateUsuarioRequest struct {
	Nombre   string `json:"nombre" validate:"max=100"`
	Apellido string `json:"apellido" validate:"max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Rol      string `json:"rol" validate:"required"`
	Ciudad   string `json:"ciudad" validate:"required"`
	Activo   *bool  `json:"activo"`
}

func usuarioJSON(u *models.Usuario) fiber.Map {
	return fiber.Map{
		"id":           u.ID,
		"username":     u.Username,
		"nombre":       u.Nombre,
		"apellido":     u.Apellido,
		"email":        u.Email,
		"rol":          u.Rol,
		"rol_label":    u.Rol.Label(),
		"ciudad":       u.Ciudad,
		"ciudad_label": u.Ciudad.Label(),
		"superusuario": u.Superusuario,
		"activo":       u.Activo,
		"foto_perfil":  u.FotoPerfil,
	}
}

// GET /api/usuarios
func ListUsuariosHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.PuedeGestionarUsuarios(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para ver usuarios")
		}

		var usuarios []models.Usuario
		if err := database.DB.Order("username").Find(&usuarios).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los usuarios")
		}

		resp := make([]fiber.Map, 0, len(usuarios))
		for i := range usuarios {
			resp = append(resp, usuarioJSON(&usuarios[i]))
		}
		return c.JSON(fiber.Map{"usuarios": resp})
	}
}

// POST /api/usuarios
func CreateUsuarioHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.PuedeGestionarUsuarios(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para crear usuarios")
		}

		var body CreateUsuarioRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		body.Username = strings.TrimSpace(strings.ToLower(body.Username))
		if campos := validation.Struct(&body); campos != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "Datos inválidos",
				"campos": campos,
			})
		}

		rol := models.Rol(body.Rol)
		if !rol.Valido() {
			return fiber.NewError(fiber.StatusBadRequest, "Debes seleccionar un rol válido")
		}
		ciudad := models.Ciudad(body.Ciudad)
		if !ciudad.Valida() {
			return fiber.NewError(fiber.StatusBadRequest, "Debes seleccionar una ciudad válida")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cifrar la contraseña")
		}

		usuario := models.Usuario{
			Username:     body.Username,
			Nombre:       strings.TrimSpace(body.Nombre),
			Apellido:     strings.TrimSpace(body.Apellido),
			Email:        strings.TrimSpace(strings.ToLower(body.Email)),
			PasswordHash: string(hash),
			Rol:          rol,
			Ciudad:       ciudad,
			Activo:       true,
		}
		if body.Activo != nil {
			usuario.Activo = *body.Activo
		}

		if err := database.DB.Create(&usuario).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Ya existe un usuario con ese nombre de usuario")
		}

		return c.Status(fiber.StatusCreated).JSON(usuarioJSON(&usuario))
	}
}

// PUT /api/usuarios/:id
func UpdateUsuarioHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.PuedeGestionarUsuarios(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para editar usuarios")
		}

		var usuario models.Usuario
		if err := database.DB.First(&usuario, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Usuario no encontrado")
		}

		var body UpdateUsuarioRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if campos := validation.Struct(&body); campos != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "Datos inválidos",
				"campos": campos,
			})
		}

		rol := models.Rol(body.Rol)
		if !rol.Valido() {
			return fiber.NewError(fiber.StatusBadRequest, "Debes seleccionar un rol válido")
		}
		ciudad := models.Ciudad(body.Ciudad)
		if !ciudad.Valida() {
			return fiber.NewError(fiber.StatusBadRequest, "Debes seleccionar una ciudad válida")
		}

		usuario.Nombre = strings.TrimSpace(body.Nombre)
		usuario.Apellido = strings.TrimSpace(body.Apellido)
		usuario.Email = strings.TrimSpace(strings.ToLower(body.Email))
		usuario.Rol = rol
		usuario.Ciudad = ciudad
		if body.Activo != nil {
			usuario.Activo = *body.Activo
		}
		if body.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cifrar la contraseña")
			}
			usuario.PasswordHash = string(hash)
		}

		if err := database.DB.Save(&usuario).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el usuario")
		}

		return c.JSON(usuarioJSON(&usuario))
	}
}

// DELETE /api/usuarios/:id
func DeleteUsuarioHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.PuedeGestionarUsuarios(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para eliminar usuarios")
		}

		var usuario models.Usuario
		if err := database.DB.First(&usuario, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Usuario no encontrado")
		}

		if usuario.ID == perfil.ID {
			return fiber.NewError(fiber.StatusForbidden, "No puedes eliminar tu propio usuario")
		}

		if err := database.DB.Delete(&usuario).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el usuario")
		}

		return c.JSON(fiber.Map{"message": "Usuario eliminado"})
	}
}
