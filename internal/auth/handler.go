package auth

import (
	"strings"

	"ovopacific-backend/internal/config"
	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterSuperusuarioRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8"`
	Ciudad   string `json:"ciudad"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
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

// POST /api/auth/register-superusuario
// Solo crea el primer superusuario; después queda bloqueado.
func RegisterSuperusuarioHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterSuperusuarioRequest
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

		ciudad := models.Ciudad(strings.ToUpper(strings.TrimSpace(body.Ciudad)))
		if ciudad == "" {
			ciudad = models.CiudadBogota
		}
		if !ciudad.Valida() {
			return fiber.NewError(fiber.StatusBadRequest, "Ciudad inválida")
		}

		var count int64
		database.DB.Model(&models.Usuario{}).
			Where("superusuario = ?", true).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Ya existe un superusuario")
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
			Rol:          models.RolAdmin,
			Ciudad:       ciudad,
			Superusuario: true,
			Activo:       true,
		}

		if err := database.DB.Create(&usuario).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el usuario")
		}

		return c.Status(fiber.StatusCreated).JSON(usuarioJSON(&usuario))
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		body.Username = strings.TrimSpace(strings.ToLower(body.Username))

		var usuario models.Usuario
		if err := database.DB.Where("username = ?", body.Username).First(&usuario).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Usuario o contraseña incorrectos")
		}

		if !usuario.Activo {
			return fiber.NewError(fiber.StatusUnauthorized, "El usuario está inactivo")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(usuario.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Usuario o contraseña incorrectos")
		}

		token, err := GenerateToken(cfg.JWTSecret, &usuario)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  usuarioJSON(&usuario),
		})
	}
}
