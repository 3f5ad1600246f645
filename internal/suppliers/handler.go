package suppliers

import (
	"strings"

	"ovopacific-backend/internal/database"
	"ovopacific-backend/internal/models"
	"ovopacific-backend/internal/permissions"
	"ovopacific-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type ProveedorRequest struct {
	Nombre       string `json:"nombre" validate:"required,max=150"`
	Nit          string `json:"nit" validate:"max=30"`
	Contacto     string `json:"contacto" validate:"max=100"`
	Telefono     string `json:"telefono" validate:"max=30"`
	Email        string `json:"email" validate:"omitempty,email"`
	Ciudad       string `json:"ciudad" validate:"required"`
	Presentacion string `json:"presentacion" validate:"required"`
	Activo       *bool  `json:"activo"`
}

type ProveedorResponse struct {
	ID                uint   `json:"id"`
	Nombre            string `json:"nombre"`
	Nit               string `json:"nit"`
	Contacto          string `json:"contacto"`
	Telefono          string `json:"telefono"`
	Email             string `json:"email"`
	Ciudad            string `json:"ciudad"`
	CiudadLabel       string `json:"ciudad_label"`
	Presentacion      string `json:"presentacion"`
	PresentacionLabel string `json:"presentacion_label"`
	Activo            bool   `json:"activo"`
}

func proveedorResponse(p *models.Proveedor) ProveedorResponse {
	return ProveedorResponse{
		ID:                p.ID,
		Nombre:            p.Nombre,
		Nit:               p.Nit,
		Contacto:          p.Contacto,
		Telefono:          p.Telefono,
		Email:             p.Email,
		Ciudad:            string(p.Ciudad),
		CiudadLabel:       p.Ciudad.Label(),
		Presentacion:      string(p.Presentacion),
		PresentacionLabel: p.Presentacion.Label(),
		Activo:            p.Activo,
	}
}

func aplicarCampos(proveedor *models.Proveedor, body *ProveedorRequest) error {
	ciudad := models.Ciudad(body.Ciudad)
	if !ciudad.Valida() {
		return fiber.NewError(fiber.StatusBadRequest, "Debes seleccionar una ciudad válida")
	}
	presentacion := models.Presentacion(body.Presentacion)
	if !presentacion.Valida() {
		return fiber.NewError(fiber.StatusBadRequest, "Debes seleccionar una presentación válida")
	}

	proveedor.Nombre = strings.TrimSpace(body.Nombre)
	proveedor.Nit = strings.TrimSpace(body.Nit)
	proveedor.Contacto = strings.TrimSpace(body.Contacto)
	proveedor.Telefono = strings.TrimSpace(body.Telefono)
	proveedor.Email = strings.TrimSpace(body.Email)
	proveedor.Ciudad = ciudad
	proveedor.Presentacion = presentacion
	if body.Activo != nil {
		proveedor.Activo = *body.Activo
	}
	return nil
}

// GET /api/proveedores?ciudad=&q=&activo=&page=&page_size=
func ListProveedoresHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.PuedeGestionarProveedores(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para ver proveedores")
		}

		dbq := database.DB.Model(&models.Proveedor{})
		if ciudad := strings.TrimSpace(c.Query("ciudad")); ciudad != "" {
			dbq = dbq.Where("ciudad = ?", ciudad)
		}
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			dbq = dbq.Where("LOWER(nombre) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
		if activo := c.Query("activo"); activo != "" {
			dbq = dbq.Where("activo = ?", activo == "true" || activo == "1")
		}

		var total int64
		dbq.Count(&total)

		page := c.QueryInt("page", 1)
		if page < 1 {
			page = 1
		}
		pageSize := c.QueryInt("page_size", 10)
		if pageSize < 1 || pageSize > 100 {
			pageSize = 10
		}

		var proveedores []models.Proveedor
		if err := dbq.
			Order("nombre, ciudad, presentacion, id").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Find(&proveedores).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los proveedores")
		}

		resp := make([]ProveedorResponse, 0, len(proveedores))
		for i := range proveedores {
			resp = append(resp, proveedorResponse(&proveedores[i]))
		}

		return c.JSON(fiber.Map{
			"proveedores": resp,
			"total":       total,
			"page":        page,
			"page_size":   pageSize,
		})
	}
}

// POST /api/proveedores
func CreateProveedorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.PuedeGestionarProveedores(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para crear proveedores")
		}

		var body ProveedorRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if campos := validation.Struct(&body); campos != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "Datos inválidos",
				"campos": campos,
			})
		}

		proveedor := models.Proveedor{Activo: true}
		if err := aplicarCampos(&proveedor, &body); err != nil {
			return err
		}

		if err := database.DB.Create(&proveedor).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Ya existe un proveedor con ese nombre")
		}

		return c.Status(fiber.StatusCreated).JSON(proveedorResponse(&proveedor))
	}
}

// PUT /api/proveedores/:id
func UpdateProveedorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.PuedeGestionarProveedores(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para editar proveedores")
		}

		var proveedor models.Proveedor
		if err := database.DB.First(&proveedor, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proveedor no encontrado")
		}

		var body ProveedorRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if campos := validation.Struct(&body); campos != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "Datos inválidos",
				"campos": campos,
			})
		}

		if err := aplicarCampos(&proveedor, &body); err != nil {
			return err
		}

		if err := database.DB.Save(&proveedor).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el proveedor")
		}

		return c.JSON(proveedorResponse(&proveedor))
	}
}

// DELETE /api/proveedores/:id
func DeleteProveedorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perfil, err := permissions.RequierePerfil(c)
		if err != nil {
			return err
		}
		if !permissions.PuedeGestionarProveedores(perfil) {
			return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para eliminar proveedores")
		}

		var proveedor models.Proveedor
		if err := database.DB.First(&proveedor, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proveedor no encontrado")
		}

		var pedidos int64
		database.DB.Model(&models.Pedido{}).Where("proveedor_id = ?", proveedor.ID).Count(&pedidos)
		if pedidos > 0 {
			// Con pedidos asociados solo se desactiva, el historial los referencia.
			if err := database.DB.Model(&proveedor).Update("activo", false).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo desactivar el proveedor")
			}
			return c.JSON(fiber.Map{"message": "Proveedor desactivado, tiene pedidos asociados"})
		}

		if err := database.DB.Delete(&proveedor).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el proveedor")
		}

		return c.JSON(fiber.Map{"message": "Proveedor eliminado"})
	}
}
