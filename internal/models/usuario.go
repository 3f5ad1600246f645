package models

import "time"

type Rol string

const (
	RolAdmin      Rol = "admin"
	RolComercial  Rol = "comercial"
	RolLogistica  Rol = "logistica"
	RolProduccion Rol = "produccion"
	// RolProgramador existe por compatibilidad con perfiles creados antes
	// del rol "produccion"; tiene los mismos permisos.
	RolProgramador Rol = "programador"
)

var RolLabels = map[Rol]string{
	RolAdmin:       "Administrador",
	RolComercial:   "Comercial",
	RolLogistica:   "Logística",
	RolProduccion:  "Producción",
	RolProgramador: "Programador",
}

func (r Rol) Valido() bool {
	_, ok := RolLabels[r]
	return ok
}

func (r Rol) Label() string {
	if label, ok := RolLabels[r]; ok {
		return label
	}
	return string(r)
}

type Usuario struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:100;uniqueIndex;not null"`
	Nombre       string `gorm:"size:100"`
	Apellido     string `gorm:"size:100"`
	Email        string `gorm:"size:100"`
	PasswordHash string `gorm:"size:255;not null"`
	Rol          Rol    `gorm:"size:20;not null"`
	Ciudad       Ciudad `gorm:"size:20;not null"`
	Superusuario bool   `gorm:"default:false"`
	Activo       bool   `gorm:"default:true"`
	FotoPerfil   string `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NombreUsuario devuelve "nombre apellido" o el username si están vacíos.
// Un usuario nulo se reporta como "Sistema" (registros generados sin actor).
func NombreUsuario(u *Usuario) string {
	if u == nil {
		return "Sistema"
	}
	nombre := u.Nombre
	if u.Apellido != "" {
		if nombre != "" {
			nombre += " "
		}
		nombre += u.Apellido
	}
	if nombre != "" {
		return nombre
	}
	return u.Username
}
