package models

import "time"

type Proveedor struct {
	ID           uint         `gorm:"primaryKey"`
	Nombre       string       `gorm:"size:150;not null;unique"`
	Nit          string       `gorm:"size:30"`
	Contacto     string       `gorm:"size:100"`
	Telefono     string       `gorm:"size:30"`
	Email        string       `gorm:"size:100"`
	Ciudad       Ciudad       `gorm:"size:20;not null;index"`
	Presentacion Presentacion `gorm:"size:20;not null"`
	Activo       bool         `gorm:"default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
