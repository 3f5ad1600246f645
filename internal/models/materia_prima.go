package models

import "time"

// MateriaPrima registra el ingreso diario de materia prima a planta.
type MateriaPrima struct {
	ID        uint      `gorm:"primaryKey"`
	Fecha     time.Time `gorm:"type:date;not null;index"`
	TipoHuevo TipoHuevo `gorm:"size:10;not null"`
	// CantidadKg puede ser negativa para ajustes, pero nunca cero.
	CantidadKg    int    `gorm:"not null"`
	Observaciones string `gorm:"type:text"`

	CreadoPorID *uint `gorm:"index"`
	CreadoPor   *Usuario `gorm:"foreignKey:CreadoPorID"`

	CreatedAt time.Time
}
