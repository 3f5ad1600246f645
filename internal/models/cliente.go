package models

// Cliente son las tarjetas de la página institucional (legado del sitio
// original). La imagen se guarda como ruta relativa al directorio de medios.
type Cliente struct {
	ID          uint   `gorm:"primaryKey"`
	Titulo      string `gorm:"size:100;not null"`
	Imagen      string `gorm:"size:255"`
	Descripcion string `gorm:"size:500"`
}
