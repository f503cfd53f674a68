package models

type Property struct {
	BaseModel
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `json:"description,omitempty"`
	Active      bool   `gorm:"default:true" json:"active"`

	Categories []Category `gorm:"foreignKey:PropertyID" json:"-"`
}
