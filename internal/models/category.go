package models

// DefaultCategoryOrder is the sentinel for categories that were never
// explicitly ordered; they sort after everything else.
const DefaultCategoryOrder = 9999

type Category struct {
	BaseModel
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"not null;uniqueIndex:idx_categories_property_slug" json:"slug"`
	Description string `json:"description,omitempty"`

	// PropertyID is the relational source of truth. PropertySlug is
	// denormalized from it for storage paths only and is kept in sync by the
	// rename cascades.
	PropertyID   string `gorm:"type:uuid;not null;uniqueIndex:idx_categories_property_slug;index" json:"property_id"`
	PropertySlug string `gorm:"not null;index" json:"property_slug"`

	Order int `gorm:"column:sort_order;default:9999" json:"order"`

	Documents []Document `gorm:"foreignKey:CategoryID" json:"-"`
}
