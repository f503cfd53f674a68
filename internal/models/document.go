package models

type Document struct {
	BaseModel
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description,omitempty"`

	// FileName is the storage-normalized name; OriginalFileName is what the
	// user uploaded. FilePath is property-slug/category-slug/file-name and
	// must always resolve to an existing object in the active backend.
	FileName         string `gorm:"not null" json:"file_name"`
	OriginalFileName string `gorm:"not null" json:"original_file_name"`
	FileSize         int64  `json:"file_size"`
	FileType         string `json:"file_type"`
	FilePath         string `gorm:"not null;index" json:"file_path"`

	CategoryID   string `gorm:"type:uuid;not null;index" json:"category_id"`
	PropertySlug string `gorm:"not null;index" json:"property_slug"`
	UploadedByID string `gorm:"type:uuid" json:"uploaded_by_id"`

	IsHighlighted bool `gorm:"default:false" json:"is_highlighted"`
}
