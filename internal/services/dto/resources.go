package dto

type CreatePropertyRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=160"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Active      *bool  `json:"active"`
}

type UpdatePropertyRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=160"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Active      *bool   `json:"active"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=160"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	// Property accepts either a property id or its slug.
	Property string `json:"property" validate:"required"`
	Order    *int   `json:"order" validate:"omitempty,min=0"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=160"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Property    *string `json:"property"`
	Order       *int    `json:"order" validate:"omitempty,min=0"`
}

type ReorderCategoriesRequest struct {
	Categories []CategoryOrder `json:"categories" validate:"required,min=1,dive"`
}

type CategoryOrder struct {
	ID    string `json:"_id" validate:"required"`
	Order int    `json:"order" validate:"min=0"`
}

type UploadDocumentRequest struct {
	Title         string `form:"title" validate:"required,min=1,max=240"`
	Description   string `form:"description" validate:"omitempty,max=2000"`
	CategoryID    string `form:"category_id" validate:"required"`
	IsHighlighted bool   `form:"is_highlighted"`
}

type UpdateDocumentRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=240"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	CategoryID    *string `json:"category_id"`
	IsHighlighted *bool   `json:"is_highlighted"`
}

type DownloadResponse struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}
