package repositories

import (
	"errors"

	"agrodocs_backend/internal/models"

	"gorm.io/gorm"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentRepository interface {
	Create(db *gorm.DB, document *models.Document) error
	FindByID(db *gorm.DB, id string) (*models.Document, error)
	FindByCategory(db *gorm.DB, categoryID string) ([]models.Document, error)
	FindByPropertySlugs(db *gorm.DB, slugs []string) ([]models.Document, error)
	FindHighlighted(db *gorm.DB, slugs []string) ([]models.Document, error)
	FindAll(db *gorm.DB) ([]models.Document, error)
	Update(db *gorm.DB, document *models.Document) error
	Delete(db *gorm.DB, id string) error
}

type documentRepository struct{}

func NewDocumentRepository() DocumentRepository {
	return &documentRepository{}
}

func (r *documentRepository) Create(db *gorm.DB, document *models.Document) error {
	return db.Create(document).Error
}

func (r *documentRepository) FindByID(db *gorm.DB, id string) (*models.Document, error) {
	var document models.Document
	if err := db.First(&document, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &document, nil
}

func (r *documentRepository) FindByCategory(db *gorm.DB, categoryID string) ([]models.Document, error) {
	var documents []models.Document
	err := db.Where("category_id = ?", categoryID).
		Order("title ASC").
		Find(&documents).Error
	return documents, err
}

func (r *documentRepository) FindByPropertySlugs(db *gorm.DB, slugs []string) ([]models.Document, error) {
	var documents []models.Document
	err := db.Where("property_slug IN ?", slugs).
		Order("created_at DESC").
		Find(&documents).Error
	return documents, err
}

func (r *documentRepository) FindHighlighted(db *gorm.DB, slugs []string) ([]models.Document, error) {
	var documents []models.Document
	query := db.Where("is_highlighted = ?", true)
	if len(slugs) > 0 {
		query = query.Where("property_slug IN ?", slugs)
	}
	err := query.Order("created_at DESC").Find(&documents).Error
	return documents, err
}

func (r *documentRepository) FindAll(db *gorm.DB) ([]models.Document, error) {
	var documents []models.Document
	err := db.Order("created_at DESC").Find(&documents).Error
	return documents, err
}

func (r *documentRepository) Update(db *gorm.DB, document *models.Document) error {
	return db.Save(document).Error
}

func (r *documentRepository) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Document{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
