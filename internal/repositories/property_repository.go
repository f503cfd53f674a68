package repositories

import (
	"errors"

	"agrodocs_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrPropertyNotFound      = errors.New("property not found")
	ErrPropertyAlreadyExists = errors.New("property already exists")
)

type PropertyRepository interface {
	Create(db *gorm.DB, property *models.Property) error
	FindByID(db *gorm.DB, id string) (*models.Property, error)
	FindBySlug(db *gorm.DB, slug string) (*models.Property, error)
	// FindByIDOrSlug resolves a property from either identifier. Handlers
	// accept both, so the lookup lives here rather than in every service.
	FindByIDOrSlug(db *gorm.DB, idOrSlug string) (*models.Property, error)
	FindAll(db *gorm.DB) ([]models.Property, error)
	FindBySlugs(db *gorm.DB, slugs []string) ([]models.Property, error)
	Update(db *gorm.DB, property *models.Property) error
	Delete(db *gorm.DB, id string) error
	CountCategories(db *gorm.DB, propertyID string) (int64, error)
}

type propertyRepository struct{}

func NewPropertyRepository() PropertyRepository {
	return &propertyRepository{}
}

func (r *propertyRepository) Create(db *gorm.DB, property *models.Property) error {
	if err := db.Create(property).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return ErrPropertyAlreadyExists
		}
		return err
	}
	return nil
}

func (r *propertyRepository) FindByID(db *gorm.DB, id string) (*models.Property, error) {
	var property models.Property
	if err := db.First(&property, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) FindBySlug(db *gorm.DB, slug string) (*models.Property, error) {
	var property models.Property
	if err := db.Where("slug = ?", slug).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) FindByIDOrSlug(db *gorm.DB, idOrSlug string) (*models.Property, error) {
	var property models.Property
	if err := db.Where("id = ? OR slug = ?", idOrSlug, idOrSlug).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) FindAll(db *gorm.DB) ([]models.Property, error) {
	var properties []models.Property
	err := db.Order("name ASC").Find(&properties).Error
	return properties, err
}

func (r *propertyRepository) FindBySlugs(db *gorm.DB, slugs []string) ([]models.Property, error) {
	var properties []models.Property
	err := db.Where("slug IN ?", slugs).Order("name ASC").Find(&properties).Error
	return properties, err
}

func (r *propertyRepository) Update(db *gorm.DB, property *models.Property) error {
	return db.Save(property).Error
}

func (r *propertyRepository) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Property{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

func (r *propertyRepository) CountCategories(db *gorm.DB, propertyID string) (int64, error) {
	var count int64
	err := db.Model(&models.Category{}).Where("property_id = ?", propertyID).Count(&count).Error
	return count, err
}
