package repositories

import (
	"errors"

	"agrodocs_backend/internal/models"

	"gorm.io/gorm"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository interface {
	Create(db *gorm.DB, category *models.Category) error
	FindByID(db *gorm.DB, id string) (*models.Category, error)
	// FindByPropertyAndSlug checks the (property, slug) uniqueness pair.
	FindByPropertyAndSlug(db *gorm.DB, propertyID, slug string) (*models.Category, error)
	FindByProperty(db *gorm.DB, propertyID string) ([]models.Category, error)
	FindByPropertySlugs(db *gorm.DB, slugs []string) ([]models.Category, error)
	FindAll(db *gorm.DB) ([]models.Category, error)
	MaxOrder(db *gorm.DB, propertyID string) (int, error)
	Update(db *gorm.DB, category *models.Category) error
	UpdateOrder(db *gorm.DB, id string, order int) error
	// UpdatePropertySlug rewrites the denormalized property slug for every
	// category of a property (property rename cascade).
	UpdatePropertySlug(db *gorm.DB, propertyID, newSlug string) error
	Delete(db *gorm.DB, id string) error
	CountDocuments(db *gorm.DB, categoryID string) (int64, error)
}

type categoryRepository struct{}

func NewCategoryRepository() CategoryRepository {
	return &categoryRepository{}
}

func (r *categoryRepository) Create(db *gorm.DB, category *models.Category) error {
	return db.Create(category).Error
}

func (r *categoryRepository) FindByID(db *gorm.DB, id string) (*models.Category, error) {
	var category models.Category
	if err := db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByPropertyAndSlug(db *gorm.DB, propertyID, slug string) (*models.Category, error) {
	var category models.Category
	err := db.Where("property_id = ? AND slug = ?", propertyID, slug).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByProperty(db *gorm.DB, propertyID string) ([]models.Category, error) {
	var categories []models.Category
	err := db.Where("property_id = ?", propertyID).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) FindByPropertySlugs(db *gorm.DB, slugs []string) ([]models.Category, error) {
	var categories []models.Category
	err := db.Where("property_slug IN ?", slugs).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) FindAll(db *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	err := db.Order("property_slug ASC, sort_order ASC, name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) MaxOrder(db *gorm.DB, propertyID string) (int, error) {
	var max *int
	err := db.Model(&models.Category{}).
		Where("property_id = ? AND sort_order <> ?", propertyID, models.DefaultCategoryOrder).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *categoryRepository) Update(db *gorm.DB, category *models.Category) error {
	return db.Save(category).Error
}

func (r *categoryRepository) UpdateOrder(db *gorm.DB, id string, order int) error {
	result := db.Model(&models.Category{}).Where("id = ?", id).Update("sort_order", order)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) UpdatePropertySlug(db *gorm.DB, propertyID, newSlug string) error {
	return db.Model(&models.Category{}).
		Where("property_id = ?", propertyID).
		Update("property_slug", newSlug).Error
}

func (r *categoryRepository) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) CountDocuments(db *gorm.DB, categoryID string) (int64, error) {
	var count int64
	err := db.Model(&models.Document{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}
