package catalogRepo

import "knead/models"

// CatalogRepository provides read access to the massage-type catalog.
type CatalogRepository interface {
	GetByID(id string) (*models.MassageType, error)
	GetAll() ([]models.MassageType, error)
	Create(mt *models.MassageType) error
}
