package catalogRepo

import (
	"sync"

	"knead/models"

	"github.com/google/uuid"
)

// MemoryCatalogRepo is the in-memory CatalogRepository used as an injected
// test double.
type MemoryCatalogRepo struct {
	mu    sync.Mutex
	types map[string]models.MassageType
}

// NewMemoryCatalogRepo creates an empty in-memory catalog.
func NewMemoryCatalogRepo() *MemoryCatalogRepo {
	return &MemoryCatalogRepo{types: make(map[string]models.MassageType)}
}

func (r *MemoryCatalogRepo) GetByID(id string) (*models.MassageType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mt, ok := r.types[id]
	if !ok {
		return nil, nil
	}
	copied := mt
	return &copied, nil
}

func (r *MemoryCatalogRepo) GetAll() ([]models.MassageType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var types []models.MassageType
	for _, mt := range r.types {
		types = append(types, mt)
	}
	return types, nil
}

func (r *MemoryCatalogRepo) Create(mt *models.MassageType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mt.ID == "" {
		mt.ID = uuid.New().String()
	}
	r.types[mt.ID] = *mt
	return nil
}
