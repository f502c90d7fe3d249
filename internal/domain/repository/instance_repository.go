package repository

import "github.com/gridmarket/gridmarket-api/internal/domain/entity"

// InstanceRepository stores rentable GPU instance listings.
type InstanceRepository interface {
	Create(i *entity.Instance) error
	GetByID(id string) (*entity.Instance, error)
	List(f entity.InstanceFilter) ([]*entity.Instance, error)
	Update(i *entity.Instance) error
	Delete(id string) error
}
