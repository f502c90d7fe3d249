package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	repo "github.com/gridmarket/gridmarket-api/internal/domain/repository"
)

var (
	ErrInstanceNotFound = errors.New("instance not found")
	ErrForbidden        = errors.New("not allowed to modify this listing")
)

// Catalog manages the rentable GPU instance listings.
type Catalog struct {
	Instances repo.InstanceRepository
	Logger    *logrus.Logger
}

func NewCatalog(instances repo.InstanceRepository, logger *logrus.Logger) *Catalog {
	return &Catalog{Instances: instances, Logger: logger}
}

type InstanceInput struct {
	Name         string
	GPUModel     string
	VRAMGB       int
	Region       string
	PricePerHour float64
	Status       entity.InstanceStatus
}

func (c *Catalog) List(ctx context.Context, f entity.InstanceFilter) ([]*entity.Instance, error) {
	return c.Instances.List(f)
}

func (c *Catalog) Get(ctx context.Context, id string) (*entity.Instance, error) {
	i, err := c.Instances.GetByID(id)
	if err != nil {
		return nil, err
	}
	if i == nil {
		return nil, ErrInstanceNotFound
	}
	return i, nil
}

// Create publishes a listing owned by the provider.
func (c *Catalog) Create(ctx context.Context, providerID string, in InstanceInput) (*entity.Instance, error) {
	status := in.Status
	if status == "" {
		status = entity.InstanceAvailable
	}
	i := &entity.Instance{
		ID:           uuid.NewString(),
		ProviderID:   providerID,
		Name:         in.Name,
		GPUModel:     in.GPUModel,
		VRAMGB:       in.VRAMGB,
		Region:       in.Region,
		PricePerHour: in.PricePerHour,
		Status:       status,
	}
	if err := c.Instances.Create(i); err != nil {
		return nil, err
	}
	if c.Logger != nil {
		c.Logger.WithFields(logrus.Fields{"instance_id": i.ID, "provider_id": providerID}).Info("instance listed")
	}
	return i, nil
}

// Update applies non-zero fields. Only the owning provider or an admin may modify.
func (c *Catalog) Update(ctx context.Context, actorID string, actorRole entity.Role, id string, in InstanceInput) (*entity.Instance, error) {
	i, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if i.ProviderID != actorID && actorRole != entity.RoleAdmin {
		return nil, ErrForbidden
	}
	if in.Name != "" {
		i.Name = in.Name
	}
	if in.GPUModel != "" {
		i.GPUModel = in.GPUModel
	}
	if in.VRAMGB > 0 {
		i.VRAMGB = in.VRAMGB
	}
	if in.Region != "" {
		i.Region = in.Region
	}
	if in.PricePerHour > 0 {
		i.PricePerHour = in.PricePerHour
	}
	if in.Status != "" {
		i.Status = in.Status
	}
	if err := c.Instances.Update(i); err != nil {
		return nil, err
	}
	return i, nil
}

func (c *Catalog) Delete(ctx context.Context, actorID string, actorRole entity.Role, id string) error {
	i, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	if i.ProviderID != actorID && actorRole != entity.RoleAdmin {
		return ErrForbidden
	}
	return c.Instances.Delete(id)
}
