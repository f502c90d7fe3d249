package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	"github.com/gridmarket/gridmarket-api/internal/infrastructure/memory"
)

func newCatalogFixture(t *testing.T) *Catalog {
	t.Helper()
	return NewCatalog(memory.NewInstanceStore(), nil)
}

func TestCatalogCreateDefaultsToAvailable(t *testing.T) {
	cat := newCatalogFixture(t)

	i, err := cat.Create(context.Background(), "prov-1", InstanceInput{
		Name:         "a100-west-1",
		GPUModel:     "NVIDIA A100",
		VRAMGB:       80,
		Region:       "us-west",
		PricePerHour: 2.5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, i.ID)
	require.Equal(t, entity.InstanceAvailable, i.Status)
	require.Equal(t, "prov-1", i.ProviderID)

	got, err := cat.Get(context.Background(), i.ID)
	require.NoError(t, err)
	require.Equal(t, i.ID, got.ID)
}

func TestCatalogGetMissing(t *testing.T) {
	cat := newCatalogFixture(t)

	_, err := cat.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestCatalogUpdateOwnership(t *testing.T) {
	cat := newCatalogFixture(t)

	i, err := cat.Create(context.Background(), "prov-1", InstanceInput{Name: "box", GPUModel: "RTX 4090", PricePerHour: 1})
	require.NoError(t, err)

	// A different provider cannot touch the listing.
	_, err = cat.Update(context.Background(), "prov-2", entity.RoleProvider, i.ID, InstanceInput{PricePerHour: 9})
	require.ErrorIs(t, err, ErrForbidden)

	// The owner can.
	updated, err := cat.Update(context.Background(), "prov-1", entity.RoleProvider, i.ID, InstanceInput{PricePerHour: 0.8, Status: entity.InstanceRented})
	require.NoError(t, err)
	require.InDelta(t, 0.8, updated.PricePerHour, 1e-9)
	require.Equal(t, entity.InstanceRented, updated.Status)
	require.Equal(t, "box", updated.Name, "zero-value fields stay untouched")

	// So can an admin.
	updated, err = cat.Update(context.Background(), "admin-1", entity.RoleAdmin, i.ID, InstanceInput{Status: entity.InstanceOffline})
	require.NoError(t, err)
	require.Equal(t, entity.InstanceOffline, updated.Status)
}

func TestCatalogDelete(t *testing.T) {
	cat := newCatalogFixture(t)

	i, err := cat.Create(context.Background(), "prov-1", InstanceInput{Name: "box", GPUModel: "H100", PricePerHour: 3})
	require.NoError(t, err)

	require.ErrorIs(t, cat.Delete(context.Background(), "prov-2", entity.RoleProvider, i.ID), ErrForbidden)
	require.NoError(t, cat.Delete(context.Background(), "prov-1", entity.RoleProvider, i.ID))

	_, err = cat.Get(context.Background(), i.ID)
	require.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestCatalogListFilters(t *testing.T) {
	cat := newCatalogFixture(t)
	ctx := context.Background()

	_, err := cat.Create(ctx, "prov-1", InstanceInput{Name: "a", GPUModel: "NVIDIA A100", Region: "us-west", PricePerHour: 2.5})
	require.NoError(t, err)
	_, err = cat.Create(ctx, "prov-1", InstanceInput{Name: "b", GPUModel: "NVIDIA RTX 4090", Region: "eu-central", PricePerHour: 0.65})
	require.NoError(t, err)
	_, err = cat.Create(ctx, "prov-2", InstanceInput{Name: "c", GPUModel: "NVIDIA A100", Region: "us-west", PricePerHour: 1.9})
	require.NoError(t, err)

	all, err := cat.List(ctx, entity.InstanceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	a100s, err := cat.List(ctx, entity.InstanceFilter{GPUModel: "NVIDIA A100"})
	require.NoError(t, err)
	require.Len(t, a100s, 2)

	cheap, err := cat.List(ctx, entity.InstanceFilter{MaxPrice: 2})
	require.NoError(t, err)
	require.Len(t, cheap, 2)
	// Cheapest first.
	require.InDelta(t, 0.65, cheap[0].PricePerHour, 1e-9)

	mine, err := cat.List(ctx, entity.InstanceFilter{ProviderID: "prov-2"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "c", mine[0].Name)
}
