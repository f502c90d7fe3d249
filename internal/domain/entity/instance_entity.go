package entity

import "time"

// InstanceStatus is the rentability state of a listed GPU instance.
type InstanceStatus string

const (
	InstanceAvailable InstanceStatus = "available"
	InstanceRented    InstanceStatus = "rented"
	InstanceOffline   InstanceStatus = "offline"
)

// Instance is a rentable GPU/compute listing published by a provider.
type Instance struct {
	ID           string
	ProviderID   string
	Name         string
	GPUModel     string
	VRAMGB       int
	Region       string
	PricePerHour float64
	Status       InstanceStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InstanceFilter narrows catalog listings. Zero values mean "any".
type InstanceFilter struct {
	GPUModel   string
	Region     string
	Status     InstanceStatus
	MaxPrice   float64
	ProviderID string
}
