package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gridmarket/gridmarket-api/internal/application"
	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	"github.com/gridmarket/gridmarket-api/pkg/response"
	"github.com/gridmarket/gridmarket-api/pkg/validation"
)

// CatalogHandler owns the rentable instance listing endpoints.
type CatalogHandler struct {
	Catalog *application.Catalog
	Logger  *logrus.Logger
}

func NewCatalogHandler(catalog *application.Catalog, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog, Logger: logger}
}

type instanceRequest struct {
	Name         string  `json:"name" binding:"required,max=128"`
	GPUModel     string  `json:"gpu_model" binding:"required,max=64"`
	VRAMGB       int     `json:"vram_gb" binding:"required,gt=0"`
	Region       string  `json:"region" binding:"required,max=64"`
	PricePerHour float64 `json:"price_per_hour" binding:"required,gt=0"`
	Status       string  `json:"status" binding:"omitempty,oneof=available rented offline"`
}

type instancePatchRequest struct {
	Name         string  `json:"name" binding:"omitempty,max=128"`
	GPUModel     string  `json:"gpu_model" binding:"omitempty,max=64"`
	VRAMGB       int     `json:"vram_gb" binding:"omitempty,gt=0"`
	Region       string  `json:"region" binding:"omitempty,max=64"`
	PricePerHour float64 `json:"price_per_hour" binding:"omitempty,gt=0"`
	Status       string  `json:"status" binding:"omitempty,oneof=available rented offline"`
}

// List GET /api/instances?gpu_model=&region=&status=&max_price=
func (h *CatalogHandler) List(c *gin.Context) {
	f := entity.InstanceFilter{
		GPUModel:   c.Query("gpu_model"),
		Region:     c.Query("region"),
		Status:     entity.InstanceStatus(c.Query("status")),
		ProviderID: c.Query("provider_id"),
	}
	if s := c.Query("max_price"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
			f.MaxPrice = v
		}
	}
	items, err := h.Catalog.List(c.Request.Context(), f)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "catalog unavailable", nil)
		return
	}
	out := make([]gin.H, 0, len(items))
	for _, i := range items {
		out = append(out, instanceJSON(i))
	}
	response.Success(c, http.StatusOK, out, "instances", map[string]any{"count": len(out)})
}

// Get GET /api/instances/:id
func (h *CatalogHandler) Get(c *gin.Context) {
	i, err := h.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "instance not found", nil)
		return
	}
	response.Success(c, http.StatusOK, instanceJSON(i), "instance", nil)
}

// Create POST /api/instances (provider or admin)
func (h *CatalogHandler) Create(c *gin.Context) {
	uid := c.GetString("userID")
	var req instanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	i, err := h.Catalog.Create(c.Request.Context(), uid, application.InstanceInput{
		Name:         req.Name,
		GPUModel:     req.GPUModel,
		VRAMGB:       req.VRAMGB,
		Region:       req.Region,
		PricePerHour: req.PricePerHour,
		Status:       entity.InstanceStatus(req.Status),
	})
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "could not create listing", nil)
		return
	}
	response.Success(c, http.StatusCreated, instanceJSON(i), "instance listed", nil)
}

// Update PATCH /api/instances/:id
func (h *CatalogHandler) Update(c *gin.Context) {
	uid := c.GetString("userID")
	role := entity.Role(c.GetString("userRole"))
	var req instancePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	i, err := h.Catalog.Update(c.Request.Context(), uid, role, c.Param("id"), application.InstanceInput{
		Name:         req.Name,
		GPUModel:     req.GPUModel,
		VRAMGB:       req.VRAMGB,
		Region:       req.Region,
		PricePerHour: req.PricePerHour,
		Status:       entity.InstanceStatus(req.Status),
	})
	if err != nil {
		renderCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, instanceJSON(i), "instance updated", nil)
}

// Delete DELETE /api/instances/:id
func (h *CatalogHandler) Delete(c *gin.Context) {
	uid := c.GetString("userID")
	role := entity.Role(c.GetString("userRole"))
	if err := h.Catalog.Delete(c.Request.Context(), uid, role, c.Param("id")); err != nil {
		renderCatalogError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "instance removed", nil)
}

func renderCatalogError(c *gin.Context, err error) {
	switch err {
	case application.ErrInstanceNotFound:
		response.Error[any](c, http.StatusNotFound, "instance not found", nil)
	case application.ErrForbidden:
		response.Error[any](c, http.StatusForbidden, "not allowed", nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}

func instanceJSON(i *entity.Instance) gin.H {
	return gin.H{
		"id":             i.ID,
		"provider_id":    i.ProviderID,
		"name":           i.Name,
		"gpu_model":      i.GPUModel,
		"vram_gb":        i.VRAMGB,
		"region":         i.Region,
		"price_per_hour": i.PricePerHour,
		"status":         i.Status,
		"created_at":     i.CreatedAt,
		"updated_at":     i.UpdatedAt,
	}
}
