package handlers

import (
	"net/http"
	"time"

	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/carbonova/carbonova-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// ActivityTypeRequest is the body of POST /admin/activity-types
type ActivityTypeRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Unit          string  `json:"unit" binding:"required"`
	PointsPerUnit float64 `json:"points_per_unit"`
	CarbonFactor  float64 `json:"carbon_factor"`
	RequiresPhoto bool    `json:"requires_photo"`
	DailyLimit    int     `json:"daily_limit"`
	Icon          string  `json:"icon"`
}

// VoucherRequest is the body of POST /admin/vouchers. IsActive defaults to true.
type VoucherRequest struct {
	Name           string     `json:"name" binding:"required"`
	Description    string     `json:"description"`
	CompanyName    string     `json:"company_name" binding:"required"`
	CompanyLogo    string     `json:"company_logo"`
	PointsRequired int64      `json:"points_required"`
	ValueAmount    *float64   `json:"value_amount"`
	TotalAvailable int64      `json:"total_available"`
	Remaining      int64      `json:"remaining"`
	ExpiresAt      *time.Time `json:"expires_at"`
	IsActive       *bool      `json:"is_active"`
}

// CatalogHandler handles admin catalog HTTP requests
type CatalogHandler struct {
	catalogService services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// CreateActivityType handles POST /admin/activity-types
func (h *CatalogHandler) CreateActivityType(c *gin.Context) {
	var req ActivityTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	activityType, err := h.catalogService.CreateActivityType(c.Request.Context(), &models.ActivityType{
		Name:          req.Name,
		Description:   req.Description,
		Unit:          req.Unit,
		PointsPerUnit: req.PointsPerUnit,
		CarbonFactor:  req.CarbonFactor,
		RequiresPhoto: req.RequiresPhoto,
		DailyLimit:    req.DailyLimit,
		Icon:          models.ActivityIcon(req.Icon),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, activityType)
}

// CreateVoucher handles POST /admin/vouchers
func (h *CatalogHandler) CreateVoucher(c *gin.Context) {
	var req VoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	voucher, err := h.catalogService.CreateVoucher(c.Request.Context(), &models.Voucher{
		Name:           req.Name,
		Description:    req.Description,
		CompanyName:    req.CompanyName,
		CompanyLogo:    req.CompanyLogo,
		PointsRequired: req.PointsRequired,
		ValueAmount:    req.ValueAmount,
		TotalAvailable: req.TotalAvailable,
		Remaining:      req.Remaining,
		ExpiresAt:      req.ExpiresAt,
		IsActive:       isActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, voucher)
}
