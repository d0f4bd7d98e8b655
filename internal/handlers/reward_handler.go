package handlers

import (
	"net/http"

	"github.com/carbonova/carbonova-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// RewardHandler handles voucher and redemption HTTP requests
type RewardHandler struct {
	rewardService services.RewardService
}

// NewRewardHandler creates a new RewardHandler
func NewRewardHandler(rewardService services.RewardService) *RewardHandler {
	return &RewardHandler{rewardService: rewardService}
}

// ListVouchers handles GET /vouchers
func (h *RewardHandler) ListVouchers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	catalog, err := h.rewardService.ListVouchers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, catalog)
}

// Redeem handles POST /vouchers/:id/redeem
func (h *RewardHandler) Redeem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	voucherID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	receipt, err := h.rewardService.Redeem(c.Request.Context(), userID, voucherID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

// History handles GET /redemptions
func (h *RewardHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	redemptions, err := h.rewardService.History(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"redemptions": redemptions})
}

// PointHistory handles GET /points/transactions
func (h *RewardHandler) PointHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	transactions, err := h.rewardService.PointHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}
