package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TahaTehitah1/strimo-plan-util/internal/credentials"
	"github.com/TahaTehitah1/strimo-plan-util/internal/models"
)

// purchaser is what the handler needs from the purchase service.
type purchaser interface {
	PurchasePlan(ctx context.Context, req *models.PurchaseRequest) *models.PurchaseResult
}

type Handler struct {
	purchaseService purchaser
}

func NewHandler(purchaseService purchaser) *Handler {
	return &Handler{purchaseService: purchaseService}
}

// Health reports service liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "iptv-purchase-service",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Purchase handles plan purchase requests from the storefront backend.
// Field presence and email shape are rejected here, before a browser is
// spent on the order; everything past that comes back as a purchase result
// whose success flag and error kind pick the response status.
func (h *Handler) Purchase(c *gin.Context) {
	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.PlanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "planId is required"})
		return
	}
	if req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	if !credentials.IsValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is not a valid email address"})
		return
	}

	result := h.purchaseService.PurchasePlan(c.Request.Context(), &req)

	status := http.StatusOK
	if !result.Success {
		status = models.HTTPStatus(result.Kind)
	}
	c.JSON(status, result.ToResponse())
}
