package handlers

import (
	"net/http"

	"gatta/internal/auth"
	"gatta/internal/middleware"
	"gatta/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the pot API on r. Every /pots/:id route passes
// through the organizer token check; organizer-only routes also require it.
func RegisterRoutes(r gin.IRouter, h *Handlers, issuer *auth.Issuer) {
	pots := r.Group("/pots")
	pots.POST("", h.CreatePot)

	pot := pots.Group("/:id", middleware.Organizer(issuer))
	{
		pot.GET("", h.GetPot)
		pot.GET("/share", h.ShareMessage)
		pot.GET("/live", h.Live)
		pot.POST("/confirm", h.ConfirmPayment)
		pot.PATCH("/seats/:seatId", h.UpdateSeat)
		pot.POST("/seats/:seatId/toggle", h.TogglePaid)

		organizer := pot.Group("", middleware.RequireOrganizer())
		organizer.PATCH("/bank", h.UpdateBank)
		organizer.POST("/members", h.AddMember)
	}
}

// CreatePot - POST /api/pots
func (h *Handlers) CreatePot(c *gin.Context) {
	var req models.CreatePotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Pots.Create(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "Failed to create pot")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetPot - GET /api/pots/:id
func (h *Handlers) GetPot(c *gin.Context) {
	view, err := h.services.Pots.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Failed to get pot")
		return
	}

	c.JSON(http.StatusOK, view)
}

// ShareMessage - GET /api/pots/:id/share
func (h *Handlers) ShareMessage(c *gin.Context) {
	msg, err := h.services.Pots.ShareMessage(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Failed to build share message")
		return
	}

	c.JSON(http.StatusOK, msg)
}

// UpdateSeat - PATCH /api/pots/:id/seats/:seatId
// Raw last-write-wins seat write used by optimistic clients
func (h *Handlers) UpdateSeat(c *gin.Context) {
	var req models.UpdateSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.services.Pots.UpdateSeat(c.Request.Context(), c.Param("id"), c.Param("seatId"), &req)
	if err != nil {
		handleServiceError(c, err, "Failed to update seat")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ConfirmPayment - POST /api/pots/:id/confirm
func (h *Handlers) ConfirmPayment(c *gin.Context) {
	var req models.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.services.Pots.ConfirmPayment(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		handleServiceError(c, err, "Failed to confirm payment")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// TogglePaid - POST /api/pots/:id/seats/:seatId/toggle
func (h *Handlers) TogglePaid(c *gin.Context) {
	resp, err := h.services.Pots.TogglePaid(c.Request.Context(), c.Param("id"), c.Param("seatId"))
	if err != nil {
		handleServiceError(c, err, "Failed to toggle seat")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AddMember - POST /api/pots/:id/members
func (h *Handlers) AddMember(c *gin.Context) {
	var req models.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.services.Pots.AddMember(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		handleServiceError(c, err, "Failed to add member")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// UpdateBank - PATCH /api/pots/:id/bank
func (h *Handlers) UpdateBank(c *gin.Context) {
	var req models.UpdateBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.services.Pots.UpdateBank(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err, "Failed to update bank details")
		return
	}

	c.JSON(http.StatusOK, view)
}

// Live - GET /api/pots/:id/live
// Websocket stream of seat.updated events for one pot
func (h *Handlers) Live(c *gin.Context) {
	potID := c.Param("id")
	if _, err := h.services.Pots.Get(c.Request.Context(), potID); err != nil {
		handleServiceError(c, err, "Failed to get pot")
		return
	}

	h.hub.ServeWS(c.Writer, c.Request, potID)
}
