package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/primedclinic/intake-service/internal/models"
	"github.com/primedclinic/intake-service/internal/services"
	"github.com/primedclinic/intake-service/internal/utils"
)

type IntakeHandler struct {
	BaseHandler
	service services.IntakeService
}

func NewIntakeHandler(service services.IntakeService, logger utils.Logger) *IntakeHandler {
	return &IntakeHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// SuggestAddresses returns ranked address predictions for partial input.
func (h *IntakeHandler) SuggestAddresses(c *gin.Context) {
	input := c.Query("input")
	if input == "" {
		h.RespondWithError(c, http.StatusBadRequest, "input query parameter is required", nil)
		return
	}

	suggestions, err := h.service.SuggestAddresses(c.Request.Context(), input)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": suggestions})
}

type resolveAddressRequest struct {
	Address string `json:"address" binding:"required"`
}

// ResolveAddress geocodes a selected suggestion and returns the decomposed
// street number, street name, suburb, state and postcode.
func (h *IntakeHandler) ResolveAddress(c *gin.Context) {
	var req resolveAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var form models.IntakeForm
	if err := h.service.ResolveAddress(c.Request.Context(), &form, req.Address); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address":      form.Address,
		"streetNumber": form.StreetNumber,
		"streetName":   form.StreetName,
		"suburb":       form.Suburb,
		"state":        form.State,
		"postcode":     form.Postcode,
	})
}

// Register validates the intake form and performs guest registration.
func (h *IntakeHandler) Register(c *gin.Context) {
	var form models.IntakeForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.service.Register(c.Request.Context(), c.Param("token"), &form); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Account created"})
}
