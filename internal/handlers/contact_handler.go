package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/primedclinic/intake-service/internal/models"
	"github.com/primedclinic/intake-service/internal/services"
	"github.com/primedclinic/intake-service/internal/utils"
)

type ContactHandler struct {
	BaseHandler
	service services.ContactService
}

func NewContactHandler(service services.ContactService, logger utils.Logger) *ContactHandler {
	return &ContactHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

type contactRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	AssistanceType string `json:"assistance_type"`
	Message        string `json:"message"`
}

// Submit captures a contact enquiry as a lead.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	lead := models.Lead{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		AssistanceType: req.AssistanceType,
		Message:        req.Message,
	}
	if err := h.service.SubmitLead(c.Request.Context(), &lead); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Contact request submitted successfully"})
}
