package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/primedclinic/intake-service/internal/services"
	"github.com/primedclinic/intake-service/internal/utils"
)

type QuestionnaireHandler struct {
	BaseHandler
	service services.QuestionnaireService
}

func NewQuestionnaireHandler(service services.QuestionnaireService, logger utils.Logger) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// StartSession creates or restores the flow for a token. Missing tokens
// are generated here; the caller writes the returned token back into the
// URL so it survives reloads.
func (h *QuestionnaireHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session, err := h.service.StartSession(c.Request.Context(), &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *QuestionnaireHandler) GetSession(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetQuestions serves the immutable question list.
func (h *QuestionnaireHandler) GetQuestions(c *gin.Context) {
	questions, err := h.service.Questions(c.Request.Context())
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GetScreen serves the current question (or composite screen) with
// progress and field errors.
func (h *QuestionnaireHandler) GetScreen(c *gin.Context) {
	screen, err := h.service.CurrentScreen(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, screen)
}

func (h *QuestionnaireHandler) Answer(c *gin.Context) {
	var req services.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session, err := h.service.Answer(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *QuestionnaireHandler) Next(c *gin.Context) {
	session, err := h.service.Next(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *QuestionnaireHandler) Previous(c *gin.Context) {
	session, err := h.service.Previous(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *QuestionnaireHandler) Save(c *gin.Context) {
	result, err := h.service.Save(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *QuestionnaireHandler) Submit(c *gin.Context) {
	result, err := h.service.Submit(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
