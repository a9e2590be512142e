package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/primedclinic/intake-service/internal/authflag"
	"github.com/primedclinic/intake-service/internal/utils"
)

// AuthHandler backs the patient-area gate. It is intentionally a stub:
// the flag carries no identity and grants nothing beyond hiding a page.
type AuthHandler struct {
	BaseHandler
	flags *authflag.Store
}

func NewAuthHandler(flags *authflag.Store, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		flags:       flags,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	h.flags.Login(time.Now())
	c.JSON(http.StatusOK, h.flags.Snapshot())
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.flags.Logout()
	c.JSON(http.StatusOK, h.flags.Snapshot())
}

func (h *AuthHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.flags.Snapshot())
}
