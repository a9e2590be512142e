package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/primedclinic/intake-service/internal/export"
	"github.com/primedclinic/intake-service/internal/utils"
)

type ExportHandler struct {
	BaseHandler
	service *export.Service
}

func NewExportHandler(service *export.Service, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *ExportHandler) Leads(c *gin.Context) {
	f, err := h.service.Leads(c.Request.Context())
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	h.sendWorkbook(c, f, "leads.xlsx")
}

func (h *ExportHandler) Submissions(c *gin.Context) {
	f, err := h.service.Submissions(c.Request.Context())
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	h.sendWorkbook(c, f, "submissions.xlsx")
}

func (h *ExportHandler) sendWorkbook(c *gin.Context, f *excelize.File, filename string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.LogError(c, err, "Failed to stream workbook")
	}
}
