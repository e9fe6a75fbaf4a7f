package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportController serves reporting for leaders and admins.
type ReportController struct {
	ExportService      *service.ExportService
	CertificateService *service.CertificateService
}

func NewReportController(exportService *service.ExportService, certificateService *service.CertificateService) *ReportController {
	return &ReportController{ExportService: exportService, CertificateService: certificateService}
}

func courseFilter(ctx *gin.Context) (uint, bool) {
	raw := ctx.Query("courseId")
	if raw == "" {
		return 0, true
	}
	id, ok := util.ParseID(raw)
	if !ok {
		util.BadRequest(ctx, "invalid courseId")
	}
	return id, ok
}

func sendWorkbook(ctx *gin.Context, name string, data []byte) {
	filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().Format("20060102_150405"))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	ctx.Data(http.StatusOK, xlsxContentType, data)
}

// ExportQuizAttempts godoc
// @Summary Export a quiz's attempts
// @Tags report
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {file} file
// @Router /api/reports/quizzes/{id}/attempts/export [get]
func (c *ReportController) ExportQuizAttempts(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	data, err := c.ExportService.ExportQuizAttempts(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	sendWorkbook(ctx, "quiz_"+strconv.FormatUint(uint64(id), 10)+"_attempts", data)
}

// ExportCertificates godoc
// @Summary Export issued certificates
// @Tags report
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Param   courseId query int false "Only this course"
// @Success 200 {file} file
// @Router /api/reports/certificates/export [get]
func (c *ReportController) ExportCertificates(ctx *gin.Context) {
	courseID, ok := courseFilter(ctx)
	if !ok {
		return
	}
	data, err := c.ExportService.ExportCertificates(ctx.Request.Context(), courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	sendWorkbook(ctx, "certificates", data)
}

// Certificates godoc
// @Summary List issued certificates
// @Tags report
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId query int false "Only this course"
// @Success 200 {object} util.Response{data=[]model.Certificate}
// @Router /api/reports/certificates [get]
func (c *ReportController) Certificates(ctx *gin.Context) {
	courseID, ok := courseFilter(ctx)
	if !ok {
		return
	}
	certs, err := c.CertificateService.ListAll(ctx.Request.Context(), courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, certs)
}
