package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	CertificateService *service.CertificateService
}

func NewCertificateController(certificateService *service.CertificateService) *CertificateController {
	return &CertificateController{CertificateService: certificateService}
}

type CheckAndIssueRequest struct {
	CourseID uint `json:"courseId" binding:"required"`
}

// CheckAndIssue godoc
// @Summary Issue the course certificate
// @Description Issues a certificate once every final exam is passed and every lesson is completed. Returns the existing certificate when one was already issued.
// @Tags certificate
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CheckAndIssueRequest true "Course"
// @Success 200 {object} util.Response{data=service.IssueResult}
// @Failure 400 {object} util.Response "Requirements not met"
// @Failure 404 {object} util.Response "Course not found"
// @Router /api/certificates/check-and-issue [post]
func (c *CertificateController) CheckAndIssue(ctx *gin.Context) {
	var req CheckAndIssueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.CertificateService.CheckAndIssue(ctx.Request.Context(), claims.UserID, req.CourseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Mine godoc
// @Summary Caller's certificates
// @Tags certificate
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Certificate}
// @Router /api/certificates [get]
func (c *CertificateController) Mine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	certs, err := c.CertificateService.ListForUser(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, certs)
}

// Verify godoc
// @Summary Verify a certificate number
// @Description Public. Unknown numbers return valid=false.
// @Tags certificate
// @Produce  json
// @Param   certificateNumber path string true "Certificate number"
// @Success 200 {object} util.Response{data=service.VerifyResult}
// @Router /api/certificates/verify/{certificateNumber} [get]
func (c *CertificateController) Verify(ctx *gin.Context) {
	result, err := c.CertificateService.Verify(ctx.Request.Context(), ctx.Param("certificateNumber"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
