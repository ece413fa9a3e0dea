package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/internal/service"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
	"github.com/noah-isme/dance-studio-api/pkg/response"
)

// ContactHandler exposes the contact form endpoint.
type ContactHandler struct {
	service *service.ContactService
}

// NewContactHandler constructs a contact handler.
func NewContactHandler(svc *service.ContactService) *ContactHandler {
	return &ContactHandler{service: svc}
}

// Submit godoc
// @Summary Submit contact form
// @Description Accepts a contact message and acknowledges it
// @Tags Contact
// @Accept json
// @Produce json
// @Param payload body models.ContactRequest true "Contact payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid contact payload"))
		return
	}

	if err := h.service.Submit(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"message": "thank you for reaching out, we will get back to you"}, nil)
}
