package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"portfolio/api/models"
	"portfolio/api/utils"
)

type ContactRepository interface {
	CreateContact(ctx context.Context, c *models.Contact) error
	ListContacts(ctx context.Context, skip, limit int, unreadOnly bool) ([]models.Contact, error)
	MarkRead(ctx context.Context, id string) (int64, error)
}

type ContactHandlers struct {
	contacts ContactRepository
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewContactHandlers(contacts ContactRepository, logger logrus.FieldLogger) *ContactHandlers {
	return &ContactHandlers{
		contacts: contacts,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores a contact form message. The captcha answer is not checked.
func (h *ContactHandlers) Submit(c *gin.Context) {
	var req models.ContactCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	contact := &models.Contact{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Message:   req.Message,
		Timestamp: h.now(),
		IPAddress: utils.OrUnknown(c.ClientIP()),
		UserAgent: utils.OrUnknown(c.Request.UserAgent()),
	}

	if err := h.contacts.CreateContact(c.Request.Context(), contact); err != nil {
		h.logger.WithError(err).WithField("email", req.Email).Error("Failed to store contact message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	h.logger.WithField("contact_id", contact.ID).Info("Contact message received")
	c.JSON(http.StatusOK, models.ContactResponse{
		Success: true,
		Message: "Thank you for your message! I'll get back to you soon.",
	})
}

func (h *ContactHandlers) List(c *gin.Context) {
	skip, limit := utils.ParsePagination(c.Query("skip"), c.Query("limit"))
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))

	contacts, err := h.contacts.ListContacts(c.Request.Context(), skip, limit, unreadOnly)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list contacts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch contacts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "contacts": contacts})
}

func (h *ContactHandlers) MarkRead(c *gin.Context) {
	id := c.Param("id")

	modified, err := h.contacts.MarkRead(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("contact_id", id).Error("Failed to mark contact as read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "modified": modified})
}
