// Contact message HTTP handlers.
//
// This file exposes REST endpoints for contact form submissions:
//   - POST   /contact               (public submission)
//   - GET    /contact               (list, admin)
//   - GET    /contact/{id}          (fetch one, admin)
//   - PUT    /contact/{id}/respond  (mark responded, admin)
//   - DELETE /contact/{id}          (delete, admin)
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autoexport/go-export-backend/internal/domain"
	"github.com/autoexport/go-export-backend/internal/http/middleware"
	"github.com/autoexport/go-export-backend/internal/services"
)

// ContactService defines contact message operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ContactService interface {
	// Submit validates and persists a public submission. A retry carrying
	// the same idempotency key returns the original record (replay=true).
	Submit(ctx context.Context, in services.ContactInput, idemScope, idemKey string) (msg *domain.ContactMessage, replay bool, err error)
	// List returns all messages, newest first.
	List(ctx context.Context) ([]domain.ContactMessage, error)
	// Get returns one message by id.
	Get(ctx context.Context, id string) (*domain.ContactMessage, error)
	// MarkResponded flips the responded flag.
	MarkResponded(ctx context.Context, id, user string) error
	// Delete removes a message.
	Delete(ctx context.Context, id, user string) error
}

func contactErr(c *gin.Context, err error) {
	if ve, okv := services.AsValidation(err); okv {
		failValidation(c, ve)
		return
	}
	if errors.Is(err, services.ErrMessageNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "Message not found")
		return
	}
	fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}

// SubmitContact godoc
// @ID          submitContact
// @Summary     Submit a contact message
// @Description Public endpoint. Persists the submission with responded=false. Send an Idempotency-Key header to make client retries safe.
// @Tags        Contact
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string                  false  "Dedupe key for retries"
// @Param       body             body    services.ContactInput   true   "Submission payload"
//
// @Success     200  {object}  domain.ContactMessage  "Replayed earlier submission"
// @Success     201  {object}  domain.ContactMessage
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failure"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /contact [post]
func (h *Handlers) SubmitContact(c *gin.Context) {
	var in services.ContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	var scope, key string
	if k, okk := middleware.GetIdempotencyKey(c); okk {
		scope, key = middleware.ClientScope(c), k
	}

	msg, replay, err := h.contactSvc.Submit(c.Request.Context(), in, scope, key)
	if err != nil {
		contactErr(c, err)
		return
	}
	if replay {
		ok(c, http.StatusOK, msg)
		return
	}
	ok(c, http.StatusCreated, msg)
}

// ListContacts godoc
// @ID          listContacts
// @Summary     List contact messages
// @Tags        Contact
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   domain.ContactMessage
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /contact [get]
func (h *Handlers) ListContacts(c *gin.Context) {
	items, err := h.contactSvc.List(c.Request.Context())
	if err != nil {
		contactErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// GetContact godoc
// @ID          getContact
// @Summary     Fetch a contact message
// @Tags        Contact
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Message ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.ContactMessage
// @Failure     404  {object}  handlers.ErrorResponse  "Message not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /contact/{id} [get]
func (h *Handlers) GetContact(c *gin.Context) {
	msg, err := h.contactSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		contactErr(c, err)
		return
	}
	ok(c, http.StatusOK, msg)
}

// RespondContact godoc
// @ID          respondContact
// @Summary     Mark a contact message responded
// @Tags        Contact
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Message ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Message not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /contact/{id}/respond [put]
func (h *Handlers) RespondContact(c *gin.Context) {
	if err := h.contactSvc.MarkResponded(c.Request.Context(), c.Param("id"), adminUser(c)); err != nil {
		contactErr(c, err)
		return
	}
	noContent(c)
}

// DeleteContact godoc
// @ID          deleteContact
// @Summary     Delete a contact message
// @Tags        Contact
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Message ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Message not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /contact/{id} [delete]
func (h *Handlers) DeleteContact(c *gin.Context) {
	if err := h.contactSvc.Delete(c.Request.Context(), c.Param("id"), adminUser(c)); err != nil {
		contactErr(c, err)
		return
	}
	noContent(c)
}
