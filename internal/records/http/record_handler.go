// Package http provides HTTP handlers for envelope encryption and the record store.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
	"github.com/allisson/sealedrecords/internal/httputil"
	recordsDomain "github.com/allisson/sealedrecords/internal/records/domain"
	"github.com/allisson/sealedrecords/internal/records/http/dto"
	recordsUseCase "github.com/allisson/sealedrecords/internal/records/usecase"
	customValidation "github.com/allisson/sealedrecords/internal/validation"
)

// RecordHandler handles HTTP requests for sealing, opening and storing records.
type RecordHandler struct {
	recordUseCase recordsUseCase.RecordUseCase
	logger        *slog.Logger
}

// NewRecordHandler creates a new record handler with required dependencies.
func NewRecordHandler(recordUseCase recordsUseCase.RecordUseCase, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{
		recordUseCase: recordUseCase,
		logger:        logger,
	}
}

// RegisterRoutes mounts the handler on a router group (typically /v1).
func (h *RecordHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/encrypt", h.EncryptHandler)
	group.POST("/decrypt", h.DecryptHandler)

	records := group.Group("/records")
	{
		records.POST("", h.CreateHandler)
		records.GET("", h.ListHandler)
		records.GET("/:id", h.GetHandler)
		records.GET("/:id/sealed", h.GetSealedHandler)
		records.DELETE("/:id", h.DeleteHandler)
	}
}

func (h *RecordHandler) bindSealRequest(c *gin.Context) (*dto.SealRequest, bool) {
	var req dto.SealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return nil, false
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return nil, false
	}
	return &req, true
}

// EncryptHandler seals a payload without storing it.
// POST /v1/encrypt - Returns 200 OK with the SecureRecord.
func (h *RecordHandler) EncryptHandler(c *gin.Context) {
	req, ok := h.bindSealRequest(c)
	if !ok {
		return
	}

	record, err := h.recordUseCase.Encrypt(c.Request.Context(), req.ID, req.PartyID, req.Payload)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, record)
}

// DecryptHandler opens a SecureRecord supplied in the body.
// POST /v1/decrypt - Returns 200 OK with {id, partyId, payload}.
func (h *RecordHandler) DecryptHandler(c *gin.Context) {
	var record cryptoDomain.SecureRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	decrypted, err := h.recordUseCase.Decrypt(c.Request.Context(), &record)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, decrypted)
}

// CreateHandler seals and persists a payload.
// POST /v1/records - Returns 201 Created with the stored SecureRecord.
func (h *RecordHandler) CreateHandler(c *gin.Context) {
	req, ok := h.bindSealRequest(c)
	if !ok {
		return
	}

	record, err := h.recordUseCase.Create(c.Request.Context(), req.ID, req.PartyID, req.Payload)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// ListHandler lists sealed records, optionally for a single party.
// GET /v1/records?partyId=&offset=&limit= - Returns 200 OK with {data: [...]}.
func (h *RecordHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	partyID := c.Query("partyId")
	if err := customValidation.Identifier.Validate(partyID); err != nil {
		httputil.HandleValidationErrorGin(
			c,
			customValidation.WrapValidationError(errors.New("partyId: "+err.Error())),
			h.logger,
		)
		return
	}

	records, err := h.recordUseCase.List(c.Request.Context(), recordsDomain.ListFilter{
		PartyID: partyID,
		Offset:  offset,
		Limit:   limit,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordsToListResponse(records))
}

// GetHandler loads and decrypts a stored record.
// GET /v1/records/:id - Returns 200 OK with {id, partyId, payload}.
func (h *RecordHandler) GetHandler(c *gin.Context) {
	decrypted, err := h.recordUseCase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, decrypted)
}

// GetSealedHandler returns a stored record without decrypting it.
// GET /v1/records/:id/sealed - Returns 200 OK with the SecureRecord.
func (h *RecordHandler) GetSealedHandler(c *gin.Context) {
	record, err := h.recordUseCase.GetSealed(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, record)
}

// DeleteHandler removes a stored record.
// DELETE /v1/records/:id - Returns 204 No Content.
func (h *RecordHandler) DeleteHandler(c *gin.Context) {
	if err := h.recordUseCase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
