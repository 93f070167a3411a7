// Package handler holds the gin handlers of the /api routes. Handlers bind
// and validate the request, call one application service method and write
// the response envelope.
package handler

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/doorsets/backend/internal/application/common"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/export"
	"github.com/doorsets/backend/internal/infrastructure/logger"
	"github.com/doorsets/backend/internal/infrastructure/printing"
	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/doorsets/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errAnswered is returned by handler closures that already wrote a response
var errAnswered = errors.New("response already written")

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 envelope
func (h *BaseHandler) Success(c *gin.Context, data any, messages ...string) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data, messages...))
}

// Created sends a 201 envelope
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends a failure envelope; the status follows from the code
func (h *BaseHandler) Error(c *gin.Context, code string, messages ...string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, c.GetString(logger.RequestIDContextKey), messages...))
}

// BadRequest sends a 400 envelope
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// HandleError converts service errors to envelopes. Domain and render
// errors keep their code; anything else is logged and reported as internal.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil || errors.Is(err, errAnswered) {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, domainErr.Code, domainErr.Message)
		return
	}
	var renderErr *printing.RenderError
	if errors.As(err, &renderErr) {
		if renderErr.Code != printing.ErrCodeInvalidInput {
			logger.L(c.Request.Context()).Error("Document rendering failed", zap.Error(err))
		}
		h.Error(c, renderErr.Code, renderErr.Message)
		return
	}

	_ = c.Error(err)
	logger.L(c.Request.Context()).Error("Unhandled error", zap.Error(err))
	h.Error(c, dto.ErrCodeInternal)
}

// bindJSON binds and validates the body into req, answering the request on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.bindError(c, err, "Invalid request body")
		return false
	}
	return true
}

// bindQuery binds and validates the query string into req
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.bindError(c, err, "Invalid query parameters")
		return false
	}
	return true
}

func (h *BaseHandler) bindError(c *gin.Context, err error, fallback string) {
	if msgs := middleware.ValidationMessages(err); len(msgs) > 0 {
		h.Error(c, dto.ErrCodeValidation, msgs...)
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.Error(c, dto.ErrCodePayloadTooLarge)
		return
	}
	h.BadRequest(c, fallback)
}

// parseID reads a positive numeric path parameter
func (h *BaseHandler) parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		h.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// exportFormat reads ?format= for spreadsheet exports
func (h *BaseHandler) exportFormat(c *gin.Context) (export.Format, bool) {
	f, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return "", false
	}
	return f, true
}

// printOptions reads ?format= and ?store= for the Print actions
func (h *BaseHandler) printOptions(c *gin.Context) (printing.PrintOptions, bool) {
	var q common.PrintQuery
	if !h.bindQuery(c, &q) {
		return printing.PrintOptions{}, false
	}
	opts, err := q.Options()
	if err != nil {
		h.HandleError(c, err)
		return printing.PrintOptions{}, false
	}
	return opts, true
}

// sendFile streams content as a download
func (h *BaseHandler) sendFile(c *gin.Context, disposition, name, contentType string, content []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": name}))
	c.Data(http.StatusOK, contentType, content)
}

// sendExport streams a rendered spreadsheet
func (h *BaseHandler) sendExport(c *gin.Context, file *common.ExportFile) {
	h.sendFile(c, "attachment", file.FileName, file.ContentType, file.Content)
}

// sendPrint answers a Print action: a link for stored PDFs, the document otherwise
func (h *BaseHandler) sendPrint(c *gin.Context, out *printing.PrintOutput) {
	if out.Key != "" {
		link := dto.ExportLink{Key: out.Key, URL: out.URL}
		if !out.ExpiresAt.IsZero() {
			link.ExpiresAt = out.ExpiresAt.UTC().Format(time.RFC3339)
		}
		h.Success(c, link)
		return
	}
	h.sendFile(c, "inline", out.FileName, out.ContentType, out.Content)
}
