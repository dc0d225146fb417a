// Package response writes the JSON envelope used by every endpoint.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GearShare/service-rental/internal/platform/apperror"
)

// Envelope is the top-level body of every JSON response.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Pagination describes one page of a list result.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Success writes 200 with data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes 201 with data.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// NoContent writes 204 with no body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated writes 200 with a page of items.
func Paginated(c *gin.Context, items any, total int64, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    items,
		Pagination: &Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// BadRequest writes 400 with a validation error.
func BadRequest(c *gin.Context, message string) {
	writeError(c, http.StatusBadRequest, apperror.CodeValidation, message)
}

// Unauthorized writes 401.
func Unauthorized(c *gin.Context, message string) {
	writeError(c, http.StatusUnauthorized, apperror.CodeUnauthorized, message)
}

// Forbidden writes 403.
func Forbidden(c *gin.Context, message string) {
	writeError(c, http.StatusForbidden, apperror.CodeForbidden, message)
}

// Error maps err to its HTTP status. Unclassified errors become a generic 500
// and the cause is attached to the context for the request logger.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	if appErr, ok := apperror.As(err); ok {
		writeError(c, appErr.Status, appErr.Code, appErr.Message)
		return
	}
	writeError(c, http.StatusInternalServerError, apperror.CodeInternal, "internal server error")
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
	})
}
