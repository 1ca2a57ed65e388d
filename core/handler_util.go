package core

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// operation names the endpoint family an error came from. The same ErrorKind can
// map to different statuses depending on it.
type operation int

const (
	opLogin operation = iota + 1
	opRegister
	opRegisterAdmin
	opCurrentUser
	opResource
)

const internalErrorMessage = "Internal Server Error"

// respondError sends the error envelope {"error": message, "code": code} and aborts.
func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}

func respondValidation(c *gin.Context, details []FieldError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid input",
		"code":    "VALIDATION_ERROR",
		"details": details,
	})
}

// statusFor maps an error kind to an HTTP status for op. ok is false when the
// error must go to the catch-all handler instead.
func statusFor(op operation, kind ErrorKind) (status int, code string, ok bool) {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest, "VALIDATION_ERROR", true
	case KindAuthentication:
		switch op {
		case opRegister, opRegisterAdmin:
			return http.StatusConflict, "EMAIL_IN_USE", true
		default:
			return http.StatusUnauthorized, "INVALID_CREDENTIALS", true
		}
	case KindNotFound:
		return http.StatusNotFound, "NOT_FOUND", true
	case KindConflict:
		return http.StatusConflict, "CONFLICT", true
	case KindInfrastructure:
		return 0, "", false
	default:
		return 0, "", false
	}
}

// handleError answers a classified error or hands it to ErrorHandler.
func handleError(c *gin.Context, op operation, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if status, code, ok := statusFor(op, appErr.Kind); ok {
			if appErr.Kind == KindValidation {
				respondValidation(c, appErr.Details)
				return
			}
			respondError(c, status, code, appErr.Message)
			return
		}
	}
	_ = c.Error(err)
	c.Abort()
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

func parsePagination(pageStr, perPageStr string) (int, int, error) {
	page := 1
	perPage := defaultPerPage
	if strings.TrimSpace(pageStr) != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p <= 0 {
			return 0, 0, errors.New("page must be a positive integer")
		}
		page = p
	}
	if strings.TrimSpace(perPageStr) != "" {
		p, err := strconv.Atoi(perPageStr)
		if err != nil || p <= 0 {
			return 0, 0, errors.New("per_page must be a positive integer")
		}
		if p > maxPerPage {
			p = maxPerPage
		}
		perPage = p
	}
	return page, perPage, nil
}

func calcTotalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// bindPagination parses ?page=&per_page= and answers 400 itself on failure.
func bindPagination(c *gin.Context) (int, int, bool) {
	page, perPage, err := parsePagination(c.Query("page"), c.Query("per_page"))
	if err != nil {
		respondValidation(c, []FieldError{{Field: "page", Rule: "pagination", Message: err.Error()}})
		return 0, 0, false
	}
	return page, perPage, true
}

func paginated(items any, page, perPage, total int) gin.H {
	return gin.H{
		"items":       items,
		"page":        page,
		"per_page":    perPage,
		"total_items": total,
		"total_pages": calcTotalPages(total, perPage),
	}
}

// idParam parses a positive int64 path parameter, answering 400 itself on failure.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondValidation(c, []FieldError{{Field: name, Rule: "gt", Message: name + " must be a positive integer"}})
		return 0, false
	}
	return id, true
}
