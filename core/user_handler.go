package core

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the admin-only /users endpoints.
type UserHandler struct {
	users UserRepository
}

func NewUserHandler(users UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(c *gin.Context) {
	page, perPage, ok := bindPagination(c)
	if !ok {
		return
	}
	items, total, err := h.users.List(c.Request.Context(), page, perPage)
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusOK, paginated(items, page, perPage, total))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	rec, err := h.users.FindByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusOK, rec.Public())
}

// Delete removes a user. Admins cannot delete themselves.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if self, _ := currentSubject(c); self == id {
		respondError(c, http.StatusConflict, "CONFLICT", "cannot delete your own account")
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		handleError(c, opResource, err)
		return
	}
	c.Status(http.StatusNoContent)
}
