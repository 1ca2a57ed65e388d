package core

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SubmissionHandler serves /submissions.
type SubmissionHandler struct {
	repo  SubmissionRepository
	queue JobQueue
}

func NewSubmissionHandler(repo SubmissionRepository, queue JobQueue) *SubmissionHandler {
	return &SubmissionHandler{repo: repo, queue: queue}
}

type submissionRequest struct {
	JenisSurat string `json:"jenisSurat" binding:"required,oneof=domisili tidak-mampu usaha pengantar kelahiran"`
	Keperluan  string `json:"keperluan" binding:"required,min=5,max=500"`
}

// Create stores a pending submission and enqueues it. The row is removed again when
// the enqueue fails so no submission is left without a job.
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req submissionRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, opResource, err)
		return
	}
	userID, _ := currentSubject(c)
	ctx := c.Request.Context()

	sub, err := h.repo.Create(ctx, userID, req.JenisSurat, req.Keperluan)
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	if err := h.queue.Enqueue(ctx, strconv.FormatInt(sub.ID, 10)); err != nil {
		if delErr := h.repo.Delete(ctx, sub.ID); delErr != nil {
			log.Printf("[submissions] cleanup of %d after enqueue failure: %v", sub.ID, delErr)
		}
		handleError(c, opResource, fmt.Errorf("enqueue submission %d: %w", sub.ID, err))
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// List returns the caller's submissions, or everyone's for admins.
func (h *SubmissionHandler) List(c *gin.Context) {
	page, perPage, ok := bindPagination(c)
	if !ok {
		return
	}
	var owner *int64
	if currentRole(c) != RoleAdmin {
		id, _ := currentSubject(c)
		owner = &id
	}
	items, total, err := h.repo.List(c.Request.Context(), owner, page, perPage)
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusOK, paginated(items, page, perPage, total))
}

// Get answers 404 for submissions owned by someone else.
func (h *SubmissionHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	sub, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	if userID, _ := currentSubject(c); currentRole(c) != RoleAdmin && sub.UserID != userID {
		handleError(c, opResource, notFoundError("submission"))
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *SubmissionHandler) LetterTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": LetterTypes()})
}
