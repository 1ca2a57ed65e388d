package core

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CategoryHandler serves /kategori and /berita-kategori.
type CategoryHandler struct {
	repo CategoryRepository
}

func NewCategoryHandler(repo CategoryRepository) *CategoryHandler {
	return &CategoryHandler{repo: repo}
}

type categoryRequest struct {
	Nama string `json:"nama" binding:"required,notblank,max=100"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context())
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, opResource, err)
		return
	}
	cat, err := h.repo.Create(c.Request.Context(), req.Nama)
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		handleError(c, opResource, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// kategoriFilter reads the optional ?kategoriId= query parameter.
func kategoriFilter(c *gin.Context) (*int64, bool) {
	raw := strings.TrimSpace(c.Query("kategoriId"))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondValidation(c, []FieldError{{Field: "kategoriId", Rule: "gt", Message: "kategoriId must be a positive integer"}})
		return nil, false
	}
	return &id, true
}

// AnnouncementHandler serves /pengumuman.
type AnnouncementHandler struct {
	repo AnnouncementRepository
}

func NewAnnouncementHandler(repo AnnouncementRepository) *AnnouncementHandler {
	return &AnnouncementHandler{repo: repo}
}

type announcementRequest struct {
	Judul      string `json:"judul" binding:"required,notblank,max=200"`
	Isi        string `json:"isi" binding:"required,notblank"`
	KategoriID *int64 `json:"kategoriId" binding:"omitempty,gt=0"`
}

type announcementPatch struct {
	Judul      *string `json:"judul" binding:"omitempty,min=1,max=200"`
	Isi        *string `json:"isi" binding:"omitempty,min=1"`
	KategoriID *int64  `json:"kategoriId" binding:"omitempty,gt=0"`
}

func (h *AnnouncementHandler) List(c *gin.Context) {
	kategoriID, ok := kategoriFilter(c)
	if !ok {
		return
	}
	page, perPage, ok := bindPagination(c)
	if !ok {
		return
	}
	items, total, err := h.repo.List(c.Request.Context(), kategoriID, page, perPage)
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusOK, paginated(items, page, perPage, total))
}

func (h *AnnouncementHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	a, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req announcementRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, opResource, err)
		return
	}
	a, err := h.repo.Create(c.Request.Context(), AnnouncementInput(req))
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req announcementPatch
	if err := bindJSON(c, &req); err != nil {
		handleError(c, opResource, err)
		return
	}
	ctx := c.Request.Context()
	current, err := h.repo.Get(ctx, id)
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	in := AnnouncementInput{Judul: current.Judul, Isi: current.Isi, KategoriID: current.KategoriID}
	if req.Judul != nil {
		in.Judul = *req.Judul
	}
	if req.Isi != nil {
		in.Isi = *req.Isi
	}
	if req.KategoriID != nil {
		in.KategoriID = req.KategoriID
	}
	a, err := h.repo.Update(ctx, id, in)
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		handleError(c, opResource, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// NewsHandler serves /berita.
type NewsHandler struct {
	repo NewsRepository
}

func NewNewsHandler(repo NewsRepository) *NewsHandler {
	return &NewsHandler{repo: repo}
}

type newsRequest struct {
	Judul      string `json:"judul" binding:"required,notblank,max=200"`
	Isi        string `json:"isi" binding:"required,notblank"`
	GambarURL  string `json:"gambarUrl" binding:"omitempty,url"`
	KategoriID *int64 `json:"kategoriId" binding:"omitempty,gt=0"`
}

type newsPatch struct {
	Judul      *string `json:"judul" binding:"omitempty,min=1,max=200"`
	Isi        *string `json:"isi" binding:"omitempty,min=1"`
	GambarURL  *string `json:"gambarUrl" binding:"omitempty,url"`
	KategoriID *int64  `json:"kategoriId" binding:"omitempty,gt=0"`
}

func (h *NewsHandler) List(c *gin.Context) {
	kategoriID, ok := kategoriFilter(c)
	if !ok {
		return
	}
	page, perPage, ok := bindPagination(c)
	if !ok {
		return
	}
	items, total, err := h.repo.List(c.Request.Context(), kategoriID, page, perPage)
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusOK, paginated(items, page, perPage, total))
}

func (h *NewsHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	n, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NewsHandler) Create(c *gin.Context) {
	var req newsRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, opResource, err)
		return
	}
	penulisID, _ := currentSubject(c)
	n, err := h.repo.Create(c.Request.Context(), penulisID, NewsInput(req))
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *NewsHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req newsPatch
	if err := bindJSON(c, &req); err != nil {
		handleError(c, opResource, err)
		return
	}
	ctx := c.Request.Context()
	current, err := h.repo.Get(ctx, id)
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	in := NewsInput{Judul: current.Judul, Isi: current.Isi, GambarURL: current.GambarURL, KategoriID: current.KategoriID}
	if req.Judul != nil {
		in.Judul = *req.Judul
	}
	if req.Isi != nil {
		in.Isi = *req.Isi
	}
	if req.GambarURL != nil {
		in.GambarURL = *req.GambarURL
	}
	if req.KategoriID != nil {
		in.KategoriID = req.KategoriID
	}
	n, err := h.repo.Update(ctx, id, in)
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NewsHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		handleError(c, opResource, err)
		return
	}
	c.Status(http.StatusNoContent)
}
