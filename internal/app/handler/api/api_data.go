package api

import (
	"context"
	"errors"
	"net/http"

	"dbmis/internal/app/ds"
	"dbmis/internal/app/query"
	"dbmis/internal/app/repository"

	"github.com/gin-gonic/gin"
)

const maxAttachmentSize = 10 << 20 // 10 MiB

// DataRepository is what DataHandler needs from the storage layer.
type DataRepository interface {
	ListCategories(ctx context.Context) ([]ds.DataCategory, error)
	GetCategory(ctx context.Context, id int) (*ds.DataCategory, error)
	CreateCategory(ctx context.Context, category *ds.DataCategory) error
	UpdateCategory(ctx context.Context, id int, upd *ds.DataCategory) (*ds.DataCategory, error)
	DeleteCategory(ctx context.Context, id int) error

	ListItems(ctx context.Context, f repository.ItemFilter, page query.Page, sort, order string) ([]ds.DataItem, int64, error)
	GetItem(ctx context.Context, id int) (*ds.DataItem, error)
	CreateItem(ctx context.Context, item *ds.DataItem) (*ds.DataItem, error)
	UpdateItem(ctx context.Context, id int, upd *ds.DataItem) (*ds.DataItem, error)
	DeleteItem(ctx context.Context, id int) error

	AttachmentsEnabled() bool
	SetItemAttachment(ctx context.Context, id int, up repository.Upload) (*ds.DataItem, error)
	AttachmentURL(ctx context.Context, id int) (string, error)
}

type DataHandler struct {
	Repository DataRepository
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type itemRequest struct {
	Name       string `json:"name" binding:"required"`
	CategoryID int    `json:"category_id" binding:"required"`
	Content    string `json:"content"`
	DataType   string `json:"data_type"`
	Status     string `json:"status"`
}

// Категории данных

// @Summary List data categories
// @Tags data
// @Produce json
// @Success 200 {array} ds.DataCategory
// @Router /api/data/categories [get]
func (h *DataHandler) GetCategoriesAPI(c *gin.Context) {
	categories, err := h.Repository.ListCategories(c.Request.Context())
	if err != nil {
		respondServerError(c, err)
		return
	}
	respondData(c, http.StatusOK, categories)
}

// @Summary Get data category
// @Tags data
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} ds.DataCategory
// @Failure 400 {object} object "status, message"
// @Failure 404 {object} object "status, message"
// @Router /api/data/categories/{id} [get]
func (h *DataHandler) GetCategoryAPI(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid category id")
		return
	}
	category, err := h.Repository.GetCategory(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "data category not found")
		return
	}
	if err != nil {
		respondServerError(c, err)
		return
	}
	respondData(c, http.StatusOK, category)
}

// @Summary Create data category
// @Tags data
// @Accept json
// @Produce json
// @Param category body categoryRequest true "Category"
// @Success 201 {object} ds.DataCategory
// @Failure 400 {object} object "status, message"
// @Router /api/data/categories [post]
func (h *DataHandler) CreateCategoryAPI(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "missing required field: name")
		return
	}
	if req.Status != "" && !ds.ValidStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "invalid status")
		return
	}

	userID := currentUserID(c)
	category := &ds.DataCategory{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		CreatedBy:   userID,
		UpdatedBy:   userID,
	}
	if err := h.Repository.CreateCategory(c.Request.Context(), category); err != nil {
		respondServerError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "data category created", category)
}

// @Summary Update data category
// @Tags data
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param category body categoryRequest true "Category"
// @Success 200 {object} ds.DataCategory
// @Failure 400 {object} object "status, message"
// @Failure 404 {object} object "status, message"
// @Router /api/data/categories/{id} [put]
func (h *DataHandler) UpdateCategoryAPI(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid category id")
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "missing required field: name")
		return
	}
	if req.Status != "" && !ds.ValidStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "invalid status")
		return
	}

	category, err := h.Repository.UpdateCategory(c.Request.Context(), id, &ds.DataCategory{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		UpdatedBy:   currentUserID(c),
	})
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "data category not found")
		return
	}
	if err != nil {
		respondServerError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "data category updated", category)
}

// @Summary Delete data category
// @Description Fails with 400 while data items still reference the category
// @Tags data
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} object "status, message"
// @Failure 400 {object} object "status, message"
// @Failure 404 {object} object "status, message"
// @Router /api/data/categories/{id} [delete]
func (h *DataHandler) DeleteCategoryAPI(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid category id")
		return
	}
	err := h.Repository.DeleteCategory(c.Request.Context(), id)
	switch {
	case errors.Is(err, repository.ErrCategoryInUse):
		respondError(c, http.StatusBadRequest, "category still has data items")
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, "data category not found")
	case err != nil:
		respondServerError(c, err)
	default:
		respondMessage(c, http.StatusOK, "data category deleted", nil)
	}
}

// Элементы данных

// @Summary List data items
// @Description Paginated list with search, category/status filters and whitelisted sorting
// @Tags data
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size, max 100" default(10)
// @Param sort query string false "id, name, category_id, data_type, status, created_at, updated_at"
// @Param order query string false "asc or desc"
// @Param search query string false "Substring of name or content"
// @Param category_id query int false "Category ID"
// @Param status query string false "Status"
// @Success 200 {object} object "status, data, pagination"
// @Router /api/data/items [get]
func (h *DataHandler) GetItemsAPI(c *gin.Context) {
	page := query.ParsePage(c.Query("page"), c.Query("limit"))
	filter := repository.ItemFilter{
		Search:     c.Query("search"),
		CategoryID: queryInt(c, "category_id"),
		Status:     c.Query("status"),
	}

	items, total, err := h.Repository.ListItems(c.Request.Context(), filter, page, c.Query("sort"), c.Query("order"))
	if err != nil {
		respondServerError(c, err)
		return
	}
	respondPage(c, items, page, total)
}

// @Summary Get data item
// @Tags data
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} ds.DataItem
// @Failure 400 {object} object "status, message"
// @Failure 404 {object} object "status, message"
// @Router /api/data/items/{id} [get]
func (h *DataHandler) GetItemAPI(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid data item id")
		return
	}
	item, err := h.Repository.GetItem(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "data item not found")
		return
	}
	if err != nil {
		respondServerError(c, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

func (h *DataHandler) bindItem(c *gin.Context) (*itemRequest, bool) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "missing required fields: name, category_id")
		return nil, false
	}
	if req.Status != "" && !ds.ValidStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "invalid status")
		return nil, false
	}
	return &req, true
}

// @Summary Create data item
// @Tags data
// @Accept json
// @Produce json
// @Param item body itemRequest true "Item"
// @Success 201 {object} ds.DataItem
// @Failure 400 {object} object "status, message"
// @Router /api/data/items [post]
func (h *DataHandler) CreateItemAPI(c *gin.Context) {
	req, ok := h.bindItem(c)
	if !ok {
		return
	}

	userID := currentUserID(c)
	item, err := h.Repository.CreateItem(c.Request.Context(), &ds.DataItem{
		Name:       req.Name,
		CategoryID: req.CategoryID,
		Content:    req.Content,
		DataType:   req.DataType,
		Status:     req.Status,
		CreatedBy:  userID,
		UpdatedBy:  userID,
	})
	if errors.Is(err, repository.ErrCategoryNotFound) {
		respondError(c, http.StatusBadRequest, "data category does not exist")
		return
	}
	if err != nil {
		respondServerError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "data item created", item)
}

// @Summary Update data item
// @Tags data
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param item body itemRequest true "Item"
// @Success 200 {object} ds.DataItem
// @Failure 400 {object} object "status, message"
// @Failure 404 {object} object "status, message"
// @Router /api/data/items/{id} [put]
func (h *DataHandler) UpdateItemAPI(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid data item id")
		return
	}
	req, ok := h.bindItem(c)
	if !ok {
		return
	}

	item, err := h.Repository.UpdateItem(c.Request.Context(), id, &ds.DataItem{
		Name:       req.Name,
		CategoryID: req.CategoryID,
		Content:    req.Content,
		DataType:   req.DataType,
		Status:     req.Status,
		UpdatedBy:  currentUserID(c),
	})
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound):
		respondError(c, http.StatusBadRequest, "data category does not exist")
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, "data item not found")
	case err != nil:
		respondServerError(c, err)
	default:
		respondMessage(c, http.StatusOK, "data item updated", item)
	}
}

// @Summary Delete data item
// @Tags data
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} object "status, message"
// @Failure 404 {object} object "status, message"
// @Router /api/data/items/{id} [delete]
func (h *DataHandler) DeleteItemAPI(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid data item id")
		return
	}
	err := h.Repository.DeleteItem(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "data item not found")
		return
	}
	if err != nil {
		respondServerError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "data item deleted", nil)
}

// UploadAttachmentAPI - POST /api/data/items/:id/attachment - загрузка вложения (поле "file")
//
// @Summary Upload attachment
// @Tags data
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Item ID"
// @Param file formData file true "Attachment, up to 10 MiB"
// @Success 200 {object} ds.DataItem
// @Failure 400 {object} object "status, message"
// @Failure 404 {object} object "status, message"
// @Failure 413 {object} object "status, message"
// @Failure 503 {object} object "status, message"
// @Router /api/data/items/{id}/attachment [post]
func (h *DataHandler) UploadAttachmentAPI(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid data item id")
		return
	}
	if !h.Repository.AttachmentsEnabled() {
		respondError(c, http.StatusServiceUnavailable, "attachment storage is not configured")
		return
	}

	// небольшой запас под служебные части multipart
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAttachmentSize+1<<20)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "attachment exceeds 10 MiB")
			return
		}
		respondError(c, http.StatusBadRequest, "no file provided")
		return
	}
	if header.Size > maxAttachmentSize {
		respondError(c, http.StatusRequestEntityTooLarge, "attachment exceeds 10 MiB")
		return
	}

	file, err := header.Open()
	if err != nil {
		respondServerError(c, err)
		return
	}
	defer file.Close()

	item, err := h.Repository.SetItemAttachment(c.Request.Context(), id, repository.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	switch {
	case errors.Is(err, repository.ErrStorageDisabled):
		respondError(c, http.StatusServiceUnavailable, "attachment storage is not configured")
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, "data item not found")
	case err != nil:
		respondServerError(c, err)
	default:
		respondMessage(c, http.StatusOK, "attachment uploaded", item)
	}
}

// @Summary Attachment download link
// @Description Presigned URL valid for 15 minutes
// @Tags data
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} object "status, data: {url}"
// @Failure 404 {object} object "status, message"
// @Failure 503 {object} object "status, message"
// @Router /api/data/items/{id}/attachment [get]
func (h *DataHandler) GetAttachmentAPI(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid data item id")
		return
	}
	u, err := h.Repository.AttachmentURL(c.Request.Context(), id)
	switch {
	case errors.Is(err, repository.ErrStorageDisabled):
		respondError(c, http.StatusServiceUnavailable, "attachment storage is not configured")
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, "data item not found")
	case errors.Is(err, repository.ErrNoAttachment):
		respondError(c, http.StatusNotFound, "data item has no attachment")
	case err != nil:
		respondServerError(c, err)
	default:
		respondData(c, http.StatusOK, gin.H{"url": u})
	}
}
