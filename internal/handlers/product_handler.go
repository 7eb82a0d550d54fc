package handlers

import (
	"errors"
	"net/http"

	"ss-uniforms/internal/inventory"
	"ss-uniforms/internal/models"
	"ss-uniforms/internal/storage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// storeError maps an inventory store error to a status. The store has already
// logged it and queued the notification.
func storeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		fail(c, http.StatusNotFound, message)
	case errors.Is(err, inventory.ErrInvalidSection),
		errors.Is(err, inventory.ErrEmptySale),
		errors.Is(err, inventory.ErrInvalidSaleLine):
		badRequest(c, message)
	case errors.Is(err, inventory.ErrUnauthenticated):
		fail(c, http.StatusUnauthorized, message)
	default:
		fail(c, http.StatusInternalServerError, message)
	}
}

// --- GET: /api/catalogues ---
// The full nested tree: catalogues, their four sections, items and sizes.
func (h *Handler) ListCatalogues(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{
		"catalogues": h.Inventory.Catalogues(),
		"loading":    h.Inventory.Loading(),
	})
}

// --- GET: /api/sections ---
func (h *Handler) ListSections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sections": models.Sections})
}

// --- GET: /api/catalogues/:id ---
func (h *Handler) GetCatalogue(c *gin.Context) {
	id := c.Param("id")
	for _, cat := range h.Inventory.Catalogues() {
		if cat.ID == id {
			respond(c, http.StatusOK, gin.H{"catalogue": cat})
			return
		}
	}
	fail(c, http.StatusNotFound, "Catalogue not found")
}

// --- GET: /api/items/:id ---
func (h *Handler) GetItem(c *gin.Context) {
	item, cat, ok := h.Inventory.FindItem(c.Param("id"))
	if !ok {
		fail(c, http.StatusNotFound, "Item not found")
		return
	}
	respond(c, http.StatusOK, gin.H{"item": item, "catalogue": gin.H{"id": cat.ID, "name": cat.Name}})
}

// --- POST: /api/admin/catalogues ---
func (h *Handler) AddCatalogue(c *gin.Context) {
	var input inventory.CatalogueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Catalogue name is required")
		return
	}
	id, err := h.Inventory.AddCatalogue(c.Request.Context(), input)
	if err != nil {
		storeError(c, err, "Failed to add catalogue")
		return
	}
	respond(c, http.StatusCreated, gin.H{"id": id})
}

// --- PUT: /api/admin/catalogues/:id ---
func (h *Handler) UpdateCatalogue(c *gin.Context) {
	var input inventory.CatalogueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Catalogue name is required")
		return
	}
	if err := h.Inventory.UpdateCatalogue(c.Request.Context(), c.Param("id"), input); err != nil {
		storeError(c, err, "Failed to update catalogue")
		return
	}
	respond(c, http.StatusOK, gin.H{"success": true})
}

// --- DELETE: /api/admin/catalogues/:id ---
// Removes the catalogue together with its items and their sizes.
func (h *Handler) DeleteCatalogue(c *gin.Context) {
	if err := h.Inventory.DeleteCatalogue(c.Request.Context(), c.Param("id")); err != nil {
		storeError(c, err, "Failed to delete catalogue")
		return
	}
	respond(c, http.StatusOK, gin.H{"success": true})
}

// --- POST: /api/admin/items ---
func (h *Handler) AddItem(c *gin.Context) {
	var input inventory.ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid item: "+err.Error())
		return
	}
	id, err := h.Inventory.AddItem(c.Request.Context(), input)
	if err != nil {
		storeError(c, err, "Failed to add item")
		return
	}
	respond(c, http.StatusCreated, gin.H{"id": id})
}

// --- PUT: /api/admin/items/:id ---
// Omitting "sizes" keeps the current size variants; an empty list removes them.
func (h *Handler) UpdateItem(c *gin.Context) {
	var input inventory.ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid item: "+err.Error())
		return
	}
	if err := h.Inventory.UpdateItem(c.Request.Context(), c.Param("id"), input); err != nil {
		storeError(c, err, "Failed to update item")
		return
	}
	respond(c, http.StatusOK, gin.H{"success": true})
}

// --- DELETE: /api/admin/items/:id ---
func (h *Handler) DeleteItem(c *gin.Context) {
	if err := h.Inventory.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		storeError(c, err, "Failed to delete item")
		return
	}
	respond(c, http.StatusOK, gin.H{"success": true})
}

type stockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// --- POST: /api/admin/items/:id/decrement ---
// Lowers stock by quantity, stopping at zero.
func (h *Handler) DecrementStock(c *gin.Context) {
	var input stockRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Quantity must be a positive number")
		return
	}
	id := c.Param("id")
	if _, _, ok := h.Inventory.FindItem(id); !ok {
		fail(c, http.StatusNotFound, "Item not found")
		return
	}
	if err := h.Inventory.UpdateStock(c.Request.Context(), id, input.Quantity); err != nil {
		fail(c, http.StatusInternalServerError, "Failed to update stock")
		return
	}
	item, _, ok := h.Inventory.FindItem(id)
	if !ok {
		fail(c, http.StatusNotFound, "Item not found")
		return
	}
	respond(c, http.StatusOK, gin.H{"success": true, "stock": item.Stock})
}

// --- UPLOAD: /api/admin/upload ---
// Accepts a "file" image and an optional "folder" (catalogues, items, shop).
func (h *Handler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "No file uploaded")
		return
	}
	if file.Size > storage.MaxImageSize {
		badRequest(c, "Image must be 5 MB or smaller")
		return
	}

	key, contentType, err := storage.ImageKey(c.PostForm("folder"), file.Filename)
	if err != nil {
		badRequest(c, "Only JPG, PNG, WEBP and GIF images are allowed")
		return
	}

	src, err := file.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer src.Close()

	if err := h.Disk.Put(c.Request.Context(), key, src, contentType); err != nil {
		log.WithError(err).WithField("key", key).Error("Image upload failed")
		fail(c, http.StatusInternalServerError, "Failed to save file")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"message": "File uploaded successfully",
		"url":     h.Disk.URL(key),
	})
}
