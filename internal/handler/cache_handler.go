package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"biliticket/statecache/internal/handler/middleware"
	"biliticket/statecache/internal/model"
	"biliticket/statecache/internal/service"
	"biliticket/statecache/pkg/response"
)

type CacheHandler struct {
	cacheService service.CacheService
	maxEntrySize int64
}

func NewCacheHandler(cacheService service.CacheService, maxEntrySize int64) *CacheHandler {
	return &CacheHandler{cacheService: cacheService, maxEntrySize: maxEntrySize}
}

type EntryResponse struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

func toEntryResponse(entry model.CacheEntry) EntryResponse {
	return EntryResponse{
		Key:       entry.Key,
		Size:      entry.Size,
		Checksum:  entry.Checksum,
		CreatedAt: entry.CreatedAt,
	}
}

// List returns entries whose key starts with the prefix query parameter.
func (h *CacheHandler) List(c *gin.Context) {
	prefix := c.Query("prefix")
	if prefix == "" {
		response.BadRequest(c, "missing prefix query parameter")
		return
	}
	if !h.allowed(c, prefix) {
		return
	}

	entries, err := h.cacheService.List(c.Request.Context(), prefix)
	if err != nil {
		response.InternalError(c, "listing failed")
		return
	}

	out := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toEntryResponse(entry))
	}
	response.Success(c, gin.H{"entries": out})
}

// Download streams the stored archive for a key.
func (h *CacheHandler) Download(c *gin.Context) {
	key := c.Param("key")
	if !h.allowed(c, key) {
		return
	}

	data, err := h.cacheService.Load(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			response.NotFound(c, "cache entry not found")
			return
		}
		response.InternalError(c, "download failed")
		return
	}

	c.Data(http.StatusOK, "application/gzip", data)
}

// Upload stores the request body as the archive for a key, replacing any
// previous entry under the same key.
func (h *CacheHandler) Upload(c *gin.Context) {
	key := c.Param("key")
	if !h.allowed(c, key) {
		return
	}

	body := io.Reader(c.Request.Body)
	if h.maxEntrySize > 0 {
		body = io.LimitReader(body, h.maxEntrySize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		response.BadRequest(c, "reading request body failed")
		return
	}

	entry, err := h.cacheService.Save(c.Request.Context(), key, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEntryTooLarge):
			response.PayloadTooLarge(c, err.Error())
		case errors.Is(err, service.ErrEmptyKey):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "upload failed")
		}
		return
	}

	response.Success(c, toEntryResponse(*entry))
}

// Delete removes the entry for a key. Absence is a 404 with the
// entry_not_found code; clients losing a delete race rely on that code.
func (h *CacheHandler) Delete(c *gin.Context) {
	key := c.Param("key")
	if !h.allowed(c, key) {
		return
	}

	if err := h.cacheService.Delete(c.Request.Context(), key); err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			response.NotFound(c, "cache entry not found")
			return
		}
		response.InternalError(c, "delete failed")
		return
	}

	response.Success(c, nil)
}

// allowed enforces the token's prefix scope over a key or listing prefix.
// Writes the error response and returns false on rejection.
func (h *CacheHandler) allowed(c *gin.Context, key string) bool {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Unauthorized(c, "missing authentication")
		c.Abort()
		return false
	}
	if !claims.Allows(key) {
		response.Forbidden(c, "key outside token scope")
		c.Abort()
		return false
	}
	return true
}
