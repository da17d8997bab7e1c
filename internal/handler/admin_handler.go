package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"biliticket/statecache/internal/service"
	"biliticket/statecache/pkg/response"
	tokenpkg "biliticket/statecache/pkg/token"
)

type AdminHandler struct {
	cacheService service.CacheService
	tokenManager *tokenpkg.Manager
}

func NewAdminHandler(cacheService service.CacheService, tokenManager *tokenpkg.Manager) *AdminHandler {
	return &AdminHandler{cacheService: cacheService, tokenManager: tokenManager}
}

type MintTokenRequest struct {
	Scope string        `json:"scope" binding:"required"`
	TTL   time.Duration `json:"ttl"`
}

// MintToken issues a scoped bearer token for automation callers.
func (h *AdminHandler) MintToken(c *gin.Context) {
	var req MintTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	tok, err := h.tokenManager.Generate(req.Scope, req.TTL)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{"token": tok, "scope": req.Scope})
}

// ListEntries lists every stored entry, unscoped.
func (h *AdminHandler) ListEntries(c *gin.Context) {
	entries, err := h.cacheService.List(c.Request.Context(), c.Query("prefix"))
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

// PurgeEntry force-deletes an entry regardless of scope.
func (h *AdminHandler) PurgeEntry(c *gin.Context) {
	key := c.Param("key")
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
