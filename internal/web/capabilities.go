package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phaseboard/timeline/internal/access"
)

const (
	// GroupHeader carries the caller's permission group, set by the
	// authenticating proxy in front of the server.
	GroupHeader = "X-Timeline-Group"
	// PartialHeader names the fragment a handler rendered.
	PartialHeader = "X-Timeline-Partial"

	hxRequestHeader  = "HX-Request"
	hxTriggerHeader  = "HX-Trigger-After-Swap"
	refreshListEvent = "refreshList"

	partialKey = "timeline.partial"
)

// Capabilities is what the core expects from the surrounding web layer.
type Capabilities interface {
	// RequiresPermission aborts with 403 unless the caller holds perm.
	RequiresPermission(perm access.Permission) gin.HandlerFunc
	// RendersPartial restricts a route to fragment requests and records
	// which fragment it renders.
	RendersPartial(name string) gin.HandlerFunc
	// SignalsRefresh asks the client to reload the phase list after the
	// response is swapped in.
	SignalsRefresh() gin.HandlerFunc
}

type groupCapabilities struct {
	checker *access.Checker
}

// NewCapabilities checks permissions of the group named in GroupHeader.
func NewCapabilities(checker *access.Checker) Capabilities {
	return &groupCapabilities{checker: checker}
}

func (g *groupCapabilities) RequiresPermission(perm access.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		group := c.GetHeader(GroupHeader)
		if group == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody("no permission group"))
			return
		}
		ok, err := g.checker.Allowed(c.Request.Context(), group, perm)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody("group "+group+" lacks "+string(perm)))
			return
		}
		c.Next()
	}
}

func (g *groupCapabilities) RendersPartial(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(hxRequestHeader) != "true" {
			c.AbortWithStatusJSON(http.StatusNotFound, errorBody("fragment requests only"))
			return
		}
		c.Set(partialKey, name)
		c.Header(PartialHeader, name)
		c.Next()
	}
}

func (g *groupCapabilities) SignalsRefresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Set before the handler writes the body.
		c.Header(hxTriggerHeader, refreshListEvent)
		c.Next()
	}
}
