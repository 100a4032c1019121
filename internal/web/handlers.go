package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phaseboard/timeline/internal/domain"
	"github.com/phaseboard/timeline/internal/service"
)

// Handlers serves the phase routes.
type Handlers struct {
	phases service.PhaseService
	now    func() time.Time
}

func NewHandlers(phases service.PhaseService) *Handlers {
	return &Handlers{phases: phases, now: time.Now}
}

func bindError(c *gin.Context, err error) {
	abortWithError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
}

// Base redirects to the project list of the current month.
func (h *Handlers) Base(c *gin.Context) {
	now := h.now()
	c.Redirect(http.StatusFound, fmt.Sprintf("/project/list/%d/%d", now.Year(), int(now.Month())))
}

// ProjectList charts every project, without their phases, for one month.
func (h *Handlers) ProjectList(c *gin.Context) {
	var m monthParams
	if err := c.ShouldBindUri(&m); err != nil {
		bindError(c, err)
		return
	}
	chart, err := h.phases.Chart(c.Request.Context(), nil, m.Year, m.Month)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChartView(chart, 0))
}

// PhaseList charts a project and all its phases for one month.
func (h *Handlers) PhaseList(c *gin.Context) {
	var m monthParams
	if err := c.ShouldBindUri(&m); err != nil {
		bindError(c, err)
		return
	}
	id := c.Param("id")
	project, err := h.phases.GetNode(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	chart, err := h.phases.Chart(c.Request.Context(), &project.ID, m.Year, m.Month)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project": newPhaseView(project),
		"chart":   newChartView(chart, -1),
	})
}

// Month returns the bare grid; out-of-range months roll over.
func (h *Handlers) Month(c *gin.Context) {
	var m monthParams
	if err := c.ShouldBindUri(&m); err != nil {
		bindError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMonthView(h.phases.MonthGrid(m.Year, m.Month)))
}

func (h *Handlers) CreateProject(c *gin.Context) {
	var f projectForm
	if err := c.ShouldBind(&f); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.phases.CreateProject(c.Request.Context(), f.Title, f.start(), f.Suite)
	if p == nil {
		abortWithError(c, err)
		return
	}
	body := gin.H{
		"phase":   newPhaseView(p),
		"message": fmt.Sprintf("Added project '%s'", p.Title),
	}
	// The project is stored even when part of the suite failed; report
	// both so a retry does not duplicate it.
	if err != nil {
		_ = c.Error(err)
		body["suite_error"] = err.Error()
	}
	c.JSON(http.StatusCreated, body)
}

func (h *Handlers) CreatePhase(c *gin.Context) {
	var f phaseForm
	if err := c.ShouldBind(&f); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.phases.CreateNode(c.Request.Context(), f.parent(), f.Title, f.start())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"phase":   newPhaseView(p),
		"message": fmt.Sprintf("Added phase '%s'", p.Title),
	})
}

func (h *Handlers) Detail(c *gin.Context) {
	p, err := h.phases.GetNode(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	children, err := h.phases.ListChildren(c.Request.Context(), &p.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"phase":    newPhaseView(p),
		"children": newPhaseViews(children),
	})
}

// Update applies the full form. The parent is always part of it; keeping
// the current parent keeps the position.
func (h *Handlers) Update(c *gin.Context) {
	var f phaseForm
	if err := c.ShouldBind(&f); err != nil {
		bindError(c, err)
		return
	}
	start := f.start()
	p, err := h.phases.UpdateNode(c.Request.Context(), c.Param("id"), service.PhaseUpdate{
		Title:  &f.Title,
		Start:  &start,
		Parent: &service.ParentChange{ParentID: f.parent()},
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"phase": newPhaseView(p)})
}

func (h *Handlers) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.phases.GetNode(ctx, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := h.phases.DeleteNode(ctx, p.ID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Deleted phase '%s'", p.Title)})
}

func (h *Handlers) MoveUp(c *gin.Context) {
	h.move(c, h.phases.MoveUp)
}

func (h *Handlers) MoveDown(c *gin.Context) {
	h.move(c, h.phases.MoveDown)
}

func (h *Handlers) move(c *gin.Context, fn func(ctx context.Context, id string) error) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := fn(ctx, id); err != nil {
		abortWithError(c, err)
		return
	}
	p, err := h.phases.GetNode(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"phase": newPhaseView(p)})
}
