package web

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/phaseboard/timeline/internal/domain"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("isodate", validateISODate)
	}
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(domain.DateLayout, fl.Field().String())
	return err == nil
}

// phaseForm is the create/update payload. An empty parent_id names the
// root group.
type phaseForm struct {
	Title    string `json:"title" form:"title" binding:"required,max=200"`
	Start    string `json:"start" form:"start" binding:"required,isodate"`
	ParentID string `json:"parent_id" form:"parent_id" binding:"omitempty,max=64"`
}

func (f phaseForm) parent() *string {
	id := strings.TrimSpace(f.ParentID)
	if id == "" {
		return nil
	}
	return &id
}

func (f phaseForm) start() time.Time {
	t, _ := time.Parse(domain.DateLayout, f.Start)
	return t
}

type projectForm struct {
	Title string `json:"title" form:"title" binding:"required,max=200"`
	Start string `json:"start" form:"start" binding:"required,isodate"`
	Suite bool   `json:"suite" form:"suite"`
}

func (f projectForm) start() time.Time {
	t, _ := time.Parse(domain.DateLayout, f.Start)
	return t
}

type monthParams struct {
	Year  int `uri:"year" binding:"min=1,max=9999"`
	Month int `uri:"month"`
}
