package api

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var viewTemplateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04:05")
	},
	"pct": func(v float64) string {
		return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
	},
}

func loadTemplates(router *gin.Engine) error {
	tmpl, err := template.New("views").Funcs(viewTemplateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)
	return nil
}

// handleSessionPage renders the balloon and GD&T tables as a read-only page.
func (h *Handler) handleSessionPage(c *gin.Context) {
	s, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		c.String(statusFor(err), err.Error())
		return
	}
	c.HTML(http.StatusOK, "session.html", gin.H{"View": s.View()})
}
