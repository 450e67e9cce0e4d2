// Package render turns a task report into HTML.
package render

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/harrisonrobin/baronboard/pkg/extract"
	"github.com/harrisonrobin/baronboard/pkg/i18n"
	"github.com/harrisonrobin/baronboard/pkg/model"
	"github.com/harrisonrobin/baronboard/pkg/report"
	"github.com/harrisonrobin/baronboard/pkg/util"
)

//go:embed templates/*.html
var templateFS embed.FS

// Columns of the rendered table, in order.
var Columns = []string{
	extract.ColTask,
	extract.ColRequester,
	extract.ColStart,
	extract.ColDue,
	extract.ColConfirm,
	"STATUS",
	extract.ColPicture,
}

var base = template.Must(template.New("").Funcs(funcs(i18n.New("en"))).ParseFS(templateFS, "templates/*.html"))

func funcs(p *i18n.Printer) template.FuncMap {
	return template.FuncMap{
		"t":         p.T,
		"num":       p.Number,
		"lang":      func() string { return p.Tag.String() },
		"columns":   func() []string { return Columns },
		"date":      util.DisplayDate,
		"dataURL":   DataURL,
		"echarts":   func() string { return EChartsScript },
		"chartList": chartList,
	}
}

func execute(w io.Writer, name string, p *i18n.Printer, data any) error {
	if p == nil {
		p = i18n.New("en")
	}
	tmpl, err := base.Clone()
	if err != nil {
		return err
	}
	if err := tmpl.Funcs(funcs(p)).ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	return nil
}

// DataURL inlines a picture as a base64 data URL.
func DataURL(p *model.Picture) template.URL {
	if p == nil || len(p.Data) == 0 {
		return ""
	}
	ct := p.ContentType
	if ct == "" {
		ct = "image/png"
	}
	return template.URL("data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(p.Data))
}

func chartList(charts ...*Chart) []*Chart {
	var out []*Chart
	for _, c := range charts {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

type pageData struct {
	Report *report.Report
	Pie    *Chart
	Bars   *Chart
}

func newPageData(r *report.Report, p *i18n.Printer) pageData {
	if p == nil {
		p = i18n.New("en")
	}
	return pageData{
		Report: r,
		Pie:    StatusPie(r.Counts, p),
		Bars:   MonthlyBars(r.Months, p),
	}
}

// Fragment writes the embeddable dashboard: status filter, task table with
// inline images, and the two charts.
func Fragment(w io.Writer, r *report.Report, p *i18n.Printer) error {
	return execute(w, "fragment", p, newPageData(r, p))
}

// Page writes Fragment wrapped in a standalone HTML document.
func Page(w io.Writer, r *report.Report, p *i18n.Printer) error {
	return execute(w, "page", p, newPageData(r, p))
}

// DashboardView is the state of one interactive session page.
type DashboardView struct {
	// Report is already filtered; nil before the first upload.
	Report *report.Report
	Filter report.Filter
	// Error replaces the dashboard when set.
	Error string
	Pie   *Chart
	Bars  *Chart
}

// StatusSelected reports whether s is ticked in the filter form.
func (v *DashboardView) StatusSelected(s model.Status) bool {
	for _, f := range v.Filter.Statuses {
		if f == s {
			return true
		}
	}
	return false
}

// RequesterSelected reports whether name is selected in the filter form.
func (v *DashboardView) RequesterSelected(name string) bool {
	for _, f := range v.Filter.Requesters {
		if f == name {
			return true
		}
	}
	return false
}

// ExportURL is the CSV link for the current filter.
func (v *DashboardView) ExportURL() string {
	return "/export.csv" + FilterQuery(v.Filter)
}

// FilterQuery encodes f as the query string the dashboard understands.
func FilterQuery(f report.Filter) string {
	q := url.Values{}
	for _, s := range f.Statuses {
		q.Add("status", s.Label())
	}
	for _, r := range f.Requesters {
		q.Add("requester", r)
	}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Dashboard writes the interactive session page.
func Dashboard(w io.Writer, v *DashboardView, p *i18n.Printer) error {
	if p == nil {
		p = i18n.New("en")
	}
	if v.Report != nil && v.Error == "" {
		v.Pie = StatusPie(v.Report.Counts, p)
		v.Bars = MonthlyBars(v.Report.Months, p)
	}
	return execute(w, "dashboard", p, v)
}
