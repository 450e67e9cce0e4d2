package render

import (
	"html/template"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/harrisonrobin/baronboard/pkg/aggregate"
	"github.com/harrisonrobin/baronboard/pkg/i18n"
	"github.com/harrisonrobin/baronboard/pkg/model"
)

// EChartsScript is the library the rendered charts run on.
const EChartsScript = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

const chartHeight = "500px"

// Chart is an ECharts option object ready to be mounted on a div.
type Chart struct {
	ID     string
	Height string
	Option template.JS
}

// StatusPie is the share of tasks per status. Statuses with no task are
// left out; nil when there are no tasks at all.
func StatusPie(counts []model.StatusCount, p *i18n.Printer) *Chart {
	var data []opts.PieData
	for _, c := range counts {
		if c.Count == 0 {
			continue
		}
		data = append(data, opts.PieData{
			Name:      c.Status.Label(),
			Value:     c.Count,
			ItemStyle: &opts.ItemStyle{Color: c.Status.Color()},
		})
	}
	if len(data) == 0 {
		return nil
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: "statusPie", Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: p.T("Status share of tasks")}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)
	pie.AddSeries("STATUS", data).SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
		charts.WithPieChartOpts(opts.PieChart{Radius: "60%"}),
	)
	pie.Validate()
	return &Chart{ID: "statusPie", Height: chartHeight, Option: template.JS(pie.JSONNotEscaped())}
}

// MonthlyBars is a grouped bar per month with one bar per status, in
// model.Statuses order. nil when no task has a start date.
func MonthlyBars(buckets []model.MonthStatusBucket, p *i18n.Printer) *Chart {
	months := aggregate.Months(buckets)
	if len(months) == 0 {
		return nil
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: "monthlyBars", Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: p.T("Tasks per month")}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Orient: "horizontal", Right: "0", Top: "0"}),
		charts.WithXAxisOpts(opts.XAxis{Name: p.T("Month"), Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: p.T("Number of tasks")}),
	)
	bar.SetXAxis(months)
	for _, s := range model.Statuses {
		counts := aggregate.Series(buckets, s)
		data := make([]opts.BarData, len(counts))
		for i, n := range counts {
			data[i] = opts.BarData{Value: n}
		}
		bar.AddSeries(s.Label(), data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color()}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	}
	bar.Validate()
	return &Chart{ID: "monthlyBars", Height: chartHeight, Option: template.JS(bar.JSONNotEscaped())}
}
