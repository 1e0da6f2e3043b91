// Package plotter renders solution traces as SVG line plots.
package plotter

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/fieldsim-xyz/go-fieldsim/solver"
)

// Series is a single labelled line.
type Series struct {
	X     []float64
	Y     []float64
	Label string
	Color string
}

var palette = []string{
	"#e41a1c", "#377eb8", "#4daf4a", "#984ea3",
	"#ff7f00", "#a65628", "#f781bf", "#999999",
}

// SVGPlotter accumulates series and renders them into one chart.
type SVGPlotter struct {
	Width  float64
	Height float64
	Title  string
	XLabel string
	YLabel string

	margin     map[string]float64
	plotWidth  float64
	plotHeight float64
	series     []Series
}

// NewSVGPlotter creates a plotter with the given canvas size.
func NewSVGPlotter(width, height float64) *SVGPlotter {
	margin := map[string]float64{"top": 40, "right": 80, "bottom": 50, "left": 60}
	return &SVGPlotter{
		Width:      width,
		Height:     height,
		XLabel:     "Time",
		YLabel:     "Value",
		margin:     margin,
		plotWidth:  width - margin["left"] - margin["right"],
		plotHeight: height - margin["top"] - margin["bottom"],
	}
}

// SetTitle sets the plot title.
func (p *SVGPlotter) SetTitle(t string) *SVGPlotter {
	p.Title = t
	return p
}

// SetXLabel sets the X-axis label.
func (p *SVGPlotter) SetXLabel(s string) *SVGPlotter {
	p.XLabel = s
	return p
}

// SetYLabel sets the Y-axis label.
func (p *SVGPlotter) SetYLabel(s string) *SVGPlotter {
	p.YLabel = s
	return p
}

// AddSeries adds a line. An empty color picks the next palette entry.
func (p *SVGPlotter) AddSeries(x, y []float64, label, color string) *SVGPlotter {
	if color == "" {
		color = palette[len(p.series)%len(palette)]
	}
	p.series = append(p.series, Series{X: x, Y: y, Label: label, Color: color})
	return p
}

// Render generates the SVG document.
func (p *SVGPlotter) Render() string {
	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for _, s := range p.series {
		for i := range s.X {
			xmin = math.Min(xmin, s.X[i])
			xmax = math.Max(xmax, s.X[i])
			ymin = math.Min(ymin, s.Y[i])
			ymax = math.Max(ymax, s.Y[i])
		}
	}
	if math.IsInf(xmin, 1) {
		xmin, xmax = 0, 1
	}
	if math.IsInf(ymin, 1) {
		ymin, ymax = 0, 1
	}
	if xmax == xmin {
		xmax = xmin + 1
	}
	if ymax == ymin {
		ymax = ymin + 1
	}
	xpad := (xmax - xmin) * 0.05
	ypad := (ymax - ymin) * 0.1
	xmin, xmax = xmin-xpad, xmax+xpad
	ymin, ymax = ymin-ypad, ymax+ypad

	sx := func(x float64) float64 {
		return p.margin["left"] + (x-xmin)/(xmax-xmin)*p.plotWidth
	}
	sy := func(y float64) float64 {
		return p.margin["top"] + p.plotHeight - (y-ymin)/(ymax-ymin)*p.plotHeight
	}

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`,
		int(p.Width), int(p.Height)))
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="#f8f9fa" rx="8"/>`,
		int(p.Width), int(p.Height)))

	if p.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="25" text-anchor="middle" font-family="Arial, sans-serif" font-size="16" font-weight="bold">%s</text>`,
			p.Width/2, escape(p.Title)))
	}

	// Axes
	left, top := p.margin["left"], p.margin["top"]
	bottom := top + p.plotHeight
	sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="2"/>`,
		left, top, left, bottom))
	sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="2"/>`,
		left, bottom, left+p.plotWidth, bottom))
	sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="12">%s</text>`,
		left+p.plotWidth/2, p.Height-10, escape(p.XLabel)))
	sb.WriteString(fmt.Sprintf(`<text x="15" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="12" transform="rotate(-90, 15, %f)">%s</text>`,
		top+p.plotHeight/2, top+p.plotHeight/2, escape(p.YLabel)))

	// Grid and tick labels
	const ticks = 5
	for i := 0; i <= ticks; i++ {
		x := xmin + (xmax-xmin)*float64(i)/ticks
		px := sx(x)
		sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#ddd" stroke-width="0.5"/>`,
			px, top, px, bottom))
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="10">%.2g</text>`,
			px, bottom+20, x))

		y := ymin + (ymax-ymin)*float64(i)/ticks
		py := sy(y)
		sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#ddd" stroke-width="0.5"/>`,
			left, py, left+p.plotWidth, py))
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="end" font-family="Arial, sans-serif" font-size="10">%.2g</text>`,
			left-8, py+4, y))
	}

	// Series
	for _, s := range p.series {
		if len(s.X) == 0 {
			continue
		}
		path := strings.Builder{}
		for i := range s.X {
			if i == 0 {
				path.WriteString(fmt.Sprintf("M%f,%f", sx(s.X[i]), sy(s.Y[i])))
			} else {
				path.WriteString(fmt.Sprintf(" L%f,%f", sx(s.X[i]), sy(s.Y[i])))
			}
		}
		sb.WriteString(fmt.Sprintf(`<path d="%s" stroke="%s" stroke-width="2" fill="none"/>`,
			path.String(), s.Color))
	}

	// Legend
	legendY := top + 10
	for _, s := range p.series {
		if s.Label == "" {
			continue
		}
		x1 := p.Width - p.margin["right"] + 5
		sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="%s" stroke-width="2"/>`,
			x1, legendY, x1+20, legendY, s.Color))
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" font-family="Arial, sans-serif" font-size="10">%s</text>`,
			x1+25, legendY+4, escape(s.Label)))
		legendY += 20
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

// PlotSolution renders selected solution variables into one chart. A nil
// label list plots every state entry.
func PlotSolution(sol *solver.Solution, labels []string, width, height float64, title string) string {
	p := NewSVGPlotter(width, height).SetTitle(title)
	if labels == nil {
		labels = sol.Labels
	}
	for _, label := range labels {
		p.AddSeries(sol.T, sol.GetVariable(label), label, "")
	}
	return p.Render()
}

// WriteSVGFile renders selected solution variables to an SVG file.
func WriteSVGFile(sol *solver.Solution, labels []string, path, title string) error {
	svg := PlotSolution(sol, labels, 800, 500, title)
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}

func escape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}
