package interfaces

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"math"
	"sort"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	fairness "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/analytics/domain/fairness"
	"github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/settlement/application"
	settlement "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/settlement/domain"
)

const (
	ptToMM = 25.4 / 72.0

	nearOriginLoserShare  = 0.02
	nearOriginMaxIncrease = 10.0
)

type rgb struct{ r, g, b int }

var actorPalette = []rgb{
	{31, 119, 180},
	{255, 127, 14},
	{44, 160, 44},
	{214, 39, 40},
	{148, 103, 189},
}

// plotArea maps data coordinates onto a page rectangle (mm).
type plotArea struct {
	x, y, w, h             float64
	xMin, xMax, yMin, yMax float64
}

func (a plotArea) px(v float64) float64 {
	return a.x + (v-a.xMin)/(a.xMax-a.xMin)*a.w
}

func (a plotArea) py(v float64) float64 {
	return a.y + a.h - (v-a.yMin)/(a.yMax-a.yMin)*a.h
}

// niceTicks returns about n evenly spaced round tick values covering [lo, hi].
func niceTicks(lo, hi float64, n int) []float64 {
	if hi <= lo {
		return []float64{lo}
	}
	raw := (hi - lo) / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := mag
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if m*mag >= raw {
			step = m * mag
			break
		}
	}
	var ticks []float64
	for v := math.Ceil(lo/step) * step; v <= hi+step*1e-9; v += step {
		ticks = append(ticks, v)
	}
	return ticks
}

func formatTick(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

func drawYAxis(pdf *gofpdf.Fpdf, a plotArea, withLabels bool) {
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Rect(a.x, a.y, a.w, a.h, "D")
	pdf.SetFont("Arial", "", 7)
	for _, tick := range niceTicks(a.yMin, a.yMax, 6) {
		y := a.py(tick)
		pdf.SetDrawColor(220, 220, 220)
		pdf.Line(a.x, y, a.x+a.w, y)
		if withLabels {
			label := formatTick(tick)
			pdf.Text(a.x-pdf.GetStringWidth(label)-1.5, y+1, label)
		}
	}
	pdf.SetDrawColor(0, 0, 0)
}

func drawRotatedLabel(pdf *gofpdf.Fpdf, x, y float64, text string) {
	pdf.TransformBegin()
	pdf.TransformRotate(90, x, y)
	pdf.Text(x, y, text)
	pdf.TransformEnd()
}

// scenarioOrder returns scenarios and actors in first-seen order.
func scenarioOrder(rows []application.DetailRow) (scenarios []string, actors []settlement.Participant) {
	seenScenario := map[string]bool{}
	seenActor := map[settlement.Participant]bool{}
	for _, r := range rows {
		if !seenScenario[r.Scenario] {
			seenScenario[r.Scenario] = true
			scenarios = append(scenarios, r.Scenario)
		}
		if !seenActor[r.Actor] {
			seenActor[r.Actor] = true
			actors = append(actors, r.Actor)
		}
	}
	return scenarios, actors
}

// BuildBillChangePDF renders a grouped bar chart of the bill change per actor
// and scenario, one panel per rule, sharing the y axis.
func BuildBillChangePDF(rows []application.DetailRow, currency string) ([]byte, error) {
	scenarios, actors := scenarioOrder(rows)
	rules := []settlement.Rule{settlement.RuleProportional, settlement.RuleNoHarm}

	type key struct {
		scenario string
		rule     settlement.Rule
		actor    settlement.Participant
	}
	values := make(map[key]float64, len(rows))
	yMin, yMax := 0.0, 0.0
	for _, r := range rows {
		values[key{r.Scenario, r.Rule, r.Actor}] = r.Delta
		yMin = math.Min(yMin, r.Delta)
		yMax = math.Max(yMax, r.Delta)
	}
	if yMax-yMin == 0 {
		yMax = 1
	}
	pad := (yMax - yMin) * 0.08
	yMin -= pad
	yMax += pad

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 13)
	title := "Annual bill change per archetype (negative = savings)"
	pdf.Text((297-pdf.GetStringWidth(title))/2, 14, title)

	// Legend.
	pdf.SetFont("Arial", "", 8)
	legendX := 297/2 - float64(len(actors))*12
	pdf.Text(legendX-12, 22, "Actor")
	for i, actor := range actors {
		c := actorPalette[i%len(actorPalette)]
		pdf.SetFillColor(c.r, c.g, c.b)
		x := legendX + float64(i)*24
		pdf.Rect(x, 19.5, 4, 3, "F")
		pdf.Text(x+5, 22, string(actor))
	}

	const (
		left   = 28.0
		top    = 32.0
		panelW = 122.0
		panelH = 140.0
		gap    = 8.0
	)
	slots := math.Max(float64(len(scenarios)), 1)
	barW := 0.8 / math.Max(float64(len(actors)), 1)

	for p, rule := range rules {
		a := plotArea{
			x: left + float64(p)*(panelW+gap), y: top, w: panelW, h: panelH,
			xMin: -0.5, xMax: slots - 0.5, yMin: yMin, yMax: yMax,
		}
		drawYAxis(pdf, a, p == 0)

		pdf.SetFont("Arial", "B", 10)
		pdf.Text(a.x+(a.w-pdf.GetStringWidth(rule.Title()))/2, a.y-2, rule.Title())

		zero := a.py(0)
		for si, scenario := range scenarios {
			for ai, actor := range actors {
				v, ok := values[key{scenario, rule, actor}]
				if !ok {
					continue
				}
				offset := (float64(ai) - float64(len(actors)-1)/2) * barW
				x0 := a.px(float64(si) + offset - barW/2)
				x1 := a.px(float64(si) + offset + barW/2)
				y := a.py(v)
				c := actorPalette[ai%len(actorPalette)]
				pdf.SetFillColor(c.r, c.g, c.b)
				pdf.Rect(x0, math.Min(y, zero), x1-x0, math.Abs(zero-y), "F")
			}
			pdf.SetFont("Arial", "", 8)
			cx := a.px(float64(si))
			pdf.Text(cx-pdf.GetStringWidth(scenario)/2, a.y+a.h+5, scenario)
		}
		pdf.SetDrawColor(128, 128, 128)
		pdf.SetLineWidth(0.3)
		pdf.Line(a.x, zero, a.x+a.w, zero)
	}

	pdf.SetFont("Arial", "", 9)
	drawRotatedLabel(pdf, 10, top+panelH/2+35, fmt.Sprintf("Delta bill vs outside option (%s/year)", currency))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LabelOffset derives a small, stable text offset in points from the label
// text so that chart labels do not overlap from run to run.
func LabelOffset(label string) (dx, dy int) {
	digest := sha1.Sum([]byte(label))
	component := func(mag, sign byte) int {
		magnitude := 6 + int(mag)%13
		if sign%2 == 1 {
			return magnitude
		}
		return -magnitude
	}
	return component(digest[0], digest[1]), component(digest[2], digest[3])
}

func isNearOrigin(p fairness.Point) bool {
	return p.LoserShare <= nearOriginLoserShare && p.MaxIncrease <= nearOriginMaxIncrease
}

// BuildFrontierPDF renders loser share against max bill increase. Labels of
// points crowding the origin are stacked upward in label order; all other
// labels use LabelOffset.
func BuildFrontierPDF(points []fairness.Point, currency string) ([]byte, error) {
	yMax := 1.0
	for _, p := range points {
		yMax = math.Max(yMax, p.MaxIncrease)
	}
	a := plotArea{
		x: 30, y: 25, w: 240, h: 150,
		xMin: -0.05, xMax: 1.05, yMin: -yMax * 0.05, yMax: yMax * 1.15,
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 13)
	title := "Fairness / dispute-risk frontier across scenarios"
	pdf.Text((297-pdf.GetStringWidth(title))/2, 15, title)

	drawYAxis(pdf, a, true)
	pdf.SetFont("Arial", "", 7)
	for _, tick := range niceTicks(0, 1, 5) {
		x := a.px(tick)
		pdf.SetDrawColor(220, 220, 220)
		pdf.Line(x, a.y, x, a.y+a.h)
		label := formatTick(tick)
		pdf.Text(x-pdf.GetStringWidth(label)/2, a.y+a.h+4, label)
	}

	pdf.SetFont("Arial", "", 9)
	xLabel := "Loser share (fraction with delta>0)"
	pdf.Text(a.x+(a.w-pdf.GetStringWidth(xLabel))/2, a.y+a.h+11, xLabel)
	drawRotatedLabel(pdf, 14, a.y+a.h/2+25, fmt.Sprintf("Max bill increase (%s/year)", currency))

	c := actorPalette[0]
	pdf.SetFillColor(c.r, c.g, c.b)
	for _, p := range points {
		pdf.Circle(a.px(p.LoserShare), a.py(p.MaxIncrease), 1.2, "F")
	}

	var near, far []fairness.Point
	for _, p := range points {
		if isNearOrigin(p) {
			near = append(near, p)
		} else {
			far = append(far, p)
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].Label < near[j].Label })

	pdf.SetFont("Arial", "", 8)
	annotate := func(p fairness.Point, dx, dy int) {
		x := a.px(p.LoserShare) + float64(dx)*ptToMM
		y := a.py(p.MaxIncrease) - float64(dy)*ptToMM
		w := pdf.GetStringWidth(p.Label)
		pdf.SetFillColor(255, 255, 255)
		pdf.Rect(x-0.6, y-2.6, w+1.2, 3.4, "F")
		pdf.Text(x, y, p.Label)
	}
	for i, p := range near {
		annotate(p, 8, 10+i*15)
	}
	for _, p := range far {
		dx, dy := LabelOffset(p.Label)
		annotate(p, dx, dy)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
