package portfolio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/karpatel/nivesh/internal/models"
)

// RenderTimelineChart renders timeline points as a PNG line chart.
// Two series: Portfolio Value (blue solid) and Invested Amount (gray
// dashed), with markers on new-investment dates. Returns raw PNG bytes.
func (s *Service) RenderTimelineChart(points []models.TimelinePoint, title string) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}
	if title == "" {
		title = "Portfolio Value"
	}

	xValues := make([]time.Time, len(points))
	valueY := make([]float64, len(points))
	costY := make([]float64, len(points))
	var annotations []chart.Value2

	for i, p := range points {
		xValues[i] = p.Date
		valueY[i] = p.Value.InexactFloat64()
		costY[i] = p.CostBasis.InexactFloat64()
		if p.NewInvestment {
			annotations = append(annotations, chart.Value2{
				XValue: chart.TimeToFloat64(p.Date),
				YValue: valueY[i],
				Label:  p.Date.Format("Jan 06"),
			})
		}
	}

	valueSeries := chart.TimeSeries{
		Name: "Portfolio Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: valueY,
	}

	costSeries := chart.TimeSeries{
		Name: "Invested Amount",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: costY,
	}

	series := []chart.Series{valueSeries, costSeries}
	if len(annotations) > 0 {
		series = append(series, chart.AnnotationSeries{
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("16a34a"), // green-600
			},
			Annotations: annotations,
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0fk", f/1000)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
