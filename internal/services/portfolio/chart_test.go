package portfolio

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/karpatel/nivesh/internal/models"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestRenderTimelineChart_ProducesPNG(t *testing.T) {
	points := []models.TimelinePoint{
		{Date: dt(2023, 1, 1), Value: decimal.NewFromInt(100000), CostBasis: decimal.NewFromInt(100000)},
		{Date: dt(2023, 6, 1), Value: decimal.NewFromInt(160000), CostBasis: decimal.NewFromInt(150000), NewInvestment: true, Event: "Axis Bluechip: Buy"},
		{Date: dt(2024, 1, 1), Value: decimal.NewFromInt(175000), CostBasis: decimal.NewFromInt(150000)},
	}

	svc := newTestService(&mockRates{})
	img, err := svc.RenderTimelineChart(points, "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(img, pngHeader) {
		t.Errorf("output does not start with a PNG header (%d bytes)", len(img))
	}
	if len(img) < 1000 {
		t.Errorf("PNG suspiciously small: %d bytes", len(img))
	}
}

func TestRenderTimelineChart_RejectsTooFewPoints(t *testing.T) {
	svc := newTestService(&mockRates{})

	if _, err := svc.RenderTimelineChart(nil, ""); err == nil {
		t.Error("expected an error for an empty timeline")
	}

	one := []models.TimelinePoint{
		{Date: dt(2023, 1, 1), Value: decimal.NewFromInt(100000), CostBasis: decimal.NewFromInt(100000)},
	}
	if _, err := svc.RenderTimelineChart(one, "Portfolio"); err == nil {
		t.Error("expected an error for a single point")
	}
}
