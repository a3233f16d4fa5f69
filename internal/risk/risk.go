package risk

import (
	"math"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
)

type Band string

const (
	Low    Band = "low"
	Medium Band = "medium"
	High   Band = "high"
)

const (
	MediumFrom = 30.0
	HighFrom   = 60.0
)

// BandFor — единая шкала для всех экранов: нижняя граница полосы включительно.
func BandFor(score float64) Band {
	switch {
	case score >= HighFrom:
		return High
	case score >= MediumFrom:
		return Medium
	default:
		return Low
	}
}

func (b Band) Color() string {
	switch b {
	case High:
		return "red"
	case Medium:
		return "amber"
	default:
		return "green"
	}
}

func (b Band) Emoji() string {
	switch b {
	case High:
		return "🔴"
	case Medium:
		return "🟠"
	default:
		return "🟢"
	}
}

func (b Band) Title() string {
	switch b {
	case High:
		return "High"
	case Medium:
		return "Medium"
	default:
		return "Low"
	}
}

// максимум штрафных баллов по разделу
var sectionMax = map[models.Section]float64{
	models.Faculty:        40,
	models.Labs:           15,
	models.Infrastructure: 60,
	models.Students:       10,
	models.Financials:     8,
	models.Accreditation:  33,
}

type Health struct {
	Pct  int
	Band Band
}

// SectionHealth переводит штрафные баллы раздела в "здоровье" 0..100.
// Здесь шкала обратная: больше — лучше (>=70 зелёный, >=40 жёлтый).
func SectionHealth(s models.Section, points float64) Health {
	maxPts, ok := sectionMax[s]
	if !ok {
		maxPts = 20
	}
	pct := 100 - int(math.Round(points/maxPts*100))
	if pct < 0 {
		pct = 0
	}
	b := High
	switch {
	case pct >= 70:
		b = Low
	case pct >= 40:
		b = Medium
	}
	return Health{Pct: pct, Band: b}
}
