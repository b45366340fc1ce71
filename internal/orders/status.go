package orders

import (
	"time"

	"mets-backend/internal/models"
)

var statusText = map[models.OrderStatus]string{
	models.StatusPlanned:    "Planlandı",
	models.StatusInProgress: "Devam Ediyor",
	models.StatusDelayed:    "Gecikiyor",
	models.StatusCompleted:  "Tamamlandı",
	models.StatusCanceled:   "İptal Edildi",
}

// StatusText returns the Turkish label for a status, or the raw value when
// the status is unknown.
func StatusText(s models.OrderStatus) string {
	if t, ok := statusText[s]; ok {
		return t
	}
	return string(s)
}

// IsDelayed reports whether an open order is past a cell delivery date, or
// already marked delayed.
func IsDelayed(o models.Order, now time.Time) bool {
	switch o.Status {
	case models.StatusDelayed:
		return true
	case models.StatusCompleted, models.StatusCanceled:
		return false
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, c := range o.Cells {
		if d, ok := parseDate(c.DeliveryDate); ok && d.Before(today) {
			return true
		}
	}
	return false
}

// Suggestions lists follow-up actions for the order detail page.
func Suggestions(o models.Order, now time.Time) []models.Suggestion {
	out := []models.Suggestion{}
	if IsDelayed(o, now) {
		out = append(out,
			models.Suggestion{Text: "Gecikme analizi yap", Action: "analyze-delay"},
			models.Suggestion{Text: "Müşteriye bildirim gönder", Action: "notify-customer"},
		)
	}
	if o.Status == models.StatusInProgress {
		out = append(out, models.Suggestion{Text: "Üretim sürecini hızlandırma önerileri", Action: "optimize-production"})
	}
	return out
}
