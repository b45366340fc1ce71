package orders

import (
	"regexp"
	"strings"
	"unicode"

	"mets-backend/internal/models"
)

type statusSynonyms struct {
	status models.OrderStatus
	terms  []string
}

// Checked in order; the first group with a matching term wins.
var statusSearchTerms = []statusSynonyms{
	{models.StatusDelayed, []string{"geciken", "gecikmiş", "delayed", "overdue"}},
	{models.StatusCompleted, []string{"tamamlan", "biten", "completed", "done"}},
	{models.StatusInProgress, []string{"üretimde", "devam eden", "in production", "ongoing"}},
}

var prioritySearchTerms = []string{"yüksek öncelik", "acil", "high priority", "urgent"}

// possessivePattern captures a name followed by a Turkish genitive suffix
// ("AYEDAŞ'ın", "Enerjisa'nın") or an English "'s".
var possessivePattern = regexp.MustCompile(`(?i)([a-zA-ZşŞıİçÇöÖüÜğĞ]+)['’](?:n?[ıiuünña]n|s\b)`)

// contractionWords are English words whose "'s" is "is" or "us", not a
// possessive: "what's overdue" names no customer.
var contractionWords = map[string]bool{
	"what": true, "that": true, "it": true, "there": true, "here": true,
	"who": true, "where": true, "when": true, "how": true, "let": true,
	"he": true, "she": true,
}

// possessiveName returns the first possessive name in q that is not part
// of an English contraction.
func possessiveName(q string) (string, bool) {
	for _, m := range possessivePattern.FindAllStringSubmatch(q, -1) {
		if !contractionWords[strings.ToLower(m[1])] {
			return m[1], true
		}
	}
	return "", false
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func search(orders []models.Order, query string) []models.Order {
	q := strings.ToLower(query)

	var keep func(models.Order) bool
	for _, group := range statusSearchTerms {
		if containsAny(q, group.terms) {
			status := group.status
			keep = func(o models.Order) bool { return o.Status == status }
			break
		}
	}
	switch {
	case keep != nil:
	case containsAny(q, prioritySearchTerms):
		keep = func(o models.Order) bool { return o.Priority == models.PriorityHigh }
	case strings.Contains(q, "risk"):
		keep = func(o models.Order) bool { return o.RiskLevel == models.RiskHigh }
	default:
		keep = func(o models.Order) bool { return matchesText(o, q) }
	}

	result := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if keep(o) {
			result = append(result, o)
		}
	}

	if name, ok := possessiveName(q); ok {
		filtered := result[:0]
		for _, o := range result {
			if customerContains(o.CustomerInfo.Name, name) {
				filtered = append(filtered, o)
			}
		}
		result = filtered
	}

	return result
}

func matchesText(o models.Order, q string) bool {
	if strings.Contains(strings.ToLower(o.OrderNo), q) {
		return true
	}
	if strings.Contains(strings.ToLower(o.CustomerInfo.Name), q) {
		return true
	}
	for _, c := range o.Cells {
		if strings.Contains(strings.ToLower(c.ProductTypeCode), q) {
			return true
		}
	}
	return false
}

// customerContains compares upper-cased forms, trying both the Turkish and
// the default case mapping so "enerjisa" finds "ENERJİSA".
func customerContains(customer, name string) bool {
	if customer == "" {
		return false
	}
	if strings.Contains(strings.ToUpper(customer), strings.ToUpper(name)) {
		return true
	}
	return strings.Contains(
		strings.ToUpperSpecial(unicode.TurkishCase, customer),
		strings.ToUpperSpecial(unicode.TurkishCase, name),
	)
}
