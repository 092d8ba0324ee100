package costing

import (
	"fmt"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
)

// CostItem is one cost element charged to a batch. A nil Rate uses the
// catalogue default; a nil Total is computed as Quantity × Rate.
type CostItem struct {
	ElementID string   `json:"element_id"`
	Quantity  float64  `json:"quantity"`
	Rate      *float64 `json:"rate,omitempty"`
	Total     *float64 `json:"total,omitempty"`
}

// AllocatedItem is a CostItem with its rate and total resolved.
type AllocatedItem struct {
	ElementID  string  `json:"element_id"`
	Quantity   float64 `json:"quantity"`
	Rate       float64 `json:"rate"`
	Total      float64 `json:"total"`
	Overridden bool    `json:"overridden"`
}

// Allocation is the resolved set of cost elements for one batch.
type Allocation struct {
	Items []AllocatedItem `json:"items"`
	Total float64         `json:"total"`
}

// AllocateCostElements resolves every item against the catalogue defaults and
// sums the totals. Items referencing an element missing from defaults are a
// ReferenceDataError; a missing rate never silently becomes zero.
func AllocateCostElements(items []CostItem, defaults map[string]float64) (Allocation, error) {
	out := Allocation{Items: make([]AllocatedItem, 0, len(items))}
	for i, item := range items {
		field := fmt.Sprintf("cost_items[%d]", i)
		if item.ElementID == "" {
			return Allocation{}, apperr.Validation(field+".element_id", "is required")
		}
		if item.Quantity < 0 {
			return Allocation{}, apperr.Validation(field+".quantity", "must not be negative, got %.4f", item.Quantity)
		}

		resolved := AllocatedItem{ElementID: item.ElementID, Quantity: item.Quantity}
		defaultRate, known := defaults[item.ElementID]
		switch {
		case item.Rate != nil:
			resolved.Rate = *item.Rate
			resolved.Overridden = true
		case known:
			resolved.Rate = defaultRate
		default:
			return Allocation{}, &apperr.ReferenceDataError{
				Entity: "cost_element", ID: item.ElementID, Field: "default_rate", Message: "is not configured",
			}
		}
		if resolved.Rate < 0 {
			return Allocation{}, apperr.Validation(field+".rate", "must not be negative, got %.4f", resolved.Rate)
		}

		if item.Total != nil {
			resolved.Total = *item.Total
		} else {
			resolved.Total = resolved.Quantity * resolved.Rate
		}
		out.Items = append(out.Items, resolved)
		out.Total += resolved.Total
	}
	return out, nil
}
