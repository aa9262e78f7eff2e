// internal/pricing/pricing.go
package pricing

import "github.com/google/uuid"

// AddOn is a selected supplement with its season-resolved prices. For a
// grouped supplement GroupPriceCents carries the group's seasonal price;
// otherwise PriceCents carries the supplement's own. A missing seasonal
// price row resolves to zero.
type AddOn struct {
	ID              uuid.UUID
	Name            string
	GroupID         *uuid.UUID
	GroupName       string
	GroupPriceCents int64
	PriceCents      int64
}

// LineItem is one charged entry of the breakdown. Grouped marks that the
// line is a group price covering every selected supplement of the group.
type LineItem struct {
	Label      string `json:"label"`
	PriceCents int64  `json:"price_cents"`
	Grouped    bool   `json:"grouped"`
}

// Breakdown is shown to the payer before payment and must match exactly
// what is later charged, so callers always get the full object, never a
// bare total.
type Breakdown struct {
	OfferingLabel      string     `json:"offering_label"`
	OfferingPriceCents int64      `json:"offering_price_cents"`
	MembershipFeeCents int64      `json:"membership_fee_cents"`
	Items              []LineItem `json:"items"`
	TotalCents         int64      `json:"total_cents"`
}

// Quote computes the order total in integer cents. Each distinct add-on
// group is charged its group price at most once (first occurrence wins);
// ungrouped add-ons are charged their own price.
func Quote(offeringLabel string, offeringPriceCents, membershipFeeCents int64, addOns []AddOn) *Breakdown {
	breakdown := &Breakdown{
		OfferingLabel:      offeringLabel,
		OfferingPriceCents: offeringPriceCents,
		MembershipFeeCents: membershipFeeCents,
	}

	seenGroups := make(map[uuid.UUID]bool)
	var addOnTotal int64

	for _, addOn := range addOns {
		if addOn.GroupID != nil {
			if seenGroups[*addOn.GroupID] {
				continue
			}
			seenGroups[*addOn.GroupID] = true

			breakdown.Items = append(breakdown.Items, LineItem{
				Label:      addOn.GroupName,
				PriceCents: addOn.GroupPriceCents,
				Grouped:    true,
			})
			addOnTotal += addOn.GroupPriceCents
			continue
		}

		breakdown.Items = append(breakdown.Items, LineItem{
			Label:      addOn.Name,
			PriceCents: addOn.PriceCents,
		})
		addOnTotal += addOn.PriceCents
	}

	breakdown.TotalCents = offeringPriceCents + membershipFeeCents + addOnTotal
	return breakdown
}
