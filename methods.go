package solcgt

import (
	"fmt"
	"sort"
)

// LotTake is one step of an allocation: take Qty from Lot.
type LotTake struct {
	Lot *AcquisitionLot
	Qty Quantity
}

// SpecificPlan is an ordered Specific-ID selection for one disposal event.
type SpecificPlan []LotPortion

// SpecificLots maps a disposal event id to its Specific-ID plan.
type SpecificLots map[string]SpecificPlan

// LotSelectionError reports that an allocation could not be satisfied.
//
// Issue is set when the failure is a quantity shortfall the caller could
// cover with a synthetic lot; it stays nil for plan errors (a malformed
// Specific-ID plan is a configuration mistake, never recoverable). Partial
// is attached by the engine when the failure aborts a Process call, so the
// caller can inspect everything produced before the failure.
type LotSelectionError struct {
	Msg     string
	Issue   *MissingLotIssue
	Partial *Result
}

func (e *LotSelectionError) Error() string { return e.Msg }

// orderLots returns the candidates in consumption order for the method.
func orderLots(lots []*AcquisitionLot, method Method) []*AcquisitionLot {
	ordered := make([]*AcquisitionLot, len(lots))
	copy(ordered, lots)
	switch method {
	case FIFO, LIFO:
		sort.SliceStable(ordered, func(i, j int) bool {
			if !ordered[i].TS.Equal(ordered[j].TS) {
				return ordered[i].TS.Before(ordered[j].TS)
			}
			return ordered[i].LotID < ordered[j].LotID
		})
		if method == LIFO {
			for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	case HIFO:
		sort.SliceStable(ordered, func(i, j int) bool {
			if !ordered[i].UnitCostAUD.Equal(ordered[j].UnitCostAUD) {
				return ordered[j].UnitCostAUD.LessThan(ordered[i].UnitCostAUD)
			}
			return ordered[j].TS.Before(ordered[i].TS)
		})
	}
	return ordered
}

// Allocate selects which lots, and how much of each, satisfy a disposal of
// qty under the given method. Quantities in the returned takes sum exactly
// to qty. Only lots with remaining quantity are candidates.
//
// FIFO, LIFO and HIFO consume greedily in method order. Specific follows the
// plan registered for eventID and demands strict quantity equality: any
// mismatch is an error, not a partial fill.
func Allocate(lots []*AcquisitionLot, qty Quantity, method Method, specific SpecificLots, eventID string) ([]LotTake, error) {
	if !qty.IsPositive() {
		return nil, nil
	}
	var available []*AcquisitionLot
	availableQty := Q(0)
	for _, lot := range lots {
		if lot.RemainingQty.IsPositive() {
			available = append(available, lot)
			availableQty = availableQty.Add(lot.RemainingQty)
		}
	}
	if len(available) == 0 {
		return nil, &LotSelectionError{
			Msg:   "no acquisition lots available",
			Issue: &MissingLotIssue{Required: qty, Available: Q(0), Shortfall: qty},
		}
	}

	if method == Specific {
		return allocateSpecific(available, qty, specific, eventID)
	}

	ordered := orderLots(available, method)
	remaining := qty
	var takes []LotTake
	for _, lot := range ordered {
		if !remaining.IsPositive() {
			break
		}
		take := lot.RemainingQty.Min(remaining)
		if take.IsPositive() {
			takes = append(takes, LotTake{Lot: lot, Qty: take})
			remaining = remaining.Sub(take)
		}
	}
	if remaining.IsPositive() {
		return nil, &LotSelectionError{
			Msg:   fmt.Sprintf("insufficient lot quantity to satisfy disposal: short %s", remaining),
			Issue: &MissingLotIssue{Required: qty, Available: availableQty, Shortfall: remaining},
		}
	}
	return takes, nil
}

func allocateSpecific(available []*AcquisitionLot, qty Quantity, specific SpecificLots, eventID string) ([]LotTake, error) {
	if specific == nil || eventID == "" {
		return nil, &LotSelectionError{Msg: "specific-id method requires a plan mapping and event id"}
	}
	plan := specific[eventID]
	if len(plan) == 0 {
		return nil, &LotSelectionError{Msg: fmt.Sprintf("no specific lots defined for %s", eventID)}
	}
	byID := make(map[string]*AcquisitionLot, len(available))
	for _, lot := range available {
		byID[lot.LotID] = lot
	}
	takes := make([]LotTake, 0, len(plan))
	total := Q(0)
	for _, step := range plan {
		lot, ok := byID[step.LotID]
		if !ok {
			return nil, &LotSelectionError{Msg: fmt.Sprintf("lot %s not available for %s", step.LotID, eventID)}
		}
		if step.Qty.GreaterThan(lot.RemainingQty) {
			return nil, &LotSelectionError{Msg: fmt.Sprintf("lot %s has insufficient quantity for %s", step.LotID, eventID)}
		}
		takes = append(takes, LotTake{Lot: lot, Qty: step.Qty})
		total = total.Add(step.Qty)
	}
	if !total.Equal(qty) {
		return nil, &LotSelectionError{
			Msg: fmt.Sprintf("specific allocation quantity mismatch for %s: planned %s, disposing %s", eventID, total, qty),
		}
	}
	return takes, nil
}
