package solcgt

import "fmt"

// Method defines how acquisition lots are selected to satisfy a disposal.
type Method int

const (
	// FIFO consumes the oldest lots first.
	FIFO Method = iota
	// LIFO consumes the newest lots first.
	LIFO
	// HIFO consumes the highest-cost-basis lots first, minimizing realized gain.
	HIFO
	// Specific consumes exactly the lots designated by a per-event plan.
	Specific
)

func (m Method) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case HIFO:
		return "hifo"
	case Specific:
		return "specific"
	default:
		return "unknown"
	}
}

// ParseMethod parses a string into a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "fifo", "FIFO":
		return FIFO, nil
	case "lifo", "LIFO":
		return LIFO, nil
	case "hifo", "HIFO":
		return HIFO, nil
	case "specific", "SPECIFIC":
		return Specific, nil
	default:
		return 0, fmt.Errorf("unknown lot selection method: %q", s)
	}
}

// FeePolicy decides where the network fee of a pure acquisition lands.
// Historical snapshots of this engine disagreed, so it is a policy point.
type FeePolicy int

const (
	// FeeOnLot keeps the fee on the lot and draws it into the cost base as
	// the lot is consumed.
	FeeOnLot FeePolicy = iota
	// FeeInUnitCost folds the fee into the lot's unit cost at acquisition.
	FeeInUnitCost
)

func (p FeePolicy) String() string {
	switch p {
	case FeeOnLot:
		return "on_lot"
	case FeeInUnitCost:
		return "in_unit_cost"
	default:
		return "unknown"
	}
}

// ParseFeePolicy parses a string into a FeePolicy.
func ParseFeePolicy(s string) (FeePolicy, error) {
	switch s {
	case "", "on_lot":
		return FeeOnLot, nil
	case "in_unit_cost":
		return FeeInUnitCost, nil
	default:
		return 0, fmt.Errorf("unknown fee policy: %q", s)
	}
}
