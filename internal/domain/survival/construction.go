package survival

import "math"

// DominantType returns the resource type with the strictly largest positive
// amount; the first one seen wins ties.
func DominantType(costs []ResourceAmount) (string, bool) {
	best := 0.0
	main := ""
	found := false
	for _, c := range costs {
		if c.Amount > best {
			best = c.Amount
			main = c.Type
			found = true
		}
	}
	return main, found
}

// LastCarried returns the last non-zero entry of a carried-resource ledger.
func LastCarried(carried []ResourceAmount) (ResourceAmount, bool) {
	var out ResourceAmount
	found := false
	for _, c := range carried {
		if c.Amount != 0 {
			out = c
			found = true
		}
	}
	return out, found
}

func CarriedAmount(carried []ResourceAmount, resourceType string) float64 {
	amount := 0.0
	for _, c := range carried {
		if c.Type == resourceType {
			amount = c.Amount
		}
	}
	return amount
}

func BuildRange(obstructionSize float64) Range {
	return Range{Min: 0, Max: BaseBuildRange + obstructionSize}
}

// FoundationMaxWork is the work a builder can put into a foundation this tick
// given what it carries: min(rate, min(carried, needed)/ratio*rate).
func FoundationMaxWork(rate, carried, needed, ratio float64) float64 {
	usable := math.Min(carried, needed)
	if usable <= 0 || rate <= 0 {
		return 0
	}
	if ratio <= 0 {
		return rate
	}
	return math.Min(rate, usable/ratio*rate)
}

// FoundationConsumption splits maxwork into the amount taken from the
// builder's ledger (rounded up) and the amount credited against the
// foundation's needed count (rounded down).
func FoundationConsumption(maxwork, ratio, multiplier float64) (fromLedger, credited float64) {
	raw := maxwork * ratio * multiplier
	return math.Ceil(raw), math.Floor(raw)
}

// RepairMaxWork allows a full tick of repair only while carrying the
// dominant resource of the target.
func RepairMaxWork(rate float64, carriedType, dominant string) float64 {
	if carriedType == "" || carriedType != dominant {
		return 0
	}
	return rate
}

// ForageCandidate picks the single resource type a stalled builder should
// go looking for. Foundations use the first outstanding type in order;
// repairables use the dominant type.
func ForageCandidate(outstanding []ResourceAmount, foundation bool, dominant string) (string, bool) {
	if !foundation {
		return dominant, dominant != ""
	}
	for _, c := range outstanding {
		if c.Amount > 0 {
			return c.Type, true
		}
	}
	return "", false
}

// Dropoff returns the first offered resource whose type the site accepts.
func Dropoff(accepted []string, offered []ResourceAmount) (ResourceAmount, bool) {
	for _, o := range offered {
		for _, a := range accepted {
			if a == o.Type {
				return o, true
			}
		}
	}
	return ResourceAmount{}, false
}
