package capacity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Tier is an availability label derived from committed hours in a week.
type Tier string

const (
	TierAvailable     Tier = "available"
	TierPartiallyBusy Tier = "partially_busy"
	TierBusy          Tier = "busy"
	TierOverloaded    Tier = "overloaded"
	TierFull          Tier = "full"
	TierOver          Tier = "over"
)

// Named presets. Detail grades single weeks; fleet summarizes a consultant
// across a window.
const (
	ScaleDetail = "detail"
	ScaleFleet  = "fleet"
)

// Band labels hours up to and including UpTo.
type Band struct {
	UpTo decimal.Decimal
	Tier Tier
}

// Scale is an ordered set of bands plus the label for anything above the
// last one.
type Scale struct {
	Name  string
	Bands []Band
	Above Tier
}

// Classify returns the tier of hours.
func (s Scale) Classify(hours decimal.Decimal) Tier {
	for _, b := range s.Bands {
		if hours.LessThanOrEqual(b.UpTo) {
			return b.Tier
		}
	}
	return s.Above
}

// Validate checks bands are strictly ascending.
func (s Scale) Validate() error {
	if len(s.Bands) == 0 {
		return fmt.Errorf("scale %q has no bands", s.Name)
	}
	for i := 1; i < len(s.Bands); i++ {
		if !s.Bands[i].UpTo.GreaterThan(s.Bands[i-1].UpTo) {
			return fmt.Errorf("scale %q: threshold %s is not above %s",
				s.Name, s.Bands[i].UpTo, s.Bands[i-1].UpTo)
		}
	}
	return nil
}

// DetailScale is the 4-tier weekly scale: available, partially busy, busy,
// overloaded.
func DetailScale(available, partiallyBusy, busy decimal.Decimal) Scale {
	return Scale{
		Name: ScaleDetail,
		Bands: []Band{
			{UpTo: available, Tier: TierAvailable},
			{UpTo: partiallyBusy, Tier: TierPartiallyBusy},
			{UpTo: busy, Tier: TierBusy},
		},
		Above: TierOverloaded,
	}
}

// FleetScale is the 3-tier summary scale: available, full, over.
func FleetScale(available, full decimal.Decimal) Scale {
	return Scale{
		Name: ScaleFleet,
		Bands: []Band{
			{UpTo: available, Tier: TierAvailable},
			{UpTo: full, Tier: TierFull},
		},
		Above: TierOver,
	}
}

// Scales holds the named presets.
type Scales struct {
	Detail Scale
	Fleet  Scale
}

// DefaultScales returns the 15/30/40 detail and 30/40 fleet presets.
func DefaultScales() Scales {
	return Scales{
		Detail: DetailScale(decimal.NewFromInt(15), decimal.NewFromInt(30), decimal.NewFromInt(40)),
		Fleet:  FleetScale(decimal.NewFromInt(30), decimal.NewFromInt(40)),
	}
}

// Lookup resolves a preset by name; empty means detail.
func (s Scales) Lookup(name string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ScaleDetail:
		return s.Detail, nil
	case ScaleFleet:
		return s.Fleet, nil
	default:
		return Scale{}, fmt.Errorf("unknown threshold scale %q (want %s or %s)", name, ScaleDetail, ScaleFleet)
	}
}
