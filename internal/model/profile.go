package model

import (
	"errors"
	"fmt"
)

// Range is a closed magnitude interval in price points.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// At maps u in [0,1) onto the range.
func (r Range) At(u float64) float64 { return r.Min + u*(r.Max-r.Min) }

// Tier is one probability band of the body-size distribution. Green and Red
// carry separate ranges so a profile can make one colour larger than the other.
type Tier struct {
	Chance float64 `yaml:"chance" json:"chance"`
	Green  Range   `yaml:"green" json:"green"`
	Red    Range   `yaml:"red" json:"red"`
}

// Momentum smooths seeded candles: m = m*Decay + (u-Center)*Scale.
type Momentum struct {
	Decay  float64 `yaml:"decay" json:"decay"`
	Center float64 `yaml:"center" json:"center"`
	Scale  float64 `yaml:"scale" json:"scale"`
}

// Drift drives live ticks. FloorRatio places a price floor at that share of
// the price the engine started from; bearish moves fade to zero between
// twice the floor and the floor itself. Zero disables the floor.
type Drift struct {
	SessionBias    float64 `yaml:"session_bias" json:"session_bias"`
	SessionDecay   float64 `yaml:"session_decay" json:"session_decay"`
	MicroDecay     float64 `yaml:"micro_decay" json:"micro_decay"`
	MicroScale     float64 `yaml:"micro_scale" json:"micro_scale"`
	MicroWeight    float64 `yaml:"micro_weight" json:"micro_weight"`
	MicroReseed    float64 `yaml:"micro_reseed" json:"micro_reseed"`
	MomentumWeight float64 `yaml:"momentum_weight" json:"momentum_weight"`
	TickScale      float64 `yaml:"tick_scale" json:"tick_scale"`
	FloorRatio     float64 `yaml:"floor_ratio" json:"floor_ratio"`
}

// Wicks holds every wick-proportioning knob. Dominant shares go to the
// rejection side: upper for red candles, lower for green ones.
type Wicks struct {
	SeedRatio    float64 `yaml:"seed_ratio" json:"seed_ratio"`
	SeedDominant float64 `yaml:"seed_dominant" json:"seed_dominant"`
	SeedJitter   float64 `yaml:"seed_jitter" json:"seed_jitter"`

	OpenMin      float64 `yaml:"open_min" json:"open_min"`
	OpenSpread   float64 `yaml:"open_spread" json:"open_spread"`
	OpenDominant float64 `yaml:"open_dominant" json:"open_dominant"`

	FormCap    float64 `yaml:"form_cap" json:"form_cap"`
	FormBase   float64 `yaml:"form_base" json:"form_base"`
	FormJitter float64 `yaml:"form_jitter" json:"form_jitter"`
	FormLead   float64 `yaml:"form_lead" json:"form_lead"`
	FormTrail  float64 `yaml:"form_trail" json:"form_trail"`

	FinalCap      float64 `yaml:"final_cap" json:"final_cap"`
	FinalDominant float64 `yaml:"final_dominant" json:"final_dominant"`
	FinalMajor    Range   `yaml:"final_major" json:"final_major"`
	FinalMinor    Range   `yaml:"final_minor" json:"final_minor"`
}

// BiasProfile is the full parameter set of one series flavour.
type BiasProfile struct {
	Name      string   `yaml:"name" json:"name"`
	GreenProb float64  `yaml:"green_prob" json:"green_prob"`
	Tiers     []Tier   `yaml:"tiers" json:"tiers"`
	Momentum  Momentum `yaml:"momentum" json:"momentum"`
	Drift     Drift    `yaml:"drift" json:"drift"`
	Wicks     Wicks    `yaml:"wicks" json:"wicks"`
}

// PickTier walks the tiers from the top of [0,1): the first tier owns
// [1-Chance, 1), the next the band below it, and the last tier takes the rest.
func (p BiasProfile) PickTier(u float64) Tier {
	acc := 0.0
	for i, t := range p.Tiers {
		acc += t.Chance
		if i == len(p.Tiers)-1 || u >= 1-acc {
			return t
		}
	}
	return Tier{}
}

// Validate rejects profiles the generators cannot use.
func (p BiasProfile) Validate() error {
	if p.GreenProb < 0 || p.GreenProb > 1 {
		return fmt.Errorf("profile %s: green_prob %.2f out of [0,1]", p.Name, p.GreenProb)
	}
	if len(p.Tiers) == 0 {
		return fmt.Errorf("profile %s: %w", p.Name, errNoTiers)
	}
	sum := 0.0
	for i, t := range p.Tiers {
		if t.Chance < 0 {
			return fmt.Errorf("profile %s: tier %d has negative chance", p.Name, i)
		}
		sum += t.Chance
		for _, r := range []Range{t.Green, t.Red} {
			if r.Min < 0 || r.Max < r.Min {
				return fmt.Errorf("profile %s: tier %d range [%.2f, %.2f] invalid", p.Name, i, r.Min, r.Max)
			}
		}
	}
	if sum > 1 {
		return fmt.Errorf("profile %s: tier chances sum to %.2f > 1", p.Name, sum)
	}
	if p.Drift.FloorRatio < 0 || p.Drift.FloorRatio >= 1 {
		return fmt.Errorf("profile %s: floor_ratio %.2f out of [0,1)", p.Name, p.Drift.FloorRatio)
	}
	w := p.Wicks
	for _, v := range []float64{w.SeedRatio, w.SeedJitter, w.OpenMin, w.OpenSpread, w.FormCap, w.FormBase, w.FormJitter, w.FormLead, w.FormTrail, w.FinalCap} {
		if v < 0 {
			return fmt.Errorf("profile %s: negative wick parameter", p.Name)
		}
	}
	for _, share := range []float64{w.SeedDominant, w.OpenDominant, w.FinalDominant} {
		if share < 0 || share > 1 {
			return fmt.Errorf("profile %s: wick share %.2f out of [0,1]", p.Name, share)
		}
	}
	return nil
}

var errNoTiers = errors.New("no magnitude tiers")

func defaultWicks() Wicks {
	return Wicks{
		SeedRatio:     0.3,
		SeedDominant:  0.7,
		SeedJitter:    3,
		OpenMin:       0.3,
		OpenSpread:    0.2,
		OpenDominant:  0.8,
		FormCap:       0.3,
		FormBase:      2,
		FormJitter:    2,
		FormLead:      0.7,
		FormTrail:     0.3,
		FinalCap:      0.5,
		FinalDominant: 0.7,
		FinalMajor:    Range{Min: 3, Max: 8},
		FinalMinor:    Range{Min: 1, Max: 3},
	}
}

func same(lo, hi float64) (Range, Range) {
	r := Range{Min: lo, Max: hi}
	return r, r
}

func seedTiers() []Tier {
	big, bigR := same(25, 50)
	mid, midR := same(15, 30)
	small, smallR := same(3, 15)
	return []Tier{
		{Chance: 0.1, Green: big, Red: bigR},
		{Chance: 0.2, Green: mid, Red: midR},
		{Green: small, Red: smallR},
	}
}

// SeedBearish is the historical seed used for reality: 70% red candles.
func SeedBearish() BiasProfile {
	return BiasProfile{
		Name:      "seed-bearish",
		GreenProb: 0.3,
		Tiers:     seedTiers(),
		Momentum:  Momentum{Decay: 0.7, Center: 0.6, Scale: 3},
		Wicks:     defaultWicks(),
	}
}

// SeedNeutral is a coin-flip seed.
func SeedNeutral() BiasProfile {
	p := SeedBearish()
	p.Name = "seed-neutral"
	p.GreenProb = 0.5
	p.Momentum.Center = 0.5
	return p
}

// SeedBullish mirrors SeedBearish for dream history projections.
func SeedBullish() BiasProfile {
	p := SeedBearish()
	p.Name = "seed-bullish"
	p.GreenProb = 0.8
	p.Momentum.Center = 0.35
	return p
}

// DefaultFloorRatio keeps live series above a quarter of their starting price.
const DefaultFloorRatio = 0.25

// DefaultReality is the live reality profile.
func DefaultReality() BiasProfile {
	return BiasProfile{
		Name:      "reality",
		GreenProb: 0.3,
		Tiers: []Tier{
			{Chance: 0.1, Green: Range{3, 10}, Red: Range{20, 50}},
			{Chance: 0.2, Green: Range{2, 8}, Red: Range{10, 25}},
			{Green: Range{1, 6}, Red: Range{5, 15}},
		},
		Momentum: Momentum{Decay: 0.7, Center: 0.6, Scale: 3},
		Drift: Drift{
			SessionBias:    -0.5,
			SessionDecay:   0.95,
			MicroDecay:     0.8,
			MicroScale:     3,
			MicroWeight:    0.1,
			MicroReseed:    2,
			MomentumWeight: 0.05,
			TickScale:      2,
			FloorRatio:     DefaultFloorRatio,
		},
		Wicks: defaultWicks(),
	}
}

// DefaultRealityUnderOverlay is reality while the dream overlay is shown.
func DefaultRealityUnderOverlay() BiasProfile {
	p := DefaultReality()
	p.Name = "reality-overlay"
	p.GreenProb = 0.2
	p.Drift.SessionBias = -0.8
	return p
}

// DefaultDream is the live dream profile: 80% green, bullish drift.
func DefaultDream() BiasProfile {
	return BiasProfile{
		Name:      "dream",
		GreenProb: 0.8,
		Tiers: []Tier{
			{Chance: 0.15, Green: Range{30, 70}, Red: Range{5, 15}},
			{Chance: 0.25, Green: Range{15, 35}, Red: Range{3, 11}},
			{Green: Range{8, 20}, Red: Range{2, 8}},
		},
		Momentum: Momentum{Decay: 0.7, Center: 0.35, Scale: 3},
		Drift: Drift{
			SessionBias:    1.2,
			SessionDecay:   0.95,
			MicroDecay:     0.8,
			MicroScale:     3,
			MicroWeight:    0.1,
			MicroReseed:    2,
			MomentumWeight: 0.05,
			TickScale:      2,
			FloorRatio:     DefaultFloorRatio,
		},
		Wicks: defaultWicks(),
	}
}

// ProfileSet is every profile one chart session runs.
type ProfileSet struct {
	Seed                BiasProfile `yaml:"seed" json:"seed"`
	Reality             BiasProfile `yaml:"reality" json:"reality"`
	RealityUnderOverlay BiasProfile `yaml:"reality_under_overlay" json:"reality_under_overlay"`
	Dream               BiasProfile `yaml:"dream" json:"dream"`
	Projection          BiasProfile `yaml:"projection" json:"projection"`
}

// DefaultProfiles returns the stock profile set.
func DefaultProfiles() ProfileSet {
	return ProfileSet{
		Seed:                SeedBearish(),
		Reality:             DefaultReality(),
		RealityUnderOverlay: DefaultRealityUnderOverlay(),
		Dream:               DefaultDream(),
		Projection:          SeedBullish(),
	}
}

// Validate checks every profile in the set.
func (s ProfileSet) Validate() error {
	for _, p := range []BiasProfile{s.Seed, s.Reality, s.RealityUnderOverlay, s.Dream, s.Projection} {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}
