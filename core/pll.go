package core

import "statusboard/protocol"

// PLL operating limits.
const (
	PLLVCOMinHz   = 400 * MHz
	PLLVCOMaxHz   = 1600 * MHz
	PLLRefMinHz   = 5 * MHz
	PLLRefDivMax  = 63
	PLLPostDivMin = 1
	PLLPostDivMax = 7
	PLLFBDivMin   = 16
	PLLFBDivMax   = 320
	pllRefPerVCO  = 16 // divided reference may be at most VCO/16
)

// PLLDriver is the register-level view of one PLL block.
type PLLDriver interface {
	// Reset pulses the block's reset line and waits for it to come back.
	Reset()

	// Program loads the reference and feedback dividers.
	Program(refDiv uint8, fbDiv uint16)

	// PowerUp powers the main PLL and the VCO.
	PowerUp()

	// Locked reports the lock flag.
	Locked() bool

	// SetPostDividers loads both post dividers.
	SetPostDividers(postDiv1, postDiv2 uint8)

	// EnablePostDividers powers the post divider stage.
	EnablePostDividers()
}

// SynthesizerConfig selects a PLL operating point.
type SynthesizerConfig struct {
	VCOHz    uint32 `json:"vco_hz"`
	RefDiv   uint8  `json:"refdiv"`
	PostDiv1 uint8  `json:"post_div1"`
	PostDiv2 uint8  `json:"post_div2"`

	// TargetHz, when set, requires the divider chain to land on it exactly.
	TargetHz uint32 `json:"target_hz,omitempty"`
}

// Presets with exact outputs from a 12 MHz crystal.
var (
	PLLSys125MHz = SynthesizerConfig{VCOHz: 1500 * MHz, RefDiv: 1, PostDiv1: 6, PostDiv2: 2, TargetHz: 125 * MHz}
	PLLUSB48MHz  = SynthesizerConfig{VCOHz: 480 * MHz, RefDiv: 1, PostDiv1: 5, PostDiv2: 2, TargetHz: 48 * MHz}
)

// PLLPlan holds the register values and resulting frequencies.
type PLLPlan struct {
	RefDiv   uint8  `json:"refdiv"`
	FBDiv    uint16 `json:"fbdiv"`
	PostDiv1 uint8  `json:"post_div1"`
	PostDiv2 uint8  `json:"post_div2"`
	VCOHz    uint32 `json:"vco_hz"`
	OutputHz uint32 `json:"output_hz"`
}

// chainDivisor is the full output divisor. The reference divider counts
// once more on the output side, matching the board's documented table
// (510 MHz, refdiv 2, 6, 6 reports 7,083,333 Hz).
func (p PLLPlan) chainDivisor() uint32 {
	return uint32(p.RefDiv) * uint32(p.PostDiv1) * uint32(p.PostDiv2)
}

// DeliveredHz is what the programmed registers produce on the chip:
// VCO / (PostDiv1 * PostDiv2). It differs from OutputHz whenever RefDiv
// is above 1, and is what peripheral timing must be derived from.
func (p PLLPlan) DeliveredHz() uint32 {
	div := uint32(p.PostDiv1) * uint32(p.PostDiv2)
	if div == 0 {
		return 0
	}
	return p.VCOHz / div
}

// Plan checks cfg against the PLL limits for a reference of refHz and
// computes the register values.
func (cfg SynthesizerConfig) Plan(stage protocol.Stage, refHz uint32) (PLLPlan, error) {
	bad := func(field string, v uint32, reason string) (PLLPlan, error) {
		return PLLPlan{}, &ConfigError{Stage: stage, Field: field, Value: v, Reason: reason}
	}

	if cfg.PostDiv1 < PLLPostDivMin || cfg.PostDiv1 > PLLPostDivMax {
		return bad("post_div1", uint32(cfg.PostDiv1), "post divider outside 1-7")
	}
	if cfg.PostDiv2 < PLLPostDivMin || cfg.PostDiv2 > PLLPostDivMax {
		return bad("post_div2", uint32(cfg.PostDiv2), "post divider outside 1-7")
	}
	if cfg.RefDiv == 0 || cfg.RefDiv > PLLRefDivMax {
		return bad("refdiv", uint32(cfg.RefDiv), "reference divider outside 1-63")
	}

	divRef := refHz / uint32(cfg.RefDiv)
	if divRef < PLLRefMinHz || divRef > cfg.VCOHz/pllRefPerVCO {
		return bad("refdiv", uint32(cfg.RefDiv), "divided reference outside 5 MHz..VCO/16")
	}

	if cfg.VCOHz%divRef != 0 {
		return bad("vco_hz", cfg.VCOHz, "VCO not a multiple of the divided reference")
	}
	fbDiv := cfg.VCOHz / divRef
	if fbDiv < PLLFBDivMin || fbDiv > PLLFBDivMax {
		return bad("fbdiv", fbDiv, "feedback divider outside 16-320")
	}

	plan := PLLPlan{
		RefDiv:   cfg.RefDiv,
		FBDiv:    uint16(fbDiv),
		PostDiv1: cfg.PostDiv1,
		PostDiv2: cfg.PostDiv2,
		VCOHz:    divRef * fbDiv,
	}
	if plan.VCOHz < PLLVCOMinHz || plan.VCOHz > PLLVCOMaxHz {
		return bad("vco_hz", plan.VCOHz, "VCO outside 400-1600 MHz")
	}
	div := plan.chainDivisor()
	plan.OutputHz = plan.VCOHz / div

	if cfg.TargetHz != 0 && (plan.VCOHz%div != 0 || plan.OutputHz != cfg.TargetHz) {
		return bad("target_hz", cfg.TargetHz, "divider chain does not land on target exactly")
	}
	return plan, nil
}

// SynthOutput is a locked PLL.
type SynthOutput struct {
	Stage protocol.Stage
	Plan  PLLPlan
}

// Hz returns the PLL output frequency.
func (s SynthOutput) Hz() uint32 { return s.Plan.OutputHz }

// StartPLL programs a PLL from the running reference and blocks until it
// locks. Post dividers are only enabled once lock is seen.
func StartPLL(drv PLLDriver, stage protocol.Stage, ref ReferenceClock, cfg SynthesizerConfig, budget uint32) (SynthOutput, error) {
	if !ref.Stable {
		return SynthOutput{}, &ConfigError{Stage: stage, Field: "xtal_hz", Value: ref.Hz, Reason: "reference not running"}
	}

	plan, err := cfg.Plan(stage, ref.Hz)
	if err != nil {
		return SynthOutput{}, err
	}

	drv.Reset()
	drv.Program(plan.RefDiv, plan.FBDiv)
	drv.PowerUp()

	polls, ok := pollUntil(drv.Locked, budget)
	if !ok {
		return SynthOutput{}, &TimeoutError{Stage: stage, Polls: polls}
	}

	drv.SetPostDividers(plan.PostDiv1, plan.PostDiv2)
	drv.EnablePostDividers()

	TraceValue(stage, "locked", plan.OutputHz)
	return SynthOutput{Stage: stage, Plan: plan}, nil
}
