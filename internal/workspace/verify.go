package workspace

import (
	"math/rand"
	"time"
)

// defaultSteps is the progress message sequence shown while a submitted
// resolution is checked. The real consistency checks live in an external
// service; this pipeline's contract is only to sequence the messages and
// gate the finalize step.
var defaultSteps = []string{
	"Validating resolution against source mentions...",
	"Checking cross-document consistency...",
	"Applying resolution decision...",
	"Updating conflict status...",
	"Recording audit trail entry...",
}

// VerifierConfig holds verification pipeline configuration
type VerifierConfig struct {
	// Steps is the ordered progress message sequence.
	Steps []string
	// Delay returns the pause before each step. Tests inject a zero delay
	// to run synchronously and deterministically.
	Delay func() time.Duration
}

// DefaultVerifierConfig returns the production configuration: the stock
// step sequence with a randomized 250-750ms pause per step.
func DefaultVerifierConfig() VerifierConfig {
	return VerifierConfig{
		Steps: defaultSteps,
		Delay: func() time.Duration {
			return time.Duration(250+rand.Intn(500)) * time.Millisecond
		},
	}
}

// Verifier sequences a simulated verification run. A run is strictly
// ordered, append-only, and non-restartable: once started no input can
// alter it, and there is no cancel path before completion.
type Verifier struct {
	config VerifierConfig
}

// NewVerifier creates a verifier, filling zero config fields from
// DefaultVerifierConfig.
func NewVerifier(config VerifierConfig) *Verifier {
	if len(config.Steps) == 0 {
		config.Steps = DefaultVerifierConfig().Steps
	}
	if config.Delay == nil {
		config.Delay = DefaultVerifierConfig().Delay
	}
	return &Verifier{config: config}
}

// Run emits every step in order, pausing per the configured delay, and
// returns after the last step. The caller fires finalize exactly once when
// Run returns.
func (v *Verifier) Run(emit func(msg string)) {
	for _, step := range v.config.Steps {
		time.Sleep(v.config.Delay())
		emit(step)
	}
}
