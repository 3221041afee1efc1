// Package synth generates synthetic incident payloads with controllable
// inconsistencies. The output exercises the extraction and reporting pipeline
// without real dispatch data: narratives mention exposure and rescue counts,
// and a configurable fraction of payloads deliberately contradicts its own
// narrative.
package synth

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
)

// Person describes one rescued individual.
type Person struct {
	AgeRange string `json:"age_range"`
	Sex      string `json:"sex"`
}

// CasualtyRescue is one rescue entry in a payload.
type CasualtyRescue struct {
	ID      string `json:"id"`
	Outcome string `json:"outcome"`
	Person  Person `json:"person"`
}

// Exposure is one hazard-exposure entry in a payload.
type Exposure struct {
	ID     string `json:"id"`
	Hazard string `json:"hazard"`
	Level  string `json:"level"`
}

// Details carries the free-text portion of a payload.
type Details struct {
	Summary   string `json:"summary"`
	Narrative string `json:"narrative"`
}

// Dispatch mirrors the dispatch block of the incident schema.
type Dispatch struct {
	Disposition []string `json:"disposition"`
}

// Payload is one synthetic incident. Title is omitted when dropped to
// simulate missing data.
type Payload struct {
	IncidentID      string           `json:"incident_id"`
	Title           string           `json:"title,omitempty"`
	Details         Details          `json:"details"`
	Dispatch        Dispatch         `json:"dispatch"`
	CasualtyRescues []CasualtyRescue `json:"casualty_rescues"`
	Exposures       []Exposure       `json:"exposures"`
}

const (
	titleDropRate      = 0.05
	emptyNarrativeRate = 0.03
)

var exposureLevels = []string{"low", "medium", "high"}

// Generator produces synthetic incidents from a seeded random source, so the
// same seed always yields the same stream.
type Generator struct {
	rng  *rand.Rand
	rate float64
}

// NewGenerator creates a Generator. inconsistencyRate is the fraction of
// payloads whose narrative mentions exposures while the exposures list stays
// empty.
func NewGenerator(seed int64, inconsistencyRate float64) *Generator {
	return &Generator{
		rng:  rand.New(rand.NewSource(seed)),
		rate: inconsistencyRate,
	}
}

// Incident generates the i-th synthetic payload.
func (g *Generator) Incident(i int) Payload {
	exposures := g.rng.Intn(6)
	rescues := g.rng.Intn(4)

	p := Payload{
		IncidentID: fmt.Sprintf("synthetic-%d", i),
		Title:      fmt.Sprintf("Synthetic Incident %d", i),
		Details: Details{
			Summary:   fmt.Sprintf("Auto-generated incident %d", i),
			Narrative: fmt.Sprintf("Witnesses reported %d exposures and %d rescues at the scene.", exposures, rescues),
		},
		Dispatch:        Dispatch{Disposition: []string{}},
		CasualtyRescues: []CasualtyRescue{},
		Exposures:       []Exposure{},
	}

	for r := 0; r < rescues; r++ {
		p.CasualtyRescues = append(p.CasualtyRescues, CasualtyRescue{
			ID:      fmt.Sprintf("cr-%d-%d", i, r),
			Outcome: "rescued",
			Person:  Person{AgeRange: "adult", Sex: "unknown"},
		})
	}

	// The inconsistent case: the narrative claims exposures, the list stays
	// empty.
	if !(exposures > 0 && g.rng.Float64() < g.rate) {
		for e := 0; e < exposures; e++ {
			p.Exposures = append(p.Exposures, Exposure{
				ID:     fmt.Sprintf("exp-%d-%d", i, e),
				Hazard: "chemical",
				Level:  exposureLevels[g.rng.Intn(len(exposureLevels))],
			})
		}
	}

	if g.rng.Float64() < titleDropRate {
		p.Title = ""
	}
	if g.rng.Float64() < emptyNarrativeRate {
		p.Details.Narrative = ""
	}

	return p
}

// WriteJSONL writes count payloads to w, one JSON object per line.
func (g *Generator) WriteJSONL(w io.Writer, count int) error {
	enc := json.NewEncoder(w)
	for i := 0; i < count; i++ {
		if err := enc.Encode(g.Incident(i)); err != nil {
			return fmt.Errorf("encoding incident %d: %w", i, err)
		}
	}
	return nil
}
