package emotion

import (
	"strings"
	"sync"
	"time"
)

// Emotion is a coarse label describing the companion's current mood.
type Emotion string

const (
	Neutral Emotion = "neutral"
	Happy   Emotion = "happy"
	Excited Emotion = "excited"
	Worried Emotion = "worried"
	Sad     Emotion = "sad"
	Curious Emotion = "curious"
)

// Record is a snapshot of the emotional state at a point in time.
type Record struct {
	Emotion   Emotion   `json:"emotion"`
	Intensity float64   `json:"intensity"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// cue maps a lexical trigger to an emotion with a base weight.
type cue struct {
	emotion Emotion
	weight  float64
}

var lexicon = map[string]cue{
	// distress / concern
	"worried":   {Worried, 0.7},
	"worry":     {Worried, 0.6},
	"scared":    {Worried, 0.8},
	"afraid":    {Worried, 0.8},
	"anxious":   {Worried, 0.7},
	"nervous":   {Worried, 0.6},
	"stressed":  {Worried, 0.7},
	"help":      {Worried, 0.5},
	"emergency": {Worried, 0.9},
	"hurt":      {Worried, 0.7},
	"sick":      {Worried, 0.6},

	// affection / positivity
	"love":      {Happy, 0.8},
	"happy":     {Happy, 0.7},
	"glad":      {Happy, 0.6},
	"great":     {Happy, 0.5},
	"wonderful": {Happy, 0.7},
	"thanks":    {Happy, 0.5},
	"thank":     {Happy, 0.5},
	"miss":      {Happy, 0.6},
	"sweet":     {Happy, 0.6},

	// excitement
	"amazing":    {Excited, 0.8},
	"awesome":    {Excited, 0.8},
	"excited":    {Excited, 0.8},
	"incredible": {Excited, 0.7},
	"wow":        {Excited, 0.6},
	"party":      {Excited, 0.5},

	// sadness
	"sad":       {Sad, 0.7},
	"lonely":    {Sad, 0.7},
	"depressed": {Sad, 0.9},
	"cry":       {Sad, 0.7},
	"crying":    {Sad, 0.8},
	"alone":     {Sad, 0.6},
	"tired":     {Sad, 0.4},

	// curiosity
	"why":     {Curious, 0.4},
	"how":     {Curious, 0.3},
	"curious": {Curious, 0.6},
	"wonder":  {Curious, 0.5},
}

const (
	// perHitBoost raises intensity when several cues for the same emotion land.
	perHitBoost = 0.1
	// decayFactor dampens the previous intensity when no cue matches.
	decayFactor = 0.85
	// restingIntensity is the floor the state decays toward.
	restingIntensity = 0.1
)

// Machine holds the process-wide current emotional state.
//
// The slot is shared across all users' requests; concurrent updates race and
// the last writer wins. Callers that need the exact state for a turn use the
// Record returned by Update, not the shared slot.
type Machine struct {
	mu      sync.Mutex
	current Record
}

func NewMachine() *Machine {
	return &Machine{
		current: Record{
			Emotion:   Neutral,
			Intensity: restingIntensity,
			Reason:    "at rest",
			Timestamp: time.Now().UTC(),
		},
	}
}

// Update classifies the utterance and overwrites the current state.
// It never fails; unmatched input decays toward a neutral resting state.
func (m *Machine) Update(utterance string) Record {
	m.mu.Lock()
	prev := m.current
	m.mu.Unlock()

	rec := classify(utterance, prev)
	rec.Timestamp = time.Now().UTC()

	m.mu.Lock()
	m.current = rec
	m.mu.Unlock()
	return rec
}

// Current returns the last state written by Update.
func (m *Machine) Current() Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Modifier derives a short tone directive from the current state.
func (m *Machine) Modifier() string {
	return ModifierFor(m.Current())
}

// ModifierFor is the deterministic mapping from a state to a tone directive.
func ModifierFor(rec Record) string {
	strength := "gently"
	switch {
	case rec.Intensity >= 0.7:
		strength = "strongly"
	case rec.Intensity >= 0.4:
		strength = "noticeably"
	}

	switch rec.Emotion {
	case Happy:
		return "Respond warmly and " + strength + " affectionate; let your happiness show."
	case Excited:
		return "Respond with " + strength + " expressed enthusiasm and energy."
	case Worried:
		return "Respond " + strength + " concerned and protective; offer reassurance."
	case Sad:
		return "Respond softly and " + strength + " empathetic; acknowledge the sadness."
	case Curious:
		return "Respond " + strength + " inquisitive; ask a thoughtful follow-up."
	default:
		return "Respond calmly in your usual caring tone."
	}
}

func classify(utterance string, prev Record) Record {
	scores := make(map[Emotion]float64)
	hits := make(map[Emotion]int)
	triggers := make(map[Emotion]string)

	for _, word := range strings.FieldsFunc(strings.ToLower(utterance), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	}) {
		c, ok := lexicon[word]
		if !ok {
			continue
		}
		hits[c.emotion]++
		if c.weight > scores[c.emotion] {
			scores[c.emotion] = c.weight
			triggers[c.emotion] = word
		}
	}

	best := Neutral
	bestVal := 0.0
	for _, e := range []Emotion{Worried, Sad, Happy, Excited, Curious} {
		v := scores[e] + float64(hits[e]-1)*perHitBoost
		if hits[e] > 0 && v > bestVal {
			best = e
			bestVal = v
		}
	}

	if best == Neutral {
		return Record{
			Emotion:   Neutral,
			Intensity: clamp(max(restingIntensity, prev.Intensity*decayFactor)),
			Reason:    "no strong signal detected",
		}
	}

	return Record{
		Emotion:   best,
		Intensity: clamp(bestVal),
		Reason:    "detected cue " + triggers[best],
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
