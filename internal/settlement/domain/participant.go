package settlement

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Participant identifies a community member.
type Participant string

const (
	ParticipantA Participant = "A"
	ParticipantB Participant = "B"
	// ParticipantC hosts the shared PV installation.
	ParticipantC Participant = "C"
)

// Participants returns the archetypes in output order.
func Participants() []Participant {
	return []Participant{ParticipantA, ParticipantB, ParticipantC}
}

// Amounts maps participants to a value: a bill, a weight, an allocation or a delta.
type Amounts map[Participant]float64

// Keys returns participants in sorted order so that sums are reproducible.
func (a Amounts) Keys() []Participant {
	keys := make([]Participant, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Values returns the values in Keys order.
func (a Amounts) Values() []float64 {
	keys := a.Keys()
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = a[k]
	}
	return out
}

// Total sums all values in Keys order.
func (a Amounts) Total() float64 {
	if len(a) == 0 {
		return 0
	}
	return floats.Sum(a.Values())
}

// Clone returns a detached copy.
func (a Amounts) Clone() Amounts {
	out := make(Amounts, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func sameParticipants(a, b Amounts) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
