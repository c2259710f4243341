package settlement

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleCase(t *testing.T) (outside Amounts, bill float64, r1, r2 Amounts) {
	t.Helper()
	gross := Amounts{ParticipantA: 100, ParticipantB: 100, ParticipantC: 100}
	outside = Amounts{ParticipantA: 90, ParticipantB: 110, ParticipantC: 120}
	bill = 300
	r1, err := Rule1Proportional(bill, gross)
	require.NoError(t, err)
	r2, err = Rule2NoHarm(r1, outside, bill)
	require.NoError(t, err)
	return outside, bill, r1, r2
}

func TestRule1Proportional_ExampleCase(t *testing.T) {
	_, _, r1, _ := exampleCase(t)
	for _, p := range Participants() {
		assert.InDelta(t, 100.0, r1[p], 1e-12)
	}
}

func TestRule2NoHarm_ExampleCase(t *testing.T) {
	outside, bill, _, r2 := exampleCase(t)

	assert.InDelta(t, 90.0, r2[ParticipantA], 1e-12)
	assert.InDelta(t, 100.0+10.0/3.0, r2[ParticipantB], 1e-9)
	assert.InDelta(t, 100.0+20.0/3.0, r2[ParticipantC], 1e-9)
	assert.InDelta(t, bill, r2.Total(), 1e-6)

	for p, pay := range r2 {
		assert.LessOrEqual(t, pay, outside[p]+1e-9, "participant %s", p)
	}
}

func TestRule2NoHarm_DoesNotMutateInput(t *testing.T) {
	_, _, r1, _ := exampleCase(t)
	assert.Equal(t, 100.0, r1[ParticipantA])
}

func TestRule2NoHarm_CommunityBillExceedsOutside(t *testing.T) {
	outside := Amounts{ParticipantA: 50, ParticipantB: 50, ParticipantC: 50}
	r1, err := Rule1Proportional(200, Amounts{ParticipantA: 1, ParticipantB: 1, ParticipantC: 1})
	require.NoError(t, err)

	_, err = Rule2NoHarm(r1, outside, 200)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCommunityBillExceedsOutside))
	assert.True(t, errors.Is(err, ErrNoHarmInfeasible))
}

func TestRule2NoHarm_NoHarmedParticipants(t *testing.T) {
	r1 := Amounts{ParticipantA: 80, ParticipantB: 90, ParticipantC: 100}
	outside := Amounts{ParticipantA: 100, ParticipantB: 100, ParticipantC: 100}

	r2, err := Rule2NoHarm(r1, outside, 270)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestRule2NoHarm_ScalesDownWhenCapsOvershoot(t *testing.T) {
	// Everyone is harmed and the capped sum lands above the bill.
	r1 := Amounts{ParticipantA: 120, ParticipantB: 120, ParticipantC: 60}
	outside := Amounts{ParticipantA: 110, ParticipantB: 110, ParticipantC: 59}

	r2, err := Rule2NoHarm(r1, outside, 250)
	require.NoError(t, err)
	assert.InDelta(t, 250.0, r2.Total(), 1e-9)
	assert.InDelta(t, 110*250.0/279.0, r2[ParticipantA], 1e-9)
	for p, pay := range r2 {
		assert.LessOrEqual(t, pay, outside[p]+1e-9)
	}
}

func TestRule2NoHarm_BillEqualsOutsideTotal(t *testing.T) {
	r1 := Amounts{ParticipantA: 150, ParticipantB: 90, ParticipantC: 60}
	outside := Amounts{ParticipantA: 100, ParticipantB: 100, ParticipantC: 100}

	r2, err := Rule2NoHarm(r1, outside, 300)
	require.NoError(t, err)
	for _, p := range Participants() {
		assert.InDelta(t, 100.0, r2[p], 1e-9, "participant %s", p)
	}
}

func TestRule2NoHarm_ParticipantMismatch(t *testing.T) {
	r1 := Amounts{ParticipantA: 1, ParticipantB: 1}
	outside := Amounts{ParticipantA: 1, ParticipantC: 1}
	_, err := Rule2NoHarm(r1, outside, 2)
	assert.ErrorIs(t, err, ErrUnknownParticipant)
}

func TestRules_RejectNonFinite(t *testing.T) {
	gross := Amounts{ParticipantA: 1, ParticipantB: 1, ParticipantC: 1}
	outside := Amounts{ParticipantA: 50, ParticipantB: 50, ParticipantC: 50}

	_, err := Rule1Proportional(math.NaN(), gross)
	assert.ErrorIs(t, err, ErrNonFiniteAmount)
	_, err = Rule1Proportional(90, Amounts{ParticipantA: math.NaN(), ParticipantB: 1, ParticipantC: 1})
	assert.ErrorIs(t, err, ErrNonFiniteAmount)
	_, err = Rule1Proportional(90, Amounts{ParticipantA: math.Inf(1), ParticipantB: 1, ParticipantC: 1})
	assert.ErrorIs(t, err, ErrNonFiniteAmount)

	r1, err := Rule1Proportional(90, gross)
	require.NoError(t, err)
	_, err = Rule2NoHarm(r1, outside, math.NaN())
	assert.ErrorIs(t, err, ErrNonFiniteAmount)
	_, err = Rule2NoHarm(r1, Amounts{ParticipantA: math.NaN(), ParticipantB: 50, ParticipantC: 50}, 90)
	assert.ErrorIs(t, err, ErrNonFiniteAmount)
	_, err = Rule2NoHarm(Amounts{ParticipantA: math.NaN(), ParticipantB: 30, ParticipantC: 30}, outside, 90)
	assert.ErrorIs(t, err, ErrNonFiniteAmount)
}

func TestRule2NoHarm_ClampsRoundingAtCap(t *testing.T) {
	outside := Amounts{ParticipantA: 0.1, ParticipantB: 0.2, ParticipantC: 0.3}
	bill := outside.Total()
	r1, err := Rule1Proportional(bill, Amounts{ParticipantA: 7, ParticipantB: 3, ParticipantC: 1})
	require.NoError(t, err)

	r2, err := Rule2NoHarm(r1, outside, bill)
	require.NoError(t, err)
	for p, pay := range r2 {
		assert.LessOrEqual(t, pay, outside[p], "participant %s", p)
	}
	assert.InDelta(t, bill, r2.Total(), 1e-6)
}

func TestRule1Proportional_InvalidWeights(t *testing.T) {
	_, err := Rule1Proportional(10, Amounts{ParticipantA: 0, ParticipantB: 0})
	assert.ErrorIs(t, err, ErrNonPositiveWeights)

	_, err = Rule1Proportional(10, Amounts{ParticipantA: 5, ParticipantB: -1})
	assert.ErrorIs(t, err, ErrNonPositiveWeights)
}

func TestRules_RandomizedProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(99, 0))
	feasible := 0
	for i := 0; i < 500; i++ {
		gross := Amounts{}
		outside := Amounts{}
		for _, p := range []Participant{"A", "B", "C", "D", "E"} {
			gross[p] = 1 + rng.Float64()*1000
			outside[p] = rng.Float64() * 500
		}
		bill := rng.Float64() * outside.Total() * 1.1
		if i%10 == 0 {
			bill = outside.Total()
		}

		r1, err := Rule1Proportional(bill, gross)
		require.NoError(t, err)
		assert.InDelta(t, bill, r1.Total(), 1e-9*(1+bill))

		r2, err := Rule2NoHarm(r1, outside, bill)
		if err != nil {
			assert.ErrorIs(t, err, ErrNoHarmInfeasible)
			continue
		}
		feasible++
		assert.InDelta(t, bill, r2.Total(), 1e-6)
		for p, pay := range r2 {
			assert.LessOrEqual(t, pay, outside[p], "case %d participant %s", i, p)
		}
	}
	assert.Positive(t, feasible)
}
