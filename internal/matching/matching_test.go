package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "bench press", Normalize("  Bench   PRESS\t"))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "pull up", Normalize("Pull-Up"))
	assert.Equal(t, "t bar row", Normalize("t_bar-row"))
}

func TestHyphenatedLiftsMatchSpacedNames(t *testing.T) {
	for _, name := range []string{"Pull Up", "pull-up", "Weighted Pull-Up"} {
		assert.True(t, IsPrimaryLift(name), name)
		got, ok := FindMatchingPrimaryLift(name)
		require.True(t, ok, name)
		assert.Equal(t, "pull up", got.Name, name)
	}
}

func TestIsPrimaryLift(t *testing.T) {
	assert.True(t, IsPrimaryLift("Bench Press"))
	assert.True(t, IsPrimaryLift("bench press"))
	assert.True(t, IsPrimaryLift("incline bench press"))
	assert.True(t, IsPrimaryLift("Bench")) // contained in "bench press"
	assert.False(t, IsPrimaryLift(""))
	assert.False(t, IsPrimaryLift("bicep curl"))
}

func TestFindMatchingPrimaryLiftRanks(t *testing.T) {
	cases := map[string]string{
		"Front Squat":          "front squat", // exact beats containment of "squat"
		"squat":                "squat",
		"Pause Front Squat":    "front squat", // closer containment
		"incline bench press":  "bench press",
		"Romanian Deadlift":    "deadlift",
		"overhead press (OHP)": "overhead press",
	}
	for in, want := range cases {
		got, ok := FindMatchingPrimaryLift(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got.Name, in)
	}

	_, ok := FindMatchingPrimaryLift("leg extension")
	assert.False(t, ok)
}

func TestNearestPrimaryLiftFallsBackToTokens(t *testing.T) {
	got, ok := NearestPrimaryLift("dumbbell row")
	require.True(t, ok)
	assert.Equal(t, "barbell row", got.Name)

	_, ok = NearestPrimaryLift("plank")
	assert.False(t, ok)
}

func TestBestTiesKeepCatalogOrder(t *testing.T) {
	m := Best(RankedScorer{}, "press", []string{"leg press", "bench press"})
	require.True(t, m.Found())
	assert.Equal(t, TierContains, m.Tier)
	// "leg press" is closer in length than "bench press".
	assert.Equal(t, 0, m.Index)

	m = Best(RankedScorer{}, "row", []string{"cable row", "seal row"})
	assert.Equal(t, 1, m.Index, "seal row is the closer containment")

	m = Best(RankedScorer{}, "a b", []string{"a c", "b d"})
	assert.Equal(t, TierTokens, m.Tier)
	assert.Equal(t, 0, m.Index, "equal scores resolve to the first candidate")
}

func TestMatchConfident(t *testing.T) {
	assert.True(t, Match{Index: 0, Tier: TierContains, Closeness: 0.1}.Confident())
	assert.True(t, Match{Index: 0, Tier: TierTokens, Closeness: 0.5}.Confident())
	assert.False(t, Match{Index: 0, Tier: TierTokens, Closeness: 0.34}.Confident())
}

func TestSupportingGroups(t *testing.T) {
	assert.Contains(t, SupportingGroups("Bench Press"), "triceps")
	assert.Nil(t, SupportingGroups("zumba"))
}
