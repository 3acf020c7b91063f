package matching

// PrimaryLift is an allow-listed lift eligible as a strength-goal target.
type PrimaryLift struct {
	Name       string
	Supporting []string // muscle groups that carry the lift
}

// PrimaryLifts is the allow-list, in lookup order.
var PrimaryLifts = []PrimaryLift{
	{Name: "bench press", Supporting: []string{"chest", "triceps", "front delts"}},
	{Name: "squat", Supporting: []string{"quads", "glutes", "hamstrings", "core"}},
	{Name: "deadlift", Supporting: []string{"hamstrings", "glutes", "lower back", "upper back"}},
	{Name: "overhead press", Supporting: []string{"shoulders", "triceps", "upper chest"}},
	{Name: "front squat", Supporting: []string{"quads", "core", "upper back"}},
	{Name: "barbell row", Supporting: []string{"lats", "upper back", "biceps"}},
	{Name: "pull up", Supporting: []string{"lats", "biceps", "upper back"}},
	{Name: "hip thrust", Supporting: []string{"glutes", "hamstrings"}},
	{Name: "clean and jerk", Supporting: []string{"quads", "glutes", "shoulders", "upper back"}},
	{Name: "snatch", Supporting: []string{"quads", "glutes", "shoulders", "upper back"}},
}

func primaryLiftNames() []string {
	names := make([]string, len(PrimaryLifts))
	for i, l := range PrimaryLifts {
		names[i] = l.Name
	}
	return names
}

// IsPrimaryLift is true when the normalized name equals an allow-listed lift
// or either one contains the other. "incline bench press" therefore counts.
func IsPrimaryLift(name string) bool {
	n := Normalize(name)
	if n == "" {
		return false
	}
	for _, l := range PrimaryLifts {
		tier, _ := RankedScorer{}.Score(n, l.Name)
		if tier >= TierContains {
			return true
		}
	}
	return false
}

// FindMatchingPrimaryLift returns the best substring-or-better match.
func FindMatchingPrimaryLift(name string) (PrimaryLift, bool) {
	m := Best(RankedScorer{}, name, primaryLiftNames())
	if !m.Found() || m.Tier < TierContains {
		return PrimaryLift{}, false
	}
	return PrimaryLifts[m.Index], true
}

// NearestPrimaryLift returns the closest allow-listed lift at any tier.
// Used for suggestions.
func NearestPrimaryLift(name string) (PrimaryLift, bool) {
	m := Best(RankedScorer{}, name, primaryLiftNames())
	if !m.Found() {
		return PrimaryLift{}, false
	}
	return PrimaryLifts[m.Index], true
}

// SupportingGroups returns the supporting muscle groups of the matching lift.
func SupportingGroups(name string) []string {
	if l, ok := FindMatchingPrimaryLift(name); ok {
		return l.Supporting
	}
	return nil
}
