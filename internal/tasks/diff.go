package tasks

import "resumalyzer/internal/types"

// DiffSkills returns b minus a as Added and a minus b as Removed, in source
// order. Matching is exact. Both lists are non-nil.
func DiffSkills(a, b []string) types.SkillDiff {
	return types.SkillDiff{
		Added:   difference(b, a),
		Removed: difference(a, b),
	}
}

func difference(from, minus []string) []string {
	exclude := make(map[string]struct{}, len(minus))
	for _, s := range minus {
		exclude[s] = struct{}{}
	}
	out := []string{}
	for _, s := range from {
		if _, ok := exclude[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
