package drift

import "sort"

// Report maps each category to the sorted hostnames observed during the
// session that no baseline pattern authorizes. A category with no
// baseline patterns reports its entire observed set.
type Report map[Category][]string

// Compare diffs the observed sets against the baseline, category by
// category.
func Compare(obs Observations, baseline *Baseline) Report {
	report := make(Report, len(obs))
	for _, cat := range Categories() {
		observed := obs[cat]
		if !baseline.HasCategory(cat) {
			report[cat] = sortedCopy(observed)
			continue
		}
		unauthorized := make([]string, 0, len(observed))
		for _, host := range observed {
			if !baseline.Authorized(cat, host) {
				unauthorized = append(unauthorized, host)
			}
		}
		sort.Strings(unauthorized)
		report[cat] = unauthorized
	}
	return report
}

// Total returns the number of unauthorized hosts across all categories.
func (r Report) Total() int {
	n := 0
	for _, hosts := range r {
		n += len(hosts)
	}
	return n
}

func sortedCopy(hosts []string) []string {
	out := append([]string(nil), hosts...)
	sort.Strings(out)
	return out
}
