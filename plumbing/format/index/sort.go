package index

import "sort"

// sortEntries orders entries by path (byte value), then by stage.
func sortEntries(e []*Entry) {
	sort.SliceStable(e, func(i, j int) bool {
		if e[i].Name != e[j].Name {
			return e[i].Name < e[j].Name
		}
		return e[i].Stage < e[j].Stage
	})
}

func sortStrings(s []string) { sort.Strings(s) }
