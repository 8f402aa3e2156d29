package strata

// topoOrder computes a topological ordering of state keys from the
// declared dependency edges. nodes is in registration order; edges maps a
// key to the keys that must resolve after it. Ties are broken by
// registration order so the result is deterministic.
//
// Returns ErrCycle if the edges cannot be satisfied.
func topoOrder(nodes []string, edges map[string][]string) ([]string, error) {
	indeg := make(map[string]int, len(nodes))
	for _, n := range nodes {
		indeg[n] = 0
	}
	for _, succs := range edges {
		for _, s := range succs {
			indeg[s]++
		}
	}

	order := make([]string, 0, len(nodes))
	done := make(map[string]bool, len(nodes))
	for len(order) < len(nodes) {
		picked := ""
		for _, n := range nodes {
			if !done[n] && indeg[n] == 0 {
				picked = n
				break
			}
		}
		if picked == "" {
			return nil, ErrCycle
		}
		done[picked] = true
		order = append(order, picked)
		for _, s := range edges[picked] {
			indeg[s]--
		}
	}
	return order, nil
}
