package engine

import (
	"sort"

	"github.com/tbeckett/grammarsmith/pkg/models"
)

// GroupByDependency partitions tasks into an ordered sequence of waves.
// Every task lands in exactly one wave, and any dependency present in the
// input set completes in an earlier wave. Dependencies on IDs outside the
// input set are treated as satisfied.
//
// Cyclic inputs do not error: when a full scan admits nothing, the first
// remaining task in priority order is force-admitted into its own wave so
// grouping always terminates. The resulting order may then violate the
// declared dependencies inside the cycle.
func GroupByDependency(tasks []*models.Task) [][]*models.Task {
	if len(tasks) == 0 {
		return nil
	}

	sorted := make([]*models.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	known := make(map[string]bool, len(sorted))
	for _, t := range sorted {
		known[t.ID] = true
	}

	processed := make(map[string]bool, len(sorted))
	var waves [][]*models.Task

	remaining := sorted
	for len(remaining) > 0 {
		var wave []*models.Task
		var next []*models.Task

		for _, t := range remaining {
			if depsSatisfied(t, known, processed) {
				wave = append(wave, t)
			} else {
				next = append(next, t)
			}
		}

		if len(wave) == 0 {
			// Every remaining task has an unsatisfied dependency among
			// the remaining tasks: a cycle. Force-admit the first task
			// in priority order to guarantee progress.
			forced := remaining[0]
			debugLog("[grouper] dependency cycle detected, force-admitting task %s", forced.ID)
			wave = append(wave, forced)
			next = remaining[1:]
		}

		for _, t := range wave {
			processed[t.ID] = true
		}
		waves = append(waves, wave)
		remaining = next
	}

	debugLog("[grouper] grouped %d tasks into %d waves", len(tasks), len(waves))
	return waves
}

// depsSatisfied reports whether every tracked dependency of t has been
// admitted to an earlier wave. Untracked dependency IDs are satisfied by
// definition.
func depsSatisfied(t *models.Task, known, processed map[string]bool) bool {
	for _, dep := range t.DependsOn {
		if !known[dep] {
			continue
		}
		if !processed[dep] {
			return false
		}
	}
	return true
}
