package sortutil

import (
	"sort"
	"strings"

	"github.com/skaphos/gitsync/internal/model"
)

// LessFold orders strings case-insensitively, falling back to byte order so
// the result is deterministic for names that differ only in case.
func LessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return a < b
	}
	return la < lb
}

// LessNamePath provides deterministic ordering by display name first, then by
// path for repositories that share a name.
func LessNamePath(nameI, pathI, nameJ, pathJ string) bool {
	if strings.EqualFold(nameI, nameJ) {
		return LessFold(pathI, pathJ)
	}
	return LessFold(nameI, nameJ)
}

// SortPaths orders paths case-insensitively.
func SortPaths(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return LessFold(paths[i], paths[j])
	})
}

// DedupeFold removes entries that equal an earlier entry ignoring case.
func DedupeFold(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := paths[:0]
	for _, p := range paths {
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// SortRepoStatuses orders status rows by Name, then Path.
func SortRepoStatuses(statuses []model.RepoStatus) {
	sort.SliceStable(statuses, func(i, j int) bool {
		return LessNamePath(statuses[i].Name, statuses[i].Path, statuses[j].Name, statuses[j].Path)
	})
}

// SortPullResults orders pull results by Name, then Path.
func SortPullResults(results []model.PullResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return LessNamePath(results[i].Name, results[i].Path, results[j].Name, results[j].Path)
	})
}
