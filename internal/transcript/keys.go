package transcript

import (
	"fmt"
	"sort"
	"strings"
)

// VersionedKey builds the storage key for one judge-loop round snapshot.
func VersionedKey(name string, round int) string {
	return fmt.Sprintf("%s_%d", name, round)
}

// ParseRound extracts the round number from a versioned key for the given
// analysis type. Edit sub-versions of the form "name_0_1" are excluded: the
// remainder after "name_" must be digits only.
func ParseRound(key, name string) (int, bool) {
	rest, ok := strings.CutPrefix(key, name+"_")
	if !ok || rest == "" {
		return 0, false
	}
	round := 0
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
		round = round*10 + int(r-'0')
	}
	return round, true
}

// LatestRound returns the highest round number stored for an analysis type.
func LatestRound(analysis map[string]*Result, name string) (int, bool) {
	latest, found := 0, false
	for key := range analysis {
		round, ok := ParseRound(key, name)
		if !ok {
			continue
		}
		if !found || round > latest {
			latest = round
			found = true
		}
	}
	return latest, found
}

// Rounds returns the sorted round numbers stored for an analysis type.
func Rounds(analysis map[string]*Result, name string) []int {
	var rounds []int
	for key := range analysis {
		if round, ok := ParseRound(key, name); ok {
			rounds = append(rounds, round)
		}
	}
	sort.Ints(rounds)
	return rounds
}
