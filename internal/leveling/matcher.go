package leveling

import (
	"cmp"
	"slices"
	"strings"
)

// GeneralGuideID is the catch-all guide. Further general guides are named
// general-<slug>.
const GeneralGuideID = "general"

// IsGeneralID reports whether id names a general guide.
func IsGeneralID(id string) bool {
	return id == GeneralGuideID || (strings.HasPrefix(id, GeneralGuideID+"-") && len(id) > len(GeneralGuideID)+1)
}

type candidate struct {
	id    string
	level Level
}

// SelectGuides picks up to maxGuides guide identifiers from available for
// target, in priority order:
//
//  1. the guide for target itself, if available;
//  2. other guides of the same family, nearest ordinal first, ties broken
//     toward the lower ordinal;
//  3. general guides, "general" first and the rest lexically.
//
// Identifiers that are neither canonical levels nor general guides are
// ignored. The result never contains duplicates and is empty, not nil, when
// nothing qualifies.
func SelectGuides(target Level, available []string, maxGuides int) []string {
	out := make([]string, 0, max(maxGuides, 0))
	if maxGuides <= 0 {
		return out
	}

	seen := make(map[string]struct{}, len(available))
	var exact string
	var family []candidate
	var general []string
	for _, id := range available {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if IsGeneralID(id) {
			general = append(general, id)
			continue
		}
		lvl, err := ParseLevel(id)
		if err != nil || lvl.String() != id {
			continue
		}
		switch {
		case !target.IsZero() && lvl == target:
			exact = id
		case lvl.Family() == target.Family():
			family = append(family, candidate{id: id, level: lvl})
		}
	}

	slices.SortFunc(family, func(a, b candidate) int {
		return cmp.Or(
			cmp.Compare(distance(a.level, target), distance(b.level, target)),
			cmp.Compare(a.level.Ordinal(), b.level.Ordinal()),
			strings.Compare(a.id, b.id),
		)
	})
	slices.SortFunc(general, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == GeneralGuideID:
			return -1
		case b == GeneralGuideID:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})

	add := func(id string) bool {
		out = append(out, id)
		return len(out) < maxGuides
	}
	if exact != "" && !add(exact) {
		return out
	}
	for _, c := range family {
		if !add(c.id) {
			return out
		}
	}
	for _, id := range general {
		if !add(id) {
			return out
		}
	}
	return out
}

func distance(a, b Level) int {
	d := a.Ordinal() - b.Ordinal()
	if d < 0 {
		return -d
	}
	return d
}
