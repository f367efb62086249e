// Package leveling selects and assembles leveling guides for a target level.
//
// Levels come in two families. Individual contributors run uni1 through
// uni7; managers run mgr3 through mgr7 and continue into the executive
// levels vp and svp, which order above mgr7.
package leveling

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jharjadi/jdgen/internal/model"
)

// Family groups levels that can stand in for each other.
type Family int

const (
	FamilyIndividual Family = iota + 1
	FamilyManagement
)

func (f Family) String() string {
	switch f {
	case FamilyIndividual:
		return "individual"
	case FamilyManagement:
		return "management"
	default:
		return "unknown"
	}
}

// Ordinals of the executive levels, above every mgrN a guide set defines.
const (
	OrdinalVP  = 8
	OrdinalSVP = 9
)

var levelPattern = regexp.MustCompile(`^(?:(uni|mgr)([0-9]{1,2})|(vp|svp))$`)

// Level is a validated level identifier. Construct with ParseLevel.
type Level struct {
	family    Family
	ordinal   int
	executive bool
}

// ParseLevel trims and lower-cases raw and validates it against the level
// grammar. Ordinal zero is rejected.
func ParseLevel(raw string) (Level, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	m := levelPattern.FindStringSubmatch(s)
	if m == nil {
		return Level{}, fmt.Errorf("%w: %q", model.ErrInvalidLevelFormat, raw)
	}
	switch m[3] {
	case "vp":
		return Level{family: FamilyManagement, ordinal: OrdinalVP, executive: true}, nil
	case "svp":
		return Level{family: FamilyManagement, ordinal: OrdinalSVP, executive: true}, nil
	}

	n, err := strconv.Atoi(m[2])
	if err != nil || n == 0 {
		return Level{}, fmt.Errorf("%w: %q", model.ErrInvalidLevelFormat, raw)
	}
	f := FamilyIndividual
	if m[1] == "mgr" {
		f = FamilyManagement
	}
	return Level{family: f, ordinal: n}, nil
}

// MustParseLevel is ParseLevel for constants; it panics on error.
func MustParseLevel(raw string) Level {
	l, err := ParseLevel(raw)
	if err != nil {
		panic(err)
	}
	return l
}

func (l Level) Family() Family { return l.family }
func (l Level) Ordinal() int   { return l.ordinal }

// IsExecutive reports whether l is vp or svp.
func (l Level) IsExecutive() bool { return l.executive }

// IsZero reports whether l was never parsed.
func (l Level) IsZero() bool { return l.family == 0 }

// String returns the canonical identifier, e.g. "uni4", "mgr5", "vp".
func (l Level) String() string {
	switch {
	case l.IsZero():
		return ""
	case l.executive && l.ordinal == OrdinalVP:
		return "vp"
	case l.executive:
		return "svp"
	case l.family == FamilyManagement:
		return "mgr" + strconv.Itoa(l.ordinal)
	default:
		return "uni" + strconv.Itoa(l.ordinal)
	}
}
