package ml

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

type ObesityLevel int

const (
	InsufficientWeight ObesityLevel = iota
	NormalWeight
	OverweightLevelI
	OverweightLevelII
	ObesityTypeI
	ObesityTypeII
	ObesityTypeIII
)

const NumLevels = 7

var levelNames = [NumLevels]string{
	InsufficientWeight: "Insufficient Weight",
	NormalWeight:       "Normal Weight",
	OverweightLevelI:   "Overweight Level I",
	OverweightLevelII:  "Overweight Level II",
	ObesityTypeI:       "Obesity Type I",
	ObesityTypeII:      "Obesity Type II",
	ObesityTypeIII:     "Obesity Type III",
}

func (l ObesityLevel) String() string {
	if l < 0 || int(l) >= NumLevels {
		return fmt.Sprintf("ObesityLevel(%d)", int(l))
	}
	return levelNames[l]
}

func (l ObesityLevel) Index() int { return int(l) }

func LevelFromIndex(index int) (ObesityLevel, error) {
	switch ObesityLevel(index) {
	case InsufficientWeight, NormalWeight, OverweightLevelI, OverweightLevelII,
		ObesityTypeI, ObesityTypeII, ObesityTypeIII:
		return ObesityLevel(index), nil
	default:
		return 0, &UnknownClassError{Index: index}
	}
}

func Levels() []ObesityLevel {
	levels := make([]ObesityLevel, NumLevels)
	for i := range levels {
		levels[i] = ObesityLevel(i)
	}
	return levels
}

// ParseObesityLevel accepts display strings and dataset labels such as "Overweight_Level_I".
func ParseObesityLevel(s string) (ObesityLevel, error) {
	folder := cases.Fold()
	key := normalizeLabel(folder, s)
	for i, name := range levelNames {
		if normalizeLabel(folder, name) == key {
			return ObesityLevel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown obesity level %q", s)
}

func normalizeLabel(folder cases.Caser, s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	return folder.String(strings.Join(strings.Fields(s), " "))
}
