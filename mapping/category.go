// Package mapping classifies raw interaction-type labels into relation categories.
package mapping

import (
	"regexp"
	"strings"
)

// Category is the coarse relation bucket of an interaction type.
type Category int

const (
	Unrecognized Category = iota
	Increases
	Decreases
	Association
	HasComponent
)

func (c Category) String() string {
	switch c {
	case Increases:
		return "increases"
	case Decreases:
		return "decreases"
	case Association:
		return "association"
	case HasComponent:
		return "hasComponent"
	default:
		return "unrecognized"
	}
}

// psiMILabel matches the PSI-MITAB controlled vocabulary form psi-mi:"MI:0915"(physical association).
var psiMILabel = regexp.MustCompile(`^[\w-]+:"?[^"(]*"?\((.*)\)$`)

// Normalize lower cases and trims a label and unwraps the PSI-MI term name.
func Normalize(label string) string {
	label = strings.TrimSpace(label)
	if m := psiMILabel.FindStringSubmatch(label); m != nil {
		label = m[1]
	}
	return strings.ToLower(strings.TrimSpace(label))
}
