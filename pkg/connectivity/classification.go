// Package connectivity answers two questions about a building model: what kind
// of element is this, and which elements touch it.
package connectivity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Classification is the role an element plays in a conduit run.
type Classification int

const (
	// Unclassified is the zero value and never returned with a nil error.
	Unclassified Classification = iota
	RunSegment
	Fitting
	JunctionBox
)

func (c Classification) String() string {
	switch c {
	case RunSegment:
		return "run_segment"
	case Fitting:
		return "fitting"
	case JunctionBox:
		return "junction_box"
	default:
		return "unclassified"
	}
}

// ParseClassification accepts the names produced by String.
func ParseClassification(s string) (Classification, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "run_segment":
		return RunSegment, nil
	case "fitting":
		return Fitting, nil
	case "junction_box":
		return JunctionBox, nil
	default:
		return Unclassified, fmt.Errorf("unknown classification %q", s)
	}
}

// ErrUnclassifiableElement is returned for an element whose category has no classification.
var ErrUnclassifiableElement = errors.New("unclassifiable element")

// Built-in categories of the host platform.
const (
	CategoryConduits           = "Conduits"
	CategoryConduitFittings    = "Conduit Fittings"
	CategoryElectricalFixtures = "Electrical Fixtures"
	CategoryJunctionBoxes      = "Junction Boxes"
)

// Classifier maps element categories to classifications.
type Classifier struct {
	byCategory map[string]Classification
}

// DefaultClassifier classifies the built-in conduit, fitting and fixture categories.
func DefaultClassifier() *Classifier {
	return NewClassifier(map[string]Classification{
		CategoryConduits:           RunSegment,
		CategoryConduitFittings:    Fitting,
		CategoryElectricalFixtures: JunctionBox,
		CategoryJunctionBoxes:      JunctionBox,
	})
}

// NewClassifier copies mapping. Categories mapped to Unclassified are ignored.
func NewClassifier(mapping map[string]Classification) *Classifier {
	c := &Classifier{byCategory: make(map[string]Classification, len(mapping))}
	for cat, class := range mapping {
		if class != Unclassified {
			c.byCategory[cat] = class
		}
	}
	return c
}

// Classify returns the classification of category.
func (c *Classifier) Classify(category string) (Classification, error) {
	class, ok := c.byCategory[category]
	if !ok {
		return Unclassified, fmt.Errorf("category %q: %w", category, ErrUnclassifiableElement)
	}
	return class, nil
}

// Categories returns the categories mapped to class, sorted.
func (c *Classifier) Categories(class Classification) []string {
	var out []string
	for cat, cl := range c.byCategory {
		if cl == class {
			out = append(out, cat)
		}
	}
	sort.Strings(out)
	return out
}
