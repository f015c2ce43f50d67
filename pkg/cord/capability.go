package cord

import "slices"

// Capability describes what a module handler consumes.
type Capability struct {
	Name        string
	Description string
	Interest    InterestSet
}

// InterestSet describes event selection criteria for capability negotiation.
type InterestSet struct {
	// Kinds restricts delivery to the listed event kinds. Empty means all kinds.
	Kinds []EventKind
	// Sources restricts delivery to the listed sources. Empty means all sources.
	Sources []EventSource
}

// Matches reports whether an event satisfies the declared interest set.
func (i InterestSet) Matches(event *Event) bool {
	if event == nil {
		return false
	}
	if len(i.Kinds) > 0 && !slices.Contains(i.Kinds, event.Kind) {
		return false
	}
	if len(i.Sources) > 0 && !sourceSelected(i.Sources, event.Source) {
		return false
	}

	return true
}

// sourceSelected reports whether any selector matches source. Empty selector
// fields act as wildcards.
func sourceSelected(selectors []EventSource, source EventSource) bool {
	for _, selector := range selectors {
		if selector.Platform != "" && selector.Platform != source.Platform {
			continue
		}
		if selector.ID != "" && selector.ID != source.ID {
			continue
		}

		return true
	}

	return false
}
