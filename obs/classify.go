package obs

import "github.com/obsforge/obsvalidate/types"

// Classify maps a raw observation filename to its canonical observation
// type. It evaluates only the rules scoped to category, in declared order,
// and returns false when no rule matches (or a constructed identifier's
// expected substrings are absent). Pure function of (category, filename,
// table); malformed input never produces an error, only a miss.
func (t Table) Classify(category types.Category, filename string) (types.ObservationTypeID, bool) {
	for _, rule := range t[category] {
		switch rule.Kind {
		case FixedMatch:
			if rule.Match(filename) {
				return rule.ID, true
			}
		case ConstructedID:
			if id, ok := rule.Construct(filename); ok {
				return id, true
			}
		}
	}
	return "", false
}
