// Package tagging suggests tags for note text from keyword rules.
package tagging

import (
	"regexp"
	"sort"

	"github.com/notely/notely/internal/core"
)

// Rule maps a caseless pattern to the tag it implies
type Rule struct {
	Pattern *regexp.Regexp
	Tag     string
}

// Rules is the ordered rule table. It is never mutated after init.
var Rules = []Rule{
	{regexp.MustCompile(`(?i)\b(buy|purchase|order)\b`), "shopping"},
	{regexp.MustCompile(`(?i)\b(meeting|standup|retro|zoom)\b`), "meeting"},
	{regexp.MustCompile(`(?i)\b(todo|task|fix|bug)\b`), "task"},
	{regexp.MustCompile(`(?i)\b(urgent|asap|deadlines?)\b`), "urgent"},
	{regexp.MustCompile(`(?i)\b(btc|eth|crypto\w*|\w*coins?)\b`), "crypto"},
	{regexp.MustCompile(`(?i)\b(aapl|msft|googl|tsla|stocks?)\b`), "stocks"},
}

// AutoTags returns the sorted, de-duplicated tags whose rule matches text
func AutoTags(text string) []string {
	set := make(map[string]struct{})
	for _, r := range Rules {
		if r.Pattern.MatchString(text) {
			set[r.Tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Reconcile recomputes the classifier's share of a tag list after the text
// changed. owned holds the tags the classifier added last time; they are
// dropped from base before the new suggestions are merged in, so a tag
// whose keyword was removed goes away while manual tags stay. It returns
// the sorted tag list and the tags the classifier now owns.
func Reconcile(base, owned []string, text string) (tags, auto []string) {
	prev := make(map[string]bool, len(owned))
	for _, t := range owned {
		prev[t] = true
	}

	manual := make(map[string]bool)
	tags = []string{}
	for _, t := range core.UniqueTags(base) {
		if prev[t] {
			continue
		}
		manual[t] = true
		tags = append(tags, t)
	}

	auto = []string{}
	for _, t := range AutoTags(text) {
		if manual[t] {
			continue
		}
		auto = append(auto, t)
		tags = append(tags, t)
	}

	sort.Strings(tags)
	return tags, auto
}

// Merge unions the tags a user picked with the suggested ones.
// Manual tags keep their order; new suggestions follow in sorted order.
func Merge(manual, suggested []string) []string {
	return core.UniqueTags(append(append([]string{}, manual...), suggested...))
}
