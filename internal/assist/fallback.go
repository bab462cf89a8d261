package assist

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

var (
	sentenceSplit    = regexp.MustCompile(`[.!?]+`)
	titleSplit       = regexp.MustCompile(`[.!?]`)
	whitespace       = regexp.MustCompile(`\s+`)
	sentenceSpacing  = regexp.MustCompile(`([.!?])\s*([a-z])`)
	lonelyI          = regexp.MustCompile(`\bi\b`)
	aiWord           = regexp.MustCompile(`\bai\b`)
	translateTarget  = regexp.MustCompile(`(?i)translate.*?to\s+(\w+)`)
	capitalizedWord  = regexp.MustCompile(`\b[A-Z][a-z]+\b`)
	urgencyPattern   = regexp.MustCompile(`(?i)urgent|important|asap|deadline`)
	questionPattern  = regexp.MustCompile(`(?i)question|help|ask`)
	importanceMarker = []string{"important", "key", "main", "significant", "essential", "critical"}
)

// MaxFallbackTags caps the offline tag suggestions
const MaxFallbackTags = 5

// Synthesizer produces plausible assist output from the input text alone.
// It is safe for concurrent use.
type Synthesizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthesizer creates a synthesizer. rng drives the one random choice
// (chat replies); nil seeds from the clock.
func NewSynthesizer(rng *rand.Rand) *Synthesizer {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Synthesizer{rng: rng}
}

// splitSentences splits on terminator runs and drops blank pieces
func splitSentences(text string) []string {
	var out []string
	for _, s := range sentenceSplit.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// clip shortens s to at most n runes, cutting at a word boundary when it can
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)[:n]
	cut := string(r)
	if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}

// Summary keeps the opening sentence, plus an important or closing sentence
// for long text
func (s *Synthesizer) Summary(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < 50 {
		return text
	}

	sentences := splitSentences(text)
	var summary string
	switch {
	case len(sentences) <= 1:
		summary = text
	case len(sentences) == 2:
		summary = sentences[0] + "."
	default:
		summary = sentences[0] + "."
		if utf8.RuneCountInString(text) > 300 {
			extra := sentences[len(sentences)-1]
			for _, candidate := range sentences[1:] {
				if containsAny(strings.ToLower(candidate), importanceMarker) {
					extra = candidate
					break
				}
			}
			summary += " " + extra + "."
		}
	}

	// A single long sentence still has to come back shorter
	if len(summary) >= len(text) {
		summary = clip(text, utf8.RuneCountInString(text)/2) + "..."
	}
	return summary
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Expansion appends a canned paragraph chosen by sniffing the input's topic
func (s *Synthesizer) Expansion(text string) string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return clean
	}
	lower := strings.ToLower(clean)
	hasAI := aiWord.MatchString(lower)

	if utf8.RuneCountInString(clean) >= 100 {
		if hasAI && strings.Contains(lower, "business") {
			return clean + "\n\n" + expansionAIBusiness
		}
		return clean + "\n\n" + expansionGenericLong
	}

	switch {
	case containsAny(lower, []string{"apple", "fruit"}):
		return clean + "\n\n" + expansionFood
	case strings.Contains(lower, "love") && !strings.Contains(lower, "business"):
		return clean + "\n\n" + expansionLove
	case hasAI || containsAny(lower, []string{"artificial intelligence", "technology"}):
		return clean + "\n\n" + expansionAI
	case containsAny(lower, []string{"business", "company", "work"}):
		return clean + "\n\n" + expansionBusiness
	case containsAny(lower, []string{"learn", "study", "education"}):
		return clean + "\n\n" + expansionLearning
	case containsAny(lower, []string{"health", "wellness", "exercise"}):
		return clean + "\n\n" + expansionHealth
	case containsAny(lower, []string{"travel", "trip", "vacation"}):
		return clean + "\n\n" + expansionTravel
	}

	keyword := "topic"
	for _, w := range strings.Fields(clean) {
		if utf8.RuneCountInString(w) > 3 {
			keyword = strings.ToLower(w)
			break
		}
	}
	return clean + "\n\n" + fmt.Sprintf(expansionGenericShort, keyword)
}

// Improvement drops repeated sentences and tidies capitalization and
// punctuation
func (s *Synthesizer) Improvement(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	seen := make(map[string]bool)
	var unique []string
	for _, sentence := range splitSentences(text) {
		key := strings.ToLower(sentence)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, sentence)
	}

	improved := strings.Join(unique, ". ")
	improved = whitespace.ReplaceAllString(improved, " ")
	improved = sentenceSpacing.ReplaceAllString(improved, "$1 $2")
	improved = lonelyI.ReplaceAllString(improved, "I")
	improved = strings.TrimSpace(improved)

	if improved != "" {
		r, size := utf8.DecodeRuneInString(improved)
		improved = string(unicode.ToUpper(r)) + improved[size:]
		if !strings.ContainsAny(improved[len(improved)-1:], ".!?") {
			end := "."
			if t := strings.TrimSpace(text); strings.ContainsAny(t[len(t)-1:], "!?") {
				end = t[len(t)-1:]
			}
			improved += end
		}
	}

	if improved == text || len(improved) < len(text)/2 {
		lower := strings.ToLower(text)
		if aiWord.MatchString(lower) && strings.Contains(lower, "business") {
			return improvementAIBusiness
		}
		if improved == "" {
			return text
		}
	}
	return improved
}

// Title takes the first sentence, shortened to fit
func (s *Synthesizer) Title(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < 10 {
		return "Quick Note"
	}

	first := strings.TrimSpace(titleSplit.Split(text, 2)[0])
	if utf8.RuneCountInString(first) > 50 {
		return string([]rune(first)[:47]) + "..."
	}
	if first == "" {
		return "Note"
	}
	return first
}

// Translation is a placeholder that says plainly no translation happened.
// The target language is read from instruction ("translate ... to X").
func (s *Synthesizer) Translation(text, instruction string) string {
	target := "Spanish"
	if m := translateTarget.FindStringSubmatch(instruction); m != nil {
		target = m[1]
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Sprintf("Translation to %s is not available at the moment.", target)
	}

	quoted := text
	if utf8.RuneCountInString(text) > 100 {
		quoted = string([]rune(text)[:100]) + "..."
	}
	return fmt.Sprintf("[Translation to %s is unavailable right now. Original text: %q]", target, quoted)
}

// topicTags is checked in order; a tag is added when any keyword appears
var topicTags = []struct {
	tag      string
	keywords []string
}{
	{"meeting", []string{"meeting", "discussion"}},
	{"project", []string{"project", "task", "work"}},
	{"idea", []string{"idea", "concept", "brainstorm"}},
	{"note", []string{"note", "remember"}},
	{"todo", []string{"todo", "task", "action"}},
	{"research", []string{"research", "study", "analysis"}},
	{"personal", []string{"personal", "diary", "journal"}},
	{"business", []string{"business", "company", "corporate"}},
	{"finance", []string{"money", "finance", "budget", "cost"}},
	{"tech", []string{"technology", "software", "code", "programming"}},
	{"health", []string{"health", "medical", "wellness"}},
	{"travel", []string{"travel", "trip", "vacation"}},
	{"food", []string{"food", "recipe", "cooking"}},
	{"learning", []string{"learn", "education", "course"}},
}

// Tags suggests at most MaxFallbackTags lowercase, distinct tags
func (s *Synthesizer) Tags(text string) []string {
	lower := strings.ToLower(text)
	tags := make([]string, 0, MaxFallbackTags)
	seen := make(map[string]bool)
	add := func(tag string) {
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	for _, t := range topicTags {
		if containsAny(lower, t.keywords) {
			add(t.tag)
		}
	}
	for _, word := range capitalizedWord.FindAllString(text, -1) {
		if len(word) > 3 {
			add(strings.ToLower(word))
		}
	}
	if urgencyPattern.MatchString(text) {
		add("urgent")
	}
	if questionPattern.MatchString(text) {
		add("question")
	}

	if len(tags) > MaxFallbackTags {
		tags = tags[:MaxFallbackTags]
	}
	return tags
}

var chatReplies = []string{
	"That's an interesting point! I'd be happy to help you explore this topic further.",
	"I can see you're working on something important. Let me know how I can assist you better.",
	"Great question! While I can't access my full capabilities right now, I'm here to help with your notes.",
	"I appreciate you sharing this with me. Your ideas have potential for further development.",
}

// Chat returns one of the canned replies
func (s *Synthesizer) Chat() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return chatReplies[s.rng.IntN(len(chatReplies))]
}
