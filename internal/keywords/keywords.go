// Package keywords ranks the words of an idea with TextRank and proposes
// them as tag names.
package keywords

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kimhsiao/creatorplanner/internal/models"
	"github.com/kimhsiao/creatorplanner/internal/outline"
)

// DefaultLimit is the number of suggestions returned when none is requested.
const DefaultLimit = 5

// Ranker scores words by co-occurrence using TextRank
// (Mihalcea & Tarau, 2004).
type Ranker struct {
	window     int
	damping    float64
	epsilon    float64
	iterations int
}

// NewRanker returns a Ranker with a co-occurrence window of four words.
func NewRanker() *Ranker {
	return &Ranker{
		window:     4,
		damping:    0.85,
		epsilon:    0.0001,
		iterations: 100,
	}
}

// WithWindow sets how many following words count as neighbours.
func (r *Ranker) WithWindow(n int) *Ranker {
	if n > 0 {
		r.window = n
	}
	return r
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}'-]*`)

var stopWords = map[string]bool{
	"a": true, "about": true, "after": true, "all": true, "an": true,
	"and": true, "are": true, "as": true, "at": true, "be": true,
	"but": true, "by": true, "can": true, "could": true, "do": true,
	"for": true, "from": true, "get": true, "has": true, "have": true,
	"how": true, "i": true, "if": true, "in": true, "into": true,
	"is": true, "it": true, "its": true, "just": true, "me": true,
	"my": true, "not": true, "of": true, "on": true, "or": true,
	"our": true, "out": true, "should": true, "so": true, "than": true,
	"that": true, "the": true, "their": true, "them": true, "then": true,
	"these": true, "they": true, "this": true, "those": true, "to": true,
	"up": true, "was": true, "we": true, "what": true, "when": true,
	"which": true, "who": true, "why": true, "will": true, "with": true,
	"would": true, "you": true, "your": true,
}

// Words returns the lower-cased candidate words of text in order. Stop
// words, bare numbers and single letters are dropped.
func Words(text string) []string {
	var words []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		w = strings.Trim(w, "'-")
		if utf8.RuneCountInString(w) < 2 || stopWords[w] || isNumber(w) {
			continue
		}
		words = append(words, w)
	}
	return words
}

func isNumber(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Scored is a word and its TextRank score.
type Scored struct {
	Word  string
	Score float64
}

// Rank scores every distinct word in text, highest first. Ties are broken
// alphabetically so the order is stable.
func (r *Ranker) Rank(text string) []Scored {
	words := Words(text)
	if len(words) == 0 {
		return nil
	}

	g := make(map[string]map[string]bool)
	for i, w := range words {
		if g[w] == nil {
			g[w] = make(map[string]bool)
		}
		for j := i + 1; j < len(words) && j <= i+r.window; j++ {
			if words[j] == w {
				continue
			}
			if g[words[j]] == nil {
				g[words[j]] = make(map[string]bool)
			}
			g[w][words[j]] = true
			g[words[j]][w] = true
		}
	}

	scores := r.pageRank(g)
	out := make([]Scored, 0, len(scores))
	for w, s := range scores {
		out = append(out, Scored{Word: w, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Word < out[j].Word
	})
	return out
}

func (r *Ranker) pageRank(g map[string]map[string]bool) map[string]float64 {
	n := float64(len(g))
	scores := make(map[string]float64, len(g))
	for w := range g {
		scores[w] = 1 / n
	}

	for iter := 0; iter < r.iterations; iter++ {
		next := make(map[string]float64, len(g))
		delta := 0.0
		for w, neighbours := range g {
			sum := 0.0
			for nb := range neighbours {
				sum += scores[nb] / float64(len(g[nb]))
			}
			next[w] = (1-r.damping)/n + r.damping*sum
			delta = math.Max(delta, math.Abs(next[w]-scores[w]))
		}
		scores = next
		if delta < r.epsilon {
			break
		}
	}
	return scores
}

// IdeaText is the text an idea is ranked on: its title, description and
// the plain text of its outline.
func IdeaText(idea models.Idea) string {
	parts := []string{idea.Title, idea.Description, outline.PlainText(idea.Outline)}
	return strings.Join(parts, "\n")
}

// SuggestTags proposes up to limit tag names for idea, skipping names the
// idea already carries. A limit of zero or less means DefaultLimit.
func SuggestTags(idea models.Idea, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	have := make(map[string]bool, len(idea.Tags))
	for _, t := range idea.Tags {
		have[strings.ToLower(t.Name)] = true
	}

	var out []string
	for _, s := range NewRanker().Rank(IdeaText(idea)) {
		if have[s.Word] {
			continue
		}
		out = append(out, s.Word)
		if len(out) == limit {
			break
		}
	}
	return out
}
