/*
aggregate.go - Outlier frequency across conducts

PURPOSE:
  Answers "who keeps missing this conduct, and why". Conduct records are
  filtered by group and conduct name, their outlier tokens collected, and
  the tokens tallied.

MATCHING:
  1. Exact: normalized group AND normalized name equal (case, spacing and
     punctuation ignored).
  2. Fallback: when nothing matches exactly, every distinct (group, name)
     pair in the data is scored against the query with Similarity. The best
     pair is accepted only if its score reaches Threshold.
  3. Otherwise Match.Found is false. That is a normal, empty answer.

SEE ALSO:
  - similarity.go: Default sequence-matcher ratio
*/
package conduct

import (
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/parade-state/paradestate"
)

// DefaultThreshold is the minimum similarity for a fallback match.
const DefaultThreshold = 0.6

// SimilarityFunc scores two strings on a 0..1 scale.
type SimilarityFunc func(a, b string) float64

// Aggregator collects and tallies outlier tokens.
type Aggregator struct {
	log        *zap.Logger
	similarity SimilarityFunc
	threshold  float64
}

// NewAggregator creates an aggregator with SequenceRatio similarity. A
// threshold outside (0, 1] falls back to DefaultThreshold.
func NewAggregator(log *zap.Logger, threshold float64) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Aggregator{log: log, similarity: SequenceRatio, threshold: threshold}
}

// WithSimilarity swaps the scoring function.
func (a *Aggregator) WithSimilarity(fn SimilarityFunc) *Aggregator {
	if fn != nil {
		a.similarity = fn
	}
	return a
}

// Threshold is the configured fallback gate.
func (a *Aggregator) Threshold() float64 { return a.threshold }

// Match is the result of an outlier query.
type Match struct {
	Found    bool     `json:"found"`
	Fuzzy    bool     `json:"fuzzy"`
	Group    string   `json:"group,omitempty"`
	Name     string   `json:"name,omitempty"`
	Score    float64  `json:"score,omitempty"`
	Sessions int      `json:"sessions"`
	Tokens   []string `json:"tokens"`
}

type conductKey struct {
	group string
	name  string
}

func keyOf(group, name string) conductKey {
	return conductKey{
		group: paradestate.NormalizeGroupLabel(group),
		name:  paradestate.NormalizeGroupLabel(name),
	}
}

func (k conductKey) String() string { return k.group + " " + k.name }

// CollectOutlierTokens gathers the outlier tokens of every record matching
// (group, name), falling back to the most similar pair when needed.
func (a *Aggregator) CollectOutlierTokens(records []Record, group, name string) Match {
	want := keyOf(group, name)
	if m := collect(records, want); m.Found {
		return m
	}

	var (
		best      conductKey
		bestScore float64
		seen      = make(map[conductKey]bool)
	)
	for _, rec := range records {
		k := keyOf(rec.Group, rec.Name)
		if seen[k] {
			continue
		}
		seen[k] = true
		if score := a.similarity(want.String(), k.String()); score > bestScore {
			best, bestScore = k, score
		}
	}

	if bestScore < a.threshold {
		a.log.Info("No conduct matches outlier query",
			zap.String("group", group),
			zap.String("conduct", name),
			zap.Float64("best_score", bestScore))
		return Match{Tokens: []string{}}
	}

	m := collect(records, best)
	m.Fuzzy = true
	m.Score = bestScore
	a.log.Debug("Outlier query matched approximately",
		zap.String("query", want.String()),
		zap.String("matched", best.String()),
		zap.Float64("score", bestScore))
	return m
}

func collect(records []Record, want conductKey) Match {
	m := Match{Tokens: []string{}}
	for _, rec := range records {
		if keyOf(rec.Group, rec.Name) != want {
			continue
		}
		if !m.Found {
			m.Found = true
			m.Group = rec.Group
			m.Name = rec.Name
			m.Score = 1
		}
		m.Sessions++
		m.Tokens = append(m.Tokens, rec.OutlierTokens()...)
	}
	return m
}

// Tally is a token and how often it appeared.
type Tally struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Rate is Count / sessions, or zero when there were no sessions.
func (t Tally) Rate(sessions int) decimal.Decimal {
	if sessions <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(t.Count)).Div(decimal.NewFromInt(int64(sessions))).Round(4)
}

// TallyFrequency counts tokens and sorts by count, highest first. Ties keep
// first-appearance order.
func TallyFrequency(tokens []string) []Tally {
	index := make(map[string]int)
	tallies := []Tally{}
	for _, tok := range tokens {
		if i, ok := index[tok]; ok {
			tallies[i].Count++
			continue
		}
		index[tok] = len(tallies)
		tallies = append(tallies, Tally{Token: tok, Count: 1})
	}
	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].Count > tallies[j].Count
	})
	return tallies
}
