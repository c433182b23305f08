// Package conduct records training sessions and aggregates who missed them.
package conduct

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/parade-state/paradestate"
)

// NoOutliers is written when everyone participated.
const NoOutliers = "None"

// Record is one row of the conduct table. Records are append-only.
type Record struct {
	Date          string // DDMMYYYY
	Group         string
	Name          string
	Total         int
	Participating int
	Outliers      string // comma-joined "ID(kind)" tokens
	Remarks       string
	Submitter     string
	Row           int
}

// OutlierTokens splits the outlier field, dropping blanks and "none".
func (r Record) OutlierTokens() []string {
	return SplitOutliers(r.Outliers)
}

// ParticipationRate is Participating / Total, or zero for an empty roster.
func (r Record) ParticipationRate() decimal.Decimal {
	if r.Total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(r.Participating)).
		Div(decimal.NewFromInt(int64(r.Total))).
		Round(4)
}

// Outlier is a person absent from a conduct and the reason.
type Outlier struct {
	ID   paradestate.PersonID
	Kind string
}

// Token renders the outlier as "ID(kind)".
func (o Outlier) Token() string {
	return fmt.Sprintf("%s(%s)", o.ID, o.Kind)
}

// FormatOutliers joins outliers for storage.
func FormatOutliers(outliers []Outlier) string {
	if len(outliers) == 0 {
		return NoOutliers
	}
	tokens := make([]string, len(outliers))
	for i, o := range outliers {
		tokens[i] = o.Token()
	}
	return strings.Join(tokens, ",")
}

// SplitOutliers splits a stored outlier field into tokens.
func SplitOutliers(field string) []string {
	var tokens []string
	for _, tok := range strings.Split(field, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" || strings.EqualFold(tok, "none") {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
