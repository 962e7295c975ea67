// Package tally turns backend results into display rows
package tally

import (
	"github.com/shopspring/decimal"

	"github.com/castvote-dev/castvote/internal/cli/client"
)

var hundred = decimal.NewFromInt(100)

// Row is one ranked line of the results table
type Row struct {
	Rank      int
	Candidate client.Candidate
	Votes     int
	// Share is the vote share in percent, rounded to one decimal
	Share decimal.Decimal
}

// Percent formats the share the way the results view shows it
func (r Row) Percent(total int) string {
	if total == 0 {
		return "0%"
	}
	return r.Share.StringFixed(1) + "%"
}

// Summary is the computed results view
type Summary struct {
	Total int
	Rows  []Row
}

// Summarize ranks candidates in the order the backend returned them and
// computes each one's share of the total.
func Summarize(results []client.Candidate) Summary {
	total := 0
	for _, c := range results {
		total += max(c.VoteCount, 0)
	}

	rows := make([]Row, 0, len(results))
	for i, c := range results {
		votes := max(c.VoteCount, 0)
		share := decimal.Zero
		if total > 0 {
			share = decimal.NewFromInt(int64(votes)).
				Div(decimal.NewFromInt(int64(total))).
				Mul(hundred).
				Round(1)
		}
		rows = append(rows, Row{
			Rank:      i + 1,
			Candidate: c,
			Votes:     votes,
			Share:     share,
		})
	}

	return Summary{Total: total, Rows: rows}
}

// Percent formats the share of row i
func (s Summary) Percent(i int) string {
	return s.Rows[i].Percent(s.Total)
}

// Leader returns the first ranked row, or false when there are no votes
func (s Summary) Leader() (Row, bool) {
	if s.Total == 0 || len(s.Rows) == 0 {
		return Row{}, false
	}
	return s.Rows[0], true
}
