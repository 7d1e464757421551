// Package validator quantifies, against live sampled data, how well a
// claimed {slot position -> remote column name} mapping actually holds. It
// never mutates a schema; its output is advisory.
package validator

import (
	"context"
	"fmt"
	"time"

	"jsonsqlmirror/internal/jsonsql"
)

// Outcome groups a validation result by how strongly the sampled data
// confirms the mapping.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeSuspect   Outcome = "suspect"
	OutcomeRejected  Outcome = "rejected"
)

// Classify buckets a match ratio into confirmed (>=0.95), suspect
// (0.80-0.95), or rejected (<0.80).
func Classify(matchRatio float64) Outcome {
	switch {
	case matchRatio >= 0.95:
		return OutcomeConfirmed
	case matchRatio >= 0.80:
		return OutcomeSuspect
	default:
		return OutcomeRejected
	}
}

// Result is the per-mapping validation outcome.
type Result struct {
	MatchRatio   float64
	SampleSize   int
	ValidatedAt  time.Time
	Dtype        DtypeFamily
	NullCount    int
	UniqueCount  int
	MinValue     *float64
	MaxValue     *float64
	MinString    *string
	MaxString    *string
	RemoteColumn string
	Outcome      Outcome
}

// Validator validates field mappings against a live remote table through a
// jsonsql.Client.
type Validator struct {
	Client     jsonsql.Client
	SampleSize int
	now        func() time.Time
}

// New returns a Validator with the specification's default sample size of
// 1000.
func New(client jsonsql.Client) *Validator {
	return &Validator{Client: client, SampleSize: 1000, now: time.Now}
}

func (v *Validator) sampleSize() int {
	if v.SampleSize > 0 {
		return v.SampleSize
	}
	return 1000
}

func (v *Validator) nowFunc() time.Time {
	if v.now != nil {
		return v.now()
	}
	return time.Now()
}

// ValidateFieldMapping samples both the full positional row set and the
// named remote column independently, compares them position-by-position,
// and summarizes the remote column's observed distribution.
func (v *Validator) ValidateFieldMapping(ctx context.Context, table string, localPosition int, remoteColumn string) (*Result, error) {
	sampleSize := v.sampleSize()

	all, err := v.Client.Execute(ctx, jsonsql.SelectStar(table, sampleSize))
	if err != nil {
		return nil, fmt.Errorf("validator: sampling %q: %w", table, err)
	}
	remote, err := v.Client.Execute(ctx, jsonsql.Request{
		Method: jsonsql.MethodSelect,
		Params: jsonsql.Params{Data: []string{remoteColumn}, From: table, Limit: limitPtr(sampleSize)},
	})
	if err != nil {
		return nil, fmt.Errorf("validator: sampling column %q of %q: %w", remoteColumn, table, err)
	}
	if len(all) == 0 || len(remote) == 0 {
		return nil, fmt.Errorf("validator: empty result from table %q", table)
	}

	total := len(all)
	if len(remote) < total {
		total = len(remote)
	}

	matches := 0
	var remoteValues []jsonsql.Value
	for i := 0; i < total; i++ {
		localVal := all[i].At(localPosition)
		remoteVal := remote[i].At(0)
		if valuesMatch(localVal, remoteVal) {
			matches++
		}
		remoteValues = append(remoteValues, remoteVal)
	}

	matchRatio := 0.0
	if total > 0 {
		matchRatio = float64(matches) / float64(total)
	}

	stats := summarize(remoteValues)

	res := &Result{
		MatchRatio:   matchRatio,
		SampleSize:   total,
		ValidatedAt:  v.nowFunc(),
		Dtype:        stats.dtype,
		NullCount:    stats.nullCount,
		UniqueCount:  stats.uniqueCount,
		MinValue:     stats.minNumber,
		MaxValue:     stats.maxNumber,
		MinString:    stats.minString,
		MaxString:    stats.maxString,
		RemoteColumn: remoteColumn,
	}
	res.Outcome = Classify(matchRatio)
	return res, nil
}

func valuesMatch(a, b jsonsql.Value) bool {
	if a.IsNull() && b.IsNull() {
		return true
	}
	if a.IsNull() || b.IsNull() {
		return false
	}
	return a.Native() == b.Native()
}

func limitPtr(n int) *int { return &n }

// ValidateTableSchema validates every {position -> remote column} pair in
// mappings, isolating per-field failures into the result entry rather than
// aborting the whole call.
func (v *Validator) ValidateTableSchema(ctx context.Context, table string, mappings map[int]string) map[int]*Result {
	out := make(map[int]*Result, len(mappings))
	for position, column := range mappings {
		res, err := v.ValidateFieldMapping(ctx, table, position, column)
		if err != nil {
			out[position] = &Result{RemoteColumn: column, ValidatedAt: v.nowFunc()}
			continue
		}
		out[position] = res
	}
	return out
}
