package pipeline

// Outcome classifies the result of processing one item in a stage loop.
// Submission, retrieval, and extraction all share the same shape: process
// the item, classify the outcome, bump a counter, move on. No outcome ever
// aborts the loop.
type Outcome int

const (
	// OutcomeSuccess means the item's effect is durably recorded.
	OutcomeSuccess Outcome = iota

	// OutcomeDuplicate means the store reported the effect was already
	// recorded by an earlier run. Success-equivalent.
	OutcomeDuplicate

	// OutcomeSkipped means the item carried nothing to record.
	OutcomeSkipped

	// OutcomeInvalid means the payload classified still-processing or
	// invalid-error; the item is left untouched for a future pass.
	OutcomeInvalid

	// OutcomeFailed means a transient external or store failure; the item
	// is left for retry.
	OutcomeFailed
)

// Counters aggregates item outcomes for one pass. The zero value is ready
// to use.
type Counters struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Duplicate  int `json:"duplicate"`
	Skipped    int `json:"skipped"`
	Invalid    int `json:"invalid"`
	Failed     int `json:"failed"`
}

// Record tallies one item outcome.
func (c *Counters) Record(outcome Outcome) {
	c.Total++
	switch outcome {
	case OutcomeSuccess:
		c.Successful++
	case OutcomeDuplicate:
		c.Duplicate++
	case OutcomeSkipped:
		c.Skipped++
	case OutcomeInvalid:
		c.Invalid++
	case OutcomeFailed:
		c.Failed++
	}
}
