package pipeline_test

import (
	"testing"

	"github.com/jonesrussell/lead-harvester/internal/pipeline"
)

func TestCounters_Record(t *testing.T) {
	var counters pipeline.Counters

	outcomes := []pipeline.Outcome{
		pipeline.OutcomeSuccess,
		pipeline.OutcomeSuccess,
		pipeline.OutcomeDuplicate,
		pipeline.OutcomeSkipped,
		pipeline.OutcomeInvalid,
		pipeline.OutcomeFailed,
	}
	for _, o := range outcomes {
		counters.Record(o)
	}

	if counters.Total != 6 {
		t.Errorf("Total = %d, want 6", counters.Total)
	}
	if counters.Successful != 2 {
		t.Errorf("Successful = %d, want 2", counters.Successful)
	}
	if counters.Duplicate != 1 || counters.Skipped != 1 || counters.Invalid != 1 || counters.Failed != 1 {
		t.Errorf("counters = %+v", counters)
	}
}
