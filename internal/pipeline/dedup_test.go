package pipeline_test

import (
	"reflect"
	"testing"

	"github.com/jonesrussell/lead-harvester/internal/pipeline"
)

func TestDedup_InputDuplicates(t *testing.T) {
	input := []string{
		"Plumber Ottawa",
		"plumber ottawa",   // same query, different casing
		"  Plumber Ottawa", // same query, leading whitespace
		"electrician toronto",
		"",
		"   ",
	}

	report := pipeline.Dedup(input, nil)

	if report.Total != 6 {
		t.Errorf("Total = %d, want 6", report.Total)
	}
	if report.Unique != 2 {
		t.Errorf("Unique = %d, want 2", report.Unique)
	}
	if report.DuplicatesInInput != 4 {
		t.Errorf("DuplicatesInInput = %d, want 4", report.DuplicatesInInput)
	}

	// First occurrence wins with original casing preserved.
	want := []string{"Plumber Ottawa", "electrician toronto"}
	if !reflect.DeepEqual(report.NewQueries, want) {
		t.Errorf("NewQueries = %v, want %v", report.NewQueries, want)
	}
}

func TestDedup_AgainstHistory(t *testing.T) {
	input := []string{"Plumber Ottawa", "Roofer Kingston", "ELECTRICIAN TORONTO"}
	submitted := []string{"plumber ottawa", "electrician toronto"}

	report := pipeline.Dedup(input, submitted)

	if report.NewCount != 1 {
		t.Errorf("NewCount = %d, want 1", report.NewCount)
	}
	if report.ExistingCount != 2 {
		t.Errorf("ExistingCount = %d, want 2", report.ExistingCount)
	}
	if !reflect.DeepEqual(report.NewQueries, []string{"Roofer Kingston"}) {
		t.Errorf("NewQueries = %v, want [Roofer Kingston]", report.NewQueries)
	}
	if !reflect.DeepEqual(report.ExistingQueries, []string{"Plumber Ottawa", "ELECTRICIAN TORONTO"}) {
		t.Errorf("ExistingQueries = %v", report.ExistingQueries)
	}
}

func TestDedup_Idempotent(t *testing.T) {
	input := []string{"plumber ottawa", "roofer kingston"}

	first := pipeline.Dedup(input, nil)
	if first.NewCount != 2 {
		t.Fatalf("first NewCount = %d, want 2", first.NewCount)
	}

	// Feeding the accepted queries back as history makes a rerun free.
	history := make([]string, 0, len(first.NewQueries))
	history = append(history, first.NewQueries...)

	second := pipeline.Dedup(input, history)
	if second.NewCount != 0 {
		t.Errorf("second NewCount = %d, want 0", second.NewCount)
	}
	if second.ExistingCount != 2 {
		t.Errorf("second ExistingCount = %d, want 2", second.ExistingCount)
	}
}

func TestDedup_EmptyInput(t *testing.T) {
	report := pipeline.Dedup(nil, []string{"plumber ottawa"})

	if report.Total != 0 || report.Unique != 0 || report.NewCount != 0 {
		t.Errorf("empty input report = %+v, want all zero", report)
	}
	if report.NewQueries == nil || report.ExistingQueries == nil {
		t.Error("query slices should be empty, not nil, for JSON reporting")
	}
}
