package pipeline

import (
	"fmt"
	"strings"
)

// Classification is the three-valued verdict assigned to a retrieval payload
// before persistence is attempted.
type Classification int

const (
	// ClassificationValid means the payload may be persisted.
	ClassificationValid Classification = iota

	// ClassificationStillProcessing means the external job has not finished;
	// the snapshot stays unprocessed for a later retry.
	ClassificationStillProcessing

	// ClassificationInvalidError means the payload is a small error
	// envelope with no usable data; the snapshot stays unprocessed.
	ClassificationInvalidError
)

// String returns the classification name.
func (c Classification) String() string {
	switch c {
	case ClassificationValid:
		return "valid"
	case ClassificationStillProcessing:
		return "still-processing"
	case ClassificationInvalidError:
		return "invalid-error"
	default:
		return fmt.Sprintf("classification(%d)", int(c))
	}
}

// Verdict is the classification of one payload plus a human-readable reason.
type Verdict struct {
	Classification Classification
	Reason         string
}

// Valid reports whether the payload may be persisted.
func (v Verdict) Valid() bool {
	return v.Classification == ClassificationValid
}

// errorSizeThreshold is the payload size below which an error-bearing
// payload is a pure failure envelope. Larger error-bearing payloads may
// still carry partial usable data and are kept. The boundary is exact and
// must not change: 1999 bytes classifies invalid, 2000 classifies valid.
const errorSizeThreshold = 2000

// runningMarkers are the status strings the service embeds in payloads for
// jobs that are still executing. Both spacings occur in the wild.
var runningMarkers = []string{
	`"status":"running"`,
	`"status": "running"`,
}

// errorMarker flags error envelopes; matched case-insensitively.
const errorMarker = "error"

// Classify inspects a raw retrieval payload and classifies it. The rules
// are heuristics over the serialized payload, not a schema contract: the
// service's error envelope is not formally specified.
func Classify(payload []byte) Verdict {
	text := string(payload)

	for _, marker := range runningMarkers {
		if strings.Contains(text, marker) {
			return Verdict{
				Classification: ClassificationStillProcessing,
				Reason:         "status is running",
			}
		}
	}

	if strings.Contains(strings.ToLower(text), errorMarker) && len(payload) < errorSizeThreshold {
		return Verdict{
			Classification: ClassificationInvalidError,
			Reason:         fmt.Sprintf("contains error and size %d < %d bytes", len(payload), errorSizeThreshold),
		}
	}

	return Verdict{Classification: ClassificationValid}
}

// IsEmptyPayload reports whether a payload classified valid carries no data
// worth persisting.
func IsEmptyPayload(payload []byte) bool {
	trimmed := strings.TrimSpace(string(payload))
	switch trimmed {
	case "", "null", "{}", "[]":
		return true
	}
	return false
}
