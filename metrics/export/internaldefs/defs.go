package internaldefs

import (
	"github.com/MrEthical07/authstate"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   authstate.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   authstate.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter in export order.
var CounterDefs = []CounterDef{
	{ID: authstate.MetricSessionCreated, Name: "authstate_session_created_total", Help: "Sessions opened with fresh credentials."},
	{ID: authstate.MetricSessionLoaded, Name: "authstate_session_loaded_total", Help: "Sessions opened with stored credentials."},
	{ID: authstate.MetricSessionIDAllocated, Name: "authstate_session_id_allocated_total", Help: "Session ids taken from the namespace counter."},
	{ID: authstate.MetricCredentialsReadFailure, Name: "authstate_credentials_read_failure_total", Help: "Credential reads that failed and fell back to fresh credentials."},
	{ID: authstate.MetricCredentialsWrite, Name: "authstate_credentials_write_total", Help: "Successful credential writes."},
	{ID: authstate.MetricCredentialsWriteFailure, Name: "authstate_credentials_write_failure_total", Help: "Failed credential writes."},
	{ID: authstate.MetricKeysGet, Name: "authstate_keys_get_total", Help: "Key-material reads."},
	{ID: authstate.MetricKeysGetFailure, Name: "authstate_keys_get_failure_total", Help: "Key-material reads answered with nil after a store or codec failure."},
	{ID: authstate.MetricKeysSet, Name: "authstate_keys_set_total", Help: "Key-material writes."},
	{ID: authstate.MetricKeysSetFailure, Name: "authstate_keys_set_failure_total", Help: "Key-material writes that returned an error."},
	{ID: authstate.MetricBatchPartialFailure, Name: "authstate_batch_failure_total", Help: "Pipelines with at least one failed command."},
	{ID: authstate.MetricSessionCleared, Name: "authstate_session_cleared_total", Help: "Key-material clears."},
	{ID: authstate.MetricSessionDeleted, Name: "authstate_session_deleted_total", Help: "Session deletions."},
}

// HistogramDefs lists every histogram in export order.
var HistogramDefs = []HistogramDef{
	{ID: authstate.MetricBatchLatency, Name: "authstate_batch_latency_seconds", Help: "Pipelined write latency."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The last
// bucket of a snapshot is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix is the instrument name suffix of each bucket,
// including +Inf.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
