package metrics

// Metric names recorded by the allowlist build pipeline.
const (
	RecordsParsed   = "allowlist/records/parsed"
	RecordsAccepted = "allowlist/records/accepted"
	RecordsRejected = "allowlist/records/rejected"
	TreeLeaves      = "allowlist/tree/leaves"
	TreeHeight      = "allowlist/tree/height"
	BuildMillis     = "allowlist/build/millis"
)
