package ir

// Version constants for trace encoding and engine.
const (
	// TraceVersion is the canonical trace encoding version.
	TraceVersion = "1"

	// EngineVersion is the tempo engine version.
	EngineVersion = "0.1.0"
)
