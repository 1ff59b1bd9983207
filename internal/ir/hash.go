package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainTrace = "tempo/trace/v1"
	DomainSpec  = "tempo/spec/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TraceHash hashes an ordered event trace. Two runs are deterministic
// replicas of each other iff their trace hashes match.
func TraceHash(events []FrameEvent) (string, error) {
	data, err := MarshalTrace(events)
	if err != nil {
		return "", fmt.Errorf("TraceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrace, data), nil
}

// SpecHash computes a content hash for a compiled timeline spec.
func SpecHash(spec TimelineSpec) (string, error) {
	data, err := MarshalCanonical(SpecObject(spec))
	if err != nil {
		return "", fmt.Errorf("SpecHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpec, data), nil
}

// SpecObject converts a TimelineSpec to canonical form. Floats are encoded
// as exact decimal strings; unset optional fields are omitted.
func SpecObject(spec TimelineSpec) IRObject {
	obj := IRObject{
		"name":              IRString(spec.Name),
		"duration":          Decimal(spec.Duration),
		"delay":             Decimal(spec.Delay),
		"loop_type":         IRString(spec.LoopType),
		"ease":              IRString(spec.Ease),
		"ignore_time_scale": IRBool(spec.IgnoreTimeScale),
		"relative":          IRBool(spec.Relative),
		"invert_mode":       IRString(spec.InvertMode),
		"value":             valueObject(spec.Value),
	}
	if spec.Loops != nil {
		obj["loops"] = IRInt(*spec.Loops)
	}
	if spec.PlaybackSpeed != nil {
		obj["playback_speed"] = Decimal(*spec.PlaybackSpeed)
	}
	if spec.AutoPlay != nil {
		obj["auto_play"] = IRBool(*spec.AutoPlay)
	}
	if spec.AutoKill != nil {
		obj["auto_kill"] = IRBool(*spec.AutoKill)
	}
	if len(spec.Curve) > 0 {
		obj["curve"] = decimals(spec.Curve)
	}
	return obj
}

func valueObject(v ValueSpec) IRObject {
	obj := IRObject{"kind": IRString(v.Kind)}
	if len(v.From) > 0 {
		obj["from"] = decimals(v.From)
	}
	if len(v.To) > 0 {
		obj["to"] = decimals(v.To)
	}
	if len(v.Strength) > 0 {
		obj["strength"] = decimals(v.Strength)
	}
	if v.Frequency != 0 {
		obj["frequency"] = IRInt(v.Frequency)
	}
	if v.Damping != nil {
		obj["damping"] = Decimal(*v.Damping)
	}
	if v.Seed != 0 {
		obj["seed"] = IRString(fmt.Sprintf("%d", v.Seed))
	}
	if len(v.Points) > 0 {
		pts := make(IRArray, len(v.Points))
		for i, p := range v.Points {
			pts[i] = decimals(p)
		}
		obj["points"] = pts
	}
	if v.FromText != "" {
		obj["from_text"] = IRString(v.FromText)
	}
	if v.ToText != "" {
		obj["to_text"] = IRString(v.ToText)
	}
	return obj
}

func decimals(fs []float64) IRArray {
	arr := make(IRArray, len(fs))
	for i, f := range fs {
		arr[i] = Decimal(f)
	}
	return arr
}
