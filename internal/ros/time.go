package ros

// Time is the builtin_interfaces/msg/Time representation used in message
// headers.
type Time struct {
	Sec     int32
	Nanosec uint32
}

// Duration is the builtin_interfaces/msg/Duration representation.
type Duration struct {
	Sec     int32
	Nanosec uint32
}

const nanosPerMicro = 1000

// TimeFromMicros converts a dataset timestamp in microseconds since the
// epoch into a message stamp.
func TimeFromMicros(us uint64) Time {
	return Time{
		Sec:     int32(us / 1e6),
		Nanosec: uint32(us%1e6) * nanosPerMicro,
	}
}

// NanosFromMicros converts a dataset timestamp in microseconds into the
// nanosecond timestamps used by the bag storage layer.
func NanosFromMicros(us uint64) int64 {
	return int64(us) * nanosPerMicro
}

// DurationFromSeconds converts a duration in seconds into a message
// duration. Negative durations are not representable and clamp to zero.
func DurationFromSeconds(secs float64) Duration {
	if secs <= 0 {
		return Duration{}
	}
	whole := int32(secs)
	return Duration{
		Sec:     whole,
		Nanosec: uint32((secs - float64(whole)) * 1e9),
	}
}
