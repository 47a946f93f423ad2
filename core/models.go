package core

//go:generate go run ../cmd/musgen

// Student is a tracked student identified by roll number.
type Student struct {
	RollNo        string
	EmbeddingPath string  // Reference to an externally stored voice embedding
	Time          float64 // Cumulative interaction time in seconds
}

// Teacher is a tracked teacher identified by teacher ID.
type Teacher struct {
	TeacherID     string
	EmbeddingPath string
}

// TimeRange selects students by cumulative interaction time.
// Both bounds are inclusive. A nil Max leaves the range unbounded above.
type TimeRange struct {
	Min float64
	Max *float64
}

// AtLeast returns a range matching every time >= min.
func AtLeast(min float64) TimeRange {
	return TimeRange{Min: min}
}

// Between returns a range matching min <= time <= max.
func Between(min, max float64) TimeRange {
	return TimeRange{Min: min, Max: &max}
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t float64) bool {
	if t < r.Min {
		return false
	}
	return r.Max == nil || t <= *r.Max
}
