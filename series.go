package speakersafetyd

// Series is an ordered sequence of (time, value) samples, monotonically
// increasing in time. Both estimators and the checkpoint extraction
// produce Series; they are read-only once produced.
type Series struct {
	// Time holds the sample times in seconds from capture start.
	Time []float64

	// Value holds the sample values (°C for temperature series, watts
	// for power series).
	Value []float64
}

func newSeries(capacity int) Series {
	return Series{
		Time:  make([]float64, 0, capacity),
		Value: make([]float64, 0, capacity),
	}
}

// Len returns the number of samples in the series.
func (s Series) Len() int {
	return len(s.Time)
}

// Append adds one sample to the series.
func (s *Series) Append(t, v float64) {
	s.Time = append(s.Time, t)
	s.Value = append(s.Value, v)
}
