package domain

import "time"

// BoolFlag is a boolean that remembers since when it is true.
// The zero value is false.
type BoolFlag time.Time

func FALSE() BoolFlag { return BoolFlag{} }

func TRUE() BoolFlag { return FALSE().SetTrue() }

func (f BoolFlag) IsTrue() bool  { return !f.At().IsZero() }
func (f BoolFlag) IsFalse() bool { return f.At().IsZero() }

// At is the time the flag became true, or the zero time if it is false.
func (f BoolFlag) At() time.Time { return time.Time(f) }

// SetTrue keeps the original time if f already is true.
func (f BoolFlag) SetTrue() BoolFlag {
	if f.IsTrue() {
		return f
	}

	return BoolFlag(time.Now().UTC())
}

func (f BoolFlag) SetFalse() BoolFlag { return FALSE() }

func (f BoolFlag) MarshalJSON() ([]byte, error) {
	return f.At().MarshalJSON() //nolint:wrapcheck // same as time.Time
}

func (f *BoolFlag) UnmarshalJSON(data []byte) error {
	return (*time.Time)(f).UnmarshalJSON(data) //nolint:wrapcheck // same as time.Time
}
