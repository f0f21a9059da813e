package repl

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OpTime is a monotone log position: a BSON timestamp (wall-clock seconds
// plus an ordinal that disambiguates writes within the same second) and a
// term counter that disambiguates across elections. The zero value is the
// null OpTime and is never recorded in the progress map.
type OpTime struct {
	Timestamp primitive.Timestamp
	Term      int64
}

// IsZero reports whether t is the null/sentinel OpTime.
func (t OpTime) IsZero() bool {
	return t.Timestamp.T == 0 && t.Timestamp.I == 0 && t.Term == 0
}

// Less reports whether t happened strictly before other.
func (t OpTime) Less(other OpTime) bool {
	if t.Term != other.Term {
		return t.Term < other.Term
	}
	if t.Timestamp.T != other.Timestamp.T {
		return t.Timestamp.T < other.Timestamp.T
	}
	return t.Timestamp.I < other.Timestamp.I
}

// GreaterOrEqual reports whether t happened at or after other.
func (t OpTime) GreaterOrEqual(other OpTime) bool {
	return !t.Less(other)
}

func (t OpTime) String() string {
	return fmt.Sprintf("%d.%d@term%d", t.Timestamp.T, t.Timestamp.I, t.Term)
}
