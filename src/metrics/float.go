package metrics

import (
	"math"
	"strconv"
)

// Float is a float64 that marshals NaN and infinities as JSON null, so the
// sentinel-propagation semantics of the result table survive the metrics
// dump.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}

	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}
