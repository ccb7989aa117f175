// README: 2dp rounding rule shared by every pricing stage.
package types

import "math"

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
