package engine

import "math"

// Numeric constants required by 
const (
	MaxF0  = 20000.0
	MinF0  = 20.0
	NODATA = -1.0e10
)

// DB, HALFTONE, MaxLF0 and MinLF0 are derived rather than hand-copied so
// they track math's constants to full float64 precision.
var (
	DB       = math.Log(10) / 20
	HALFTONE = math.Log(2) / 12
	MaxLF0   = math.Log(MaxF0)
	MinLF0   = math.Log(MinF0)
)
