package info

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// HumanSize formats a byte count using base-1024 units, rounded to two
// decimals with trailing zeros dropped: 0B, 100B, 1KB, 1.5KB, 3.66MB.
func HumanSize(size float64) string {
	sign := ""
	if size < 0 {
		sign, size = "-", -size
	}
	if size < 1 {
		return sign + formatFloat(size) + "B"
	}
	exp := min(int(math.Floor(math.Log(size)/math.Log(1024))), len(sizeUnits)-1)
	pretty := size / math.Pow(1024, float64(exp))
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(pretty, 'f', 2, 64), 64)
	if err != nil {
		rounded = pretty
	}
	return sign + formatFloat(rounded) + sizeUnits[exp]
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sizeLabel(size uint64, ok bool) string {
	if !ok {
		return "(unknown)"
	}
	return "(" + HumanSize(float64(size)) + ")"
}
