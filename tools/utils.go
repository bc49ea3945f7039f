package tools

import (
	"encoding/json"
	"math"
)

func FmtJSONString(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "marshal data fail"
	}
	return string(data)
}

const (
	FloatMin = 0.000001
	// tolerance on distances expressed in meters
	DistanceMin = 0.001
)

func IsFloatEqual(f1, f2 float64) bool {
	return math.Abs(f1-f2) < FloatMin
}

func IsDistanceEqual(d1, d2 float64) bool {
	return math.Abs(d1-d2) < DistanceMin
}
