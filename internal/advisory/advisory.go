// Package advisory derives farming advisories from weather readings.
package advisory

import (
	"fmt"
	"math"
	"strings"
)

const (
	CategoryNormal  = "normal"
	CategoryWarning = "warning"
	CategoryAlert   = "alert"
)

// Reading is the slice of a weather observation the rules look at.
type Reading struct {
	TemperatureC float64
	Condition    string
	WindSpeedMS  float64
}

type Advisory struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

// Evaluate applies the advisory rules in order; the first match wins, so a
// rainy reading never reports the wind rule even when both would fire.
// Temperature and wind thresholds are strict comparisons.
func Evaluate(r Reading) Advisory {
	condition := strings.ToLower(r.Condition)

	if strings.Contains(condition, "rain") || strings.Contains(condition, "drizzle") {
		return Advisory{
			Category: CategoryWarning,
			Title:    "Rain Alert",
			Message:  "Light to moderate rain expected. Suspend irrigation and spraying of pesticides. Ensure proper drainage in low-lying fields.",
		}
	}
	if r.TemperatureC > 35 {
		return Advisory{
			Category: CategoryAlert,
			Title:    "Heat Stress Alert",
			Message:  fmt.Sprintf("High temperature (%d°C). Irrigate frequently during evening hours to prevent moisture stress. Apply mulch to conserve soil moisture.", int(math.Round(r.TemperatureC))),
		}
	}
	if r.WindSpeedMS > 15 {
		return Advisory{
			Category: CategoryWarning,
			Title:    "High Wind Alert",
			Message:  "Strong winds detected. Support tall crops (staking) like banana and sugarcane. Postpone spraying operations.",
		}
	}
	return Advisory{
		Category: CategoryNormal,
		Title:    "Favorable Conditions",
		Message:  "Current weather is suitable for standard field operations. Continue regular monitoring.",
	}
}
