package advisory

import (
	"strings"
	"testing"
)

func TestRainTakesPrecedenceOverWind(t *testing.T) {
	// Rain and high wind at once must report only the rain advisory.
	adv := Evaluate(Reading{TemperatureC: 20, Condition: "light rain", WindSpeedMS: 20})
	if adv.Title != "Rain Alert" || adv.Category != CategoryWarning {
		t.Fatalf("expected Rain Alert warning, got %s/%s", adv.Category, adv.Title)
	}
}

func TestDrizzleMatchesRainRule(t *testing.T) {
	adv := Evaluate(Reading{TemperatureC: 40, Condition: "Drizzle", WindSpeedMS: 0})
	if adv.Title != "Rain Alert" {
		t.Fatalf("expected Rain Alert for drizzle, got %s", adv.Title)
	}
}

func TestHeatBoundaryIsStrict(t *testing.T) {
	adv := Evaluate(Reading{TemperatureC: 35.0, Condition: "clear"})
	if adv.Title == "Heat Stress Alert" {
		t.Fatalf("35.0°C must not trigger heat stress")
	}
	adv = Evaluate(Reading{TemperatureC: 35.1, Condition: "clear"})
	if adv.Title != "Heat Stress Alert" || adv.Category != CategoryAlert {
		t.Fatalf("35.1°C must trigger heat stress, got %s/%s", adv.Category, adv.Title)
	}
	if !strings.Contains(adv.Message, "(35°C)") {
		t.Fatalf("expected rounded temperature in message, got %q", adv.Message)
	}
}

func TestHeatMessageRoundsUp(t *testing.T) {
	adv := Evaluate(Reading{TemperatureC: 37.6, Condition: "clear"})
	if !strings.Contains(adv.Message, "(38°C)") {
		t.Fatalf("expected 38°C in message, got %q", adv.Message)
	}
}

func TestWindBoundaryIsStrict(t *testing.T) {
	adv := Evaluate(Reading{TemperatureC: 20, Condition: "clear", WindSpeedMS: 15})
	if adv.Title != "Favorable Conditions" {
		t.Fatalf("wind 15 must not trigger the wind rule, got %s", adv.Title)
	}
	adv = Evaluate(Reading{TemperatureC: 20, Condition: "clear", WindSpeedMS: 15.5})
	if adv.Title != "High Wind Alert" || adv.Category != CategoryWarning {
		t.Fatalf("wind 15.5 must trigger the wind rule, got %s/%s", adv.Category, adv.Title)
	}
}

func TestFavorableDefault(t *testing.T) {
	adv := Evaluate(Reading{TemperatureC: 24, Condition: "Clouds", WindSpeedMS: 4})
	if adv.Category != CategoryNormal || adv.Title != "Favorable Conditions" {
		t.Fatalf("expected favorable conditions, got %s/%s", adv.Category, adv.Title)
	}
}
