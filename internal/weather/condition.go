// Package weather describes current conditions and where they come from.
package weather

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCondition is returned by Parse for names outside the enumeration.
var ErrUnknownCondition = errors.New("unknown weather condition")

// Condition is one of the seven weather categories the globe can show.
type Condition string

const (
	Clear        Condition = "Clear"
	Cloudy       Condition = "Cloudy"
	Fog          Condition = "Fog"
	Rain         Condition = "Rain"
	Drizzle      Condition = "Drizzle"
	Thunderstorm Condition = "Thunderstorm"
	Snow         Condition = "Snow"
)

// Conditions lists every condition in display order.
var Conditions = []Condition{Clear, Cloudy, Fog, Rain, Drizzle, Thunderstorm, Snow}

// Parse resolves a condition name, ignoring case.
func Parse(name string) (Condition, error) {
	for _, c := range Conditions {
		if strings.EqualFold(string(c), strings.TrimSpace(name)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCondition, name)
}

func (c Condition) String() string { return string(c) }

// Next returns the condition after c in display order, wrapping around.
func (c Condition) Next() Condition {
	for i, v := range Conditions {
		if v == c {
			return Conditions[(i+1)%len(Conditions)]
		}
	}
	return Clear
}

// IsRainFamily reports whether c falls as streaks: rain, drizzle or storm.
func (c Condition) IsRainFamily() bool {
	return c == Rain || c == Drizzle || c == Thunderstorm
}

// FromWMO maps a WMO weather interpretation code to a Condition.
func FromWMO(code int) Condition {
	switch {
	case code == 0 || code == 1:
		return Clear
	case code == 2 || code == 3:
		return Cloudy
	case code >= 45 && code <= 48:
		return Fog
	case code >= 51 && code <= 57:
		return Drizzle
	case code >= 61 && code <= 67:
		return Rain
	case code >= 71 && code <= 77:
		return Snow
	case code >= 80 && code <= 82:
		return Rain
	case code >= 85 && code <= 86:
		return Snow
	case code >= 95:
		return Thunderstorm
	}
	return Clear
}

var compass = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Compass names a wind direction in degrees using eight points.
func Compass(degrees float64) string {
	i := int(degrees/45+0.5) % 8
	if i < 0 {
		i += 8
	}
	return compass[i]
}
