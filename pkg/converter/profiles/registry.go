package profiles

import (
	"strings"

	"github.com/james-see/chart2ssc/pkg/converter"
)

var _ converter.Profile = (*PumpSingle)(nil)

// Info describes a built-in profile
type Info struct {
	ID          string `json:"id"`
	StepsType   string `json:"steps_type"`
	Description string `json:"description"`
}

// Available lists the built-in profiles
func Available() []Info {
	return []Info{
		{ID: PumpSingleProfileName, StepsType: PumpSingleStepsType, Description: "Pump It Up 5-panel single"},
	}
}

// IsBuiltin reports whether id names a built-in profile
func IsBuiltin(id string) bool {
	switch strings.ToLower(id) {
	case "", PumpSingleProfileName, "pump":
		return true
	}
	return false
}

// Get returns a profile by id or YAML path, falling back to pump-single for an empty id
func Get(id string) (converter.Profile, error) {
	if IsBuiltin(id) {
		return NewPumpSingle(), nil
	}
	return LoadConfig(id)
}
