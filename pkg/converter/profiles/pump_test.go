package profiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPumpSingleDefaults(t *testing.T) {
	p := NewPumpSingle()

	assert.Equal(t, "pump-single", p.StepsType())
	assert.Equal(t, "Mez", p.Description())
	assert.Equal(t, "song.ogg", p.Music())
	assert.Equal(t, "Challenge", p.DifficultyLabel(0))
	assert.Equal(t, "Easy", p.DifficultyLabel(3))
	assert.Equal(t, "Edit", p.DifficultyLabel(4))
}

func TestPumpSingleMeter(t *testing.T) {
	tests := []struct {
		position int
		expected int
	}{
		{0, 30},
		{1, 25},
		{2, 20},
		{3, 15},
		{10, 1},
	}

	p := NewPumpSingle()
	for _, tt := range tests {
		if got := p.Meter(tt.position); got != tt.expected {
			t.Errorf("Meter(%d) = %d, want %d", tt.position, got, tt.expected)
		}
	}
}

func TestParseConfigOverridesDefaults(t *testing.T) {
	p, err := ParseConfig([]byte("description: Chart2SSC\nmeter_base: 20\nmeter_step: 4\n"))
	require.NoError(t, err)

	assert.Equal(t, "Chart2SSC", p.Description())
	assert.Equal(t, "pump-single", p.StepsType())
	assert.Equal(t, 20, p.Meter(0))
	assert.Equal(t, 8, p.Meter(3))
}

func TestParseConfigRejectsBadMeter(t *testing.T) {
	_, err := ParseConfig([]byte("meter_base: 0\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("meter_step: -1\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("labels: [unterminated\n"))
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	for _, id := range []string{"", "pump-single", "PUMP"} {
		p, err := Get(id)
		require.NoError(t, err, id)
		assert.Equal(t, "pump-single", p.Name())
	}

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("music: track.ogg\n"), 0644))
	p, err := Get(path)
	require.NoError(t, err)
	assert.Equal(t, "track.ogg", p.Music())

	_, err = Get(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
