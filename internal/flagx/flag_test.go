package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-r", "https://rpc", "-x", "1"},
			allowed: []string{"-r"},
			want:    []string{"-r", "https://rpc"},
		},
		{
			name:    "equals form",
			args:    []string{"--publisher=https://pub", "-x"},
			allowed: []string{"--publisher"},
			want:    []string{"--publisher=https://pub"},
		},
		{
			name:    "unknown flags and positionals dropped",
			args:    []string{"publish", "-x", "1", "--y=2"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag at end without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next token is a flag, not a value",
			args:    []string{"-c", "--config=alt.json"},
			allowed: []string{"-c", "--config"},
			want:    []string{"-c", "--config=alt.json"},
		},
		{
			name:    "repeated flag keeps order",
			args:    []string{"-p", "6", "-p", "12"},
			allowed: []string{"-p"},
			want:    []string{"-p", "6", "-p", "12"},
		},
		{
			name:    "empty",
			args:    nil,
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "/etc/suiblog.json", ConfigPath([]string{"-c", "/etc/suiblog.json"}))
	assert.Equal(t, "/tmp/b.json", ConfigPath([]string{"-config", "/tmp/a.json", "-c", "/tmp/b.json"}))
	assert.Equal(t, "x.json", ConfigPath([]string{"-p", "6", "--config=x.json"}))
	assert.Empty(t, ConfigPath([]string{"-p", "6"}))
}
