package cmd

import (
	"testing"

	"github.com/akimenko/respawn/internal/config"
)

func TestWatchPaths(t *testing.T) {
	origConfig := configFile
	defer func() { configFile = origConfig }()
	configFile = "/proj/respawn.yaml"

	tests := []struct {
		name    string
		profile config.Profile
		want    []string
	}{
		{
			name:    "no environment",
			profile: config.Profile{Session: "bot"},
			want:    []string{"/proj/respawn.yaml"},
		},
		{
			name: "environment manifest included",
			profile: config.Profile{
				Session: "bot",
				Env:     config.Env{Path: "/proj/.venv", Manifest: "/proj/requirements.txt"},
			},
			want: []string{"/proj/respawn.yaml", "/proj/requirements.txt"},
		},
		{
			name: "extra watch paths appended",
			profile: config.Profile{
				Session: "bot",
				Env:     config.Env{Path: "/proj/.venv", Manifest: "/proj/requirements.txt"},
				Watch:   []string{"/proj/main.py"},
			},
			want: []string{"/proj/respawn.yaml", "/proj/requirements.txt", "/proj/main.py"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := watchPaths(tt.profile)
			if len(got) != len(tt.want) {
				t.Fatalf("watchPaths() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("watchPaths()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWatchPaths_DefaultConfigFile(t *testing.T) {
	origConfig := configFile
	defer func() { configFile = origConfig }()
	configFile = ""

	got := watchPaths(config.Profile{Session: "bot"})
	if len(got) != 1 || got[0] != config.DefaultFileName {
		t.Errorf("watchPaths() = %v, want [%s]", got, config.DefaultFileName)
	}
}
