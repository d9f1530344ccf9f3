package main

import (
	"slices"
	"testing"
)

func TestMonitorIDs(t *testing.T) {
	cases := []struct {
		name  string
		names []string
		want  []string
	}{
		{"unique", []string{"DP-1", "HDMI-A-1"}, []string{"DP-1", "HDMI-A-1"}},
		{"repeated", []string{"DELL U2720Q", "DELL U2720Q", "DELL U2720Q"}, []string{"DELL U2720Q", "DELL U2720Q-2", "DELL U2720Q-3"}},
		{"unnamed", []string{"", "eDP-1"}, []string{"monitor-0", "eDP-1"}},
		{"suffix_taken", []string{"A", "A", "A-2"}, []string{"A", "A-3", "A-2"}},
		{"suffix_taken_earlier", []string{"A-2", "A", "A"}, []string{"A-2", "A", "A-3"}},
		{"unnamed_clash", []string{"", "monitor-0"}, []string{"monitor-0-2", "monitor-0"}},
		{"none", nil, []string{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := monitorIDs(c.names); !slices.Equal(got, c.want) {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
		})
	}
}

func TestChildArgs(t *testing.T) {
	cases := []struct {
		name    string
		display string
		path    string
		debug   bool
		want    []string
	}{
		{"builtin_config", "DP-1", "", false, []string{"-display", "DP-1"}},
		{"config_file", "DP-1", "/etc/thingies.yaml", false, []string{"-display", "DP-1", "-c", "/etc/thingies.yaml"}},
		{"debug", "HDMI-A-1", "c.tengo", true, []string{"-display", "HDMI-A-1", "-c", "c.tengo", "-debug"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := childArgs(c.display, c.path, c.debug); !slices.Equal(got, c.want) {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
		})
	}
}
