package main

import "testing"

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	want := []string{"types", "protocols", "conformances", "interface", "symbols"}
	got := map[string]bool{}
	for _, c := range root.Commands() {
		got[c.Name()] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("root command missing subcommand %q", name)
		}
	}

	for _, flag := range []string{"show-c-imported-types", "offsets", "layout", "enum-layout", "stripped-symbolic", "color", "deps"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("root command missing persistent flag --%s", flag)
		}
	}
}
