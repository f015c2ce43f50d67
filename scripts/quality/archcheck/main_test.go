package main

import "testing"

func TestViolationReason(t *testing.T) {
	tests := []struct {
		name     string
		importer string
		imported string
		want     string
	}{
		{
			name:     "cord importing internal",
			importer: "ex-cordcache/pkg/cord",
			imported: "ex-cordcache/internal/kernel",
			want:     "pkg/* must not import internal/*",
		},
		{
			name:     "cache importing modules",
			importer: "ex-cordcache/pkg/cache",
			imported: "ex-cordcache/modules/guildcache",
			want:     "pkg/* must not import modules/*",
		},
		{
			name:     "cord importing cache",
			importer: "ex-cordcache/pkg/cord",
			imported: "ex-cordcache/pkg/cache",
			want:     "pkg/cord must not import pkg/cache",
		},
		{
			name:     "kernel importing driver",
			importer: "ex-cordcache/internal/kernel",
			imported: "ex-cordcache/internal/driver/discord",
			want:     "internal/kernel must not import internal/driver/*",
		},
		{
			name:     "module test binary importing kernel",
			importer: "ex-cordcache/modules/guildcache.test",
			imported: "ex-cordcache/internal/kernel",
			want:     "modules/* must not import internal/*",
		},
		{
			name:     "cache importing cord",
			importer: "ex-cordcache/pkg/cache",
			imported: "ex-cordcache/pkg/cord",
		},
		{
			name:     "module importing cache",
			importer: "ex-cordcache/modules/guildcache",
			imported: "ex-cordcache/pkg/cache",
		},
		{
			name:     "command importing everything",
			importer: "ex-cordcache/cmd/cordcache",
			imported: "ex-cordcache/internal/kernel",
		},
		{
			name:     "third party import",
			importer: "ex-cordcache/pkg/cord",
			imported: "github.com/disgoorg/snowflake/v2",
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			if got := violationReason(testCase.importer, testCase.imported); got != testCase.want {
				t.Fatalf("reason = %q, want %q", got, testCase.want)
			}
		})
	}
}

func TestCollectViolationsDeduplicatesAndSorts(t *testing.T) {
	packages := []listedPackage{
		{
			ImportPath:  "ex-cordcache/pkg/cord",
			Imports:     []string{"ex-cordcache/pkg/cache", "fmt"},
			TestImports: []string{"ex-cordcache/pkg/cache"},
		},
		{
			ImportPath:   "ex-cordcache/modules/guildcache",
			XTestImports: []string{"ex-cordcache/internal/kernel"},
		},
		{
			ImportPath: "ex-cordcache/cmd/cordcache",
			Imports:    []string{"ex-cordcache/internal/kernel"},
		},
	}

	got := collectViolations(packages)
	want := []string{
		"ex-cordcache/modules/guildcache -> ex-cordcache/internal/kernel (modules/* must not import internal/*)",
		"ex-cordcache/pkg/cord -> ex-cordcache/pkg/cache (pkg/cord must not import pkg/cache)",
	}
	if len(got) != len(want) {
		t.Fatalf("violations = %v, want %v", got, want)
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("violations[%d] = %q, want %q", idx, got[idx], want[idx])
		}
	}
}
