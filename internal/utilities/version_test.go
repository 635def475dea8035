package utilities

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSemver(t *testing.T) {
	examples := []struct {
		version string
		expect  versionInfo
	}{
		{
			version: "v1.2.3",
			expect:  versionInfo{Major: 1, Minor: 2, Patch: 3},
		},
		{
			version: "2.187.3",
			expect:  versionInfo{Major: 2, Minor: 187, Patch: 3},
		},
		{
			version: "rc2.187.3-rc.23-g33b87ae0",
			expect:  versionInfo{Major: 2, Minor: 187, Patch: 3, RC: 23},
		},
		{
			version: "v0.4.0-rc7",
			expect:  versionInfo{Major: 0, Minor: 4, Patch: 0, RC: 7},
		},
	}

	for _, example := range examples {
		vi, err := parseSemver(example.version)
		require.NoError(t, err, example.version)

		example.expect.Original = example.version
		require.Equal(t, example.expect, *vi)
	}

	_, err := parseSemver("not a version")
	require.Error(t, err)
}

func TestInitVersionMetrics(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	for _, ver := range []string{"", "unknown", "v1.0.0"} {
		Version = ver
		require.NoError(t, InitVersionMetrics(context.Background()))
	}
}
