package utilities

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Version is git commit or release tag from which this binary was built.
var Version string

// InitVersionMetrics records the running version as one gauge per semver
// part. Versions that are not semver are recorded as 0.0.0.
func InitVersionMetrics(ctx context.Context) error {
	vi, err := parseSemver(Version)
	if err != nil {
		vi = &versionInfo{Original: Version}
	}

	meter := otel.Meter("siws")

	return errors.Join(
		recordVersionPart(ctx, meter, "major", vi.Major),
		recordVersionPart(ctx, meter, "minor", vi.Minor),
		recordVersionPart(ctx, meter, "patch", vi.Patch),
		recordVersionPart(ctx, meter, "rc", vi.RC),
	)
}

func recordVersionPart(ctx context.Context, meter metric.Meter, part string, val uint64) error {
	if val > math.MaxInt64 {
		return fmt.Errorf("version part %q (%d) is larger than math.MaxInt64", part, val)
	}

	g, err := meter.Int64Gauge(
		"siws_version_"+part,
		metric.WithDescription(fmt.Sprintf("The %s version number of the running SIWS server.", part)),
	)
	if err != nil {
		return err
	}

	g.Record(ctx, int64(val))
	return nil
}

type versionInfo struct {
	Original string
	Major    uint64
	Minor    uint64
	Patch    uint64
	RC       uint64
}

// parseSemver accepts release tags such as v1.2.3, 1.2.3 and
// rc1.2.3-rc.4-g33b87ae0.
func parseSemver(ver string) (*versionInfo, error) {
	sv, err := semver.NewVersion(normalizeVersion(ver))
	if err != nil {
		return nil, err
	}

	vi := &versionInfo{
		Original: ver,
		Major:    sv.Major(),
		Minor:    sv.Minor(),
		Patch:    sv.Patch(),
	}

	if pre, ok := strings.CutPrefix(sv.Prerelease(), "rc"); ok {
		pre = strings.TrimLeft(pre, ".-")
		if i := strings.IndexAny(pre, ".-"); i >= 0 {
			pre = pre[:i]
		}

		if rc, err := strconv.ParseUint(pre, 10, 64); err == nil {
			vi.RC = rc
		}
	}

	return vi, nil
}

func normalizeVersion(ver string) string {
	ver = strings.TrimSpace(ver)
	switch {
	case strings.HasPrefix(ver, "v"):
		return ver
	case strings.HasPrefix(ver, "rc"):
		return "v" + ver[2:]
	default:
		return "v" + ver
	}
}
