package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo, ok bool) {
	t.Helper()

	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, ok }
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestResolve_InjectedValuesWin(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v0.0.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "ffffffffff"},
			{Key: "vcs.time", Value: "2020-01-01T00:00:00Z"},
		},
	}, true)

	got := resolve(Info{Version: "v1.4.0", Commit: "abc1234", BuildDate: "2026-10-01", BuildNumber: "42"})

	assert.Equal(t, Info{
		Version:     "v1.4.0",
		Commit:      "abc1234",
		BuildDate:   "2026-10-01",
		BuildNumber: "42",
		GoVersion:   runtime.Version(),
	}, got)
}

func TestResolve_FallsBackToVCS(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-09-30T12:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}, true)

	got := resolve(Info{})

	assert.Equal(t, unknown, got.Version, "(devel)은 버전으로 사용하지 않습니다")
	assert.Equal(t, "0123456789abcdef", got.Commit)
	assert.Equal(t, "2026-09-30T12:00:00Z", got.BuildDate)
	assert.Equal(t, "0", got.BuildNumber)
	assert.True(t, got.Modified)
}

func TestResolve_NoBuildInfo(t *testing.T) {
	stubBuildInfo(t, nil, false)

	got := resolve(Info{})

	assert.Equal(t, unknown, got.Version)
	assert.Equal(t, unknown, got.Commit)
	assert.Equal(t, unknown, got.BuildDate)
}

func TestInfo_String(t *testing.T) {
	t.Parallel()

	i := Info{
		Version:     "v1.4.0",
		Commit:      "0123456789abcdef",
		BuildDate:   "2026-10-01",
		BuildNumber: "42",
		GoVersion:   "go1.24.0",
		Modified:    true,
	}

	assert.Equal(t, "v1.4.0+dirty (commit: 0123456, build: 42, date: 2026-10-01, go1.24.0)", i.String())
}
