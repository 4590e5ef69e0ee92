package bizadmin_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/bizadmin"
)

func TestBuildInfo_Version(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		info     bizadmin.BuildInfo
		expected string
	}{
		"unknown":     {bizadmin.BuildInfo{}, "dev"},
		"uncommitted": {bizadmin.BuildInfo{Revision: "abc123", Modified: true}, "dev"},
		"committed":   {bizadmin.BuildInfo{Revision: "abc123"}, "abc123"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.info.Version())
		})
	}
}

func TestReadBuildInfo(t *testing.T) {
	t.Parallel()

	info := bizadmin.ReadBuildInfo()
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, "dev", info.Version(), "tests are not built with vcs information")
}
