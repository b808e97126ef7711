package render

import (
	"os"
	"strings"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
)

// Options configures the headless GPU setup of a Renderer.
type Options struct {
	PowerPreference gputypes.PowerPreference

	// ForceFallbackAdapter requests a software adapter.
	ForceFallbackAdapter bool

	// TargetFormat is the color format of offscreen render targets, reported
	// through the device provider.
	TargetFormat gputypes.TextureFormat
}

// DefaultOptions prefers a discrete GPU.
func DefaultOptions() Options {
	return Options{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
		TargetFormat:    gputypes.TextureFormatBGRA8Unorm,
	}
}

// OptionsFromEnv returns DefaultOptions overridden by
// WGPU_FORCE_FALLBACK_ADAPTER=1 and WGPU_POWER_PREFERENCE=low|high.
func OptionsFromEnv() (Options, error) {
	opts := DefaultOptions()
	opts.ForceFallbackAdapter = os.Getenv("WGPU_FORCE_FALLBACK_ADAPTER") == "1"
	if v, ok := os.LookupEnv("WGPU_POWER_PREFERENCE"); ok {
		pp, err := ParsePowerPreference(v)
		if err != nil {
			return opts, errors.WithMessage(err, "WGPU_POWER_PREFERENCE")
		}
		opts.PowerPreference = pp
	}
	return opts, nil
}

// ParsePowerPreference parses "high" or "low".
func ParsePowerPreference(s string) (gputypes.PowerPreference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "":
		return gputypes.PowerPreferenceHighPerformance, nil
	case "low":
		return gputypes.PowerPreferenceLowPower, nil
	default:
		return 0, errors.Errorf("render: unknown power preference %q", s)
	}
}

func wgpuBool(b bool) wgpu.Bool {
	if b {
		return wgpu.True
	}
	return wgpu.False
}
