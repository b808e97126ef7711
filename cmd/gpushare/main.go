// gpushare starts a headless renderer, hands its GPU context to the tensor
// backend and runs consumers on the shared device.
//
// Flags override the WGPU_FORCE_FALLBACK_ADAPTER and WGPU_POWER_PREFERENCE
// environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/born-ml/gpushare/internal/app"
	"github.com/born-ml/gpushare/internal/backend/webgpu"
	"github.com/born-ml/gpushare/internal/consumer"
	"github.com/born-ml/gpushare/internal/handoff"
	"github.com/born-ml/gpushare/internal/render"
	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

var (
	flagFallback   = flag.Bool("fallback-adapter", false, "Request a software adapter.")
	flagPower      = flag.String("power-preference", "high", "Adapter power preference: high or low.")
	flagMemory     = flag.String("memory", "pooled", "GPU buffer strategy: pooled or exclusive.")
	flagMaxBatch   = flag.Int("max-batch", webgpu.DefaultRuntimeOptions().MaxBatchSize, "Commands queued before an automatic submit.")
	flagConsumers  = flag.Int("consumers", 1, "Number of consumer systems sharing the device.")
	flagProfile    = flag.String("profile", "none", "Profile the run: cpu, mem or none.")
	flagStandalone = flag.Bool("standalone", false, "Skip the renderer: the tensor backend creates its own device.")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `gpushare creates a GPU context, hands it to the tensor backend and
runs consumers on the published device.

Usage:
`)
		flag.PrintDefaults()
	}
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	opts, err := buildOptions(setFlags())
	if err != nil {
		klog.Exitf("gpushare: %v", err)
	}
	if *flagConsumers < 1 {
		klog.Exitf("gpushare: -consumers must be at least 1, got %d", *flagConsumers)
	}

	switch *flagProfile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.Quiet).Stop()
	case "none", "":
	default:
		klog.Exitf("gpushare: unknown -profile %q", *flagProfile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	run := newApp(opts, *flagConsumers).Run
	if *flagStandalone {
		run = func(ctx context.Context) error { return runStandalone(ctx, opts.Runtime, *flagConsumers) }
	}
	if err := run(ctx); err != nil {
		klog.Errorf("gpushare: %+v", err)
		klog.Flush()
		os.Exit(1)
	}
}

// setFlags returns the names of the flags given on the command line.
func setFlags() map[string]bool {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// buildOptions layers explicitly set flags over the environment.
func buildOptions(set map[string]bool) (app.Options, error) {
	opts := app.DefaultOptions()
	ro, err := render.OptionsFromEnv()
	if err != nil {
		return opts, err
	}
	if set["fallback-adapter"] {
		ro.ForceFallbackAdapter = *flagFallback
	}
	if set["power-preference"] {
		if ro.PowerPreference, err = render.ParsePowerPreference(*flagPower); err != nil {
			return opts, err
		}
	}
	opts.Render = ro

	if opts.Runtime.MemoryStrategy, err = webgpu.ParseMemoryStrategy(*flagMemory); err != nil {
		return opts, err
	}
	opts.Runtime.MaxBatchSize = *flagMaxBatch
	if err := opts.Runtime.Validate(); err != nil {
		return opts, errors.WithMessage(err, "runtime options")
	}
	return opts, nil
}

// newApp wires the renderer, the handoff and n consumers.
func newApp(opts app.Options, n int) *app.App {
	a := app.New(opts).
		AddPlugin(app.RenderPlugin{}).
		AddPlugin(app.HandoffPlugin{})
	for i := range n {
		a.AddStartup(fmt.Sprintf("consumer-%d", i), func(ctx context.Context, dev handoff.Device) error {
			_, err := consumer.Run(ctx, dev)
			return err
		})
	}
	return a
}

// runStandalone runs n consumers on a backend that owns its device, with
// no renderer to share it with.
func runStandalone(ctx context.Context, opts webgpu.RuntimeOptions, n int) error {
	b, err := webgpu.New(opts)
	if err != nil {
		return errors.WithMessage(err, "standalone backend")
	}
	defer b.Release()
	klog.V(1).Infof("gpushare: standalone backend on %s", b.AdapterInfo())

	dev := handoff.NewDevice(b)
	g, gctx := errgroup.WithContext(ctx)
	for range n {
		g.Go(func() error {
			_, err := consumer.Run(gctx, dev)
			return err
		})
	}
	err = g.Wait()
	if klog.V(1).Enabled() {
		klog.Infof("gpushare: tensor memory %+v", b.MemoryStats())
	}
	return err
}
