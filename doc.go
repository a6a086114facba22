/*
Package carousel provides a timed hero slider: a Rotator that cycles through
slides on an interval, with manual navigation that restarts the schedule and
a fade delay between hiding one slide and showing the next.

The Rotator is generic over the slide type and draws nothing itself. A
Presenter receives Deactivate and Activate calls; what they do (toggle CSS
in a browser, log, update a terminal) is up to the caller.

# Basic Usage

	rotator := carousel.New(slides).
	    Interval(4500 * time.Millisecond).
	    FadeDelay(200 * time.Millisecond).
	    Presenter(presenter)

	if err := rotator.Start(ctx); err != nil {
	    return err
	}
	defer rotator.Stop(ctx)

	rotator.Next(ctx)        // advance and restart the interval
	rotator.Previous(ctx)    // step back and restart the interval
	_ = rotator.GoTo(ctx, 2) // jump and restart the interval

A Rotator with no slides is inert: Start, navigation and timers are no-ops.

# Preload

Load filters the slide sequence to the slides whose assets load, keeping
document order:

	err := rotator.Load(ctx, loader,
	    carousel.WithConcurrency(4),
	    carousel.WithLoadTimeout(10*time.Second),
	)

Rejected slides are emitted as SlideRejected signals and retained in
Rejections(). If every slide fails the Rotator becomes inert.

# Settings

Settings carries the interval, fade delay, preload flag and popup delay.
Preset returns the swift, classic and calm timings; DecodeSettings overlays
a YAML or JSON document on a base and validates the result.

A Reloader follows a Watcher and applies each valid document:

	reloader := carousel.NewReloader(watcher, func(ctx context.Context, prev, curr carousel.Settings) error {
	    return rotator.Configure(ctx, curr)
	}).Base(preset)

	if err := reloader.Start(ctx); err != nil {
	    log.Printf("initial settings rejected: %v", err)
	}

Invalid documents are rejected and the last good settings stay in effect.
Watchers for files, Redis, Postgres, etcd, Consul, NATS, ZooKeeper,
Kubernetes and Firestore live under pkg/.

# Observability

State changes, advances, timer resets, preload results and settings
reloads are emitted as capitan signals (see signals.go). A MetricsProvider
receives the same events synchronously.
*/
package carousel
