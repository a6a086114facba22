package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zoobzio/carousel"
	"github.com/zoobzio/carousel/overlay"
	"github.com/zoobzio/carousel/pkg/browser"
	"github.com/zoobzio/carousel/pkg/image"
	"github.com/zoobzio/carousel/pkg/markup"
	"go.uber.org/zap"
)

var (
	controlURL  string
	runFor      time.Duration
	interactive bool
	whatsapp    string
)

// runCmd rotates the hero slides of a page until interrupted.
var runCmd = &cobra.Command{
	Use:   "run PAGE",
	Short: "Rotate the hero slides of a page",
	Long: `Runs the slide rotator for PAGE. With --control-url the rotator drives the
page open in a browser over the DevTools protocol; otherwise transitions are
logged. Settings follow --config or --source while running.

With --interactive, lines read from stdin navigate the slider: "n" for
next, "p" for previous, a number to jump to that slide and "q" to quit.
Each manual step restarts the automatic interval. "click TARGET" delivers a
document click to the page overlays, where TARGET is one of menu-toggle,
nav, popup, whatsapp or anything else for a click elsewhere.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&controlURL, "control-url", "", "DevTools websocket URL of a running browser")
	runCmd.Flags().DurationVar(&runFor, "for", 0, "Stop after this long (0 runs until interrupted)")
	runCmd.Flags().StringVar(&imageBaseURL, "base", "", "Base URL for relative image sources")
	runCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Read navigation commands from stdin")
	runCmd.Flags().StringVar(&whatsapp, "whatsapp", "", "Phone number for the floating contact button")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if runFor > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, runFor)
		defer stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	settings, err := resolveSettings()
	if err != nil {
		return err
	}

	p, err := loadPage(ctx, args[0])
	if err != nil {
		return err
	}
	slides, err := p.slides()
	if err != nil {
		return err
	}

	var presenter carousel.Presenter[markup.Slide] = logPresenter{log: logger}
	if controlURL != "" {
		bp, err := browser.Connect(ctx, controlURL, p.location.String(), slideClass)
		if err != nil {
			return err
		}
		defer func() {
			if err := bp.Close(); err != nil {
				logger.Warn("failed to release browser page", zap.Error(err))
			}
		}()
		presenter = bp
	}

	r := carousel.New(slides).
		Interval(settings.Interval()).
		FadeDelay(settings.FadeDelay()).
		Presenter(presenter).
		RejectionHistorySize(len(slides))

	if settings.Preload {
		base, err := p.imageBase(imageBaseURL)
		if err != nil {
			return err
		}
		if err := r.Load(ctx, slideLoader(image.New(image.WithBase(base)))); err != nil {
			return fmt.Errorf("preload: %w", err)
		}
	}

	if r.State() == carousel.StateInert {
		logger.Warn("no slides to rotate", zap.String("class", slideClass))
		return nil
	}
	if err := r.Start(ctx); err != nil {
		return err
	}
	defer r.Stop(context.Background())

	release, err := watchSettings(ctx, r)
	if err != nil {
		return err
	}
	defer release()

	doc, popup := overlays(settings)
	popup.Arm(ctx)
	defer popup.Disarm()

	if interactive {
		go func() {
			navigate(ctx, r, doc, cmd.InOrStdin())
			cancel()
		}()
	}

	<-ctx.Done()
	return nil
}

// overlays builds the page's click-driven peripherals. Targets are named by
// the element they stand for.
func overlays(settings carousel.Settings) (*overlay.Document, *overlay.Popup) {
	doc := &overlay.Document{}
	doc.Listen(overlay.NewPanel(overlay.Is("nav"), overlay.Is("menu-toggle")))

	popup := overlay.NewPopup(overlay.Is("popup")).Delay(settings.PopupDelay())
	doc.Listen(popup)

	if whatsapp != "" {
		// No window to open from a terminal; the LinkOpened signal is logged.
		open := overlay.OpenerFunc(func(context.Context, string) error { return nil })
		doc.Listen(overlay.NewLink(overlay.WhatsApp(whatsapp), overlay.Is("whatsapp"), open))
	}
	return doc, popup
}

// navigate applies stdin commands until ctx is done, "q" is read or input
// ends.
func navigate(ctx context.Context, r *carousel.Rotator[markup.Slide], doc *overlay.Document, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if target, ok := strings.CutPrefix(line, "click "); ok {
			doc.Click(ctx, strings.TrimSpace(target))
			continue
		}
		switch line {
		case "":
		case "q", "quit":
			return
		case "n", "next":
			r.Next(ctx)
		case "p", "prev", "previous":
			r.Previous(ctx)
		default:
			n, err := strconv.Atoi(line)
			if err != nil {
				logger.Warn("unknown command", zap.String("input", line))
				continue
			}
			if err := r.GoTo(ctx, n); err != nil {
				logger.Warn("cannot jump to slide", zap.Int("index", n), zap.Error(err))
			}
		}
	}
}
