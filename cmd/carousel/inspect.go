package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/zoobzio/carousel"
	"github.com/zoobzio/carousel/pkg/image"
	"github.com/zoobzio/carousel/pkg/markup"
	"go.uber.org/zap"
)

var (
	imageBaseURL string
	skipPreload  bool
)

// inspectCmd lists the hero slides of a page and which of them would survive
// the image preload.
var inspectCmd = &cobra.Command{
	Use:   "inspect PAGE",
	Short: "List hero slides and check their images",
	Long: `Reads PAGE (a file or an http(s) URL), finds the elements carrying the
slide class and checks that each slide's image can be fetched and decoded.
Slides whose image fails are reported as rejected; the rest form the
rotation sequence.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&imageBaseURL, "base", "", "Base URL for relative image sources")
	inspectCmd.Flags().BoolVar(&skipPreload, "no-preload", false, "List slides without checking images")
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := loadPage(ctx, args[0])
	if err != nil {
		return err
	}
	slides, err := p.slides()
	if err != nil {
		return err
	}
	logger.Debug("slides found", zap.String("page", p.location.String()), zap.Int("count", len(slides)))

	rejected := map[int]error{}
	if !skipPreload && len(slides) > 0 {
		base, err := p.imageBase(imageBaseURL)
		if err != nil {
			return err
		}
		r := carousel.New(slides).RejectionHistorySize(len(slides))
		if err := r.Load(ctx, slideLoader(image.New(image.WithBase(base)))); err != nil {
			return fmt.Errorf("preload: %w", err)
		}
		for _, rej := range r.Rejections() {
			rejected[rej.Index] = rej.Err
		}
	}

	out := cmd.OutOrStdout()
	if len(slides) == 0 {
		fmt.Fprintf(out, "No elements with class %q found\n", slideClass)
		return nil
	}

	t := &table{headers: []string{"#", "ID", "SOURCE", "STATUS"}}
	for i, s := range slides {
		t.add(strconv.Itoa(s.Index), orDash(s.ID), orDash(s.Source), status(slides[i], rejected[i], skipPreload))
	}
	fmt.Fprint(out, t.String())
	fmt.Fprintf(out, "%d of %d slides in rotation\n", len(slides)-len(rejected), len(slides))
	return nil
}

func status(s markup.Slide, err error, unchecked bool) string {
	switch {
	case err != nil:
		return rejectedStyle.Render("rejected: " + err.Error())
	case unchecked && s.Source != "":
		return mutedStyle.Render("unchecked")
	case s.Source == "":
		return mutedStyle.Render("inline")
	default:
		return okStyle.Render("ok")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
