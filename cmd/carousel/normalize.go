package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zoobzio/carousel/pkg/markup"
	"go.uber.org/zap"
)

var (
	normalizeOutput string
	logoContainer   string
	logoMaxHeight   string
	logoMaxWidth    string
)

// normalizeCmd rewrites sponsor logo images so they share one bounding box.
var normalizeCmd = &cobra.Command{
	Use:   "normalize PAGE",
	Short: "Constrain sponsor logos to a common size",
	Long: `Reads PAGE and constrains every image inside the sponsor container to
the maximum height and width while keeping its aspect ratio. The rewritten
document goes to --output, or stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	defaults := markup.LogoOptions{}.WithDefaults()
	normalizeCmd.Flags().StringVarP(&normalizeOutput, "output", "o", "", "Write the document here instead of stdout")
	normalizeCmd.Flags().StringVar(&logoContainer, "container", defaults.ContainerClass, "Class of the sponsor logo container")
	normalizeCmd.Flags().StringVar(&logoMaxHeight, "max-height", defaults.MaxHeight, "Maximum logo height")
	normalizeCmd.Flags().StringVar(&logoMaxWidth, "max-width", defaults.MaxWidth, "Maximum logo width")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	p, err := loadPage(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	n, err := markup.NormalizeLogos(bytes.NewReader(p.body), &buf, markup.LogoOptions{
		ContainerClass: logoContainer,
		MaxHeight:      logoMaxHeight,
		MaxWidth:       logoMaxWidth,
	})
	if err != nil {
		return err
	}
	logger.Info("logos normalized", zap.Int("count", n), zap.String("container", logoContainer))

	if normalizeOutput == "" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(normalizeOutput, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", normalizeOutput, err)
	}
	return nil
}
