package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/datalab/go-crf/pkg/derived"
	"github.com/datalab/go-crf/pkg/render"
	"github.com/datalab/go-crf/pkg/schema"
	"github.com/datalab/go-crf/pkg/visibility"
)

var (
	previewGroup string
	previewOut   string
	previewTitle string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a printable blank form as HTML",
	Long: `Renders the form a participant of the given group would see as a
standalone HTML document, suitable for printing or review. The computed
derived field is omitted, matching the interactive form.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewGroup, "group", "g", "control", "group to render: case or control")
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "", "output file (default stdout)")
	previewCmd.Flags().StringVar(&previewTitle, "title", "", "document title")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sch, err := newProvider().Load(ctx)
	if err != nil {
		return err
	}

	roles := derived.DetectRoles(sch)
	renderer, err := render.New(render.WithVisibility(visibility.New(roles.Derived)))
	if err != nil {
		return err
	}

	html, err := renderer.Render(sch, schema.ParseGroup(previewGroup), render.Options{
		Title:     previewTitle,
		Timestamp: time.Now(),
	})
	if err != nil {
		return err
	}

	if previewOut == "" {
		_, err = os.Stdout.Write(html)
		return err
	}
	if err := os.WriteFile(previewOut, html, 0o644); err != nil {
		return err
	}
	fmt.Printf("escrito %s (%d bytes)\n", previewOut, len(html))
	return nil
}
