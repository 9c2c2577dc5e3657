package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/javajack/xlexport"
	"github.com/javajack/xlexport/reports"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type renderResult struct {
	payload string
	output  string
	report  xlexport.AttachReport
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		kind   string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "render --kind <kind> payload.json...",
		Short: "Render payload files to xlsx",
		Long: `Render converts each payload file into a workbook in the output directory.
Files are rendered in parallel. With a single payload the workbook keeps the
download name; with several, the payload file name is prefixed to keep them
apart.

Kinds: ` + kindList(),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := reports.Lookup(reports.Kind(kind))
			if err != nil {
				return fmt.Errorf("%w (valid: %s)", err, kindList())
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			now := time.Now()
			opts := append(a.cfg.Options(), xlexport.WithLogger(a.logger))
			patcher := xlexport.NewPatcher(opts...)
			results := make([]renderResult, len(args))

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(runtime.NumCPU())
			for i, path := range args {
				i, path := i, path
				g.Go(func() error {
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					doc, err := spec.Build(data, now, opts...)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					defer doc.Close()

					out, report, err := doc.Render(ctx, patcher)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					name := doc.Filename
					if len(args) > 1 {
						name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "-" + name
					}
					dest := filepath.Join(outDir, name)
					if err := os.WriteFile(dest, out, 0o644); err != nil {
						return fmt.Errorf("failed to write output: %w", err)
					}
					a.logger.Debug("rendered", zap.String("payload", path), zap.String("output", dest))
					results[i] = renderResult{payload: path, output: dest, report: report}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintf(w, "%s -> %s (charts %d/%d)\n", r.payload, r.output, r.report.Attached, r.report.Requested)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Export kind")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "Output directory")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func kindList() string {
	kinds := reports.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
