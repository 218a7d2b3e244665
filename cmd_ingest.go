package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"biorel/graph"
)

func ingestCmd() *cobra.Command {
	var (
		sinkKind string
		out      string
		archive  bool
	)
	cmd := &cobra.Command{
		Use:       "ingest <intact|biogrid>",
		Short:     "Build cited edges from an interaction dataset",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"intact", "biogrid"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if (out != "" || archive) && sinkKind != sinkMemory {
				return fmt.Errorf("--out and --archive require --sink=%s", sinkMemory)
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				p, err := a.provider(args[0])
				if err != nil {
					return err
				}
				factory, err := a.sinkFactory(sinkKind)
				if err != nil {
					return err
				}
				sink, res, err := newIngestService(a, factory).Run(ctx, p)
				if sink != nil {
					defer closeSink(sink)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s run=%s records=%d edges=%d\n", res.Source, res.RunID, res.Records, res.Edges)

				g, ok := sink.(*graph.Graph)
				if !ok {
					return nil
				}
				var buf bytes.Buffer
				if err := g.WriteJSONLines(&buf); err != nil {
					return err
				}
				if out != "" {
					if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
						return err
					}
				}
				if archive {
					name := fmt.Sprintf("%s-%s.jsonl", res.Source, time.Now().UTC().Format("20060102T150405Z"))
					link, err := a.archiveFile(ctx, "graphs/"+res.Source+"/", name, buf.Bytes())
					if err != nil {
						return err
					}
					a.log.Info("Archived graph export", zap.String("link", link))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sinkKind, "sink", sinkDatabase, "edge sink: db, neo4j or memory")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the memory graph as JSON lines to this file")
	cmd.Flags().BoolVar(&archive, "archive", false, "upload the memory graph to the S3 archive")
	return cmd
}
