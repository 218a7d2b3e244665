package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func belnsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "belns",
		Short: "Manage the UniProt protein namespace",
	}

	var update bool
	upload := &cobra.Command{
		Use:   "upload",
		Short: "Create the namespace, or add missing entries with --update",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				m, err := a.namespaceManager()
				if err != nil {
					return err
				}
				res, err := m.Upload(ctx, update)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s created=%t added=%d skipped=%d\n",
					res.Namespace, res.Created, res.Added, res.Skipped)
				return nil
			})
		},
	}
	upload.Flags().BoolVarP(&update, "update", "u", false, "add entries missing from an existing namespace")

	drop := &cobra.Command{
		Use:   "drop",
		Short: "Delete the namespace and its entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				m, err := a.namespaceManager()
				if err != nil {
					return err
				}
				ns, err := m.Drop(ctx)
				if err != nil {
					return err
				}
				if ns == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "no namespace to drop")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", ns)
				return nil
			})
		},
	}

	var (
		file    string
		archive bool
	)
	write := &cobra.Command{
		Use:   "write",
		Short: "Write the namespace as a BEL namespace file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				m, err := a.namespaceManager()
				if err != nil {
					return err
				}
				var buf bytes.Buffer
				if err := m.Write(ctx, &buf); err != nil {
					return err
				}

				var out io.Writer = cmd.OutOrStdout()
				if file != "" {
					f, err := os.Create(file)
					if err != nil {
						return err
					}
					defer f.Close()
					out = f
				}
				if _, err := out.Write(buf.Bytes()); err != nil {
					return err
				}

				if archive {
					name := fmt.Sprintf("%s-%s.belns", m.Keyword(), time.Now().UTC().Format("20060102T150405Z"))
					link, err := a.archiveFile(ctx, "namespaces/", name, buf.Bytes())
					if err != nil {
						return err
					}
					a.log.Info("Archived namespace file", zap.String("link", link))
				}
				return nil
			})
		},
	}
	write.Flags().StringVarP(&file, "file", "f", "", "output file (default stdout)")
	write.Flags().BoolVar(&archive, "archive", false, "also upload the file to the S3 archive")

	cmd.AddCommand(upload, drop, write)
	return cmd
}

func withApp(ctx context.Context, fn func(context.Context, *app) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}
