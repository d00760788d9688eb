package cmd

import (
	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/internal/iobrowse"
	"github.com/gnames/gntaxdb/internal/ioexport"
	"github.com/spf13/cobra"
)

// getExportCmd returns the export command.
func getExportCmd() *cobra.Command {
	var (
		output string
		s3cfg  ioexport.S3Config
	)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the flattened tree to SQLite",
		Long: `Write every taxon with a single parent and its counters to a SQLite
file. "cellular organisms" (131567) is left out, so superkingdoms become
roots.

With --s3-bucket the file is uploaded to AWS S3 or to a compatible
service. Credentials come from the standard AWS environment variables or
shared configuration files.

Examples:
  gntaxdb export -o taxonomy.sqlite
  gntaxdb export --s3-bucket snapshots --s3-prefix gntaxdb
  gntaxdb export --s3-bucket snapshots --s3-endpoint http://localhost:9000 \
    --s3-path-style`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runExport(cmd, output, s3cfg)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	f := exportCmd.Flags()
	f.StringVarP(&output, "output", "o", "taxonomy.sqlite",
		"path of the SQLite file")
	f.StringVar(&s3cfg.Bucket, "s3-bucket", "", "upload to this bucket")
	f.StringVar(&s3cfg.Prefix, "s3-prefix", "", "prefix of the object key")
	f.StringVar(&s3cfg.Region, "s3-region", "us-east-1", "region of the bucket")
	f.StringVar(&s3cfg.Endpoint, "s3-endpoint", "",
		"endpoint of an S3-compatible service")
	f.BoolVar(&s3cfg.PathStyle, "s3-path-style", false,
		"use path-style addressing")

	return exportCmd
}

func runExport(cmd *cobra.Command, output string, s3cfg ioexport.S3Config) error {
	ctx := cmd.Context()
	op, st, err := connect(ctx)
	if err != nil {
		return err
	}
	defer op.Close()

	var up *ioexport.Uploader
	if s3cfg.Bucket != "" {
		if up, err = ioexport.NewUploader(ctx, s3cfg); err != nil {
			return err
		}
	}

	_, err = ioexport.New(iobrowse.New(st), up).Export(ctx, output)
	return err
}
