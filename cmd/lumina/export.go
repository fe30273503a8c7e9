package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"lumina/internal/backup"
	"lumina/internal/config"

	"github.com/spf13/cobra"
)

var (
	exportOut    string
	exportFormat string
	exportS3     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the whole collection to a backup file",
	Long: `Without --out the backup is written to ./lumina-backup-YYYY-MM-DD.<ext>.
Use --out - for stdout. --s3 uploads a JSON backup to EXPORT_S3_BUCKET instead.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		svc, release, err := openCollection(ctx)
		if err != nil {
			fatal("Error opening collection", err)
		}
		defer release()
		list := svc.List()

		if exportS3 {
			cfg, err := config.Load()
			if err != nil {
				fatal("Error loading config", err)
			}
			up := backup.NewUploader(backup.S3Config{
				Bucket:    cfg.ExportS3Bucket,
				Prefix:    cfg.ExportS3Prefix,
				Region:    cfg.ExportS3Region,
				Endpoint:  cfg.ExportS3Endpoint,
				AccessKey: cfg.ExportS3AccessKey,
				SecretKey: cfg.ExportS3SecretKey,
			})
			key, err := up.Upload(ctx, list)
			if err != nil {
				fatal("Error uploading backup", err)
			}
			fmt.Printf("uploaded %d notes to s3://%s/%s\n", len(list), cfg.ExportS3Bucket, key)
			return
		}

		format, err := backup.ParseFormat(exportFormat)
		if err != nil {
			fatal("Error", err)
		}

		if exportOut == "-" {
			raw, err := backup.Encode(list, format)
			if err != nil {
				fatal("Error encoding backup", err)
			}
			_, _ = os.Stdout.Write(raw)
			return
		}

		dst := exportOut
		if dst == "" {
			dst = backup.Filename(time.Now(), format)
		}
		if err := backup.WriteFile(dst, list, format); err != nil {
			fatal("Error writing backup", err)
		}
		fmt.Printf("wrote %d notes to %s\n", len(list), dst)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Destination file, - for stdout")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "json or yaml")
	exportCmd.Flags().BoolVar(&exportS3, "s3", false, "Upload to the configured S3 bucket")
}
