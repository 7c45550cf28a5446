package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export the outbox as a JSONL snapshot",
	Long: `Export the outbox as a JSONL snapshot. By default one snapshot is
written and the command exits; --follow keeps the backup scheduler
running on CAJA_BACKUP_INTERVAL until interrupted. S3 is added as a
second destination when CAJA_BACKUP_S3_BUCKET is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		follow, _ := cmd.Flags().GetBool("follow")
		if output == "" {
			output = cfg.BackupPath
		}

		ctx := context.Background()

		if output == "-" {
			var buf bytes.Buffer
			if err := backup.ExportJSONL(ctx, repos.Events(), &buf); err != nil {
				return err
			}
			_, err := os.Stdout.Write(buf.Bytes())
			return err
		}

		destinations := []backup.Destination{backup.NewFileDestination(output)}
		if cfg.BackupS3Bucket != "" {
			s3dest, err := backup.NewS3Destination(ctx,
				cfg.BackupS3Bucket, cfg.BackupS3Key, cfg.BackupS3Region, cfg.BackupS3URL)
			if err != nil {
				return fmt.Errorf("configure s3 destination: %w", err)
			}
			destinations = append(destinations, s3dest)
		}

		if follow {
			if cfg.BackupInterval <= 0 {
				return fmt.Errorf("--follow requires CAJA_BACKUP_INTERVAL > 0")
			}
			sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			scheduler := backup.NewScheduler(repos.Events(), destinations, cfg.BackupInterval, logger)
			scheduler.Start()
			<-sigCtx.Done()
			scheduler.Stop()
			return nil
		}

		var buf bytes.Buffer
		if err := backup.ExportJSONL(ctx, repos.Events(), &buf); err != nil {
			return err
		}
		for _, dest := range destinations {
			if err := dest.Write(ctx, buf.Bytes()); err != nil {
				return err
			}
		}
		fmt.Printf("Wrote %d bytes to %s\n", buf.Len(), output)
		return nil
	},
}

func init() {
	backupCmd.Flags().StringP("output", "o", "", "snapshot path, or - for stdout (default: CAJA_BACKUP_PATH)")
	backupCmd.Flags().BoolP("follow", "f", false, "run the periodic backup scheduler")
}
