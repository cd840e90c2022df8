package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"shindensen_client/global"
	"shindensen_client/helpers"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var uploadMime string

var uploadCmd = &cobra.Command{
	Use:   "upload [path]",
	Short: "Upload an attachment and print its message payload",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadMime, "mime", "", "mime type (detected when empty)")
}

func newUploader(ctx context.Context) (*helpers.Uploader, error) {
	m := cfg.MinIO
	if m.Endpoint == "" {
		return nil, errors.New("minIO endpoint not configured")
	}
	uploader, err := helpers.NewUploader(m.Endpoint, m.User, m.Password, m.Bucket, m.Secure, m.Presign())
	if err != nil {
		return nil, err
	}
	if err := uploader.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return uploader, nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	uploader, err := newUploader(ctx)
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return errors.Wrap(err, "open attachment")
	}
	defer f.Close()

	payload, err := uploader.Upload(ctx, f.Name(), f, uploadMime)
	if err != nil {
		return err
	}
	out, err := global.JSON.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
