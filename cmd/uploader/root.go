package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thebartekbanach/tinyrelay/pkg/compressor"
	"github.com/thebartekbanach/tinyrelay/pkg/logging"
	"github.com/thebartekbanach/tinyrelay/pkg/uploader"
)

type commandOptions struct {
	relayURL  string
	operation string
	output    string
	logLevel  string

	minioEndpoint string
	minioBucket   string
	minioLocation string
	minioPrefix   string
	minioSSL      bool

	options uploader.Options
}

func newRootCommand() *cobra.Command {
	opts := commandOptions{options: uploader.DefaultOptions()}

	rootCmd := &cobra.Command{
		Use:           "uploader [flags] <file>...",
		Short:         "Compress, resize or convert images through the relay",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.relayURL, "relay", envOr("UPLOADER_RELAY_URL", "http://localhost:8787"), "Relay base URL")
	flags.StringVarP(&opts.options.Selector, "key", "k", uploader.DefaultSelector, "API key selector sent in X-API-Key")
	flags.StringVarP(&opts.operation, "operation", "o", string(compressor.OperationCompress), "Operation: compress, resize or convert")
	flags.StringVar(&opts.options.Resize.Method, "method", uploader.DefaultResizeMethod, "Resize method: fit, scale, cover or thumb")
	flags.IntVar(&opts.options.Resize.Width, "width", 0, "Resize width in pixels")
	flags.IntVar(&opts.options.Resize.Height, "height", 0, "Resize height in pixels")
	flags.StringVar(&opts.options.Convert.Format, "format", uploader.DefaultConvertFormat, "Convert target MIME type")
	flags.StringVar(&opts.options.Convert.Background, "background", uploader.DefaultBackground, "Background color used when converting to JPEG")
	flags.StringVar(&opts.output, "out", "compressed", "Output directory")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level")

	flags.StringVar(&opts.minioEndpoint, "minio-endpoint", "", "Store results in this MinIO/S3 endpoint instead of a directory")
	flags.StringVar(&opts.minioBucket, "minio-bucket", "tinyrelay", "Bucket for stored results")
	flags.StringVar(&opts.minioLocation, "minio-location", "us-east-1", "Bucket region")
	flags.StringVar(&opts.minioPrefix, "minio-prefix", "", "Object name prefix")
	flags.BoolVar(&opts.minioSSL, "minio-ssl", true, "Use TLS for the object storage")

	return rootCmd
}

func run(cmd *cobra.Command, args []string, opts commandOptions) error {
	ctx := cmd.Context()
	logger := logging.NewLogger(logging.Config{Level: opts.logLevel, Pretty: true})

	opts.options.Operation = compressor.Operation(opts.operation)
	if err := opts.options.Validate(); err != nil {
		return err
	}

	files := make([]uploader.File, 0, len(args))
	for _, path := range args {
		file, err := uploader.InspectFile(path)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", path, err)
		}
		files = append(files, file)
	}

	if err := uploader.ValidateFiles(files); err != nil {
		return err
	}

	sink, err := newSink(ctx, opts)
	if err != nil {
		return err
	}

	client := uploader.NewClient(uploader.ClientConfig{RelayURL: opts.relayURL, Selector: opts.options.Selector})
	batch := uploader.NewBatch(opts.options, files)

	if err := uploader.NewUploader(&client, sink, logger).Run(ctx, batch); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(batch))

	if failed := batch.Count(uploader.StatusError); failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(batch.Items))
	}

	return nil
}

func newSink(ctx context.Context, opts commandOptions) (uploader.Sink, error) {
	if opts.minioEndpoint == "" {
		return uploader.NewDirSink(opts.output)
	}

	config := uploader.MinioSinkConfig{
		Endpoint:  opts.minioEndpoint,
		AccessKey: os.Getenv("UPLOADER_MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("UPLOADER_MINIO_SECRET_KEY"),
		Bucket:    opts.minioBucket,
		Location:  opts.minioLocation,
		Prefix:    opts.minioPrefix,
		UseSSL:    opts.minioSSL,
	}

	if config.AccessKey == "" || config.SecretKey == "" {
		return nil, errors.New("UPLOADER_MINIO_ACCESS_KEY and UPLOADER_MINIO_SECRET_KEY are required environment variables")
	}

	return uploader.NewMinioSink(ctx, config)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}
