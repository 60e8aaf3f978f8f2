package uploader

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

type readFileFunc func(path string) ([]byte, error)

// Uploader sends the items of a batch to the relay one at a time.
type Uploader struct {
	client   RelayClient
	sink     Sink
	logger   zerolog.Logger
	readFile readFileFunc
}

func NewUploader(client RelayClient, sink Sink, logger zerolog.Logger) *Uploader {
	return &Uploader{client, sink, logger, os.ReadFile}
}

// Run processes every queued item. A failing item is marked and the batch moves on;
// only invalid options or a cancelled context stop the run.
func (u *Uploader) Run(ctx context.Context, batch *Batch) error {
	if err := batch.Options.Validate(); err != nil {
		return err
	}

	for _, item := range batch.Items {
		if err := ctx.Err(); err != nil {
			return err
		}

		if item.Status != StatusQueued {
			continue
		}

		u.process(ctx, batch.Options, item)
	}

	return nil
}

func (u *Uploader) process(ctx context.Context, options Options, item *Item) {
	logger := u.logger.With().
		Str("item", item.ID).
		Str("file", item.File.Name).
		Str("operation", string(options.Operation)).
		Logger()

	item.Status = StatusProcessing
	logger.Debug().Msg("processing")

	data, err := u.readFile(item.File.Path)
	if err != nil {
		u.fail(logger, item, err)
		return
	}

	result, err := u.client.Process(ctx, item.File, data, options)
	if err != nil {
		u.fail(logger, item, err)
		return
	}

	output, err := u.sink.Save(ctx, ResultFileName(item.File.Name, options), result.ContentType, result.Data)
	if err != nil {
		u.fail(logger, item, err)
		return
	}

	item.Result = &result
	item.Output = output
	item.Status = StatusCompleted

	logger.Info().
		Int64("original", result.OriginalSize).
		Int64("processed", result.ProcessedSize).
		Str("output", output).
		Msg("completed")
}

func (u *Uploader) fail(logger zerolog.Logger, item *Item, err error) {
	item.Status = StatusError
	item.Error = err.Error()
	logger.Error().Err(err).Msg("processing failed")
}
