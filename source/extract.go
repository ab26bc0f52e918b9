package source

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/etlkit/errors"
	"github.com/kbukum/etlkit/logger"
	"github.com/kbukum/etlkit/pipeline"
	"github.com/kbukum/etlkit/record"
)

// maxParallelExtract bounds how many files ExtractAll reads at once.
const maxParallelExtract = 4

// Extract reads every record of path into a batch. A record that fails to
// parse is recorded in the stats errors as "<index> record parse error:
// <cause>" and skipped; index counts all data rows, failed ones included.
// TotalExtracted is the number of parsed records. A read failure that is
// not a malformed record is returned as SOURCE_READ.
func Extract(ctx context.Context, path string, opts ...Option) (pipeline.Batch[record.Record], error) {
	o := buildOptions(opts)
	cf, err := openCSV(path, o)
	if err != nil {
		return pipeline.Batch[record.Record]{}, err
	}
	defer cf.Close()
	return extract(ctx, cf, o)
}

func extract(ctx context.Context, cf *csvFile, o options) (pipeline.Batch[record.Record], error) {
	var (
		data []record.Record
		errs []string
	)
	for index := 0; ; index++ {
		if index%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return pipeline.Batch[record.Record]{}, errors.Canceled(err)
			}
		}
		rec, err := cf.read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !recoverable(err) {
				return pipeline.Batch[record.Record]{}, errors.SourceRead(cf.path, err)
			}
			appErr := errors.RecordParse(index, err)
			errs = append(errs, fmt.Sprintf("%s: %v", appErr.Message, err))
			o.log.Debug("record parse error", logger.Fields(logger.FieldSource, cf.path, "index", index, logger.FieldError, err.Error()))
			continue
		}
		data = append(data, rec)
	}

	o.log.Debug("source extracted", logger.Fields(logger.FieldSource, cf.path, logger.FieldCount, len(data)))
	return pipeline.NewBatch(data, pipeline.Stats{TotalExtracted: len(data), Errors: errs}), nil
}

// ExtractAll extracts every path and merges the results in the given
// order. Files are read concurrently. Any open failure fails the whole
// call; an empty path list is NO_SOURCES.
func ExtractAll(ctx context.Context, paths []string, opts ...Option) (pipeline.Batch[record.Record], error) {
	if len(paths) == 0 {
		return pipeline.Batch[record.Record]{}, errors.NoSources()
	}

	batches := make([]pipeline.Batch[record.Record], len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelExtract)
	for i, path := range paths {
		g.Go(func() error {
			b, err := Extract(gctx, path, opts...)
			if err != nil {
				return err
			}
			batches[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return pipeline.Batch[record.Record]{}, err
	}

	result := batches[0]
	for _, b := range batches[1:] {
		result = result.Merge(b)
	}
	return result, nil
}
