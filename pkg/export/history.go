// Package export writes search run artifacts for offline analysis.
package export

import (
	"context"
	"os"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet"
	"github.com/apache/arrow/go/v13/parquet/file"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"

	"github.com/XiaoConstantine/pge-go/pkg/errors"
	"github.com/XiaoConstantine/pge-go/pkg/search"
)

var historySchema = arrow.NewSchema([]arrow.Field{
	{Name: "generation", Type: arrow.PrimitiveTypes.Int64},
	{Name: "best", Type: arrow.PrimitiveTypes.Float64},
	{Name: "mean", Type: arrow.PrimitiveTypes.Float64},
	{Name: "worst", Type: arrow.PrimitiveTypes.Float64},
	{Name: "evaluated", Type: arrow.PrimitiveTypes.Int64},
}, nil)

// WriteHistory writes per-generation fitness summaries to a Parquet file.
func WriteHistory(path string, history []search.GenerationStats) error {
	builder := array.NewRecordBuilder(memory.DefaultAllocator, historySchema)
	defer builder.Release()

	for _, stats := range history {
		builder.Field(0).(*array.Int64Builder).Append(int64(stats.Generation))
		builder.Field(1).(*array.Float64Builder).Append(stats.Best)
		builder.Field(2).(*array.Float64Builder).Append(stats.Mean)
		builder.Field(3).(*array.Float64Builder).Append(stats.Worst)
		builder.Field(4).(*array.Int64Builder).Append(int64(stats.Evaluated))
	}

	record := builder.NewRecord()
	defer record.Release()

	f, err := os.Create(path)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.ExportFailed, "failed to create history file"),
			errors.Fields{"path": path},
		)
	}

	writer, err := pqarrow.NewFileWriter(historySchema, f, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		f.Close()
		return errors.Wrap(err, errors.ExportFailed, "failed to create parquet writer")
	}

	if err := writer.Write(record); err != nil {
		writer.Close()
		return errors.Wrap(err, errors.ExportFailed, "failed to write history record")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, errors.ExportFailed, "failed to finalize history file")
	}
	return nil
}

// ReadHistory loads a Parquet history file written by WriteHistory.
func ReadHistory(ctx context.Context, path string) ([]search.GenerationStats, error) {
	reader, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.ExportFailed, "failed to open history file"),
			errors.Fields{"path": path},
		)
	}
	defer reader.Close()

	arrowReader, err := pqarrow.NewFileReader(reader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, errors.Wrap(err, errors.ExportFailed, "failed to create arrow reader")
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ExportFailed, "failed to read history table")
	}
	defer table.Release()

	rows := int(table.NumRows())
	history := make([]search.GenerationStats, rows)
	if rows == 0 {
		return history, nil
	}

	// Columns may arrive chunked, one chunk per row group.
	generations := int64Column(table.Column(0))
	best := float64Column(table.Column(1))
	mean := float64Column(table.Column(2))
	worst := float64Column(table.Column(3))
	evaluated := int64Column(table.Column(4))

	for i := 0; i < rows; i++ {
		history[i] = search.GenerationStats{
			Generation: int(generations[i]),
			Best:       best[i],
			Mean:       mean[i],
			Worst:      worst[i],
			Evaluated:  int(evaluated[i]),
		}
	}
	return history, nil
}

func int64Column(col *arrow.Column) []int64 {
	out := make([]int64, 0, col.Len())
	for _, chunk := range col.Data().Chunks() {
		a := chunk.(*array.Int64)
		for i := 0; i < a.Len(); i++ {
			out = append(out, a.Value(i))
		}
	}
	return out
}

func float64Column(col *arrow.Column) []float64 {
	out := make([]float64, 0, col.Len())
	for _, chunk := range col.Data().Chunks() {
		a := chunk.(*array.Float64)
		for i := 0; i < a.Len(); i++ {
			out = append(out, a.Value(i))
		}
	}
	return out
}
