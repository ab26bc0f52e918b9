package source

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kbukum/etlkit/errors"
	"github.com/kbukum/etlkit/logger"
	"github.com/kbukum/etlkit/pipeline"
	"github.com/kbukum/etlkit/record"
)

const header = "username;identifier;first_name;last_name\n"

func writeCSV(t *testing.T, name string, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	content := header
	for _, r := range rows {
		content += r + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func users(n int, prefix string) []string {
	rows := make([]string, n)
	for i := range rows {
		rows[i] = fmt.Sprintf("%s%02d;%d;First%d;Last%d", prefix, i, 1000+i, i, i)
	}
	return rows
}

func collectChunks(t *testing.T, src pipeline.Chunks[record.Record]) [][]record.Record {
	t.Helper()
	var chunks [][]record.Record
	err := pipeline.Drain(context.Background(), src, func(_ context.Context, c []record.Record) error {
		chunks = append(chunks, c)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return chunks
}

func chunkSizes(chunks [][]record.Record) []int {
	sizes := make([]int, len(chunks))
	for i, c := range chunks {
		sizes[i] = len(c)
	}
	return sizes
}

// errDisk stands in for an I/O failure of the underlying file.
var errDisk = stderrors.New("input/output error")

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errDisk }

// brokenCSV returns a source whose rows are followed by a read failure.
func brokenCSV(t *testing.T, o options, rows ...string) *csvFile {
	t.Helper()
	content := header + strings.Join(rows, "\n") + "\n"
	rc := io.NopCloser(io.MultiReader(strings.NewReader(content), failingReader{}))
	cf, err := newCSVFile("broken.csv", rc, rc, o)
	if err != nil {
		t.Fatal(err)
	}
	return cf
}

func TestExtract(t *testing.T) {
	path := writeCSV(t, "a.csv", "booker12;9012;Rachel;Booker", "grey07;2070;Laura;Grey")
	b, err := Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if b.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", b.Len())
	}
	if want := (record.Record{"booker12", "9012", "Rachel", "Booker"}); !reflect.DeepEqual(b.Data()[0], want) {
		t.Errorf("first record = %v, want %v", b.Data()[0], want)
	}
	if b.Stats().TotalExtracted != 2 {
		t.Errorf("TotalExtracted = %d, want 2", b.Stats().TotalExtracted)
	}
	if len(b.Stats().Errors) != 0 {
		t.Errorf("unexpected errors %v", b.Stats().Errors)
	}
}

func TestExtract_ParseErrorsArePartial(t *testing.T) {
	path := writeCSV(t, "a.csv",
		"booker12;9012;Rachel;Booker",
		"broken;row",
		"grey07;2070;Laura;Grey",
	)
	b, err := Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if b.Len() != 2 || b.Stats().TotalExtracted != 2 {
		t.Errorf("expected 2 records, got len=%d extracted=%d", b.Len(), b.Stats().TotalExtracted)
	}
	errs := b.Stats().Errors
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if !strings.HasPrefix(errs[0], "1 record parse error: ") {
		t.Errorf("unexpected error entry %q", errs[0])
	}
	if got := b.Data()[1].Field(0); got != "grey07" {
		t.Errorf("second record = %q, want grey07", got)
	}
}

func TestExtract_ReadFailure(t *testing.T) {
	cf := brokenCSV(t, buildOptions(nil), "u1;1;A;B", "u2;2;C;D")
	defer cf.Close()

	b, err := extract(context.Background(), cf, buildOptions(nil))
	if !errors.Is(err, errors.ErrCodeSourceRead) {
		t.Fatalf("expected SOURCE_READ, got %v", err)
	}
	if !stderrors.Is(err, errDisk) {
		t.Errorf("expected the read failure as cause, got %v", err)
	}
	if b.Len() != 0 {
		t.Errorf("expected no records on failure, got %d", b.Len())
	}
}

func TestExtract_Delimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comma.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	b, err := Extract(context.Background(), path, WithDelimiter(','))
	if err != nil {
		t.Fatal(err)
	}
	if want := []record.Record{{"1", "2"}}; !reflect.DeepEqual(b.Data(), want) {
		t.Errorf("got %v, want %v", b.Data(), want)
	}
}

func TestExtract_Missing(t *testing.T) {
	_, err := Extract(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, errors.ErrCodeSourceOpen) {
		t.Errorf("expected SOURCE_OPEN, got %v", err)
	}
}

func TestExtract_LogsThroughRegisteredLogger(t *testing.T) {
	defer logger.Reset()
	var buf bytes.Buffer
	logger.Register("source", logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "etl", &buf))

	path := writeCSV(t, "a.csv", "u1;1;A;B", "bad")
	if _, err := Extract(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "record parse error") {
		t.Errorf("expected the parse error on the source logger, got %q", buf.String())
	}
}

func TestExtractAll(t *testing.T) {
	a := writeCSV(t, "a.csv", users(3, "a")...)
	b := writeCSV(t, "b.csv")
	c := writeCSV(t, "c.csv", append(users(2, "c"), "bad")...)

	got, err := ExtractAll(context.Background(), []string{a, b, c})
	if err != nil {
		t.Fatal(err)
	}

	if got.Len() != 5 {
		t.Fatalf("expected 5 records, got %d", got.Len())
	}
	if first, last := got.Data()[0].Field(0), got.Data()[4].Field(0); first != "a00" || last != "c01" {
		t.Errorf("order = %s..%s, want a00..c01", first, last)
	}
	if got.Stats().TotalExtracted != 5 {
		t.Errorf("TotalExtracted = %d, want 5", got.Stats().TotalExtracted)
	}
	if len(got.Stats().Errors) != 1 {
		t.Errorf("expected one error, got %v", got.Stats().Errors)
	}
}

func TestExtractAll_Errors(t *testing.T) {
	a := writeCSV(t, "a.csv", users(1, "a")...)
	tests := []struct {
		name  string
		paths []string
		code  errors.ErrorCode
	}{
		{"no paths", nil, errors.ErrCodeNoSources},
		{"missing path", []string{a, filepath.Join(t.TempDir(), "nope.csv")}, errors.ErrCodeSourceOpen},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractAll(context.Background(), tc.paths)
			if !errors.Is(err, tc.code) {
				t.Errorf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestReader_ChunkSizes(t *testing.T) {
	path := writeCSV(t, "a.csv", users(5, "u")...)
	r, err := Open(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"username", "identifier", "first_name", "last_name"}; !reflect.DeepEqual(r.Header(), want) {
		t.Errorf("header = %v, want %v", r.Header(), want)
	}

	if got := chunkSizes(collectChunks(t, r)); !reflect.DeepEqual(got, []int{2, 2, 1}) {
		t.Errorf("chunk sizes = %v, want [2 2 1]", got)
	}
}

func TestReader_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		size int
		opts []Option
		want []int
	}{
		{"error truncates chunk", []string{"u1;1;A;B", "bad", "u2;2;C;D", "u3;3;E;F"}, 3, nil, []int{1, 2}},
		{"error on first record of chunk", []string{"u1;1;A;B", "u2;2;C;D", "bad", "u3;3;E;F"}, 2, nil, []int{2, 1}},
		{"single record chunks", []string{"u1;1;A;B", "bad", "u2;2;C;D", "u3;3;E;F"}, 1, nil, []int{1, 1, 1}},
		{"stop on error ends source", []string{"u1;1;A;B", "bad", "u2;2;C;D", "u3;3;E;F"}, 1, []Option{WithStopOnError()}, []int{1}},
		{"stop on error mid chunk", []string{"u1;1;A;B", "bad", "u2;2;C;D", "u3;3;E;F"}, 2, []Option{WithStopOnError()}, []int{1, 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Open(writeCSV(t, "a.csv", tc.rows...), tc.size, tc.opts...)
			if err != nil {
				t.Fatal(err)
			}
			if got := chunkSizes(collectChunks(t, r)); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("chunk sizes = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReader_ReadFailure(t *testing.T) {
	o := buildOptions(nil)
	r := newReader(brokenCSV(t, o, "u1;1;A;B", "u2;2;C;D", "u3;3;E;F"), 2, o)
	defer r.Close()
	ctx := context.Background()

	for _, want := range []int{2, 1} {
		chunk, ok, err := r.Next(ctx)
		if err != nil || !ok || len(chunk) != want {
			t.Fatalf("got %d records ok=%v err=%v, want %d", len(chunk), ok, err, want)
		}
	}
	_, ok, err := r.Next(ctx)
	if ok || !errors.Is(err, errors.ErrCodeSourceRead) {
		t.Fatalf("expected SOURCE_READ after the partial chunk, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := r.Next(ctx); ok || err != nil {
		t.Errorf("expected exhaustion after the failure, got ok=%v err=%v", ok, err)
	}
}

func TestOpen_InvalidChunkSize(t *testing.T) {
	_, err := Open(writeCSV(t, "a.csv"), 0)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestMultiReader_SkipsEmptySources(t *testing.T) {
	a := writeCSV(t, "a.csv", users(3, "a")...)
	b := writeCSV(t, "b.csv")
	c := writeCSV(t, "c.csv", users(2, "c")...)

	m, err := OpenAll([]string{a, b, c}, 10)
	if err != nil {
		t.Fatal(err)
	}

	chunks := collectChunks(t, m)
	if got := chunkSizes(chunks); !reflect.DeepEqual(got, []int{3, 2}) {
		t.Fatalf("chunk sizes = %v, want [3 2]", got)
	}
	if chunks[0][0].Field(0) != "a00" || chunks[1][0].Field(0) != "c00" {
		t.Errorf("unexpected order: %v", chunks)
	}
}

func TestMultiReader_PropagatesReadFailure(t *testing.T) {
	o := buildOptions(nil)
	good, err := Open(writeCSV(t, "good.csv", users(2, "g")...), 10)
	if err != nil {
		t.Fatal(err)
	}
	m := newMultiReader([]*Reader{newReader(brokenCSV(t, o, "u1;1;A;B"), 10, o), good})

	var loaded int
	err = pipeline.Drain(context.Background(), m, func(_ context.Context, c []record.Record) error {
		loaded += len(c)
		return nil
	})
	if !errors.Is(err, errors.ErrCodeSourceRead) {
		t.Fatalf("expected SOURCE_READ, got %v", err)
	}
	if loaded != 1 {
		t.Errorf("expected the record before the failure to load, got %d", loaded)
	}
}

func TestOpenAll_FailsBeforeReading(t *testing.T) {
	a := writeCSV(t, "a.csv", users(3, "a")...)
	if _, err := OpenAll([]string{a, filepath.Join(t.TempDir(), "missing.csv")}, 10); !errors.Is(err, errors.ErrCodeSourceOpen) {
		t.Errorf("expected SOURCE_OPEN, got %v", err)
	}
	if _, err := OpenAll(nil, 10); !errors.Is(err, errors.ErrCodeNoSources) {
		t.Errorf("expected NO_SOURCES, got %v", err)
	}
}

func TestStreamMatchesExtract(t *testing.T) {
	a := writeCSV(t, "a.csv", users(7, "a")...)
	c := writeCSV(t, "c.csv", users(4, "c")...)
	paths := []string{a, c}

	whole, err := ExtractAll(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}

	for _, size := range []int{1, 2, 3, 10, 100} {
		t.Run(fmt.Sprintf("chunk_%d", size), func(t *testing.T) {
			s, err := StreamAll(paths, size)
			if err != nil {
				t.Fatal(err)
			}
			got, err := s.Collect(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got.Data(), whole.Data()) {
				t.Errorf("streamed records differ from extracted records")
			}
		})
	}
}

func TestStream_Load(t *testing.T) {
	s, err := Stream(writeCSV(t, "a.csv", users(5, "u")...), 2)
	if err != nil {
		t.Fatal(err)
	}

	var sizes []int
	stats, err := s.Load(context.Background(), func(_ context.Context, chunk []record.Record) error {
		sizes = append(sizes, len(chunk))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sizes, []int{2, 2, 1}) {
		t.Errorf("sink calls = %v, want [2 2 1]", sizes)
	}
	if stats.TotalFiltered != 5 {
		t.Errorf("TotalFiltered = %d, want 5", stats.TotalFiltered)
	}
}

func TestCheckFormat(t *testing.T) {
	if err := CheckFormat(FormatCSV); err != nil {
		t.Errorf("csv should be supported: %v", err)
	}
	for _, format := range []string{FormatJSON, FormatSQLite} {
		if !errors.Is(CheckFormat(format), errors.ErrCodeUnsupportedFormat) {
			t.Errorf("%s should be UNSUPPORTED_FORMAT", format)
		}
	}
}
