// Package importer loads metadata, CDM mapping and measurement files into the
// store. Every logical file commits in its own transaction; conflicting rows
// are skipped so re-imports are idempotent.
package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/pdataviewer-backend/internal/data/repos"
	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/ingestion/table"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type MissingColumnsError = table.MissingColumnsError

var tracer = otel.Tracer("github.com/yungbote/pdataviewer-backend/internal/modules/importer")

type Deps struct {
	Log          *logger.Logger
	Tx           repos.TxRunner
	Cohorts      repos.CohortRepo
	Concepts     repos.ConceptRepo
	Mappings     repos.MappingRepo
	Longitudinal repos.LongitudinalRepo
	Biomarkers   repos.BiomarkerRepo

	// MaxExpandedBytes caps the decompressed size of one zip upload. Zero
	// means DefaultMaxExpandedBytes.
	MaxExpandedBytes int64
}

const (
	DefaultMaxExpandedBytes int64 = 1 << 30

	// A zip may expand to at most maxZipRatio times its own size, but never
	// needs to stay below minZipBudget; tiny archives of text compress well.
	maxZipRatio  = 100
	minZipBudget = 64 << 20
)

type Importer struct {
	deps Deps
	log  *logger.Logger
}

func New(deps Deps) *Importer {
	return &Importer{deps: deps, log: deps.Log.With("component", "Importer")}
}

// ProgressFunc is told about each member before it is imported. index is 1-based.
type ProgressFunc func(index, total int, member string)

// Import dispatches one upload. A .zip is expanded and every .csv/.xlsx member
// is imported in archive order under its base name (the modality or variable).
// For a single file the variable defaults to the file name without extension.
//
// The batch stops at the first failing member. Members imported before it
// stay committed and are returned alongside the error.
func (im *Importer) Import(ctx context.Context, uploadType types.UploadType, filename string, raw []byte, variable string, progress ProgressFunc) ([]*Summary, error) {
	if _, ok := types.ParseUploadType(string(uploadType)); !ok {
		return nil, fmt.Errorf("unknown upload type %q: %w", uploadType, apperr.ErrInvalidArgument)
	}

	files, err := expand(filename, raw, variable, im.zipBudget(len(raw)))
	if err != nil {
		return nil, err
	}

	out := make([]*Summary, 0, len(files))
	for i, f := range files {
		if progress != nil {
			progress(i+1, len(files), f.name)
		}
		im.log.Info("Importing file",
			"file", f.name,
			"upload_type", uploadType,
			"variable", f.variable,
			"member", fmt.Sprintf("%d/%d", i+1, len(files)),
		)
		s, err := im.importOne(ctx, uploadType, f)
		if err != nil {
			return out, fmt.Errorf("import %s: %w", f.name, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (im *Importer) importOne(ctx context.Context, uploadType types.UploadType, f sourceFile) (*Summary, error) {
	tbl, err := table.Parse(f.name, f.data)
	if err != nil {
		return nil, err
	}
	switch uploadType {
	case types.UploadMetadata:
		return im.ImportMetadata(ctx, tbl)
	case types.UploadCDM:
		return im.ImportCDM(ctx, tbl, f.variable)
	case types.UploadLongitudinal:
		return im.ImportLongitudinal(ctx, tbl, f.variable)
	case types.UploadBiomarkers:
		return im.ImportBiomarkers(ctx, tbl, f.variable)
	}
	return nil, fmt.Errorf("unknown upload type %q: %w", uploadType, apperr.ErrInvalidArgument)
}

type sourceFile struct {
	name     string
	variable string
	data     []byte
}

// zipBudget is how many decompressed bytes an archive of size n may yield.
func (im *Importer) zipBudget(n int) int64 {
	budget := int64(n) * maxZipRatio
	if budget < minZipBudget {
		budget = minZipBudget
	}
	limit := im.deps.MaxExpandedBytes
	if limit <= 0 {
		limit = DefaultMaxExpandedBytes
	}
	if budget > limit {
		budget = limit
	}
	return budget
}

func expand(filename string, raw []byte, variable string, zipBudget int64) ([]sourceFile, error) {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	switch ext {
	case ".zip":
		return unzip(base, raw, zipBudget)
	case ".csv", ".xlsx":
		v := strings.TrimSpace(variable)
		if v == "" {
			v = strings.TrimSpace(strings.TrimSuffix(base, path.Ext(base)))
		}
		return []sourceFile{{name: base, variable: v, data: raw}}, nil
	}
	return nil, fmt.Errorf("unsupported file type %q, expected .zip, .csv or .xlsx: %w", base, apperr.ErrInvalidArgument)
}

// unzip keeps the .csv/.xlsx members. Their decompressed sizes together may
// not exceed budget; the declared sizes in the archive are not trusted.
func unzip(name string, raw []byte, budget int64) ([]sourceFile, error) {
	limit := budget
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open zip %s: %w", name, err)
	}
	var out []sourceFile
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || strings.HasPrefix(zf.Name, "__MACOSX/") {
			continue
		}
		member := path.Base(zf.Name)
		ext := strings.ToLower(path.Ext(member))
		if strings.HasPrefix(member, ".") || (ext != ".csv" && ext != ".xlsx") {
			continue
		}
		if zf.UncompressedSize64 > uint64(budget) {
			return nil, tooLarge(name, limit)
		}
		data, err := readZipFile(zf, budget)
		if errors.Is(err, errBudgetExceeded) {
			return nil, tooLarge(name, limit)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s from %s: %w", zf.Name, name, err)
		}
		budget -= int64(len(data))
		out = append(out, sourceFile{
			name:     member,
			variable: strings.TrimSpace(strings.TrimSuffix(member, path.Ext(member))),
			data:     data,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s contains no .csv or .xlsx files: %w", name, apperr.ErrInvalidArgument)
	}
	return out, nil
}

var errBudgetExceeded = errors.New("zip budget exceeded")

func tooLarge(name string, budget int64) error {
	return fmt.Errorf("%s expands beyond the %d byte limit: %w", name, budget, apperr.ErrInvalidArgument)
}

// readZipFile reads one member, failing with errBudgetExceeded once it yields
// more than limit bytes.
func readZipFile(zf *zip.File, limit int64) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, errBudgetExceeded
	}
	return buf.Bytes(), nil
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
