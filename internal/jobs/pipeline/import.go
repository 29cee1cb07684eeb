package pipeline

import (
	"fmt"

	"github.com/yungbote/pdataviewer-backend/internal/cache"
	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/jobs/runtime"
	"github.com/yungbote/pdataviewer-backend/internal/modules/importer"
)

// ImportHandler feeds a queued upload of one type through the importer.
type ImportHandler struct {
	uploadType types.UploadType
	importer   *importer.Importer
	cache      *cache.ViewCache
}

func NewImportHandler(uploadType types.UploadType, im *importer.Importer, viewCache *cache.ViewCache) *ImportHandler {
	return &ImportHandler{uploadType: uploadType, importer: im, cache: viewCache}
}

func (h *ImportHandler) UploadType() types.UploadType { return h.uploadType }

// Result is stored as the job result. Summaries of files committed before a
// failure are kept so partial success is visible.
type Result struct {
	Files []*importer.Summary `json:"files"`
}

func (h *ImportHandler) Run(jc *runtime.Context) error {
	job := jc.Job
	jc.Log.Info("Import START", "bytes", len(job.Content))
	jc.Progress("importing")

	progress := func(index, total int, member string) {
		jc.Progress(fmt.Sprintf("importing %d/%d: %s", index, total, member))
	}
	summaries, err := h.importer.Import(jc.Ctx, h.uploadType, job.Filename, job.Content, job.Variable, progress)

	for _, sum := range summaries {
		jc.RowsRead += sum.RowsRead
	}
	if len(summaries) > 0 {
		if cerr := h.cache.Invalidate(jc.Ctx); cerr != nil {
			jc.Log.Warn("View cache invalidation failed", "error", cerr)
		}
	}
	if err != nil {
		if len(summaries) > 0 {
			jc.StoreResult(Result{Files: summaries})
		}
		jc.Fail("import", err)
		return nil
	}
	jc.Succeed("done", Result{Files: summaries})
	return nil
}

// Register installs one handler per upload type.
func Register(reg *runtime.Registry, im *importer.Importer, viewCache *cache.ViewCache) error {
	for _, ut := range []types.UploadType{
		types.UploadMetadata,
		types.UploadCDM,
		types.UploadLongitudinal,
		types.UploadBiomarkers,
	} {
		if err := reg.Register(NewImportHandler(ut, im, viewCache)); err != nil {
			return err
		}
	}
	return nil
}
