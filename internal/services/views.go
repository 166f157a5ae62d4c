package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/analyzer"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/charts"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/metrics"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/models"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/repository"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/storage"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/utils"
)

// ErrViewNotFound is returned for an unknown or already unmounted view id.
var ErrViewNotFound = errors.New("view not found")

// persistTimeout bounds archiving and history writes after a submission.
const persistTimeout = 10 * time.Second

// ViewService owns the mounted views.
type ViewService struct {
	analyzer analyzer.Analyzer
	archive  storage.Archive
	runs     repository.RunRepository
	logger   *utils.Logger
	now      func() time.Time

	mu    sync.RWMutex
	views map[string]*View
}

type ViewServiceOption func(*ViewService)

// WithArchive archives every submitted dataset.
func WithArchive(a storage.Archive) ViewServiceOption {
	return func(vs *ViewService) { vs.archive = a }
}

// WithRunRepository records every submission outcome.
func WithRunRepository(r repository.RunRepository) ViewServiceOption {
	return func(vs *ViewService) { vs.runs = r }
}

func WithClock(now func() time.Time) ViewServiceOption {
	return func(vs *ViewService) { vs.now = now }
}

func NewViewService(a analyzer.Analyzer, logger *utils.Logger, opts ...ViewServiceOption) *ViewService {
	vs := &ViewService{
		analyzer: a,
		logger:   logger,
		now:      time.Now,
		views:    make(map[string]*View),
	}
	for _, opt := range opts {
		opt(vs)
	}
	return vs
}

// Mount creates a view and starts its single jurisdiction fetch.
func (s *ViewService) Mount() *View {
	v := newView(s)

	s.mu.Lock()
	s.views[v.id] = v
	s.mu.Unlock()

	metrics.ActiveViews.Inc()
	go v.loadOptions()

	s.logger.Info("View mounted", "view_id", v.id)
	return v
}

func (s *ViewService) Get(id string) (*View, error) {
	s.mu.RLock()
	v, ok := s.views[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrViewNotFound
	}
	return v, nil
}

func (s *ViewService) Unmount(id string) error {
	s.mu.Lock()
	v, ok := s.views[id]
	delete(s.views, id)
	s.mu.Unlock()

	if !ok {
		return ErrViewNotFound
	}

	v.Unmount()
	metrics.ActiveViews.Dec()
	s.logger.Info("View unmounted", "view_id", id)
	return nil
}

// Sweep unmounts views untouched for longer than maxIdle and returns how many.
func (s *ViewService) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.RLock()
	var stale []string
	for id, v := range s.views {
		if v.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	n := 0
	for _, id := range stale {
		if s.Unmount(id) == nil {
			n++
		}
	}
	if n > 0 {
		s.logger.Info("Swept idle views", "count", n)
	}
	return n
}

func (s *ViewService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

// Shutdown unmounts every view.
func (s *ViewService) Shutdown() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.views))
	for id := range s.views {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		_ = s.Unmount(id)
	}
}

// Runs lists recorded submissions, newest first. Without a repository it returns none.
func (s *ViewService) Runs(ctx context.Context, limit int) ([]models.RunRecord, error) {
	if s.runs == nil {
		return []models.RunRecord{}, nil
	}
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to list runs", "error", err)
		return nil, utils.NewInternalError("Failed to retrieve run history").Wrap(err)
	}
	return runs, nil
}

// Run returns one recorded submission.
func (s *ViewService) Run(ctx context.Context, id string) (*models.RunRecord, error) {
	if s.runs == nil {
		return nil, utils.NewNotFoundError("Run history is disabled")
	}
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load run", "error", err, "run_id", id)
		return nil, utils.NewInternalError("Failed to retrieve run").Wrap(err)
	}
	if run == nil {
		return nil, utils.NewNotFoundError("Run not found")
	}
	return run, nil
}

// RunDataset returns the archived copy of the dataset a run submitted.
func (s *ViewService) RunDataset(ctx context.Context, id string) (*storage.Object, error) {
	run, err := s.Run(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.archive == nil || run.DatasetKey == nil {
		return nil, utils.NewNotFoundError("No archived dataset for this run")
	}

	obj, err := s.archive.Get(ctx, *run.DatasetKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, utils.NewNotFoundError("No archived dataset for this run").Wrap(err)
	}
	if err != nil {
		s.logger.Error("Failed to fetch archived dataset", "error", err, "run_id", id)
		return nil, utils.NewInternalError("Failed to retrieve dataset").Wrap(err)
	}
	return obj, nil
}

func (s *ViewService) newRun(viewID string, file *models.UploadedFile, sel models.AnalysisSelection) *models.RunRecord {
	return &models.RunRecord{
		ID:        utils.GenerateID(),
		ViewID:    viewID,
		Filename:  file.Name,
		FileSize:  file.Size,
		State:     sel.State,
		Year:      sel.Year,
		CreatedAt: s.now().UTC(),
	}
}

// finishRun archives the dataset and records the outcome. Failures are logged
// and never reach the view. An archived copy whose run could not be recorded
// is removed, since nothing would point at it.
func (s *ViewService) finishRun(ctx context.Context, run *models.RunRecord, file *models.UploadedFile, result *charts.Result, runErr error) {
	if s.archive == nil && s.runs == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if runErr != nil {
		run.Status = string(models.StatusFailed)
		msg := requestMessage(runErr)
		run.Error = &msg
	} else {
		run.Status = string(models.StatusSucceeded)
		highest := result.HighestCountCrime
		run.Highest = &highest
	}

	if s.archive != nil {
		obj := &storage.Object{
			Key:         storage.DatasetKey(run.ID, file.Name),
			ContentType: storage.ContentType(file.Extension),
			Data:        file.Data,
		}
		if err := s.archive.Put(ctx, obj); err != nil {
			s.logger.Error("Failed to archive dataset", "error", err, "run_id", run.ID, "key", obj.Key)
		} else {
			run.DatasetKey = &obj.Key
		}
	}

	if s.runs == nil {
		return
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.logger.Error("Failed to record run", "error", err, "run_id", run.ID)
		if run.DatasetKey != nil {
			if err := s.archive.Remove(ctx, *run.DatasetKey); err != nil {
				s.logger.Warn("Failed to remove orphaned dataset", "error", err, "key", *run.DatasetKey)
			}
			run.DatasetKey = nil
		}
	}
}
