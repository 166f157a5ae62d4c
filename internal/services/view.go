package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/analyzer"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/charts"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/intake"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/metrics"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/models"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/utils"
)

const (
	MsgMissingFile      = "Please upload a crime dataset."
	MsgMissingSelection = "Please select both state and year for analysis."
	MsgOptionsFailed    = "Error fetching state options. Please try again."
	AnalysisErrorPrefix = "Error performing analysis: "
)

var (
	// ErrRequestInFlight is returned by Submit while an earlier submission is still Loading.
	ErrRequestInFlight = errors.New("analysis request already in flight")
	// ErrViewClosed is returned once the view has been unmounted.
	ErrViewClosed = errors.New("view closed")
)

// ValidationError is a pre-flight submit failure. No request was sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// View is one dashboard session: the uploaded dataset, the selection form,
// the analysis request status and its shaped result. All transitions are
// serialized by mu; ctx lives until Unmount.
type View struct {
	id     string
	svc    *ViewService
	logger *utils.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	optionsReady chan struct{}

	mu        sync.Mutex
	file      *models.UploadedFile
	rows      models.PreviewRows
	fileError string
	states    []string
	selection models.AnalysisSelection
	status    models.RequestStatus
	result    *charts.Result
	banner    string
	lastUsed  time.Time
}

// Snapshot is a point-in-time copy of a view for rendering.
type Snapshot struct {
	ID            string                   `json:"id"`
	File          *models.UploadedFile     `json:"file,omitempty"`
	Preview       models.Preview           `json:"preview"`
	FileError     string                   `json:"file_error,omitempty"`
	States        []string                 `json:"states"`
	OptionsLoaded bool                     `json:"options_loaded"`
	Years         []string                 `json:"years"`
	Selection     models.AnalysisSelection `json:"selection"`
	Status        models.RequestStatus     `json:"status"`
	Result        *charts.Result           `json:"result,omitempty"`
	HighestText   string                   `json:"highest_text,omitempty"`
	Error         string                   `json:"error,omitempty"`
}

// Loading reports whether the submit control should be disabled.
func (s Snapshot) Loading() bool { return s.Status.Kind == models.StatusLoading }

func newView(svc *ViewService) *View {
	ctx, cancel := context.WithCancel(context.Background())
	id := utils.GenerateID()
	return &View{
		id:           id,
		svc:          svc,
		logger:       svc.logger.With("view_id", id),
		ctx:          ctx,
		cancel:       cancel,
		optionsReady: make(chan struct{}),
		status:       models.Idle(),
		lastUsed:     svc.now(),
	}
}

func (v *View) ID() string { return v.id }

// OptionsReady is closed when the jurisdiction fetch has finished, either way.
func (v *View) OptionsReady() <-chan struct{} { return v.optionsReady }

// Done is closed when the view is unmounted.
func (v *View) Done() <-chan struct{} { return v.ctx.Done() }

func (v *View) closed() bool { return v.ctx.Err() != nil }

// loadOptions runs once per mount. A late answer for an unmounted view is dropped.
func (v *View) loadOptions() {
	defer close(v.optionsReady)

	states, err := v.svc.analyzer.FetchStates(v.ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed() {
		return
	}
	if err != nil {
		v.logger.Error("Failed to fetch state options", "error", err)
		v.banner = MsgOptionsFailed
		return
	}

	v.states = states
	v.logger.Debug("State options loaded", "count", len(states))
}

// AcceptFile runs intake on a newly selected file. Any previous file error is
// reset; a rejected file also clears the stored file and preview. Analysis
// output and the analysis banner are left alone.
func (v *View) AcceptFile(name string, data []byte) (models.Preview, error) {
	file, rows, err := intake.Accept(name, data)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed() {
		return models.Preview{}, ErrViewClosed
	}
	v.touch()

	v.fileError = ""
	if err != nil {
		v.file = nil
		v.rows = nil
		v.fileError = intake.Message(err)
		metrics.UploadsTotal.WithLabelValues(uploadOutcome(err)).Inc()
		v.logger.Warn("Rejected dataset", "filename", name, "error", err)
		return models.Preview{}, err
	}

	v.file = file
	v.rows = rows
	metrics.UploadsTotal.WithLabelValues("accepted").Inc()
	v.logger.Info("Dataset accepted", "filename", file.Name, "size", file.Size, "rows", len(rows))

	return intake.BuildPreview(rows), nil
}

// RejectFile records an upload the transport refused before intake, such as
// one over the size limit. It clears the file like a rejected AcceptFile.
func (v *View) RejectFile(message string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed() {
		return ErrViewClosed
	}
	v.touch()

	v.file = nil
	v.rows = nil
	v.fileError = message
	metrics.UploadsTotal.WithLabelValues("rejected").Inc()
	v.logger.Warn("Rejected upload before intake", "reason", message)
	return nil
}

func uploadOutcome(err error) string {
	if errors.Is(err, intake.ErrUnsupportedFormat) {
		return "unsupported"
	}
	return "corrupt"
}

// Select stores the form selection as given. It is validated at submit.
func (v *View) Select(state, year string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed() {
		return ErrViewClosed
	}
	v.touch()
	v.selection = models.AnalysisSelection{State: state, Year: year}
	return nil
}

// Submit validates the form and sends the dataset for analysis. At most one
// request is in flight per view. The request is cancelled when either ctx or
// the view ends.
func (v *View) Submit(ctx context.Context) (*charts.Result, error) {
	v.mu.Lock()
	if v.closed() {
		v.mu.Unlock()
		return nil, ErrViewClosed
	}
	v.touch()

	if v.status.Kind == models.StatusLoading {
		v.mu.Unlock()
		return nil, ErrRequestInFlight
	}
	if err := v.validate(); err != nil {
		v.banner = err.Message
		v.mu.Unlock()
		return nil, err
	}

	v.banner = ""
	v.status = models.Loading()
	file := v.file
	selection := v.selection
	v.mu.Unlock()

	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(v.ctx, cancel)
	defer func() {
		stop()
		cancel()
	}()

	run := v.svc.newRun(v.id, file, selection)
	start := time.Now()

	raw, err := v.svc.analyzer.Analyze(reqCtx, &models.AnalyzeRequest{
		Filename: file.Name,
		File:     file.Data,
		State:    selection.State,
		Year:     selection.Year,
	})
	run.DurationMs = time.Since(start).Milliseconds()

	var result *charts.Result
	if err == nil {
		result = charts.Shape(raw)
	}

	v.mu.Lock()
	alive := !v.closed()
	if alive {
		if err != nil {
			msg := requestMessage(err)
			v.status = models.Failed(msg)
			v.banner = AnalysisErrorPrefix + msg
		} else {
			v.status = models.Succeeded()
			v.result = result
		}
	}
	v.mu.Unlock()

	v.svc.finishRun(ctx, run, file, result, err)

	if !alive {
		v.logger.Info("Dropped analysis outcome for unmounted view", "run_id", run.ID)
		return nil, ErrViewClosed
	}
	if err != nil {
		v.logger.Error("Analysis failed", "run_id", run.ID, "error", err)
		return nil, err
	}

	v.logger.Info("Analysis completed",
		"run_id", run.ID,
		"state", selection.State,
		"year", selection.Year,
		"highest", result.HighestCountCrime,
		"duration_ms", run.DurationMs)

	return result, nil
}

// validate must be called with mu held. First failure wins. The selection
// must name one of the loaded states and one of the offered years; with no
// states loaded nothing can be selected.
func (v *View) validate() *ValidationError {
	if v.file == nil {
		return &ValidationError{Message: MsgMissingFile}
	}
	if !v.selection.Complete() ||
		!slices.Contains(v.states, v.selection.State) ||
		!slices.Contains(models.YearOptions(v.svc.now()), v.selection.Year) {
		return &ValidationError{Message: MsgMissingSelection}
	}
	return nil
}

func requestMessage(err error) string {
	if reqErr, ok := analyzer.AsRequestError(err); ok {
		return reqErr.Message
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return analyzer.NetworkErrorMessage
	}
	return err.Error()
}

// Clear drops the analysis output. The file, preview and selection stay.
func (v *View) Clear() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed() {
		return ErrViewClosed
	}
	v.touch()

	v.result = nil
	if v.status.Kind == models.StatusSucceeded {
		v.status = models.Idle()
	}
	return nil
}

// Result returns the current analysis result, or nil.
func (v *View) Result() *charts.Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := Snapshot{
		ID:        v.id,
		FileError: v.fileError,
		States:    append([]string{}, v.states...),
		Years:     models.YearOptions(v.svc.now()),
		Selection: v.selection,
		Status:    v.status,
		Result:    v.result,
		Error:     v.banner,
	}
	if v.file != nil {
		f := *v.file
		snap.File = &f
		snap.Preview = intake.BuildPreview(v.rows)
	}
	select {
	case <-v.optionsReady:
		snap.OptionsLoaded = true
	default:
	}
	if v.result != nil {
		snap.HighestText = v.result.HighestText()
	}

	return snap
}

// Unmount ends the view. Pending fetches are cancelled and their outcomes dropped.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cancel()
	v.file = nil
	v.rows = nil
	v.result = nil
}

func (v *View) touch() { v.lastUsed = v.svc.now() }

func (v *View) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUsed
}
