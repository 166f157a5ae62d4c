package models

import (
	"strconv"
	"time"
)

// UploadedFile is a dataset accepted by intake.
type UploadedFile struct {
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Size      int64  `json:"size"`
	Data      []byte `json:"-"`
}

// PreviewRows is the parsed table of an uploaded file, row-major, header first.
type PreviewRows [][]string

// Preview is the bounded slice of PreviewRows shown to the user.
type Preview struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
	More   bool       `json:"more"`
}

// AnalysisSelection is the jurisdiction and year the analysis is scoped to.
type AnalysisSelection struct {
	State string `json:"state"`
	Year  string `json:"year"`
}

// Complete reports whether both fields are filled.
func (s AnalysisSelection) Complete() bool {
	return s.State != "" && s.Year != ""
}

// Entry is one label/value pair of an aggregate mapping, kept in service order.
type Entry struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// RawAnalysis is the decoded body of a successful crime-analysis response.
type RawAnalysis struct {
	PieData           []Entry `json:"pie_data"`
	BarData           []Entry `json:"bar_data"`
	HighestCountCrime string  `json:"highest_count_crime"`
}

// AnalyzeRequest is everything sent to the remote aggregation endpoint.
type AnalyzeRequest struct {
	Filename string
	File     []byte
	State    string
	Year     string
}

type StatusKind string

const (
	StatusIdle      StatusKind = "idle"
	StatusLoading   StatusKind = "loading"
	StatusSucceeded StatusKind = "succeeded"
	StatusFailed    StatusKind = "failed"
)

// RequestStatus tracks the analysis request of a view. Message is set only when Failed.
type RequestStatus struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message,omitempty"`
}

func Idle() RequestStatus { return RequestStatus{Kind: StatusIdle} }
func Loading() RequestStatus { return RequestStatus{Kind: StatusLoading} }
func Succeeded() RequestStatus { return RequestStatus{Kind: StatusSucceeded} }
func Failed(message string) RequestStatus {
	return RequestStatus{Kind: StatusFailed, Message: message}
}

// RunRecord is one persisted analysis submission.
type RunRecord struct {
	ID         string    `json:"id" db:"id"`
	ViewID     string    `json:"view_id" db:"view_id"`
	Filename   string    `json:"filename" db:"filename"`
	FileSize   int64     `json:"file_size" db:"file_size"`
	State      string    `json:"state" db:"state"`
	Year       string    `json:"year" db:"year"`
	Status     string    `json:"status" db:"status"`
	Highest    *string   `json:"highest_count_crime,omitempty" db:"highest_count_crime"`
	Error      *string   `json:"error,omitempty" db:"error"`
	DatasetKey *string   `json:"dataset_key,omitempty" db:"dataset_key"`
	DurationMs int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// FirstYear is the earliest year offered for selection.
const FirstYear = 2000

// YearOptions lists selectable years from FirstYear through the year of now.
func YearOptions(now time.Time) []string {
	last := now.Year()
	if last < FirstYear {
		return nil
	}
	years := make([]string, 0, last-FirstYear+1)
	for y := FirstYear; y <= last; y++ {
		years = append(years, strconv.Itoa(y))
	}
	return years
}
