package analyzer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/models"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/utils"
)

func newTestClient(t *testing.T, h http.HandlerFunc) Analyzer {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewCrimeAnalysisClient(srv.URL+"/", 5*time.Second, utils.NopLogger())
}

func TestFetchStates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/states", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"states":["Lagos","Abuja","Kano"]}`)
	})

	states, err := client.FetchStates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Lagos", "Abuja", "Kano"}, states)
}

func TestFetchStatesFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"state_mapping.json missing"}`)
	})

	_, err := client.FetchStates(context.Background())
	reqErr, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
	assert.Equal(t, "state_mapping.json missing", reqErr.Message)
}

func TestFetchStatesMissingList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"items":[]}`)
	})

	_, err := client.FetchStates(context.Background())
	_, ok := AsRequestError(err)
	assert.True(t, ok)
}

func TestAnalyzeSendsMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crime-analysis", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)

		assert.Equal(t, "crimes.csv", hdr.Filename)
		assert.Equal(t, "state,crime_type\n", string(data))
		assert.Equal(t, "Lagos", r.FormValue("state"))
		assert.Equal(t, "2020", r.FormValue("year"))

		io.WriteString(w, `{"pie_data":{"Theft":66.6,"Assault":33.3},"bar_data":{"Theft":10,"Assault":5},"highest_count_crime":"Theft"}`)
	})

	raw, err := client.Analyze(context.Background(), &models.AnalyzeRequest{
		Filename: "crimes.csv",
		File:     []byte("state,crime_type\n"),
		State:    "Lagos",
		Year:     "2020",
	})
	require.NoError(t, err)
	assert.Equal(t, "Theft", raw.HighestCountCrime)
	assert.Equal(t, []models.Entry{{Label: "Theft", Value: 10}, {Label: "Assault", Value: 5}}, raw.BarData)
}

func TestAnalyzeErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusBadRequest, `{"message":"bad state code"}`, "bad state code"},
		{"error field", http.StatusNotFound, `{"error":"No data available for the given state"}`, "No data available for the given state"},
		{"no body", http.StatusBadGateway, ``, "Request failed with status code 502"},
		{"html body", http.StatusInternalServerError, `<html>oops</html>`, "Request failed with status code 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := client.Analyze(context.Background(), &models.AnalyzeRequest{Filename: "a.csv", File: []byte("x"), State: "s", Year: "y"})
			reqErr, ok := AsRequestError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, reqErr.StatusCode)
			assert.Equal(t, tt.message, reqErr.Message)
		})
	}
}

func TestAnalyzeNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewCrimeAnalysisClient(url, time.Second, utils.NopLogger())
	_, err := client.Analyze(context.Background(), &models.AnalyzeRequest{Filename: "a.csv"})

	reqErr, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Zero(t, reqErr.StatusCode)
	assert.Equal(t, NetworkErrorMessage, reqErr.Message)
	assert.Error(t, reqErr.Unwrap())
}

func TestDecodeAnalysisPreservesOrder(t *testing.T) {
	raw, err := DecodeAnalysis([]byte(`{
		"highest_count_crime": "Robbery",
		"pie_data": {"Robbery": 40, "Assault": 30, "Theft": 20, "Fraud": 10},
		"bar_data": {"Robbery": 4, "Assault": 3, "Theft": 2, "Fraud": 1}
	}`))
	require.NoError(t, err)

	var labels []string
	for _, e := range raw.PieData {
		labels = append(labels, e.Label)
	}
	assert.Equal(t, []string{"Robbery", "Assault", "Theft", "Fraud"}, labels)
	assert.Equal(t, 4.0, raw.BarData[0].Value)
}

func TestDecodeAnalysisRejectsBadShapes(t *testing.T) {
	bodies := []string{
		`not json`,
		`["pie_data"]`,
		`{"pie_data":[1,2],"bar_data":{}}`,
		`{"pie_data":{"Theft":"ten"},"bar_data":{}}`,
	}
	for _, body := range bodies {
		_, err := DecodeAnalysis([]byte(body))
		assert.Error(t, err, body)
	}

	raw, err := DecodeAnalysis([]byte(`{"highest_count_crime":"None"}`))
	require.NoError(t, err)
	assert.Empty(t, raw.PieData)
}
