package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/casedocsearch/ingest-be/config"
	"github.com/casedocsearch/ingest-be/types"
)

// Analysis job states reported by the document analysis service.
const (
	jobStatusInProgress     = "IN_PROGRESS"
	jobStatusSucceeded      = "SUCCEEDED"
	jobStatusFailed         = "FAILED"
	jobStatusPartialSuccess = "PARTIAL_SUCCESS"
)

// AnalysisService drives the external OCR/layout analysis of a document:
// job submission, polling until completion, and fetching the raw block
// payload. The engine downstream treats that payload as an
// already-resolved value.
type AnalysisService struct {
	endpoint     string
	apiKey       string
	client       *http.Client
	pollInterval time.Duration
	jobTimeout   time.Duration
}

func NewAnalysisService(cfg config.AnalysisConfig) *AnalysisService {
	return &AnalysisService{
		endpoint:     cfg.Endpoint,
		apiKey:       cfg.APIKey,
		client:       &http.Client{Timeout: 60 * time.Second},
		pollInterval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
		jobTimeout:   time.Duration(cfg.JobTimeoutSeconds) * time.Second,
	}
}

type startJobResponse struct {
	JobID string `json:"job_id"`
}

type jobStatusResponse struct {
	JobStatus string `json:"job_status"`
	Message   string `json:"message,omitempty"`
}

// Analyze submits the document at filePath for layout analysis and blocks
// until the job completes, fails or times out, returning the raw payload.
func (s *AnalysisService) Analyze(ctx context.Context, filePath string) (*types.AnalysisPayload, error) {
	jobID, err := s.startJob(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to start analysis job: %w", err)
	}
	log.Info().Str("job_id", jobID).Str("file", filePath).Msg("started analysis job")

	status, err := s.pollForCompletion(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if status == jobStatusFailed {
		return nil, fmt.Errorf("analysis job %s failed", jobID)
	}
	if status == jobStatusPartialSuccess {
		log.Warn().Str("job_id", jobID).Msg("analysis job completed with partial success")
	}

	return s.fetchPayload(ctx, jobID)
}

func (s *AnalysisService) startJob(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/v1/analyses", f)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-File-Name", filepath.Base(filePath))
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("analysis service returned status %d", resp.StatusCode)
	}

	var started startJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		return "", err
	}
	if started.JobID == "" {
		return "", fmt.Errorf("analysis service returned no job id")
	}
	return started.JobID, nil
}

// pollForCompletion checks the job status at the configured interval until
// it reaches a terminal state or the timeout elapses.
func (s *AnalysisService) pollForCompletion(ctx context.Context, jobID string) (string, error) {
	deadline := time.Now().Add(s.jobTimeout)

	for {
		if time.Now().After(deadline) {
			return "", fmt.Errorf("analysis job %s timed out after %s", jobID, s.jobTimeout)
		}

		status, err := s.jobStatus(ctx, jobID)
		if err != nil {
			return "", err
		}
		log.Debug().Str("job_id", jobID).Str("status", status).Msg("analysis job status")

		switch status {
		case jobStatusSucceeded, jobStatusFailed, jobStatusPartialSuccess:
			return status, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}

func (s *AnalysisService) jobStatus(ctx context.Context, jobID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/v1/analyses/"+jobID, nil)
	if err != nil {
		return "", err
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("analysis service returned status %d for job %s", resp.StatusCode, jobID)
	}

	var status jobStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return "", err
	}
	return status.JobStatus, nil
}

func (s *AnalysisService) fetchPayload(ctx context.Context, jobID string) (*types.AnalysisPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/v1/analyses/"+jobID+"/result", nil)
	if err != nil {
		return nil, err
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analysis service returned status %d fetching result for job %s", resp.StatusCode, jobID)
	}

	var payload types.AnalysisPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode analysis payload: %w", err)
	}
	return &payload, nil
}

// LoadPayloadFromFile reads a previously saved raw analysis payload from
// disk, useful for offline reprocessing without re-running the analysis.
func LoadPayloadFromFile(path string) (*types.AnalysisPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var payload types.AnalysisPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode analysis payload %s: %w", path, err)
	}
	return &payload, nil
}
