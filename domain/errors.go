package domain

import "errors"

var (
	ErrRunNotFound    = errors.New("run not found")
	ErrNoCompletedRun = errors.New("no completed run for tenant")
	ErrRunInProgress  = errors.New("a run is already in progress for this tenant")
	ErrRunNotUsable   = errors.New("run is not completed and cannot feed a campaign")

	ErrInvalidClusterCount = errors.New("cluster count must be at least 2")
	ErrInvalidRunParams    = errors.New("top_n must be positive and silence window non-negative")
	ErrInvalidBatchSize    = errors.New("batch size must be between 200 and 300")
	ErrMissingTemplateRef  = errors.New("template reference is required")
	ErrConflictingFilter   = errors.New("segment and cluster filters are mutually exclusive")

	ErrNoClients = errors.New("tenant has no clients")

	ErrClientNotFound         = errors.New("client not found")
	ErrRecommendationNotFound = errors.New("recommendation not found")
)
