package model

import "github.com/m-mizutani/goerr/v2"

// Error tags for categorization
var (
	// ErrTagInvalidSubmission marks a raw record without a usable project_key.
	// The record is excluded from aggregation; the run continues.
	ErrTagInvalidSubmission = goerr.NewTag("invalid_submission")
	// ErrTagMalformedInput marks a top-level payload that is not the expected shape
	ErrTagMalformedInput = goerr.NewTag("malformed_input")
	// ErrTagInvalidRequest marks an ingest request failing validation
	ErrTagInvalidRequest = goerr.NewTag("invalid_request")
	ErrTagUnauthorized   = goerr.NewTag("unauthorized")
	// ErrTagSummarizeFailed marks a failing summarizer call; the submission stays missing
	ErrTagSummarizeFailed = goerr.NewTag("summarize_failed")
	ErrTagNotFound        = goerr.NewTag("not_found")
)

// Sentinel errors for domain operations
var (
	ErrSubmissionNotFound = goerr.New("submission not found", goerr.T(ErrTagNotFound))
	ErrReportNotFound     = goerr.New("report not found", goerr.T(ErrTagNotFound))
)
