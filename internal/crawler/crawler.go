package crawler

import (
	"context"
	"time"
)

type Request struct {
	Platform string
	Inputs   []string

	SortBy      string
	MaxComments int
	Sleep       time.Duration
	Concurrency int
}

type Result struct {
	Platform     string         `json:"platform,omitempty"`
	StartedAt    int64          `json:"started_at,omitempty"`
	FinishedAt   int64          `json:"finished_at,omitempty"`
	Processed    int            `json:"processed,omitempty"`
	Succeeded    int            `json:"succeeded,omitempty"`
	Failed       int            `json:"failed,omitempty"`
	Skipped      int            `json:"skipped,omitempty"`
	Comments     int            `json:"comments,omitempty"`
	FailureKinds map[string]int `json:"failure_kinds,omitempty"`
	SkipKinds    map[string]int `json:"skip_kinds,omitempty"`
}

func NewResult(req Request) Result {
	return Result{
		Platform:  req.Platform,
		StartedAt: time.Now().Unix(),
	}
}

// WorstKind returns the most severe kind recorded in the result, or "" when
// every input succeeded.
func (r Result) WorstKind() ErrorKind {
	var worst ErrorKind
	pick := func(m map[string]int) {
		for k, n := range m {
			if n <= 0 {
				continue
			}
			if kind := ErrorKind(k); Severity(kind) > Severity(worst) {
				worst = kind
			}
		}
	}
	pick(r.FailureKinds)
	pick(r.SkipKinds)
	return worst
}

type Runner interface {
	Run(ctx context.Context, req Request) (Result, error)
}
