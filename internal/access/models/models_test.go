package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
)

func TestParseDecision(t *testing.T) {
	for in, want := range map[string]Decision{
		"approve":  DecisionApproved,
		"approved": DecisionApproved,
		"deny":     DecisionDenied,
		"denied":   DecisionDenied,
	} {
		got, err := ParseDecision(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseDecision("pending")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestDecide(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	req := NewRequest(id.NewCertificateID(), id.NewSubjectID(), now)
	assert.True(t, req.IsPending())
	assert.Nil(t, req.DecidedAt)

	require.NoError(t, req.Decide(DecisionDenied, now.Add(time.Minute)))
	assert.Equal(t, StatusDenied, req.Status)
	require.NotNil(t, req.DecidedAt)

	err := req.Decide(DecisionApproved, now.Add(time.Hour))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyDecided))
	assert.Equal(t, StatusDenied, req.Status)
	assert.Equal(t, now.Add(time.Minute), *req.DecidedAt)
}

func TestNewStats(t *testing.T) {
	mk := func(statuses ...Status) []*Request {
		out := make([]*Request, 0, len(statuses))
		for _, st := range statuses {
			out = append(out, &Request{Status: st})
		}
		return out
	}

	tests := []struct {
		name string
		in   []*Request
		want Stats
	}{
		{"empty", nil, Stats{}},
		{"only pending", mk(StatusPending, StatusPending), Stats{Pending: 2}},
		{"two of three", mk(StatusApproved, StatusApproved, StatusPending, StatusDenied), Stats{Approved: 2, Pending: 1, Denied: 1, SuccessRate: 67}},
		{"one of three rounds down", mk(StatusApproved, StatusPending, StatusPending), Stats{Approved: 1, Pending: 2, SuccessRate: 33}},
		{"denials do not count", mk(StatusApproved, StatusDenied, StatusDenied), Stats{Approved: 1, Denied: 2, SuccessRate: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, *NewStats(tt.in))
		})
	}
}
