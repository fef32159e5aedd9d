package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
)

func TestNewCertificate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer, candidate := id.NewSubjectID(), id.NewSubjectID()

	t.Run("validity months become 30-day periods", func(t *testing.T) {
		cert, err := NewCertificate(issuer, candidate, "  Go Fundamentals ", 2, nil, now)
		require.NoError(t, err)
		assert.Equal(t, "Go Fundamentals", cert.Title)
		require.NotNil(t, cert.ExpiresAt)
		assert.Equal(t, now.Add(60*24*time.Hour), *cert.ExpiresAt)
		assert.Nil(t, cert.RevokedAt)
	})

	t.Run("zero validity never expires", func(t *testing.T) {
		cert, err := NewCertificate(issuer, candidate, "Lifetime", 0, nil, now)
		require.NoError(t, err)
		assert.Nil(t, cert.ExpiresAt)
		assert.Equal(t, StatusActive, cert.ResolveStatus(now.Add(100*365*24*time.Hour)))
	})

	t.Run("rejects empty title and negative validity", func(t *testing.T) {
		_, err := NewCertificate(issuer, candidate, "   ", 1, nil, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, err = NewCertificate(issuer, candidate, "Title", -1, nil, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("attributes are copied", func(t *testing.T) {
		attrs := map[string]any{"grade": "A"}
		cert, err := NewCertificate(issuer, candidate, "Title", 1, attrs, now)
		require.NoError(t, err)
		attrs["grade"] = "F"
		assert.Equal(t, "A", cert.Attributes["grade"])
	})
}

func TestResolveStatus(t *testing.T) {
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expires := issued.Add(30 * 24 * time.Hour)
	revoked := issued.Add(time.Hour)

	tests := []struct {
		name      string
		expiresAt *time.Time
		revokedAt *time.Time
		now       time.Time
		want      Status
	}{
		{"active before expiry", &expires, nil, issued.Add(time.Minute), StatusActive},
		{"active exactly at expiry", &expires, nil, expires, StatusActive},
		{"expired after expiry", &expires, nil, expires.Add(time.Nanosecond), StatusExpired},
		{"revoked before expiry", &expires, &revoked, issued.Add(2 * time.Hour), StatusRevoked},
		{"revoked wins over expired", &expires, &revoked, expires.Add(time.Hour), StatusRevoked},
		{"no expiry stays active", nil, nil, issued.Add(1000 * 24 * time.Hour), StatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cert := &Certificate{IssuedAt: issued, ExpiresAt: tt.expiresAt, RevokedAt: tt.revokedAt}
			assert.Equal(t, tt.want, cert.ResolveStatus(tt.now))
		})
	}
}

func TestRevokeKeepsFirstTimestamp(t *testing.T) {
	cert := &Certificate{}
	first := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cert.Revoke(first)
	cert.Revoke(first.Add(time.Hour))
	require.NotNil(t, cert.RevokedAt)
	assert.Equal(t, first, *cert.RevokedAt)
}

func TestStats(t *testing.T) {
	var s Stats
	for _, st := range []Status{StatusActive, StatusActive, StatusRevoked, StatusExpired} {
		s.Add(st)
	}
	assert.Equal(t, Stats{Total: 4, Active: 2, Revoked: 1, Expired: 1}, s)
}

func TestClone(t *testing.T) {
	exp := time.Now()
	orig := &Certificate{ExpiresAt: &exp, Attributes: map[string]any{"k": "v"}}
	cp := orig.Clone()
	*cp.ExpiresAt = exp.Add(time.Hour)
	cp.Attributes["k"] = "changed"
	assert.Equal(t, exp, *orig.ExpiresAt)
	assert.Equal(t, "v", orig.Attributes["k"])
}

func TestCloneCopiesNestedAttributes(t *testing.T) {
	orig := &Certificate{Attributes: map[string]any{
		"modules": []any{"networking", map[string]any{"grade": "A"}},
		"scores":  map[string]any{"final": 91.0},
		"tags":    []string{"cloud"},
	}}
	cp := orig.Clone()

	cp.Attributes["modules"].([]any)[0] = "storage"
	cp.Attributes["modules"].([]any)[1].(map[string]any)["grade"] = "F"
	cp.Attributes["scores"].(map[string]any)["final"] = 10.0
	cp.Attributes["tags"].([]string)[0] = "edge"

	assert.Equal(t, "networking", orig.Attributes["modules"].([]any)[0])
	assert.Equal(t, "A", orig.Attributes["modules"].([]any)[1].(map[string]any)["grade"])
	assert.Equal(t, 91.0, orig.Attributes["scores"].(map[string]any)["final"])
	assert.Equal(t, "cloud", orig.Attributes["tags"].([]string)[0])
}

func TestNewCertificateDetachesAttributes(t *testing.T) {
	attrs := map[string]any{"scores": map[string]any{"final": 91.0}}
	cert, err := NewCertificate(id.NewSubjectID(), id.NewSubjectID(), "Go", 0, attrs, time.Now())
	require.NoError(t, err)

	attrs["scores"].(map[string]any)["final"] = 0.0
	assert.Equal(t, 91.0, cert.Attributes["scores"].(map[string]any)["final"])
}

func TestNewCertificateRejectsUnencodableAttributes(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := NewCertificate(id.NewSubjectID(), id.NewSubjectID(), "Go", 0, map[string]any{"callback": func() {}}, now)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
