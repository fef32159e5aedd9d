package seeder

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessmodels "credvault/internal/access/models"
	accessservice "credvault/internal/access/service"
	accessstore "credvault/internal/access/store"
	dirservice "credvault/internal/directory/service"
	dirstore "credvault/internal/directory/store"
	regmodels "credvault/internal/registry/models"
	regservice "credvault/internal/registry/service"
	regstore "credvault/internal/registry/store"
	id "credvault/pkg/domain"
)

func TestSeedAll(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)
	directory := dirservice.NewService(dirstore.New(), nil, logger)
	certs := regstore.New()
	registry := regservice.NewService(certs, directory, nil, logger)
	access := accessservice.NewService(accessstore.New(), certs, directory, nil, logger)

	summary, err := New(directory, registry, access, logger).SeedAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Subjects: 5, Certificates: 4, Requests: 3}, summary)

	alice, err := directory.ResolveByContact(ctx, "alice@example.com")
	require.NoError(t, err)
	views, err := registry.ListFor(ctx, alice.ID, id.RoleCandidate)
	require.NoError(t, err)
	assert.Len(t, views, 2)

	bob, err := directory.ResolveByContact(ctx, "bob@example.com")
	require.NoError(t, err)
	views, err = registry.ListFor(ctx, bob.ID, id.RoleCandidate)
	require.NoError(t, err)
	statuses := make(map[regmodels.Status]int)
	for _, v := range views {
		statuses[v.Status]++
	}
	assert.Equal(t, map[regmodels.Status]int{regmodels.StatusExpired: 1, regmodels.StatusRevoked: 1}, statuses)

	pending, err := access.ListPendingFor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, accessmodels.StatusPending, pending[0].Status)

	t.Run("second run reuses subjects", func(t *testing.T) {
		again, err := New(directory, registry, access, logger).SeedAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, again.Subjects)
	})
}
