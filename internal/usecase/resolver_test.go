package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RecipeScanner/internal/domain"
)

func TestResolverCreatesAtMostOnce(t *testing.T) {
	websites := newFakeWebsites()
	r := NewResolver(websites, discardLogger())
	ctx := context.Background()

	first, err := r.ResolveWebsiteRelation(ctx, domain.Website{Domain: "sipandsteep.com"})
	require.NoError(t, err)
	second, err := r.ResolveWebsiteRelation(ctx, domain.Website{Domain: "sipandsteep.com"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, websites.creates)
}

func TestResolverReusesExistingWebsite(t *testing.T) {
	websites := newFakeWebsites()
	websites.ids["example.com"] = "existing-id"

	id, err := NewResolver(websites, discardLogger()).ResolveWebsiteRelation(context.Background(), domain.Website{Domain: "example.com"})
	require.NoError(t, err)
	assert.Equal(t, "existing-id", id)
	assert.Zero(t, websites.creates)
}

func TestResolverSurfacesRemoteErrors(t *testing.T) {
	websites := newFakeWebsites()
	websites.createErr = &domain.RemoteStoreError{Op: "create page", Status: 400, Message: "Name is not a property"}
	r := NewResolver(websites, discardLogger())

	_, err := r.ResolveWebsiteRelation(context.Background(), domain.Website{Domain: "new.com"})
	var remoteErr *domain.RemoteStoreError
	require.True(t, errors.As(err, &remoteErr))

	websites.createErr = nil
	_, err = r.ResolveWebsiteRelation(context.Background(), domain.Website{Domain: "new.com"})
	require.NoError(t, err, "failures are not cached")
}
