package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

func TestCacheRepositoryWithoutClientMisses(t *testing.T) {
	repo := NewCacheRepository(nil, "coaching", nil)
	var dest map[string]string

	err := repo.Get(context.Background(), "free-slots:any", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", "v", time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "free-slots:*"))

	n, err := repo.Counter(context.Background(), "free-slots-generation")
	assert.NoError(t, err)
	assert.Zero(t, n)
	_, err = repo.Incr(context.Background(), "free-slots-generation")
	assert.NoError(t, err)
}

func TestCacheRepositoryKeyPrefix(t *testing.T) {
	cases := map[string]string{
		"":           "free-slots:x",
		"coaching":   "coaching:free-slots:x",
		" staging: ": "staging:free-slots:x",
	}
	for prefix, want := range cases {
		repo := NewCacheRepository(nil, prefix, nil)
		assert.Equal(t, want, repo.key("free-slots:x"), "prefix %q", prefix)
	}
}
