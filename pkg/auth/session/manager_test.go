package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	values map[string]string
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = "1"
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.values[key]
	return ok, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) SessionKey(id string) string { return "edupay:session:" + id }

func TestSessionLifecycle(t *testing.T) {
	store := &fakeStore{}
	m := &Manager{store: store, keyer: fakeKeyer{}, ttl: time.Hour}

	ctx := context.Background()
	require.NoError(t, m.Create(ctx, "jti-1"))

	ok, err := m.HasSession(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Revoke(ctx, "jti-1"))
	ok, err = m.HasSession(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasSessionEmptyIDIsFalse(t *testing.T) {
	m := &Manager{store: &fakeStore{}, keyer: fakeKeyer{}, ttl: time.Hour}
	ok, err := m.HasSession(context.Background(), "  ")
	require.NoError(t, err)
	assert.False(t, ok)
}
