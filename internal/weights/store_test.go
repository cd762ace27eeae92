package weights

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
)

type stubSource struct {
	active *ActiveConfig
	err    error
}

func (s *stubSource) ActiveConfiguration(context.Context) (*ActiveConfig, error) {
	return s.active, s.err
}

type stubHermes struct {
	subject string
	handler func(string, []byte)
}

func (h *stubHermes) Publish(string, interface{}) error { return nil }

func (h *stubHermes) Subscribe(subject string, handler func(string, []byte)) error {
	h.subject = subject
	h.handler = handler
	return nil
}

func (h *stubHermes) Close() {}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStoreRefresh(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{}
	s := NewStore(cobit.Default(), baseSnapshot(), src, discardLogger())
	assert.Same(t, s.Builtin(), s.Snapshot())

	src.active = &ActiveConfig{ID: "c1", Name: "Audit", Mappings: Mappings{"df1": {"growth": {"EDM01": 8}}}}
	require.NoError(t, s.Refresh(ctx))
	snap := s.Snapshot()
	assert.Equal(t, SourceConfiguration, snap.Source().Kind)
	assert.Equal(t, "Audit", snap.Source().ConfigName)
	assert.Equal(t, 8.0, snap.Weight("df1", "growth", "EDM01"))

	src.active, src.err = nil, errors.New("db down")
	assert.Error(t, s.Refresh(ctx))
	assert.Same(t, snap, s.Snapshot())

	src.err = nil
	require.NoError(t, s.Refresh(ctx))
	assert.Same(t, s.Builtin(), s.Snapshot())
}

func TestStoreWithoutSource(t *testing.T) {
	s := NewStore(cobit.Default(), baseSnapshot(), nil, discardLogger())
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, SourceBuiltin, s.Snapshot().Source().Kind)
}

func TestStoreWatchRefreshesOnEvent(t *testing.T) {
	src := &stubSource{}
	s := NewStore(cobit.Default(), baseSnapshot(), src, discardLogger())
	h := &stubHermes{}
	require.NoError(t, s.Watch(h))
	require.NotNil(t, h.handler)

	src.active = &ActiveConfig{ID: "c2", Mappings: Mappings{}}
	h.handler("govdesign.weights.c2.activated", nil)
	assert.Equal(t, "c2", s.Snapshot().Source().ConfigID)
}
