package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
	"github.com/MikeSquared-Agency/GovDesign/internal/scoring"
	"github.com/MikeSquared-Agency/GovDesign/internal/store"
	"github.com/MikeSquared-Agency/GovDesign/internal/weights"
)

// failingStore mocks the store methods a test sets expectations on. Any
// other call panics through the nil embedded interface.
type failingStore struct {
	store.Store
	mock.Mock
}

func (m *failingStore) ListProjects(ctx context.Context) ([]*store.Project, error) {
	args := m.Called(ctx)
	projects, _ := args.Get(0).([]*store.Project)
	return projects, args.Error(1)
}

func (m *failingStore) GetProject(ctx context.Context, id string) (*store.Project, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*store.Project)
	return p, args.Error(1)
}

func (m *failingStore) UpdateProject(ctx context.Context, p *store.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *failingStore) GetActiveWeightConfiguration(ctx context.Context) (*store.WeightConfiguration, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(*store.WeightConfiguration)
	return c, args.Error(1)
}

func newMockedRouter(t *testing.T, s store.Store) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := cobit.Default()
	builtin, err := weights.Builtin(reg)
	require.NoError(t, err)
	ws := weights.NewStore(reg, builtin, nil, logger)
	provider := scoring.NewProvider(reg, scoring.DefaultCapabilityBands(), ws)
	return NewRouter(provider, s, ws, nil, "", logger)
}

func TestStoreFailuresBecome500(t *testing.T) {
	ms := &failingStore{}
	ms.On("ListProjects", mock.Anything).Return(nil, errors.New("disk on fire"))
	ms.On("GetActiveWeightConfiguration", mock.Anything).Return(nil, errors.New("timeout"))
	router := newMockedRouter(t, ms)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/projects", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"disk on fire"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/weights/active", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	ms.AssertExpectations(t)
}

func TestUpdateRaceWithDeleteIsNotFound(t *testing.T) {
	ms := &failingStore{}
	ms.On("GetProject", mock.Anything, "p1").Return(&store.Project{ID: "p1", Name: "Gone soon"}, nil)
	ms.On("UpdateProject", mock.Anything, mock.MatchedBy(func(p *store.Project) bool {
		return p.ID == "p1" && p.Name == "Renamed"
	})).Return(store.ErrNotFound)
	router := newMockedRouter(t, ms)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("PUT", "/api/v1/projects/p1", strings.NewReader(`{"name":"Renamed"}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)

	ms.AssertExpectations(t)
}
