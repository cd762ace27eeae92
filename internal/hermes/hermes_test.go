package hermes

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingClient struct {
	subjects []string
	err      error
}

func (c *recordingClient) Publish(subject string, _ interface{}) error {
	c.subjects = append(c.subjects, subject)
	return c.err
}
func (c *recordingClient) Subscribe(string, func(string, []byte)) error { return nil }
func (c *recordingClient) Close()                                       {}

func TestSubjectsFallUnderStreamWildcards(t *testing.T) {
	weights := strings.TrimSuffix(SubjectWeightsAll, ">")
	projects := strings.TrimSuffix(SubjectProjectsAll, ">")

	assert.Equal(t, "govdesign.project.p1.saved", SubjectProjectSaved("p1"))
	assert.True(t, strings.HasPrefix(SubjectProjectDeleted("p1"), projects))
	assert.True(t, strings.HasPrefix(SubjectWeightsActivated("c1"), weights))
	assert.True(t, strings.HasPrefix(SubjectWeightsDeleted("c1"), weights))
	assert.True(t, strings.HasPrefix(SubjectWeightsDeactivated, weights))
}

func TestEmit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	Emit(nil, logger, "govdesign.project.p1.saved", nil)

	c := &recordingClient{}
	Emit(c, logger, SubjectProjectSaved("p1"), ProjectSavedEvent{ProjectID: "p1"})
	assert.Equal(t, []string{"govdesign.project.p1.saved"}, c.subjects)

	failing := &recordingClient{err: errors.New("nats down")}
	assert.NotPanics(t, func() {
		Emit(failing, logger, SubjectWeightsDeactivated, WeightsDeactivatedEvent{})
	})
}
