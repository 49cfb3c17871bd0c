package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	t.Parallel()

	base := stderrors.New("model file truncated")
	ee := New(base).
		Component("pitchnet").
		Category(CategoryModelLoad).
		Context("model_path", "/models/pesto_512.tflite").
		Build()

	assert.Equal(t, "model file truncated", ee.Error())
	assert.Equal(t, "pitchnet", ee.GetComponent())
	assert.Equal(t, string(CategoryModelLoad), ee.GetCategory())
	assert.Equal(t, "/models/pesto_512.tflite", ee.GetContext()["model_path"])
	assert.True(t, Is(ee, base))
}

func TestNewf(t *testing.T) {
	t.Parallel()

	ee := Newf("chunk size %d out of range", 31).Category(CategoryValidation).Build()
	assert.Equal(t, "chunk size 31 out of range", ee.Error())
}

func TestCategoryMatching(t *testing.T) {
	t.Parallel()

	a := New(stderrors.New("a")).Category(CategoryBuffer).Build()
	b := New(stderrors.New("b")).Category(CategoryBuffer).Build()
	c := New(stderrors.New("c")).Category(CategoryInference).Build()

	assert.True(t, stderrors.Is(a, b), "errors in the same category should match")
	assert.False(t, stderrors.Is(a, c), "errors in different categories should not match")
}

func TestUnwrap(t *testing.T) {
	t.Parallel()

	base := stderrors.New("underlying")
	ee := New(base).Build()
	assert.Equal(t, base, Unwrap(ee))
}

func TestGetContextIsACopy(t *testing.T) {
	t.Parallel()

	ee := New(stderrors.New("x")).Context("k", "v").Build()
	ctx := ee.GetContext()
	require.NotNil(t, ctx)
	ctx["k"] = "mutated"
	assert.Equal(t, "v", ee.GetContext()["k"])
}

type recordingReporter struct {
	got []*EnhancedError
}

func (r *recordingReporter) Report(ee *EnhancedError) { r.got = append(r.got, ee) }

func TestReporterReceivesBuiltErrors(t *testing.T) {
	rep := &recordingReporter{}
	SetReporter(rep)
	defer SetReporter(nil)

	ee := New(stderrors.New("reported")).Category(CategoryAudio).Build()

	require.Len(t, rep.got, 1)
	assert.Equal(t, ee, rep.got[0])
}
