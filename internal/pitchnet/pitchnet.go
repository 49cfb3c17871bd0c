// pitchnet.go pitch model specific code
package pitchnet

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	tflite "github.com/tphakala/go-tflite"
	"github.com/tphakala/go-tflite/delegates/xnnpack"
	"github.com/tphakala/pitchnet-go/internal/conf"
	"github.com/tphakala/pitchnet-go/internal/engine"
	"github.com/tphakala/pitchnet-go/internal/errors"
)

// outputTensors is the number of scalar outputs the pitch model produces:
// pitch, confidence and amplitude, in that order.
const outputTensors = 3

// Model wraps a TensorFlow Lite pitch estimation model as an inference
// capability. It is not safe for concurrent invocation, the engine's model
// slot serializes all calls.
type Model struct {
	interpreter *tflite.Interpreter
	model       *tflite.Model
	chunkSize   int
	modelID     string
}

// New loads the TFLite model referenced by the settings and prepares an
// interpreter for it. The chunk size is taken from the settings when set,
// otherwise derived from the model filename.
func New(settings *conf.Settings) (*Model, error) {
	start := time.Now()
	modelPath := settings.Model.Path

	if modelPath == "" {
		return nil, errors.Newf("no model path configured").
			Component("pitchnet").
			Category(errors.CategoryConfiguration).
			Build()
	}

	chunkSize := settings.Model.ChunkSize
	if chunkSize == 0 {
		chunkSize = ChunkSizeFromFilename(modelPath)
	}

	modelData, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, errors.New(err).
			Component("pitchnet").
			Category(errors.CategoryModelLoad).
			ModelContext(modelPath, "").
			Timing("model-load", time.Since(start)).
			Build()
	}

	model := tflite.NewModel(modelData)
	if model == nil {
		return nil, errors.Newf("cannot load TensorFlow Lite model").
			Component("pitchnet").
			Category(errors.CategoryModelInit).
			ModelContext(modelPath, "").
			Context("model_size_mb", len(modelData)/1024/1024).
			Build()
	}

	threads := determineThreadCount(settings.Model.Threads)
	options := tflite.NewInterpreterOptions()

	log := GetLogger()
	if settings.Model.UseXNNPACK {
		delegate := xnnpack.New(xnnpack.DelegateOptions{NumThreads: int32(max(1, threads-1))}) //nolint:gosec // G115: thread count bounded by CPU count, safe conversion
		if delegate == nil {
			log.Warn("Failed to create XNNPACK delegate, falling back to default CPU")
			options.SetNumThread(threads)
		} else {
			options.AddDelegate(delegate)
			options.SetNumThread(1)
		}
	} else {
		options.SetNumThread(threads)
	}

	options.SetErrorReporter(func(msg string, userData any) {
		GetLogger().Error("TFLite error", "message", msg)
	}, nil)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		return nil, errors.Newf("cannot create TensorFlow Lite interpreter").
			Component("pitchnet").
			Category(errors.CategoryModelInit).
			ModelContext(modelPath, "").
			Build()
	}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		return nil, errors.Newf("tensor allocation failed").
			Component("pitchnet").
			Category(errors.CategoryModelInit).
			ModelContext(modelPath, "").
			Build()
	}

	m := &Model{
		interpreter: interpreter,
		model:       model,
		chunkSize:   chunkSize,
		modelID:     filepath.Base(modelPath),
	}

	// The model data byte slice is no longer needed, TFLite keeps its own copy.
	runtime.GC()

	log.Info("pitch model initialized",
		"model", m.modelID,
		"chunk_size", chunkSize,
		"threads", threads,
		"load_time_ms", time.Since(start).Milliseconds())

	return m, nil
}

// ChunkSize returns the analysis window length the model expects.
func (m *Model) ChunkSize() int {
	return m.chunkSize
}

// Invoke runs inference on one chunk and returns the pitch, confidence and
// amplitude predictions.
func (m *Model) Invoke(chunk []float32) (pitch, confidence, amplitude float64, err error) {
	inputTensor := m.interpreter.GetInputTensor(0)
	if inputTensor == nil {
		return 0, 0, 0, fmt.Errorf("cannot get input tensor")
	}

	copy(inputTensor.Float32s(), chunk)

	if status := m.interpreter.Invoke(); status != tflite.OK {
		return 0, 0, 0, fmt.Errorf("tensor invoke failed: %v", status)
	}

	outputs := make([]float64, outputTensors)
	for i := range outputTensors {
		tensor := m.interpreter.GetOutputTensor(i)
		if tensor == nil {
			return 0, 0, 0, fmt.Errorf("cannot get output tensor %d", i)
		}
		values := tensor.Float32s()
		if len(values) == 0 {
			return 0, 0, 0, fmt.Errorf("output tensor %d is empty", i)
		}
		outputs[i] = float64(values[0])
	}

	return outputs[0], outputs[1], outputs[2], nil
}

// Close releases the interpreter. The model must not be invoked afterwards.
func (m *Model) Close() error {
	if m.interpreter != nil {
		m.interpreter.Delete()
		m.interpreter = nil
	}
	return nil
}

// Builder returns a capability builder for the engine, deferring model
// construction so a failed load during reconfiguration leaves the previous
// model serving.
func Builder(settings *conf.Settings) engine.CapabilityBuilder {
	return func() (engine.Capability, int, error) {
		m, err := New(settings)
		if err != nil {
			return nil, 0, err
		}
		return m, m.ChunkSize(), nil
	}
}

// determineThreadCount validates the configured thread count, falling back to
// the number of CPUs.
func determineThreadCount(configured int) int {
	if configured > 0 && configured <= runtime.NumCPU() {
		return configured
	}
	return runtime.NumCPU()
}
