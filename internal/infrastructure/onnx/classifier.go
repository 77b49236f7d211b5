package onnx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"NewsChecker/internal/config"
	"NewsChecker/internal/domain"
	"NewsChecker/internal/ports"
)

const (
	defaultInputName = "float_input"
	defaultLabelName = "label"
	defaultProbsName = "probabilities"

	libraryPathEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"
)

// Classifier runs a logistic regression exported to ONNX (zipmap disabled).
// The session reuses preallocated tensors, so runs are serialized.
type Classifier struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	label   *ort.Tensor[int64]
	probs   *ort.Tensor[float32]
	dim     int

	mu sync.Mutex
}

var _ ports.Classifier = (*Classifier)(nil)

// Load initializes onnxruntime and creates a session for a model taking
// [1, dim] float features.
func Load(cfg config.ONNXConfig, dim int) (*Classifier, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("onnx model path is empty")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("invalid feature dimension %d", dim)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", cfg.ModelPath, err)
	}

	libPath := resolveSharedLibraryPath(cfg.LibraryPath, filepath.Dir(cfg.ModelPath))
	if libPath == "" {
		return nil, fmt.Errorf("onnxruntime shared library not found; set %s or model.onnx.libraryPath", libraryPathEnv)
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(dim)))
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}
	label, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("allocate label tensor: %w", err)
	}
	probs, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		input.Destroy()
		label.Destroy()
		return nil, fmt.Errorf("allocate probabilities tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{orDefault(cfg.InputName, defaultInputName)},
		[]string{orDefault(cfg.LabelName, defaultLabelName), orDefault(cfg.ProbabilitiesName, defaultProbsName)},
		[]ort.Value{input},
		[]ort.Value{label, probs},
		nil,
	)
	if err != nil {
		input.Destroy()
		label.Destroy()
		probs.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Classifier{
		session: session,
		input:   input,
		label:   label,
		probs:   probs,
		dim:     dim,
	}, nil
}

// PredictProba runs the session and returns the probabilities output.
func (c *Classifier) PredictProba(_ context.Context, v domain.FeatureVector) (domain.ClassProbabilities, error) {
	var probs domain.ClassProbabilities
	err := c.run(v, func() {
		out := c.probs.GetData()
		probs = domain.ClassProbabilities{
			Fake: float64(out[domain.FakeClass]),
			Real: float64(out[domain.RealClass]),
		}
	})
	return probs, err
}

// Predict runs the session and returns the label output.
func (c *Classifier) Predict(_ context.Context, v domain.FeatureVector) (int, error) {
	var label int
	err := c.run(v, func() {
		label = int(c.label.GetData()[0])
	})
	return label, err
}

// Close releases the session and its tensors.
func (c *Classifier) Close() error {
	if c == nil || c.session == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.session.Destroy()
	c.input.Destroy()
	c.label.Destroy()
	c.probs.Destroy()
	c.session = nil
	return err
}

func (c *Classifier) run(v domain.FeatureVector, read func()) error {
	if c == nil || c.session == nil {
		return errors.New("onnx classifier not initialized")
	}
	if v.Dim != c.dim {
		return fmt.Errorf("feature dimension %d does not match model dimension %d", v.Dim, c.dim)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	copy(c.input.GetData(), v.Dense())
	if err := c.session.Run(); err != nil {
		return fmt.Errorf("onnx run: %w", err)
	}
	read()
	return nil
}

func resolveSharedLibraryPath(configured, modelDir string) string {
	if env := strings.TrimSpace(os.Getenv(libraryPathEnv)); env != "" {
		return env
	}
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured
	}

	names := []string{
		"libonnxruntime.so",
		"libonnxruntime.dylib",
		"onnxruntime.dll",
	}
	dirs := []string{
		modelDir,
		filepath.Join(modelDir, "lib"),
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}
	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
