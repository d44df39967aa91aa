package signal

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"trading-agent-go/internal/indicator"
	"trading-agent-go/internal/market"
)

// ortInit guards the process-wide onnxruntime environment. Multiple agents
// may each carry their own session, but the environment is shared.
var ortInit sync.Once

func initORT() error {
	var err error
	ortInit.Do(func() {
		libPath := "/usr/lib/libonnxruntime.so"
		if runtime.GOOS == "windows" {
			libPath = "onnxruntime.dll"
		} else if runtime.GOOS == "darwin" {
			libPath = "libonnxruntime.dylib"
		}
		ort.SetSharedLibraryPath(libPath)
		err = ort.InitializeEnvironment()
	})
	return err
}

// ONNXSource runs a trading model exported to ONNX. The model takes the
// feature vector and returns four outputs: a price forecast followed by
// sell, hold, and buy scores. The action is the argmax of the scores.
type ONNXSource struct {
	modelPath string
	logger    *zap.Logger

	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

var _ Source = (*ONNXSource)(nil)

// NewONNXSource prepares a source for the given checkpoint path. Load must
// be called before Signals.
func NewONNXSource(modelPath string, logger *zap.Logger) *ONNXSource {
	return &ONNXSource{modelPath: modelPath, logger: logger}
}

// Load initializes the runtime and creates the inference session.
func (s *ONNXSource) Load(ctx context.Context) error {
	if err := initORT(); err != nil {
		return fmt.Errorf("failed to initialize onnxruntime: %w", err)
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(1, FeatureSize), make([]float32, FeatureSize))
	if err != nil {
		return fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 4))
	if err != nil {
		inputTensor.Destroy()
		return fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(s.modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.Value{inputTensor}, []ort.Value{outputTensor}, nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return fmt.Errorf("failed to create session for %s: %w", s.modelPath, err)
	}

	s.mu.Lock()
	s.session = session
	s.input = inputTensor
	s.output = outputTensor
	s.mu.Unlock()

	s.logger.Info("Loaded model", zap.String("path", s.modelPath))
	return nil
}

// Signals runs inference over the current window. Histories shorter than
// MinModelHistory yield no signals rather than an error.
func (s *ONNXSource) Signals(ctx context.Context, series market.Series, snap indicator.Snapshot) (ModelSignals, error) {
	if series.Len() < MinModelHistory {
		return ModelSignals{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ModelSignals{}, fmt.Errorf("model session not loaded")
	}

	copy(s.input.GetData(), Features(series.Prices, series.Volumes, snap))
	if err := s.session.Run(); err != nil {
		return ModelSignals{}, fmt.Errorf("inference failed: %w", err)
	}

	out := s.output.GetData()
	if len(out) < 4 {
		return ModelSignals{}, fmt.Errorf("unexpected model output width %d", len(out))
	}

	action := ActionCodeSell
	best := out[1]
	for i, score := range out[2:4] {
		if score > best {
			best = score
			action = ActionCodeHold + i
		}
	}

	return ModelSignals{
		Forecast:    float64(out[0]),
		HasForecast: true,
		Action:      action,
		HasAction:   true,
	}, nil
}

// Save is a hook for symmetry with Load; an inference-only session has no
// state to persist.
func (s *ONNXSource) Save(ctx context.Context) error {
	s.logger.Debug("Model has no trainable state to save", zap.String("path", s.modelPath))
	return nil
}

// Close releases the session and its tensors.
func (s *ONNXSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	return nil
}
