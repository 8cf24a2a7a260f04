//go:build onnx

package local

import (
	"context"
	"fmt"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

// The ONNX Runtime environment is process-wide and shared by all sessions.
var (
	envOnce sync.Once
	envErr  error
)

func initEnvironment(runtimeLib string) error {
	envOnce.Do(func() {
		if runtimeLib != "" {
			ort.SetSharedLibraryPath(runtimeLib)
		}
		envErr = ort.InitializeEnvironment()
	})
	return envErr
}

type onnxSession struct {
	session    *ort.DynamicAdvancedSession
	inputNames []string
	logger     *zap.Logger
}

func newSession(modelPath, runtimeLib string, logger *zap.Logger) (Session, error) {
	if err := initEnvironment(runtimeLib); err != nil {
		return nil, fmt.Errorf("onnx runtime environment init failed: %w", err)
	}

	inputsInfo, outputsInfo, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect onnx model IO: %w", err)
	}
	if len(outputsInfo) == 0 {
		return nil, fmt.Errorf("onnx model %s reports no outputs", modelPath)
	}

	inputNames := make([]string, 0, len(inputsInfo))
	for _, ii := range inputsInfo {
		inputNames = append(inputNames, ii.Name)
	}

	// Prefer a pooled output when the export provides one.
	outputName := outputsInfo[0].Name
	for _, oi := range outputsInfo {
		if oi.Name == "sentence_embedding" {
			outputName = oi.Name
			break
		}
	}

	sess, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, []string{outputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("onnx session creation failed: %w", err)
	}

	logger.Info("ONNX Runtime session ready",
		zap.String("model", modelPath),
		zap.Strings("inputs", inputNames),
		zap.String("output", outputName))
	return &onnxSession{session: sess, inputNames: inputNames, logger: logger}, nil
}

func (s *onnxSession) Run(ctx context.Context, batch Batch) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	shape := ort.NewShape(int64(batch.Size), int64(batch.SeqLen))
	tensors := make(map[string]*ort.Tensor[int64], 3)
	defer func() {
		for _, t := range tensors {
			_ = t.Destroy()
		}
	}()

	inputs := make([]ort.Value, 0, len(s.inputNames))
	for _, name := range s.inputNames {
		data, err := inputFor(name, batch)
		if err != nil {
			return Output{}, err
		}
		t, err := ort.NewTensor(shape, data)
		if err != nil {
			return Output{}, fmt.Errorf("failed to create %s tensor: %w", name, err)
		}
		tensors[name] = t
		inputs = append(inputs, t)
	}

	// One output; let ORT allocate it
	outputs := make([]ort.Value, 1)
	if err := s.session.Run(inputs, outputs); err != nil {
		return Output{}, fmt.Errorf("onnx run failed: %w", err)
	}
	if outputs[0] == nil {
		return Output{}, fmt.Errorf("onnx returned no outputs")
	}
	defer func() { _ = outputs[0].Destroy() }()

	outTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return Output{}, fmt.Errorf("unexpected output type (want float32 tensor)")
	}

	raw := outTensor.GetData()
	data := make([]float32, len(raw))
	copy(data, raw)
	return Output{Data: data, Shape: []int64(outTensor.GetShape())}, nil
}

func inputFor(name string, batch Batch) ([]int64, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "input_ids") || lower == "input" || (strings.HasSuffix(lower, "ids") && !strings.Contains(lower, "type")):
		return batch.InputIDs, nil
	case strings.Contains(lower, "attention") || strings.Contains(lower, "mask"):
		return batch.AttentionMask, nil
	case strings.Contains(lower, "token_type") || strings.Contains(lower, "segment"):
		return batch.TokenTypeIDs, nil
	default:
		return nil, fmt.Errorf("unsupported model input %q", name)
	}
}

func (s *onnxSession) Close() error {
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	return err
}
