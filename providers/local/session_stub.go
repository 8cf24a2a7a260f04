//go:build !onnx

package local

import (
	"errors"

	"go.uber.org/zap"
)

var errONNXNotAvailable = errors.New("local inference not compiled in; rebuild with -tags onnx")

func newSession(modelPath, runtimeLib string, logger *zap.Logger) (Session, error) {
	return nil, errONNXNotAvailable
}
