package local

import (
	"fmt"

	"github.com/botirk38/embedsim/types"
)

// pool reduces a model output to one vector per batch row. [batch, dims]
// outputs are already pooled; [batch, seq, dims] hidden states are reduced
// with the attention-masked mean or the first ([CLS]) position.
func pool(out Output, batch Batch, strategy string) (types.Matrix, error) {
	switch len(out.Shape) {
	case 2:
		rows, dims := int(out.Shape[0]), int(out.Shape[1])
		if rows != batch.Size {
			return nil, fmt.Errorf("model returned %d rows for batch of %d", rows, batch.Size)
		}
		if len(out.Data) != rows*dims {
			return nil, fmt.Errorf("unexpected flat data length %d for shape %v", len(out.Data), out.Shape)
		}
		m := make(types.Matrix, rows)
		for i := range m {
			m[i] = make([]float32, dims)
			copy(m[i], out.Data[i*dims:(i+1)*dims])
		}
		return m, nil

	case 3:
		rows, seq, dims := int(out.Shape[0]), int(out.Shape[1]), int(out.Shape[2])
		if rows != batch.Size || seq != batch.SeqLen {
			return nil, fmt.Errorf("model output shape %v does not match batch [%d %d]", out.Shape, batch.Size, batch.SeqLen)
		}
		if len(out.Data) != rows*seq*dims {
			return nil, fmt.Errorf("unexpected flat data length %d for shape %v", len(out.Data), out.Shape)
		}

		m := make(types.Matrix, rows)
		for b := 0; b < rows; b++ {
			pooled := make([]float32, dims)
			if strategy == PoolingCLS {
				copy(pooled, out.Data[b*seq*dims:b*seq*dims+dims])
				m[b] = pooled
				continue
			}

			var count float32
			for s := 0; s < seq; s++ {
				if batch.AttentionMask[b*seq+s] == 0 {
					continue
				}
				offset := (b*seq + s) * dims
				for d := 0; d < dims; d++ {
					pooled[d] += out.Data[offset+d]
				}
				count++
			}
			if count > 0 {
				inv := 1 / count
				for d := range pooled {
					pooled[d] *= inv
				}
			}
			m[b] = pooled
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported output shape %v", out.Shape)
	}
}
