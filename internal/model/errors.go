package model

import "errors"

// Run error kinds. Callers wrap these with context and compare with errors.Is.
var (
	// ErrDataUnavailable means the source returned no bars, or too few to build a single window.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrDegenerateScale means the evaluation segment is constant and min-max scaling is undefined.
	ErrDegenerateScale = errors.New("degenerate scale")
	// ErrShapeMismatch means a window or model output does not have the expected shape.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrModelUnavailable means the model artifact is missing, incompatible or unreachable.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrSymbolNotFound means the data source does not know the ticker.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrNetwork means the data source could not be reached.
	ErrNetwork = errors.New("network error")
)

// ErrorKind returns a stable short name for err, used in run records, metrics labels and API responses.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, ErrDegenerateScale):
		return "degenerate_scale"
	case errors.Is(err, ErrShapeMismatch):
		return "shape_mismatch"
	case errors.Is(err, ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, ErrSymbolNotFound):
		return "symbol_not_found"
	case errors.Is(err, ErrNetwork):
		return "network"
	default:
		return "internal"
	}
}
