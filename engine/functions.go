package engine

import (
	"database/sql/driver"
	"fmt"

	sqlite "modernc.org/sqlite"

	"github.com/viant/embedstore/vector"
)

// RegisterVectorFunctions registers vec_dot and vec_cosine with the driver so
// they are available on connections opened after this call. Both take two
// embedding BLOBs (little-endian float32, see vector.Encode) and return a
// REAL; NULL operands propagate as NULL.
func RegisterVectorFunctions() {
	// Idempotent; the driver rejects duplicates and we ignore that.
	_ = sqlite.RegisterDeterministicScalarFunction("vec_dot", 2, vecDotImpl)
	_ = sqlite.RegisterDeterministicScalarFunction("vec_cosine", 2, vecCosineImpl)
}

func asEmbedding(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vector.Decode(v)
	default:
		return nil, fmt.Errorf("engine: unsupported argument type %T for embedding; want BLOB", arg)
	}
}

func vecDotImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := embeddingPair("vec_dot", args)
	if err != nil || a == nil || b == nil {
		return nil, err
	}
	return vector.Dot(a, b)
}

func vecCosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := embeddingPair("vec_cosine", args)
	if err != nil || a == nil || b == nil {
		return nil, err
	}
	return vector.Cosine(a, b)
}

func embeddingPair(fn string, args []driver.Value) ([]float32, []float32, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("%s: expected 2 arguments, got %d", fn, len(args))
	}
	a, err := asEmbedding(args[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := asEmbedding(args[1])
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}
