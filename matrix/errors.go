package matrix

import "errors"

// Sentinel errors returned by the matrix package. Callers match them with
// errors.Is; the HTTP layer maps them to 400 responses.
var (
	// ErrEmpty is returned for a matrix with no rows or no columns.
	ErrEmpty = errors.New("matrix: empty matrix")

	// ErrRagged is returned when rows have different lengths.
	ErrRagged = errors.New("matrix: rows have unequal length")

	// ErrNonSquare signals that a square matrix was required.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrOrder signals a square matrix whose order is outside [MinOrder, MaxOrder].
	ErrOrder = errors.New("matrix: unsupported order")

	// ErrDimensionMismatch indicates incompatible operand dimensions.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrSingular is returned by Inverse when |det| <= EPSILON.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrZeroVector is returned when a zero-length vector would be normalized.
	ErrZeroVector = errors.New("matrix: zero-length vector")

	// ErrNotFinite is returned when a NaN or ±Inf reaches an entry point.
	ErrNotFinite = errors.New("matrix: NaN or Inf value")

	// ErrInvalidCell is wrapped by CellError for unparsable user input.
	ErrInvalidCell = errors.New("matrix: invalid numeric cell")
)
