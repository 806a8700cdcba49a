package classifier

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by every method once Close has been called.
var ErrClosed = errors.New("classifier is closed")

// ShapeError reports an input whose width does not match the layer.
type ShapeError struct {
	Row  int
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("row %d has %d values, want %d", e.Row, e.Got, e.Want)
}
