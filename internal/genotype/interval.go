package genotype

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrInvalidInterval = errors.New("invalid interval")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Interval is the closed search domain [Left, Right].
type Interval struct {
	Left  float64 `json:"left" yaml:"left"`
	Right float64 `json:"right" yaml:"right"`
}

func (i Interval) Span() float64 {
	return i.Right - i.Left
}

func (i Interval) Validate() error {
	if math.IsNaN(i.Left) || math.IsInf(i.Left, 0) || math.IsNaN(i.Right) || math.IsInf(i.Right, 0) {
		return fmt.Errorf("%w: bounds must be finite (got %v %v)", ErrInvalidInterval, i.Left, i.Right)
	}
	if i.Left >= i.Right {
		return fmt.Errorf("%w: left must be < right (got %v %v)", ErrInvalidInterval, i.Left, i.Right)
	}
	return nil
}

func (i Interval) String() string {
	return strconv.FormatFloat(i.Left, 'g', -1, 64) + " " + strconv.FormatFloat(i.Right, 'g', -1, 64)
}
