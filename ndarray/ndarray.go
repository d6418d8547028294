// Package ndarray implements a fixed-rank, dynamically shaped, row-major
// multi-dimensional array.
//
// The rank of an NDArray is part of its type: the shape is stored as a
// fixed-length array ([2]int for a matrix, [3]int for a volume, ...), while
// the size of every axis is chosen at construction.
package ndarray

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"strings"

	"golang.org/x/exp/constraints"
)

// Number is the set of element types an NDArray can hold.
type Number interface {
	constraints.Integer | constraints.Float
}

// Shape is the set of shape types. Its length is the rank of the array.
type Shape interface {
	[1]int | [2]int | [3]int | [4]int | [5]int | [6]int
}

// Dims3 is the shape of a stack of matrices: [planes, rows, cols].
type Dims3 = [3]int

var (
	// ErrShape is returned when the supplied data does not fit the shape
	ErrShape = errors.New("ndarray: data does not match shape")
	// ErrKernelTooLarge is returned by Conv2D when the kernel exceeds the input
	ErrKernelTooLarge = errors.New("ndarray: kernel larger than input")
	// ErrEmptyKernel is returned by Conv2D for kernels with a zero-sized axis
	ErrEmptyKernel = errors.New("ndarray: empty kernel")
)

// NDArray owns a contiguous row-major buffer and its shape.
// len(data) == product(shape) holds for every value returned by a constructor.
type NDArray[T Number, S Shape] struct {
	data    []T
	shape   S
	strides S
}

// Size returns the number of elements described by shape.
// It returns -1 if any axis is negative or the product overflows an int.
func Size[S Shape](shape S) int {
	n := 1
	for i := 0; i < len(shape); i++ {
		if shape[i] < 0 {
			return -1
		}
		if shape[i] != 0 && n > math.MaxInt/shape[i] {
			return -1
		}
		n *= shape[i]
	}
	return n
}

// rowMajorStrides: stride[i] is the product of every axis after i.
func rowMajorStrides[S Shape](shape S) S {
	var strides S
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

func wrap[T Number, S Shape](data []T, shape S) *NDArray[T, S] {
	return &NDArray[T, S]{
		data:    data,
		shape:   shape,
		strides: rowMajorStrides(shape),
	}
}

func mustSize[S Shape](shape S) int {
	n := Size(shape)
	if n < 0 {
		panic(fmt.Sprintf("ndarray: invalid shape %v", shape))
	}
	return n
}

// New copies flat into a new array of the given shape.
func New[T Number, S Shape](flat []T, shape S) (*NDArray[T, S], error) {
	n := Size(shape)
	if n < 0 {
		return nil, fmt.Errorf("%w: invalid shape %v", ErrShape, shape)
	}
	if n != len(flat) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but got %d", ErrShape, shape, n, len(flat))
	}
	data := make([]T, n)
	copy(data, flat)
	return wrap(data, shape), nil
}

// FromSeq drains seq into a new array of the given shape.
func FromSeq[T Number, S Shape](seq iter.Seq[T], shape S) (*NDArray[T, S], error) {
	n := Size(shape)
	if n < 0 {
		return nil, fmt.Errorf("%w: invalid shape %v", ErrShape, shape)
	}
	data := make([]T, 0, n)
	for v := range seq {
		data = append(data, v)
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but got %d", ErrShape, shape, n, len(data))
	}
	return wrap(data, shape), nil
}

// Full returns an array with every element set to v.
func Full[T Number, S Shape](shape S, v T) *NDArray[T, S] {
	data := make([]T, mustSize(shape))
	if v != 0 {
		for i := range data {
			data[i] = v
		}
	}
	return wrap(data, shape)
}

// Zeros returns an array filled with the additive identity.
func Zeros[T Number, S Shape](shape S) *NDArray[T, S] {
	return Full[T](shape, 0)
}

// Ones returns an array filled with the multiplicative identity.
func Ones[T Number, S Shape](shape S) *NDArray[T, S] {
	return Full[T](shape, 1)
}

func (a *NDArray[T, S]) Shape() S {
	return a.shape
}

func (a *NDArray[T, S]) Strides() S {
	return a.strides
}

func (a *NDArray[T, S]) Rank() int {
	return len(a.shape)
}

func (a *NDArray[T, S]) Size() int {
	return len(a.data)
}

// offset flattens idx. Coordinates outside the shape are a programming
// error and panic rather than wrap around into a neighbouring row.
func (a *NDArray[T, S]) offset(idx S) int {
	off := 0
	for i := 0; i < len(idx); i++ {
		c := idx[i]
		if c < 0 || c >= a.shape[i] {
			panic(fmt.Sprintf("ndarray: index %d out of range for axis %d of shape %v", c, i, a.shape))
		}
		off += c * a.strides[i]
	}
	return off
}

// unravel is the inverse of offset.
func (a *NDArray[T, S]) unravel(off int) S {
	var idx S
	for i := 0; i < len(idx); i++ {
		idx[i] = off / a.strides[i]
		off %= a.strides[i]
	}
	return idx
}

// At returns the element at idx. It panics if idx is out of range.
func (a *NDArray[T, S]) At(idx S) T {
	return a.data[a.offset(idx)]
}

// Set writes v at idx. It panics if idx is out of range.
func (a *NDArray[T, S]) Set(idx S, v T) {
	a.data[a.offset(idx)] = v
}

// Flat returns a row-major copy of the backing storage.
func (a *NDArray[T, S]) Flat() []T {
	out := make([]T, len(a.data))
	copy(out, a.data)
	return out
}

// All walks every coordinate in row-major order.
func (a *NDArray[T, S]) All() iter.Seq2[S, T] {
	return func(yield func(S, T) bool) {
		for off, v := range a.data {
			if !yield(a.unravel(off), v) {
				return
			}
		}
	}
}

// Values walks the elements in row-major order.
func (a *NDArray[T, S]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range a.data {
			if !yield(v) {
				return
			}
		}
	}
}

func (a *NDArray[T, S]) Clone() *NDArray[T, S] {
	return wrap(a.Flat(), a.shape)
}

func (a *NDArray[T, S]) Equal(other *NDArray[T, S]) bool {
	if other == nil || a.shape != other.shape {
		return false
	}
	for i, v := range a.data {
		if other.data[i] != v {
			return false
		}
	}
	return true
}

// Map returns a new array of the same shape with fn applied to every element.
func (a *NDArray[T, S]) Map(fn func(T) T) *NDArray[T, S] {
	data := make([]T, len(a.data))
	for i, v := range a.data {
		data[i] = fn(v)
	}
	return wrap(data, a.shape)
}

// Any reports whether pred holds for at least one element.
func (a *NDArray[T, S]) Any(pred func(T) bool) bool {
	for _, v := range a.data {
		if pred(v) {
			return true
		}
	}
	return false
}

func (a *NDArray[T, S]) Count(pred func(T) bool) int {
	n := 0
	for _, v := range a.data {
		if pred(v) {
			n++
		}
	}
	return n
}

func (a *NDArray[T, S]) Sum() T {
	var sum T
	for _, v := range a.data {
		sum += v
	}
	return sum
}

// Max returns the largest element, or the zero value for an empty array.
func (a *NDArray[T, S]) Max() T {
	if len(a.data) == 0 {
		var zero T
		return zero
	}
	m := a.data[0]
	for _, v := range a.data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// String prints matrices row by row and every other rank as a flat list.
func (a *NDArray[T, S]) String() string {
	b := new(strings.Builder)
	if len(a.shape) != 2 || len(a.data) == 0 {
		fmt.Fprintf(b, "%v%v", a.shape, a.data)
		return b.String()
	}
	// strides[0] == cols for a matrix
	cols := a.strides[0]
	b.WriteString("[")
	for r := 0; r < a.shape[0]; r++ {
		if r > 0 {
			b.WriteString("\n ")
		}
		fmt.Fprintf(b, "%v", a.data[r*cols:(r+1)*cols])
	}
	b.WriteString("]")
	return b.String()
}
