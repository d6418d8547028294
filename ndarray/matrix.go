package ndarray

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Dims2 is the shape of a matrix: [rows, cols].
type Dims2 = [2]int

// Eye returns a rows x cols matrix with ones where row == col.
func Eye[T Number](rows, cols int) *NDArray[T, Dims2] {
	m := Zeros[T](Dims2{rows, cols})
	for i := 0; i < min(rows, cols); i++ {
		m.data[i*cols+i] = 1
	}
	return m
}

// Identity returns the n x n identity matrix.
func Identity[T Number](n int) *NDArray[T, Dims2] {
	return Eye[T](n, n)
}

// Transpose returns a new matrix with result[j, i] = m[i, j].
func Transpose[T Number](m *NDArray[T, Dims2]) *NDArray[T, Dims2] {
	rows, cols := m.shape[0], m.shape[1]
	out := Zeros[T](Dims2{cols, rows})
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.data[j*rows+i] = m.data[i*cols+j]
		}
	}
	return out
}

// FlipLR mirrors the columns: result[i, cols-1-j] = m[i, j].
func FlipLR[T Number](m *NDArray[T, Dims2]) *NDArray[T, Dims2] {
	rows, cols := m.shape[0], m.shape[1]
	out := Zeros[T](m.shape)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.data[i*cols+cols-1-j] = m.data[i*cols+j]
		}
	}
	return out
}

// ConvShape returns the valid-mode output shape of convolving an input of
// shape in with a kernel of shape k.
func ConvShape(in, k Dims2) (Dims2, error) {
	if k[0] == 0 || k[1] == 0 {
		return Dims2{}, fmt.Errorf("%w: kernel %v", ErrEmptyKernel, k)
	}
	if k[0] > in[0] || k[1] > in[1] {
		return Dims2{}, fmt.Errorf("%w: kernel %v, input %v", ErrKernelTooLarge, k, in)
	}
	return Dims2{in[0] - k[0] + 1, in[1] - k[1] + 1}, nil
}

// Conv2D is a valid-mode (no padding) 2-D cross-correlation with stride 1:
//
//	out[i, j] = Σ_k Σ_l kernel[k, l] * m[i+k, j+l]
//
// The output only covers positions where the kernel fully overlaps m.
func Conv2D[T Number](m, kernel *NDArray[T, Dims2]) (*NDArray[T, Dims2], error) {
	shape, err := ConvShape(m.shape, kernel.shape)
	if err != nil {
		return nil, err
	}
	cols := m.shape[1]
	kRows, kCols := kernel.shape[0], kernel.shape[1]
	out := Zeros[T](shape)
	for i := 0; i < shape[0]; i++ {
		for j := 0; j < shape[1]; j++ {
			var acc T
			for k := 0; k < kRows; k++ {
				row := m.data[(i+k)*cols+j : (i+k)*cols+j+kCols]
				krow := kernel.data[k*kCols : (k+1)*kCols]
				for l, kv := range krow {
					acc += kv * row[l]
				}
			}
			out.data[i*shape[1]+j] = acc
		}
	}
	return out, nil
}

// Dense copies m into a gonum matrix. gonum rejects zero-sized matrices,
// so Dense panics for them as mat.NewDense does.
func Dense[T Number](m *NDArray[T, Dims2]) *mat.Dense {
	data := make([]float64, len(m.data))
	for i, v := range m.data {
		data[i] = float64(v)
	}
	return mat.NewDense(m.shape[0], m.shape[1], data)
}

// FromDense copies a gonum matrix into a float64 NDArray.
func FromDense(d mat.Matrix) *NDArray[float64, Dims2] {
	rows, cols := d.Dims()
	out := Zeros[float64](Dims2{rows, cols})
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.data[i*cols+j] = d.At(i, j)
		}
	}
	return out
}
