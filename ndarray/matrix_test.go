package ndarray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestEye(t *testing.T) {
	rows, cols := 3, 4
	arr := Eye[uint](rows, cols)
	assert.Equal(t, Dims2{3, 4}, arr.Shape())
	for x := 0; x < rows; x++ {
		for y := 0; y < cols; y++ {
			want := uint(0)
			if x == y {
				want = 1
			}
			assert.Equal(t, want, arr.At(Dims2{x, y}))
		}
	}
}

func TestIdentity(t *testing.T) {
	for n := 0; n < 6; n++ {
		arr := Identity[int](n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					assert.Equal(t, 1, arr.At(Dims2{i, j}))
				} else {
					assert.Equal(t, 0, arr.At(Dims2{i, j}))
				}
			}
		}
	}
}

func TestTranspose(t *testing.T) {
	arr, err := New([]float64{1, 2, 3, 4, 5, 6}, Dims2{2, 3})
	require.NoError(t, err)
	tr := Transpose(arr)
	assert.Equal(t, Dims2{3, 2}, tr.Shape())
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, arr.At(Dims2{i, j}), tr.At(Dims2{j, i}))
		}
	}

	// agrees with gonum
	want := mat.DenseCopyOf(Dense(arr).T())
	assert.True(t, mat.Equal(want, Dense(tr)))
	assert.True(t, arr.Equal(Transpose(tr)))
}

func TestFlipLR(t *testing.T) {
	arr, err := New([]int{1, 2, 3, 4, 5, 6}, Dims2{2, 3})
	require.NoError(t, err)
	flipped := FlipLR(arr)
	assert.Equal(t, []int{3, 2, 1, 6, 5, 4}, flipped.Flat())
	assert.Equal(t, arr.Shape(), flipped.Shape())

	anti := FlipLR(Identity[int](3))
	assert.Equal(t, []int{0, 0, 1, 0, 1, 0, 1, 0, 0}, anti.Flat())
}

func TestConv2DShapeLaw(t *testing.T) {
	cases := []struct{ in, k Dims2 }{
		{Dims2{10, 10}, Dims2{1, 5}},
		{Dims2{10, 10}, Dims2{5, 1}},
		{Dims2{10, 10}, Dims2{5, 5}},
		{Dims2{7, 3}, Dims2{2, 3}},
		{Dims2{4, 4}, Dims2{4, 4}},
		{Dims2{1, 1}, Dims2{1, 1}},
	}
	for _, c := range cases {
		out, err := Conv2D(Ones[int](c.in), Ones[int](c.k))
		require.NoError(t, err)
		assert.Equal(t, Dims2{c.in[0] - c.k[0] + 1, c.in[1] - c.k[1] + 1}, out.Shape())
		// a ones kernel over a ones input sums the whole window everywhere
		assert.False(t, out.Any(func(v int) bool { return v != c.k[0]*c.k[1] }))
	}
}

func TestConv2DValues(t *testing.T) {
	in, err := New([]int{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, Dims2{3, 3})
	require.NoError(t, err)
	k, err := New([]int{
		1, 0,
		0, -1,
	}, Dims2{2, 2})
	require.NoError(t, err)

	out, err := Conv2D(in, k)
	require.NoError(t, err)
	assert.Equal(t, []int{-4, -4, -4, -4}, out.Flat())

	// cross-correlation, not flipped convolution
	k2, err := New([]int{0, 1}, Dims2{1, 2})
	require.NoError(t, err)
	out, err = Conv2D(in, k2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 5, 6, 8, 9}, out.Flat())
}

func TestConv2DKernelTooLarge(t *testing.T) {
	in := Ones[int](Dims2{4, 4})
	_, err := Conv2D(in, Ones[int](Dims2{5, 1}))
	assert.ErrorIs(t, err, ErrKernelTooLarge)
	_, err = Conv2D(in, Ones[int](Dims2{1, 5}))
	assert.ErrorIs(t, err, ErrKernelTooLarge)
	_, err = Conv2D(in, Ones[int](Dims2{0, 2}))
	assert.ErrorIs(t, err, ErrEmptyKernel)
}

func TestDenseRoundTrip(t *testing.T) {
	arr, err := New([]int{1, 2, 3, 4, 5, 6}, Dims2{3, 2})
	require.NoError(t, err)
	d := Dense(arr)
	r, c := d.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 6.0, d.At(2, 1))

	back := FromDense(d)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, back.Flat())
}
