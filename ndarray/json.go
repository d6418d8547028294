package ndarray

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// wireArray is the encoded form of an NDArray. Data is in row-major order;
// consumers rebuild coordinates from flat offsets using Shape.
type wireArray[T Number, S Shape] struct {
	Data  []T `json:"data"`
	Shape S   `json:"shape"`
}

// byteElements reports element types encoding/json would write as a
// base64 string instead of a list of numbers.
func byteElements[T Number]() bool {
	return reflect.TypeFor[T]().Kind() == reflect.Uint8
}

func (a *NDArray[T, S]) MarshalJSON() ([]byte, error) {
	if byteElements[T]() {
		data := make([]int64, len(a.data))
		for i, v := range a.data {
			data[i] = int64(v)
		}
		return json.Marshal(wireArray[int64, S]{Data: data, Shape: a.shape})
	}
	data := a.data
	if data == nil {
		data = []T{}
	}
	return json.Marshal(wireArray[T, S]{Data: data, Shape: a.shape})
}

func (a *NDArray[T, S]) UnmarshalJSON(b []byte) error {
	var flat []T
	var shape S
	if byteElements[T]() {
		var w wireArray[int64, S]
		if err := json.Unmarshal(b, &w); err != nil {
			return fmt.Errorf("ndarray: %w", err)
		}
		flat = make([]T, len(w.Data))
		for i, v := range w.Data {
			if v < 0 || v > math.MaxUint8 {
				return fmt.Errorf("ndarray: element %d out of range for a byte: %d", i, v)
			}
			flat[i] = T(v)
		}
		shape = w.Shape
	} else {
		var w wireArray[T, S]
		if err := json.Unmarshal(b, &w); err != nil {
			return fmt.Errorf("ndarray: %w", err)
		}
		flat, shape = w.Data, w.Shape
	}
	if flat == nil {
		flat = []T{}
	}
	decoded, err := New(flat, shape)
	if err != nil {
		return err
	}
	*a = *decoded
	return nil
}
