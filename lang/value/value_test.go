package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loxcraft/loxcraft/lang/value"
)

func TestNumberFormatting(t *testing.T) {
	require.Equal(t, "10", value.Number(10).String())
	require.Equal(t, "10.5", value.Number(10.5).String())
}

func TestTruthy(t *testing.T) {
	require.True(t, value.Truthy(value.Boolean(true)))
	require.False(t, value.Truthy(value.Boolean(false)))
	require.False(t, value.Truthy(value.Nil))
	require.False(t, value.Truthy(value.Number(0)))
	require.True(t, value.Truthy(value.Number(1)))
	require.False(t, value.Truthy(value.String("")))
	require.True(t, value.Truthy(value.String("x")))
	require.True(t, value.Truthy(value.NewArray(nil)))
}

func TestEqualAcrossKindsIsFalse(t *testing.T) {
	require.False(t, value.Equal(value.Number(1), value.String("1")))
	require.True(t, value.Equal(value.Number(1), value.Number(1)))
	require.True(t, value.Equal(value.Nil, value.Nil))
}

func TestHashInsertionOrderAndBucketCollapse(t *testing.T) {
	h := value.NewHash(4)
	h.Set(value.String("a"), value.Number(1))
	h.Set(value.String("b"), value.Number(2))
	require.Equal(t, 2, h.Len())
	require.Equal(t, []value.Value{value.String("a"), value.String("b")}, h.Keys())

	arr1 := value.NewArray([]value.Value{value.Number(1)})
	arr2 := value.NewArray([]value.Value{value.Number(2)})
	h.Set(arr1, value.String("first-array-key"))
	h.Set(arr2, value.String("second-array-key"))
	got, ok := h.Get(arr1)
	require.True(t, ok)
	require.Equal(t, value.String("second-array-key"), got, "non-primitive keys collapse into a single bucket")
}

func TestArrayAliasing(t *testing.T) {
	a := value.NewArray([]value.Value{value.Number(1), value.Number(2)})
	b := a
	b.Set(0, value.Number(99))
	require.Equal(t, value.Number(99), a.Get(0))
}
