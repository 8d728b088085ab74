package flow

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewStage(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		fn      any
		wantErr bool
	}{
		{name: "map", kind: KindMap, fn: func(x int) string { return strconv.Itoa(x) }},
		{name: "expand", kind: KindExpand, fn: func(x int, e Emitter[string]) { e.Emit(strconv.Itoa(x)) }},
		{name: "reduce", kind: KindReduce, fn: func(Input[int]) (string, bool) { return "", false }},
		{name: "transform", kind: KindTransform, fn: func(Input[int], Emitter[string]) {}},
		{name: "map with wrong output", kind: KindMap, fn: func(x int) int { return x }, wantErr: true},
		{name: "expand declared as map", kind: KindMap, fn: func(int, Emitter[string]) {}, wantErr: true},
		{name: "reduce declared as transform", kind: KindTransform, fn: func(Input[int]) (string, bool) { return "", false }, wantErr: true},
		{name: "unknown kind", kind: Kind(42), fn: func(x int) string { return "" }, wantErr: true},
		{name: "nil callable", kind: KindMap, fn: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := NewStage[int, string](tt.kind, tt.fn)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidStage)
				require.Empty(t, st.links)
				return
			}
			require.NoError(t, err)
			require.Len(t, st.links, 1)
			require.Equal(t, tt.kind.String(), st.links[0].label())
		})
	}
}

func TestNewStage_Runs(t *testing.T) {
	pool := newTestPool(t, 2)

	st, err := NewStage[int, string](KindExpand, func(x int, e Emitter[string]) {
		e.Emit(strconv.Itoa(x))
		e.Emit("-")
	})
	require.NoError(t, err)

	var got []string
	_, err = runAndWait(t, pool, Via(From([]int{1, 2}), st).Into(Collect(&got)))
	require.NoError(t, err)
	require.Equal(t, []string{"1", "-", "2", "-"}, got)
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "map", KindMap.String())
	require.Equal(t, "expand", KindExpand.String())
	require.Equal(t, "reduce", KindReduce.String())
	require.Equal(t, "transform", KindTransform.String())
	require.Equal(t, "kind(9)", Kind(9).String())
}
