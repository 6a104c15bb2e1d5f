package client

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Document(t *testing.T) {
	objs, err := Decode(strings.NewReader(`{"kismet.system.version": "2023-07-R1"}`), ModeDocument, nil)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, map[string]any{"kismet.system.version": "2023-07-R1"}, objs[0])
}

func TestDecode_DocumentWithVisitor(t *testing.T) {
	var seen []any
	objs, err := Decode(strings.NewReader(`[1, 2, 3]`), ModeDocument, func(obj any) error {
		seen = append(seen, obj)
		return nil
	})
	require.NoError(t, err)
	assert.Nil(t, objs)
	assert.Equal(t, []any{[]any{float64(1), float64(2), float64(3)}}, seen)
}

func TestDecode_DocumentMalformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"truncated":`), ModeDocument, nil)
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, []byte(`{"truncated":`), malformed.Raw)
}

const ekjsonBody = `{"n": 1}
{"n": 2}
{"n": 3}
{"n": 4}
`

func TestDecode_StreamCollects(t *testing.T) {
	objs, err := Decode(strings.NewReader(ekjsonBody), ModeStream, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"n": float64(1)},
		map[string]any{"n": float64(2)},
		map[string]any{"n": float64(3)},
		map[string]any{"n": float64(4)},
	}, objs)
}

func TestDecode_StreamVisitsInOrder(t *testing.T) {
	var order []float64
	objs, err := Decode(strings.NewReader(ekjsonBody), ModeStream, func(obj any) error {
		order = append(order, obj.(map[string]any)["n"].(float64))
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, objs)
	assert.Equal(t, []float64{1, 2, 3, 4}, order)
}

func TestDecode_StreamMalformedLineAborts(t *testing.T) {
	body := "{\"n\": 1}\n{\"n\": 2}\n{\"n\": 3 oops\n{\"n\": 4}\n"

	t.Run("collecting", func(t *testing.T) {
		objs, err := Decode(strings.NewReader(body), ModeStream, nil)
		var malformed *MalformedResponseError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, []byte(`{"n": 3 oops`), malformed.Raw)
		assert.Nil(t, objs)
	})

	t.Run("visiting", func(t *testing.T) {
		calls := 0
		objs, err := Decode(strings.NewReader(body), ModeStream, func(any) error {
			calls++
			return nil
		})
		assert.True(t, IsMalformedResponse(err))
		assert.Nil(t, objs)
		assert.Equal(t, 2, calls)
	})
}

func TestDecode_StreamArrayLineNotSplit(t *testing.T) {
	objs, err := Decode(strings.NewReader("[1, 2]\n[3]\n"), ModeStream, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{
		[]any{float64(1), float64(2)},
		[]any{float64(3)},
	}, objs)
}

func TestDecode_StreamSkipsBlankLinesAndMissingNewline(t *testing.T) {
	objs, err := Decode(strings.NewReader("\n{\"n\": 1}\r\n\n{\"n\": 2}"), ModeStream, nil)
	require.NoError(t, err)
	assert.Len(t, objs, 2)
}

func TestDecode_StreamEmptyBody(t *testing.T) {
	objs, err := Decode(strings.NewReader(""), ModeStream, nil)
	require.NoError(t, err)
	assert.NotNil(t, objs)
	assert.Empty(t, objs)
}

func TestDecode_StreamLongLine(t *testing.T) {
	long := `{"blob": "` + strings.Repeat("x", 1<<20) + `"}` + "\n"
	objs, err := Decode(strings.NewReader(long), ModeStream, nil)
	require.NoError(t, err)
	require.Len(t, objs, 1)
}

func TestDecode_VisitorErrorStops(t *testing.T) {
	stop := errors.New("enough")
	calls := 0
	_, err := Decode(strings.NewReader(ekjsonBody), ModeStream, func(any) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, calls)
}
