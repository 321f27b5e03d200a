package clip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWriteSignals(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	got, err := m.Read()
	require.NoError(t, err)
	assert.True(t, got.Empty())

	require.NoError(t, m.Write(Contents{Text: []byte("hello")}))
	select {
	case <-m.Watch():
	default:
		t.Fatal("no change signal after write")
	}

	require.NoError(t, m.Write(Contents{Image: []byte{0x89, 'P', 'N', 'G'}}))
	got, _ = m.Read()
	assert.Equal(t, "hello", string(got.Text), "image write keeps text")
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, got.Image)
}

func TestMemoryReadIsACopy(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Write(Contents{Text: []byte("abc")}))
	got, _ := m.Read()
	got.Text[0] = 'x'
	again, _ := m.Read()
	assert.Equal(t, "abc", string(again.Text))
}

func TestMemoryClose(t *testing.T) {
	m := NewMemory()
	m.Close()
	m.Close()
	_, open := <-m.Watch()
	assert.False(t, open)
	assert.NoError(t, m.Write(Contents{Text: []byte("late")}))
}

func TestContentsEqual(t *testing.T) {
	a := Contents{Text: []byte("a")}
	assert.True(t, a.Equal(Contents{Text: []byte("a"), Image: []byte{}}))
	assert.False(t, a.Equal(Contents{Text: []byte("b")}))
	assert.True(t, Contents{}.Empty())
}
