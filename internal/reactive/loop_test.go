package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsInPostingOrder(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		loop.Post(func() { got = append(got, i) })
	}
	loop.Flush()

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestLoopPostFromLoopGoroutine(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()

	var got []string
	done := make(chan struct{})
	loop.Post(func() {
		got = append(got, "outer")
		loop.Post(func() {
			got = append(got, "inner")
			close(done)
		})
	})
	<-done
	loop.Flush()

	assert.Equal(t, []string{"outer", "inner"}, got)
}

func TestLoopClosedRejectsWork(t *testing.T) {
	loop := NewLoop()
	loop.Close()

	assert.False(t, loop.Post(func() { t.Error("ran after close") }))
	assert.False(t, loop.Do(func() {}))
	loop.Close()
}

func TestPropertySetNotifiesOnLoop(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()

	name := NewProperty(loop, "")
	var seen []string
	unsubscribe := name.Subscribe(func(v string) { seen = append(seen, v) })

	name.Set("a")
	name.Set("b")
	loop.Flush()
	assert.Equal(t, "b", name.Get())
	assert.Equal(t, []string{"a", "b"}, seen)

	unsubscribe()
	name.Set("c")
	loop.Flush()
	assert.Equal(t, "c", name.Get())
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestPropertyDerivedValueTracksLatestWrite(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()

	source := NewProperty(loop, "")
	length := NewProperty(loop, 0)
	source.SubscribeNow(func(v string) { length.SetNow(len(v)) })

	for _, v := range []string{"x", "xyz", "", "hello"} {
		source.Set(v)
	}
	loop.Flush()

	assert.Equal(t, 5, length.Get())
}
