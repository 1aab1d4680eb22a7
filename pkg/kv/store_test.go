package kv

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetSet(t *testing.T) {
	s := New[string, int]()

	s.Set("foo", 42)
	val, ok := s.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, 42, val)

	_, ok = s.Get("bar")
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	s := New[string, string]()
	s.Set("key", "value")

	s.Delete("key")
	s.Delete("missing")

	_, ok := s.Get("key")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_KeysSorted(t *testing.T) {
	s := New[string, int]()
	s.Set("todos", 1)
	s.Set("ideas", 2)
	s.Set("todoLists", 3)

	assert.Equal(t, []string{"ideas", "todoLists", "todos"}, s.Keys())
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := New[string, string]()
	s.Set("a", "1")

	snap := s.Snapshot()
	snap["a"] = "changed"
	snap["b"] = "new"

	got, _ := s.Get("a")
	assert.Equal(t, "1", got)
	assert.Equal(t, 1, s.Len())
}

func TestStore_Concurrent(t *testing.T) {
	s := New[string, int]()
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.Set(strconv.Itoa(n), n)
		}(i)
		go func(n int) {
			defer wg.Done()
			s.Get(strconv.Itoa(n))
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 100, s.Len())
}
