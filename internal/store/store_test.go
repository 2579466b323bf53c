package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := New(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestStore_GetAbsent(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestStore_SetGetReplace(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("logs", []byte(`[1]`)))
	require.NoError(t, s.Set("logs", []byte(`[1,2]`)))

	v, ok, err := s.Get("logs")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(v))
}

func TestStore_EmptyValueIsPresent(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("empty", nil))

	v, ok, err := s.Get("empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s1.Set("k", []byte("v")))
	require.NoError(t, s1.Close())

	s2, err := New(path)
	require.NoError(t, err)
	defer s2.Close()

	v, ok, err := s2.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(v))
}

func TestMemory(t *testing.T) {
	m := NewMemory()

	_, ok, err := m.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	in := []byte("abc")
	require.NoError(t, m.Set("k", in))
	in[0] = 'x'

	v, ok, err := m.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", string(v))
	assert.Equal(t, 1, m.Writes)
}
