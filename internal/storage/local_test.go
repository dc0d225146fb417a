package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndDeleteItemImage(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalImageStorage(t.TempDir(), "uploads")
	require.NoError(t, err)

	itemID := uuid.New()
	p, err := s.SaveItemImage(ctx, itemID, []byte("jpeg bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "/uploads/items/"+itemID.String()+"/"), p)
	assert.True(t, strings.HasSuffix(p, ".jpg"))

	full := filepath.Join(s.Root(), filepath.FromSlash(strings.TrimPrefix(p, "/uploads/")))
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	require.NoError(t, s.Delete(ctx, p))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(ctx, p), "deleting twice is fine")
}

func TestDeleteStaysInsideRoot(t *testing.T) {
	s, err := NewLocalImageStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	outside := filepath.Join(filepath.Dir(s.Root()), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	_ = s.Delete(context.Background(), "/uploads/../keep.txt")
	_, statErr := os.Stat(outside)
	assert.NoError(t, statErr)

	assert.ErrorIs(t, s.Delete(context.Background(), "/uploads/"), ErrOutsideRoot)
}
