// Package repotest holds behavior checks shared by every
// simplefiles.Repository implementation.
package repotest

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-files/pkg/simplefiles"
)

// Run exercises repo against the Repository contract. newRepo must return
// an empty repository each time it is called.
func Run(t *testing.T, newRepo func(t *testing.T) simplefiles.Repository) {
	t.Helper()
	ctx := context.Background()

	t.Run("InsertAndGet", func(t *testing.T) {
		repo := newRepo(t)
		owner := uuid.New()

		id, err := repo.InsertFile(ctx, &simplefiles.File{
			OwnerID:    owner,
			Name:       "photo.png",
			Kind:       simplefiles.KindImage,
			Parent:     simplefiles.RootParent(),
			ContentKey: "0a2d6c8e-key",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)

		got, err := repo.GetFile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, owner, got.OwnerID)
		assert.Equal(t, "photo.png", got.Name)
		assert.Equal(t, simplefiles.KindImage, got.Kind)
		assert.True(t, got.Parent.IsRoot())
		assert.False(t, got.IsPublic)
		assert.Equal(t, "0a2d6c8e-key", got.ContentKey)
	})

	t.Run("InsertAssignsDistinctIDs", func(t *testing.T) {
		repo := newRepo(t)
		owner := uuid.New()
		seen := make(map[uuid.UUID]bool)
		for i := 0; i < 5; i++ {
			id, err := repo.InsertFile(ctx, &simplefiles.File{OwnerID: owner, Name: "f", Kind: simplefiles.KindFolder})
			require.NoError(t, err)
			assert.False(t, seen[id])
			seen[id] = true
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetFile(ctx, uuid.New())
		assert.ErrorIs(t, err, simplefiles.ErrNotFound)
	})

	t.Run("ListChildrenPages", func(t *testing.T) {
		repo := newRepo(t)
		owner := uuid.New()
		other := uuid.New()

		folderID, err := repo.InsertFile(ctx, &simplefiles.File{OwnerID: owner, Name: "dir", Kind: simplefiles.KindFolder})
		require.NoError(t, err)
		parent := simplefiles.FolderParent(folderID)

		var names []string
		for i := 0; i < 45; i++ {
			name := fmt.Sprintf("file-%02d", i)
			names = append(names, name)
			_, err := repo.InsertFile(ctx, &simplefiles.File{OwnerID: owner, Name: name, Kind: simplefiles.KindFile, Parent: parent, ContentKey: name})
			require.NoError(t, err)
			// Interleave records that must never show up
			_, err = repo.InsertFile(ctx, &simplefiles.File{OwnerID: other, Name: "other", Kind: simplefiles.KindFile, Parent: parent, ContentKey: "x"})
			require.NoError(t, err)
			_, err = repo.InsertFile(ctx, &simplefiles.File{OwnerID: owner, Name: "rooted", Kind: simplefiles.KindFile, ContentKey: "y"})
			require.NoError(t, err)
		}

		expected := map[int][]string{
			0:                                    names[0:20],
			1:                                    names[20:40],
			2:                                    names[40:45],
			3:                                    {},
			math.MaxInt/simplefiles.PageSize + 1: {},
			math.MaxInt:                          {},
		}
		for page, want := range expected {
			files, err := repo.ListChildren(ctx, simplefiles.ListChildrenParams{OwnerID: owner, Parent: parent, Page: page})
			require.NoError(t, err)
			got := make([]string, 0, len(files))
			for _, f := range files {
				got = append(got, f.Name)
				assert.Equal(t, parent, f.Parent)
			}
			assert.Equal(t, want, got, "page %d", page)
		}
	})

	t.Run("ListChildrenRoot", func(t *testing.T) {
		repo := newRepo(t)
		owner := uuid.New()
		_, err := repo.InsertFile(ctx, &simplefiles.File{OwnerID: owner, Name: "a", Kind: simplefiles.KindFolder})
		require.NoError(t, err)
		_, err = repo.InsertFile(ctx, &simplefiles.File{OwnerID: owner, Name: "b", Kind: simplefiles.KindFolder})
		require.NoError(t, err)

		files, err := repo.ListChildren(ctx, simplefiles.ListChildrenParams{OwnerID: owner, Parent: simplefiles.RootParent()})
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, "a", files[0].Name)
		assert.Equal(t, "b", files[1].Name)
	})

	t.Run("UpdateVisibility", func(t *testing.T) {
		repo := newRepo(t)
		id, err := repo.InsertFile(ctx, &simplefiles.File{OwnerID: uuid.New(), Name: "doc.txt", Kind: simplefiles.KindFile, ContentKey: "k"})
		require.NoError(t, err)

		updated, err := repo.UpdateVisibility(ctx, id, true)
		require.NoError(t, err)
		assert.True(t, updated.IsPublic)

		again, err := repo.UpdateVisibility(ctx, id, true)
		require.NoError(t, err)
		assert.True(t, again.IsPublic)

		got, err := repo.GetFile(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.IsPublic)

		updated, err = repo.UpdateVisibility(ctx, id, false)
		require.NoError(t, err)
		assert.False(t, updated.IsPublic)
	})

	t.Run("UpdateVisibilityMissing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.UpdateVisibility(ctx, uuid.New(), true)
		assert.ErrorIs(t, err, simplefiles.ErrNotFound)
	})
}
