package repository_test

import (
	"os"
	"path"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/bizadmin/repository"
)

//nolint:paralleltest // subtests need to execute in order
func TestJSONStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	store, err := repository.NewJSONStore(dir)
	require.NoError(t, err)

	defaultEntity := newEntity()
	secondEntity := newEntity()

	t.Run("load from empty folder", func(t *testing.T) {
		repo := repository.NewMemoryRepository[Entity, EntityID](repository.WithStore(store))

		count, err := repo.Count(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("store", func(t *testing.T) {
		repo := repository.NewMemoryRepository[Entity, EntityID](repository.WithStore(store))

		assert.NoError(t, repo.Save(ctx, defaultEntity))
		assert.NoError(t, repo.Save(ctx, secondEntity))
		assert.FileExists(t, path.Join(dir, "Entity.json"))
	})

	t.Run("load keeps the order", func(t *testing.T) {
		repo := repository.NewMemoryRepository[Entity, EntityID](repository.WithStore(store))

		all, err := repo.All(ctx)
		assert.NoError(t, err)
		assert.Equal(t, []Entity{defaultEntity, secondEntity}, all)
	})

	t.Run("second entity, different file, same store", func(t *testing.T) {
		repo := repository.NewMemoryRepository[Entity, EntityID](
			repository.WithStore(store),
			repository.WithStoreFilename("Entity2.json"),
		)
		err := repo.Save(ctx, defaultEntity)
		assert.NoError(t, err)

		assert.FileExists(t, path.Join(dir, "Entity.json"))
		assert.FileExists(t, path.Join(dir, "Entity2.json"))
	})

	t.Run("parallel", func(t *testing.T) {
		repo := repository.NewMemoryRepository[Entity, EntityID](repository.WithStore(store))
		wg := sync.WaitGroup{}

		const routines = 15
		wg.Add(routines)

		for range routines {
			go func() {
				defer wg.Done()

				err := repo.Save(ctx, newEntity())
				assert.NoError(t, err)
			}()
		}

		wg.Wait()

		reloaded := repository.NewMemoryRepository[Entity, EntityID](repository.WithStore(store))
		count, _ := reloaded.Count(ctx)
		assert.Equal(t, 2+routines, count)
	})

	t.Run("no temporary files are left", func(t *testing.T) {
		files, err := os.ReadDir(dir)
		assert.NoError(t, err)
		assert.Len(t, files, 2)
	})
}
