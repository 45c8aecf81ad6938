package users

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/outreach/internal/common"
	"github.com/dmitrijs2005/outreach/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAndLookup(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	u, err := r.Create(ctx, &models.User{Name: "A", Email: "A@B.com", PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "a@b.com", u.Email)
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := r.GetByEmail(ctx, "a@B.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", byID.Name)

	_, err = r.Create(ctx, &models.User{Name: "B", Email: "a@b.COM", PasswordHash: "h"})
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)

	_, err = r.GetByEmail(ctx, "nobody@b.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	u, err := r.Create(ctx, &models.User{Name: "A", Email: "a@b.com", PasswordHash: "h"})
	require.NoError(t, err)
	u.Name = "mutated"

	again, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
}

func TestMemoryRepository_Validation(t *testing.T) {
	_, err := NewMemoryRepository().Create(context.Background(), &models.User{})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestMemoryRepository_Delete(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	u, err := r.Create(ctx, &models.User{Name: "A", Email: "a@b.com", PasswordHash: "h"})
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, u.ID))
	_, err = r.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, r.Delete(ctx, u.ID), common.ErrorNotFound)

	// the email is free again
	_, err = r.Create(ctx, &models.User{Name: "A", Email: "a@b.com", PasswordHash: "h"})
	assert.NoError(t, err)
}

func TestMemoryRepository_ConcurrentSameEmail(t *testing.T) {
	r := NewMemoryRepository()

	var ok, dup atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := "Race@Example.com"
			if i%2 == 0 {
				email = "race@example.COM"
			}
			_, err := r.Create(context.Background(), &models.User{Name: fmt.Sprint(i), Email: email, PasswordHash: "h"})
			switch {
			case err == nil:
				ok.Add(1)
			case err == common.ErrDuplicateEmail:
				dup.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(31), dup.Load())
}
