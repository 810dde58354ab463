package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedran77/messagely/internal/domain"
	"github.com/vedran77/messagely/internal/repository"
)

func seed(t *testing.T, s *Store, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, s.Users().Create(context.Background(), &domain.User{
			Username: n, PasswordHash: "h", FirstName: n + "F", LastName: n + "L", Phone: "1", JoinAt: time.Now(),
		}))
	}
}

func TestUserRepo(t *testing.T) {
	s := NewStore()
	users := s.Users()
	ctx := context.Background()
	seed(t, s, "carol", "alice")

	err := users.Create(ctx, &domain.User{Username: "alice"})
	assert.ErrorIs(t, err, repository.ErrDuplicateUsername)

	got, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "aliceF", got.FirstName)

	missing, err := users.GetByUsername(ctx, "zed")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].Username)
	assert.Equal(t, "carol", list[1].Username)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	ok, err := users.UpdateLastLogin(ctx, "alice", at)
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ = users.GetByUsername(ctx, "alice")
	require.NotNil(t, got.LastLoginAt)
	assert.Equal(t, at, *got.LastLoginAt)

	ok, err = users.UpdateLastLogin(ctx, "zed", at)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepo_ReturnsCopies(t *testing.T) {
	s := NewStore()
	seed(t, s, "alice")

	got, _ := s.Users().GetByUsername(context.Background(), "alice")
	got.FirstName = "mutated"

	again, _ := s.Users().GetByUsername(context.Background(), "alice")
	assert.Equal(t, "aliceF", again.FirstName)
}

func TestMessageRepo(t *testing.T) {
	s := NewStore()
	msgs := s.Messages()
	ctx := context.Background()
	seed(t, s, "alice", "bob")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m2 := &domain.Message{FromUsername: "alice", ToUsername: "bob", Body: "second", SentAt: base.Add(time.Minute)}
	m1 := &domain.Message{FromUsername: "alice", ToUsername: "bob", Body: "first", SentAt: base}
	m3 := &domain.Message{FromUsername: "bob", ToUsername: "alice", Body: "reply", SentAt: base}
	require.NoError(t, msgs.Create(ctx, m2))
	require.NoError(t, msgs.Create(ctx, m1))
	require.NoError(t, msgs.Create(ctx, m3))
	assert.Equal(t, int64(1), m2.ID)
	assert.Equal(t, int64(2), m1.ID)
	assert.Equal(t, int64(3), m3.ID)

	inbox, err := msgs.ListTo(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, "first", inbox[0].Body)
	assert.Equal(t, "second", inbox[1].Body)
	assert.Equal(t, "alice", inbox[0].FromUser.Username)

	sent, err := msgs.ListFrom(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "alice", sent[0].ToUser.Username)

	detail, err := msgs.GetDetail(ctx, m1.ID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "aliceF", detail.FromUser.FirstName)
	assert.Equal(t, "bobF", detail.ToUser.FirstName)
	assert.Nil(t, detail.ReadAt)

	readAt := base.Add(time.Hour)
	rr, err := msgs.MarkRead(ctx, m1.ID, readAt)
	require.NoError(t, err)
	assert.Equal(t, &domain.ReadReceipt{ID: m1.ID, ReadAt: readAt}, rr)

	got, err := msgs.GetByID(ctx, m1.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead())
}

func TestMessageRepo_MissingAndUnknown(t *testing.T) {
	s := NewStore()
	msgs := s.Messages()
	ctx := context.Background()
	seed(t, s, "alice")

	err := msgs.Create(ctx, &domain.Message{FromUsername: "alice", ToUsername: "ghost", Body: "x"})
	assert.ErrorIs(t, err, repository.ErrUnknownUser)
	err = msgs.Create(ctx, &domain.Message{FromUsername: "ghost", ToUsername: "alice", Body: "x"})
	assert.ErrorIs(t, err, repository.ErrUnknownUser)

	got, err := msgs.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)
	detail, err := msgs.GetDetail(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, detail)
	rr, err := msgs.MarkRead(ctx, 42, time.Now())
	require.NoError(t, err)
	assert.Nil(t, rr)
}

func TestMessageRepo_ConcurrentCreateAssignsUniqueIDs(t *testing.T) {
	s := NewStore()
	seed(t, s, "alice", "bob")

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := &domain.Message{FromUsername: "alice", ToUsername: "bob", Body: "x", SentAt: time.Now()}
			if err := s.Messages().Create(context.Background(), m); err == nil {
				ids <- m.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
