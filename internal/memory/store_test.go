package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/firmdesk/firmdesk-backend/internal/model"
)

func TestStoreGetUnseenIsEmpty(t *testing.T) {
	store := New(4, 16, time.Minute)
	require.Empty(t, store.Get("nope"))
}

func TestStoreAppendKeepsOrder(t *testing.T) {
	store := New(10, 16, time.Minute)
	store.Append("conv",
		model.Turn{Role: model.TurnRoleUser, Text: "hello"},
		model.Turn{Role: model.TurnRoleModel, Text: "hi"},
	)
	turns := store.Get("conv")
	require.Equal(t, []model.Turn{
		{Role: model.TurnRoleUser, Text: "hello"},
		{Role: model.TurnRoleModel, Text: "hi"},
	}, turns)
}

func TestStoreWindowKeepsLastTurns(t *testing.T) {
	window := 6
	store := New(window, 16, time.Minute)
	total := 25
	for i := 0; i < total; i++ {
		store.Append("conv", model.Turn{Role: model.TurnRoleUser, Text: fmt.Sprintf("turn-%d", i)})
	}
	turns := store.Get("conv")
	require.Len(t, turns, window)
	for i, turn := range turns {
		require.Equal(t, fmt.Sprintf("turn-%d", total-window+i), turn.Text)
	}
}

func TestStoreClear(t *testing.T) {
	store := New(4, 16, time.Minute)
	store.Append("conv", model.Turn{Role: model.TurnRoleUser, Text: "hello"})
	store.Clear("conv")
	require.Empty(t, store.Get("conv"))
}

func TestStoreCapacityEvictsOldestConversation(t *testing.T) {
	store := New(4, 2, time.Minute)
	store.Append("a", model.Turn{Role: model.TurnRoleUser, Text: "1"})
	store.Append("b", model.Turn{Role: model.TurnRoleUser, Text: "2"})
	store.Append("c", model.Turn{Role: model.TurnRoleUser, Text: "3"})
	require.Equal(t, 2, store.Len())
	require.Empty(t, store.Get("a"))
	require.NotEmpty(t, store.Get("c"))
}

func TestStoreConcurrentAppendLosesNoTurns(t *testing.T) {
	store := New(1000, 16, time.Minute)
	var wg sync.WaitGroup
	writers := 8
	perWriter := 50
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				store.Append("conv", model.Turn{Role: model.TurnRoleUser, Text: fmt.Sprintf("%d-%d", w, i)})
			}
		}(w)
	}
	wg.Wait()
	require.Len(t, store.Get("conv"), writers*perWriter)
}

func TestStoreReturnedSliceIsACopy(t *testing.T) {
	store := New(4, 16, time.Minute)
	store.Append("conv", model.Turn{Role: model.TurnRoleUser, Text: "original"})
	turns := store.Get("conv")
	turns[0].Text = "mutated"
	require.Equal(t, "original", store.Get("conv")[0].Text)
}
