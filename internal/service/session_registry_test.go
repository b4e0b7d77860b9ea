package service

import (
	"testing"

	"github.com/arturoeanton/repo-describer/internal/domain"
	"github.com/arturoeanton/repo-describer/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistry_OpenReusesSession(t *testing.T) {
	r, err := NewSessionRegistry(4, &fakeHosting{}, &fakeDocs{}, nil)
	require.NoError(t, err)

	a := r.Open("octo", testRepo(1, "one"), "tok")
	b := r.Open("octo", testRepo(1, "one"), "tok")
	c := r.Open("hubot", testRepo(1, "one"), "tok")
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, r.Len())

	got, err := r.Get("octo", 1)
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = r.Get("octo", 99)
	assert.ErrorIs(t, err, port.ErrSessionNotFound)
}

func TestSessionRegistry_CompletionDiscardsSession(t *testing.T) {
	hosting := &fakeHosting{readme: &domain.ReadmeDocument{Content: "real", SHA: "r"}}
	var removed []int64
	r, err := NewSessionRegistry(4, hosting, &fakeDocs{description: "d"}, func(login string, id int64) {
		assert.Equal(t, "octo", login)
		removed = append(removed, id)
	})
	require.NoError(t, err)

	e := r.Open("octo", testRepo(7, "seven"), "tok")
	ch := e.Subscribe()
	require.NoError(t, e.Start(t.Context()))
	require.NoError(t, e.PushDescription(t.Context()))

	assert.Equal(t, []int64{7}, removed)
	assert.Equal(t, 0, r.Len())

	var last domain.Session
	for s := range ch {
		last = s
	}
	assert.Equal(t, domain.StateIdle, last.State)
}

func TestSessionRegistry_DiscardUser(t *testing.T) {
	r, err := NewSessionRegistry(4, &fakeHosting{}, &fakeDocs{}, nil)
	require.NoError(t, err)

	r.Open("octo", testRepo(1, "one"), "tok")
	r.Open("octo", testRepo(2, "two"), "tok")
	r.Open("hubot", testRepo(3, "three"), "tok")

	r.DiscardUser("octo")
	assert.Equal(t, 1, r.Len())
	_, err = r.Get("hubot", 3)
	assert.NoError(t, err)
}

func TestSessionRegistry_EvictsLeastRecent(t *testing.T) {
	r, err := NewSessionRegistry(2, &fakeHosting{}, &fakeDocs{}, nil)
	require.NoError(t, err)

	first := r.Open("octo", testRepo(1, "one"), "tok")
	ch := first.Subscribe()
	r.Open("octo", testRepo(2, "two"), "tok")
	r.Open("octo", testRepo(3, "three"), "tok")

	_, err = r.Get("octo", 1)
	assert.ErrorIs(t, err, port.ErrSessionNotFound)
	_, open := <-ch
	assert.False(t, open)
}
