package github

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextLink(t *testing.T) {
	cases := map[string]string{
		"": "",
		`<https://api.github.com/user/repos?page=2>; rel="next", <https://api.github.com/user/repos?page=5>; rel="last"`: "https://api.github.com/user/repos?page=2",
		`<https://api.github.com/user/repos?page=1>; rel="prev", <https://api.github.com/user/repos?page=1>; rel="first"`: "",
		`<https://api.github.com/user/repos?page=1>; rel="prev", <https://api.github.com/user/repos?page=3>; rel="next"`:  "https://api.github.com/user/repos?page=3",
	}
	for header, want := range cases {
		assert.Equal(t, want, nextLink(header), header)
	}
}

func TestCollectPages(t *testing.T) {
	pages := map[string]struct {
		items []int
		next  string
	}{
		"p1": {[]int{1, 2}, "p2"},
		"p2": {[]int{3}, "p3"},
		"p3": {nil, ""},
	}
	var visited []string

	all, err := CollectPages(context.Background(), "p1", func(_ context.Context, cursor string) ([]int, string, error) {
		visited = append(visited, cursor)
		p := pages[cursor]
		return p.items, p.next, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, all)
	assert.Equal(t, []string{"p1", "p2", "p3"}, visited)
}

func TestCollectPages_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	_, err := CollectPages(context.Background(), "p1", func(_ context.Context, cursor string) ([]int, string, error) {
		if cursor == "p2" {
			return nil, "", boom
		}
		return []int{1}, "p2", nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestCollectPages_BreaksCursorCycle(t *testing.T) {
	calls := 0
	all, err := CollectPages(context.Background(), "a", func(_ context.Context, cursor string) ([]string, string, error) {
		calls++
		return []string{cursor}, "a", nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, all)
	assert.Equal(t, 1, calls)
}
