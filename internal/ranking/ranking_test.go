package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parascope/backend/internal/apperrors"
	"github.com/parascope/backend/internal/models"
)

func post(id int, createdAt time.Time, up, down, comments, views int) models.Post {
	return models.Post{
		ID:           id,
		CreatedAt:    createdAt,
		Upvotes:      up,
		Downvotes:    down,
		CommentCount: comments,
		Views:        views,
	}
}

func ids(posts []models.Post) []int {
	out := make([]int, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		input   string
		want    Algorithm
		wantErr bool
	}{
		{"newest", Newest, false},
		{"popular", Popular, false},
		{"top", Top, false},
		{"trending", Trending, false},
		{"hot", Hot, false},
		{"controversial", Controversial, false},
		{"best", "", true},
		{"", "", true},
		{"HOT", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRankNewest(t *testing.T) {
	now := time.Now().UTC()
	posts := []models.Post{
		post(1, now.Add(-3*time.Hour), 0, 0, 0, 0),
		post(2, now.Add(-1*time.Hour), 0, 0, 0, 0),
		post(3, now.Add(-2*time.Hour), 0, 0, 0, 0),
	}

	got, err := Rank(posts, Newest, now)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1}, ids(got))
}

func TestRankPopularTieBreak(t *testing.T) {
	now := time.Now().UTC()
	posts := []models.Post{
		post(1, now.Add(-2*time.Hour), 5, 0, 0, 0),
		post(2, now.Add(-1*time.Hour), 5, 0, 0, 0),
		post(3, now.Add(-1*time.Minute), 1, 0, 0, 0),
	}

	got, err := Rank(posts, Popular, now)
	require.NoError(t, err)
	// equal upvotes break by createdAt descending
	assert.Equal(t, []int{2, 1, 3}, ids(got))
}

func TestRankTopUsesScore(t *testing.T) {
	now := time.Now().UTC()
	posts := []models.Post{
		post(1, now, 10, 9, 0, 0), // score 1
		post(2, now, 3, 0, 0, 0),  // score 3
		post(3, now, 5, 8, 0, 0),  // score -3
	}

	got, err := Rank(posts, Top, now)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 3}, ids(got))
}

func TestRankTrendingWindowAndOrder(t *testing.T) {
	now := time.Now().UTC()
	posts := []models.Post{
		post(1, now.Add(-25*time.Hour), 100, 0, 100, 100), // outside 24h window
		post(2, now.Add(-1*time.Hour), 4, 0, 7, 0),
		post(3, now.Add(-2*time.Hour), 4, 0, 3, 50),
		post(4, now.Add(-3*time.Hour), 9, 0, 0, 0),
	}

	got, err := Rank(posts, Trending, now)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2, 3}, ids(got))
}

func TestRankHotWindowBoundary(t *testing.T) {
	now := time.Now().UTC()
	inside := post(1, now.Add(-HotWindow).Add(time.Second), 0, 0, 0, 0)
	outside := post(2, now.Add(-HotWindow).Add(-time.Second), 1000, 0, 1000, 0)

	got, err := Rank([]models.Post{inside, outside}, Hot, now)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(got))
}

func TestRankHotDecay(t *testing.T) {
	now := time.Now().UTC()
	// same engagement, newer wins through the decay term
	older := post(1, now.Add(-48*time.Hour), 10, 0, 5, 0)
	newer := post(2, now.Add(-1*time.Hour), 10, 0, 5, 0)
	// old but massively engaged beats both
	heavy := post(3, now.Add(-6*24*time.Hour), 50000, 0, 500, 0)

	got, err := Rank([]models.Post{older, newer, heavy}, Hot, now)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1}, ids(got))
}

func TestControversyExtremes(t *testing.T) {
	// unanimous items score zero
	assert.Equal(t, 0, Controversy(10, 0))
	assert.Equal(t, 0, Controversy(0, 7))
	// a perfect split scores the full engagement total
	assert.Equal(t, 10, Controversy(5, 5))
	assert.Equal(t, 6, Controversy(3, 5))
}

func TestRankControversialOrdersBalancedFirst(t *testing.T) {
	now := time.Now().UTC()
	unanimous := post(1, now, 10, 0, 0, 0)
	balanced := post(2, now.Add(-time.Hour), 5, 5, 0, 0)

	got, err := Rank([]models.Post{unanimous, balanced}, Controversial, now)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, ids(got))
}

func TestRankDeterministic(t *testing.T) {
	now := time.Now().UTC()
	posts := []models.Post{
		post(1, now.Add(-time.Hour), 3, 1, 2, 9),
		post(2, now.Add(-time.Hour), 3, 1, 2, 9), // fully tied with 1
		post(3, now.Add(-2*time.Hour), 5, 0, 0, 0),
		post(4, now.Add(-30*time.Minute), 1, 4, 8, 2),
	}

	for _, algo := range []Algorithm{Newest, Popular, Top, Trending, Hot, Controversial} {
		first, err := Rank(posts, algo, now)
		require.NoError(t, err)
		second, err := Rank(posts, algo, now)
		require.NoError(t, err)
		assert.Equal(t, ids(first), ids(second), "algorithm %s must be deterministic", algo)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	now := time.Now().UTC()
	posts := []models.Post{
		post(1, now.Add(-2*time.Hour), 1, 0, 0, 0),
		post(2, now.Add(-1*time.Hour), 9, 0, 0, 0),
	}

	_, err := Rank(posts, Popular, now)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(posts))
}

func TestRankUnknownAlgorithm(t *testing.T) {
	_, err := Rank(nil, Algorithm("bogus"), time.Now())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
