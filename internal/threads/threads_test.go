package threads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parascope/backend/internal/apperrors"
	"github.com/parascope/backend/internal/models"
)

func comment(id int, parentID *int, createdAt time.Time, up, down int) models.Comment {
	return models.Comment{
		ID:        id,
		ParentID:  parentID,
		CreatedAt: createdAt,
		Upvotes:   up,
		Downvotes: down,
	}
}

func intPtr(v int) *int { return &v }

func topIDs(nodes []Node) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestParseSort(t *testing.T) {
	for _, valid := range []string{"best", "top", "new", "old", "controversial"} {
		_, err := ParseSort(valid)
		assert.NoError(t, err, valid)
	}

	_, err := ParseSort("hot")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestBuildGroupsReplies(t *testing.T) {
	now := time.Now().UTC()
	comments := []models.Comment{
		comment(1, nil, now.Add(-4*time.Hour), 0, 0),          // A (top)
		comment(2, nil, now.Add(-3*time.Hour), 0, 0),          // B (top)
		comment(3, intPtr(1), now.Add(-2*time.Hour), 0, 0),    // C -> A
		comment(4, intPtr(1), now.Add(-1*time.Hour), 0, 0),    // D -> A
	}

	nodes, err := Build(comments, New)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, []int{2, 1}, topIDs(nodes))

	var a Node
	for _, n := range nodes {
		if n.ID == 1 {
			a = n
		}
	}
	require.Len(t, a.Replies, 2)
	// replies are chronological regardless of top-level sort
	assert.Equal(t, 3, a.Replies[0].ID)
	assert.Equal(t, 4, a.Replies[1].ID)

	for _, n := range nodes {
		if n.ID == 2 {
			assert.Empty(t, n.Replies)
		}
	}
}

func TestBuildRepliesChronologicalUnderEverySort(t *testing.T) {
	now := time.Now().UTC()
	comments := []models.Comment{
		comment(1, nil, now.Add(-5*time.Hour), 3, 0),
		comment(2, intPtr(1), now.Add(-1*time.Hour), 50, 0),
		comment(3, intPtr(1), now.Add(-3*time.Hour), 0, 0),
	}

	for _, sortBy := range []Sort{Best, Top, New, Old, Controversial} {
		nodes, err := Build(comments, sortBy)
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		require.Len(t, nodes[0].Replies, 2)
		assert.Equal(t, 3, nodes[0].Replies[0].ID, "sort %s", sortBy)
		assert.Equal(t, 2, nodes[0].Replies[1].ID, "sort %s", sortBy)
	}
}

func TestBuildBestSort(t *testing.T) {
	now := time.Now().UTC()
	comments := []models.Comment{
		comment(1, nil, now.Add(-2*time.Hour), 5, 2), // score 3
		comment(2, nil, now.Add(-1*time.Hour), 5, 2), // score 3, newer
		comment(3, nil, now, 10, 0),                  // score 10
	}

	nodes, err := Build(comments, Best)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1}, topIDs(nodes))
}

func TestBuildOldSort(t *testing.T) {
	now := time.Now().UTC()
	comments := []models.Comment{
		comment(1, nil, now.Add(-1*time.Hour), 0, 0),
		comment(2, nil, now.Add(-3*time.Hour), 0, 0),
		comment(3, nil, now.Add(-2*time.Hour), 0, 0),
	}

	nodes, err := Build(comments, Old)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1}, topIDs(nodes))
}

func TestBuildControversialSort(t *testing.T) {
	now := time.Now().UTC()
	comments := []models.Comment{
		comment(1, nil, now, 10, 0),                 // controversy 0
		comment(2, nil, now.Add(-time.Hour), 5, 5),  // controversy 10
		comment(3, nil, now.Add(-2*time.Hour), 4, 2), // controversy 4
	}

	nodes, err := Build(comments, Controversial)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1}, topIDs(nodes))
}

func TestBuildTombstoneParentStillGroups(t *testing.T) {
	now := time.Now().UTC()
	tombstone := comment(1, nil, now.Add(-2*time.Hour), 0, 0)
	tombstone.IsDeleted = true
	tombstone.Body = models.DeletedCommentBody

	comments := []models.Comment{
		tombstone,
		comment(2, intPtr(1), now.Add(-1*time.Hour), 0, 0),
	}

	nodes, err := Build(comments, Best)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].IsDeleted)
	require.Len(t, nodes[0].Replies, 1)
	assert.Equal(t, 2, nodes[0].Replies[0].ID)
}

func TestBuildOrphanReplyDropped(t *testing.T) {
	now := time.Now().UTC()
	comments := []models.Comment{
		comment(1, nil, now, 0, 0),
		comment(2, intPtr(99), now, 0, 0), // parent not in snapshot
	}

	nodes, err := Build(comments, New)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, 1, nodes[0].ID)
	assert.Empty(t, nodes[0].Replies)
}

func TestBuildUnknownSort(t *testing.T) {
	_, err := Build(nil, Sort("bogus"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestBuildEmpty(t *testing.T) {
	nodes, err := Build(nil, Best)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}
