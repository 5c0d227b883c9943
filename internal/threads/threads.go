// Package threads assembles flat comment records into parent/reply trees and
// orders the top level under the comment sort modes. Like ranking, building is
// pure in-memory work over an already-fetched snapshot.
package threads

import (
	"sort"

	"github.com/parascope/backend/internal/apperrors"
	"github.com/parascope/backend/internal/models"
	"github.com/parascope/backend/internal/ranking"
)

// Sort names a comment-thread ordering for the top level. Replies are always
// chronological regardless of this setting.
type Sort string

const (
	Best          Sort = "best"
	Top           Sort = "top"
	New           Sort = "new"
	Old           Sort = "old"
	Controversial Sort = "controversial"
)

// ParseSort validates a wire-level comment sort name.
func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case Best, Top, New, Old, Controversial:
		return Sort(s), nil
	}
	return "", apperrors.Validation("unknown comment sort: " + s)
}

// Node is a comment plus its direct replies. Reply nesting is a single level:
// replies-to-replies were flattened under the top-level ancestor when they
// were written.
type Node struct {
	models.Comment
	Replies []Node `json:"replies"`
}

// Build partitions comments into top-level nodes and replies, attaches each
// reply under its parent's id, and orders the top level by sortBy. A reply
// still attaches when its parent is a tombstone; the tombstone stays in the
// tree as a stable grouping point.
func Build(comments []models.Comment, sortBy Sort) ([]Node, error) {
	if _, err := ParseSort(string(sortBy)); err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(comments))
	index := make(map[int]int, len(comments))
	for _, c := range comments {
		if c.ParentID != nil {
			continue
		}
		index[c.ID] = len(nodes)
		nodes = append(nodes, Node{Comment: c, Replies: []Node{}})
	}

	for _, c := range comments {
		if c.ParentID == nil {
			continue
		}
		i, ok := index[*c.ParentID]
		if !ok {
			// parent not in this snapshot (hard-deleted upstream); the
			// reply has nothing to hang from
			continue
		}
		nodes[i].Replies = append(nodes[i].Replies, Node{Comment: c, Replies: []Node{}})
	}

	for i := range nodes {
		sort.SliceStable(nodes[i].Replies, func(a, b int) bool {
			return nodes[i].Replies[a].CreatedAt.Before(nodes[i].Replies[b].CreatedAt)
		})
	}

	sortTopLevel(nodes, sortBy)
	return nodes, nil
}

func sortTopLevel(nodes []Node, sortBy Sort) {
	switch sortBy {
	case Best:
		sort.SliceStable(nodes, func(i, j int) bool {
			if nodes[i].Score() != nodes[j].Score() {
				return nodes[i].Score() > nodes[j].Score()
			}
			return nodes[i].CreatedAt.After(nodes[j].CreatedAt)
		})
	case Top:
		sort.SliceStable(nodes, func(i, j int) bool {
			return nodes[i].Score() > nodes[j].Score()
		})
	case New:
		sort.SliceStable(nodes, func(i, j int) bool {
			return nodes[i].CreatedAt.After(nodes[j].CreatedAt)
		})
	case Old:
		sort.SliceStable(nodes, func(i, j int) bool {
			return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
		})
	case Controversial:
		sort.SliceStable(nodes, func(i, j int) bool {
			ci := ranking.Controversy(nodes[i].Upvotes, nodes[i].Downvotes)
			cj := ranking.Controversy(nodes[j].Upvotes, nodes[j].Downvotes)
			if ci != cj {
				return ci > cj
			}
			return nodes[i].CreatedAt.After(nodes[j].CreatedAt)
		})
	}
}
