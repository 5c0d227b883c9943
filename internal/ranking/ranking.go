// Package ranking orders post snapshots under the feed's named algorithms.
// Ranking is pure: it never touches the store and never mutates its input, so
// two calls over the same snapshot always produce the same order. That keeps
// paginated feeds stable between requests.
package ranking

import (
	"sort"
	"time"

	"github.com/parascope/backend/internal/apperrors"
	"github.com/parascope/backend/internal/models"
)

// Algorithm names a feed ordering. Parsing is a closed enum: an unknown name
// is a validation error, never a silent fallback to newest.
type Algorithm string

const (
	Newest        Algorithm = "newest"
	Popular       Algorithm = "popular"
	Top           Algorithm = "top"
	Trending      Algorithm = "trending"
	Hot           Algorithm = "hot"
	Controversial Algorithm = "controversial"
)

// ParseAlgorithm validates a wire-level sort name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case Newest, Popular, Top, Trending, Hot, Controversial:
		return Algorithm(s), nil
	}
	return "", apperrors.Validation("unknown sort algorithm: " + s)
}

// Weight constants for hot and trending. These are observable ranking
// behavior carried over from the original product; changing them reorders
// every feed, so they are named here rather than re-derived.
const (
	HotUpvoteWeight  = 2.0
	HotCommentWeight = 3.0
	HotDecayPerMilli = 0.0001

	HotWindow      = 7 * 24 * time.Hour
	TrendingWindow = 24 * time.Hour
)

// Rank returns a new slice holding items ordered under algo. Time-windowed
// algorithms (hot, trending) drop items older than their window relative to
// now before ordering.
func Rank(items []models.Post, algo Algorithm, now time.Time) ([]models.Post, error) {
	var out []models.Post
	switch algo {
	case Hot:
		out = withinWindow(items, now, HotWindow)
	case Trending:
		out = withinWindow(items, now, TrendingWindow)
	case Newest, Popular, Top, Controversial:
		out = make([]models.Post, len(items))
		copy(out, items)
	default:
		return nil, apperrors.Validation("unknown sort algorithm: " + string(algo))
	}

	// SliceStable keeps input order for fully tied items, so the result is
	// deterministic for identical snapshots.
	switch algo {
	case Newest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case Popular:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Upvotes != out[j].Upvotes {
				return out[i].Upvotes > out[j].Upvotes
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case Top:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Score() != out[j].Score() {
				return out[i].Score() > out[j].Score()
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case Trending:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Upvotes != out[j].Upvotes {
				return out[i].Upvotes > out[j].Upvotes
			}
			if out[i].CommentCount != out[j].CommentCount {
				return out[i].CommentCount > out[j].CommentCount
			}
			if out[i].Views != out[j].Views {
				return out[i].Views > out[j].Views
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case Hot:
		sort.SliceStable(out, func(i, j int) bool {
			wi, wj := HotWeight(&out[i], now), HotWeight(&out[j], now)
			if wi != wj {
				return wi > wj
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case Controversial:
		sort.SliceStable(out, func(i, j int) bool {
			ci, cj := Controversy(out[i].Upvotes, out[i].Downvotes), Controversy(out[j].Upvotes, out[j].Downvotes)
			if ci != cj {
				return ci > cj
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}

	return out, nil
}

// HotWeight computes the hot score: engagement minus linear time decay, so
// older items need proportionally more engagement to outrank newer ones.
func HotWeight(p *models.Post, now time.Time) float64 {
	ageMillis := float64(now.Sub(p.CreatedAt).Milliseconds())
	return HotUpvoteWeight*float64(p.Upvotes) +
		HotCommentWeight*float64(p.CommentCount) -
		HotDecayPerMilli*ageMillis
}

// Controversy scores total engagement minus one-sidedness: a perfectly split
// item scores its full vote total, a unanimous item scores zero.
func Controversy(upvotes, downvotes int) int {
	diff := upvotes - downvotes
	if diff < 0 {
		diff = -diff
	}
	return (upvotes + downvotes) - diff
}

func withinWindow(items []models.Post, now time.Time, window time.Duration) []models.Post {
	cutoff := now.Add(-window)
	out := make([]models.Post, 0, len(items))
	for _, p := range items {
		if p.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, p)
	}
	return out
}
