package blogcontent

import (
	"sort"
)

// SortPostsByDate orders posts by date, most recent first. Dates are compared
// as strings, so ISO-8601 dates sort chronologically.
func SortPostsByDate(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date > posts[j].Date
	})
}

// FilterByTag keeps the posts carrying tag, preserving order
func FilterByTag(posts []Post, tag string) []Post {
	out := make([]Post, 0)
	for i := range posts {
		if posts[i].HasTag(tag) {
			out = append(out, posts[i])
		}
	}
	return out
}

// Paginate slices posts into the requested page. Pages past the end are
// empty, not an error.
func Paginate(posts []Post, page, perPage int) (*PaginatedPosts, error) {
	if page < 1 || perPage < 1 {
		return nil, ErrInvalidPagination
	}

	total := len(posts)
	result := &PaginatedPosts{
		Posts:      []Post{},
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: (total + perPage - 1) / perPage,
	}

	start := (page - 1) * perPage
	if start >= total {
		return result, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	result.Posts = posts[start:end]
	return result, nil
}

// CollectTags returns the distinct tags of posts in ascending order
func CollectTags(posts []Post) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for i := range posts {
		for _, tag := range posts[i].Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}
