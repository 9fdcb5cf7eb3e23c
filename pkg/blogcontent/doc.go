// Package blogcontent provides a read-only content library for a blog: posts
// written as markdown documents with frontmatter, and author records stored as
// JSON.
//
// Content lives in one of several interchangeable storage backends (local
// filesystem, S3-compatible bucket, memory) implementing the Backend
// interface. A Service wraps the selected backend and layers the
// backend-agnostic query helpers (tag filtering, pagination, tag listing) on
// top of it.
//
// Every call re-reads the backing store; nothing is cached between calls.
//
// # Author Resolution
//
// Posts reference their author either by id or by name. The author recorded on
// a post is joined against the author records at load time, and the way the
// join succeeded is kept in Post.AuthorResolution so callers can tell a fully
// resolved author from the partial record declared in the frontmatter.
package blogcontent
