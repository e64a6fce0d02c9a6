// Package textutil sanitizes episode titles and path segments for safe
// filesystem use. Accented characters fold to their ASCII base so library
// paths stay portable across filesystems.
package textutil
