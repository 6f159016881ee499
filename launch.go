package flipbook

import (
	"fmt"
	"net/url"
	"strconv"
)

// ParseLaunchURL reads the document location (src) and the 1-based start page
// (p) from a viewer URL. A missing or malformed page parameter yields 0, which
// opens at the direction default.
func ParseLaunchURL(raw string) (src string, page int, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, fmt.Errorf("flipbook: parsing launch url: %w", err)
	}
	q := u.Query()
	src = q.Get("src")
	if p, err := strconv.Atoi(q.Get("p")); err == nil && p > 0 {
		page = p
	}
	return src, page, nil
}
