// Package site is the public routing surface: which paths exist and which
// scene animates each of them.
package site

import (
	"strings"
)

// Route is one page of the site.
type Route struct {
	Path  string `json:"path"` // canonical path; ":id" marks a parameter segment
	Name  string `json:"name"`
	Scene string `json:"scene,omitempty"` // page name of the scene that animates it
	Admin bool   `json:"admin,omitempty"`
}

// Routes is the full surface. Anything else is not handled.
var Routes = []Route{
	{Path: "/", Name: "home", Scene: "home"},
	{Path: "/about", Name: "about", Scene: "about"},
	{Path: "/services", Name: "services", Scene: "services"},
	{Path: "/blogs", Name: "blogs", Scene: "blogs"},
	{Path: "/blogs/:id", Name: "blog-detail"},
	{Path: "/works", Name: "works", Scene: "works"},
	{Path: "/contact", Name: "contact", Scene: "contact"},
	{Path: "/thank-you", Name: "thank-you"},
	{Path: "/AdminPanel", Name: "admin", Admin: true},
}

// Match resolves path case-insensitively. Params holds the values of ":"
// segments. A trailing slash is ignored.
func Match(path string) (Route, map[string]string, bool) {
	segs := split(path)
	for _, r := range Routes {
		params, ok := matchSegments(split(r.Path), segs)
		if ok {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

func matchSegments(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	var params map[string]string
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if segs[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[name] = segs[i]
			continue
		}
		if !strings.EqualFold(p, segs[i]) {
			return nil, false
		}
	}
	return params, true
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
