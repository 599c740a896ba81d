package site

import (
	"encoding/json"
	"net/http"

	"github.com/ivlev/scrollsite/internal/director"
)

// SceneSource looks up a page's scene.
type SceneSource interface {
	Scene(page string) (*director.Scene, bool)
}

// Resolved is what the front-end shell receives for a page path.
type Resolved struct {
	Route  Route             `json:"route"`
	Params map[string]string `json:"params,omitempty"`
	Scene  *director.Scene   `json:"scene,omitempty"`
}

// Handler resolves request paths against Routes and answers with the route
// and its scene. Unknown paths get 404.
func Handler(scenes SceneSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, params, ok := Match(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}
		res := Resolved{Route: route, Params: params}
		if route.Scene != "" && scenes != nil {
			if sc, ok := scenes.Scene(route.Scene); ok {
				res.Scene = sc
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
	})
}
