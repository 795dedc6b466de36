package restapi

import (
	"fmt"
	"sort"

	"github.com/gin-gonic/gin"
)

// HTTPVerb enumerates supported HTTP operations.
type HTTPVerb int

const (
	// Unknown represents an unspecified HTTP verb.
	Unknown HTTPVerb = iota
	// GET lists or retrieves resources.
	GET
	// GET_ONE retrieves a single resource.
	GET_ONE
	// DELETE removes resources.
	DELETE
	// POST creates resources.
	POST
	// PUT replaces resources.
	PUT
	// PATCH partially updates resources.
	PATCH
)

// RestMethod describes a REST route handler.
type RestMethod struct {
	Verb    HTTPVerb
	Path    string
	Handler gin.HandlerFunc
	// Public methods are mounted without the authentication wrapper.
	Public bool
}

func (m RestMethod) key() string {
	return fmt.Sprintf("%d_%s", m.Verb, m.Path)
}

// Routes is a registry of REST methods mounted under one router group.
type Routes struct {
	methods map[string]RestMethod
}

// RegisterMethod builds a RestMethod and registers it using Register.
func (r *Routes) RegisterMethod(verb HTTPVerb, path string, h gin.HandlerFunc) error {
	return r.Register(RestMethod{
		Verb:    verb,
		Path:    path,
		Handler: h,
	})
}

// Register inserts a RestMethod into the registry preventing duplicates.
func (r *Routes) Register(m RestMethod) error {
	if r.methods == nil {
		r.methods = make(map[string]RestMethod)
	}
	key := m.key()
	if _, exists := r.methods[key]; exists {
		return fmt.Errorf("can't add %s, an existing handler in REST method map exists", key)
	}
	r.methods[key] = m
	return nil
}

// RestMethods returns the registered methods ordered by path then verb.
func (r *Routes) RestMethods() []RestMethod {
	out := make([]RestMethod, 0, len(r.methods))
	for _, m := range r.methods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Verb < out[j].Verb
	})
	return out
}

// mount adds every registered method to g. Handlers of non public methods are wrapped by wrap.
func (r *Routes) mount(g *gin.RouterGroup, wrap func(gin.HandlerFunc) gin.HandlerFunc) error {
	for _, rm := range r.RestMethods() {
		h := rm.Handler
		if !rm.Public {
			h = wrap(h)
		}
		switch rm.Verb {
		case GET, GET_ONE:
			g.GET(rm.Path, h)
		case DELETE:
			g.DELETE(rm.Path, h)
		case POST:
			g.POST(rm.Path, h)
		case PUT:
			g.PUT(rm.Path, h)
		case PATCH:
			g.PATCH(rm.Path, h)
		default:
			return fmt.Errorf("HTTP verb %d not supported", rm.Verb)
		}
	}
	return nil
}
