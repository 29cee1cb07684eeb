package runtime

import (
	"fmt"
	"sort"
	"sync"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
)

// Handler imports one upload type.
type Handler interface {
	UploadType() types.UploadType
	Run(jc *Context) error
}

// Registry maps upload types to the handler that imports them.
type Registry struct {
	mu     sync.RWMutex
	byType map[types.UploadType]Handler
}

func NewRegistry() *Registry {
	return &Registry{byType: map[types.UploadType]Handler{}}
}

// Register fails for unknown upload types and for a second handler of the
// same type.
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("register import handler: nil handler")
	}
	ut := h.UploadType()
	if _, ok := types.ParseUploadType(string(ut)); !ok {
		return fmt.Errorf("register import handler: unknown upload type %q", ut)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byType[ut]; dup {
		return fmt.Errorf("register import handler: %q registered twice", ut)
	}
	r.byType[ut] = h
	return nil
}

func (r *Registry) Get(ut types.UploadType) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byType[ut]
	return h, ok
}

// Types lists the registered upload types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byType))
	for ut := range r.byType {
		out = append(out, string(ut))
	}
	sort.Strings(out)
	return out
}
