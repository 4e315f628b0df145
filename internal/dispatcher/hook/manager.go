package hook

import (
	"slices"
	"sync"

	"github.com/dshills/linkguard/internal/dispatcher/execctx"
	"github.com/dshills/linkguard/internal/dispatcher/handler"
)

// Scoped is implemented by hooks that belong to a single command. The
// manager runs them only when that command is dispatched.
type Scoped interface {
	Command() string
}

// anyCommand is the scope of hooks that run for every command.
const anyCommand = ""

type entry[H Hook] struct {
	hook H
	seq  uint64
}

// table holds hooks by command scope.
type table[H Hook] map[string][]entry[H]

func (t table[H]) add(scope string, h H, seq uint64) {
	t.remove(h.Name())
	t[scope] = append(t[scope], entry[H]{hook: h, seq: seq})
}

func (t table[H]) remove(name string) bool {
	for scope, entries := range t {
		for i, e := range entries {
			if e.hook.Name() == name {
				t[scope] = slices.Delete(entries, i, i+1)
				return true
			}
		}
	}
	return false
}

func (t table[H]) len() int {
	n := 0
	for _, entries := range t {
		n += len(entries)
	}
	return n
}

// forCommand returns the global and command hooks in run order. Equal
// priorities keep registration order.
func (t table[H]) forCommand(name string, descending bool) []H {
	entries := slices.Concat(t[anyCommand], t[name])
	slices.SortStableFunc(entries, func(a, b entry[H]) int {
		pa, pb := a.hook.Priority(), b.hook.Priority()
		if pa != pb {
			if descending {
				return pb - pa
			}
			return pa - pb
		}
		return int(a.seq) - int(b.seq)
	})
	hooks := make([]H, len(entries))
	for i, e := range entries {
		hooks[i] = e.hook
	}
	return hooks
}

// Manager holds dispatch hooks. Pre hooks run highest priority first and post
// hooks lowest first, so the outermost hook sees both ends of a dispatch.
// Hook names are unique across scopes; registering a name again replaces it.
type Manager struct {
	mu   sync.RWMutex
	pre  table[PreDispatchHook]
	post table[PostDispatchHook]
	seq  uint64
}

// NewManager creates an empty hook manager.
func NewManager() *Manager {
	return &Manager{
		pre:  make(table[PreDispatchHook]),
		post: make(table[PostDispatchHook]),
	}
}

func scopeOf(h Hook) string {
	if s, ok := h.(Scoped); ok {
		return s.Command()
	}
	return anyCommand
}

// RegisterPre adds a pre-dispatch hook. Scoped hooks run for their command
// only; all others run for every command.
func (m *Manager) RegisterPre(h PreDispatchHook) {
	m.RegisterPreFor(scopeOf(h), h)
}

// RegisterPreFor adds a pre-dispatch hook that runs only for command.
// An empty command means every command.
func (m *Manager) RegisterPreFor(command string, h PreDispatchHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.pre.add(command, h, m.seq)
}

// RegisterPost adds a post-dispatch hook, scoped like RegisterPre.
func (m *Manager) RegisterPost(h PostDispatchHook) {
	m.RegisterPostFor(scopeOf(h), h)
}

// RegisterPostFor adds a post-dispatch hook that runs only for command.
func (m *Manager) RegisterPostFor(command string, h PostDispatchHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.post.add(command, h, m.seq)
}

// Register adds a hook under every interface it implements.
func (m *Manager) Register(h Hook) {
	if pre, ok := h.(PreDispatchHook); ok {
		m.RegisterPre(pre)
	}
	if post, ok := h.(PostDispatchHook); ok {
		m.RegisterPost(post)
	}
}

// UnregisterPre removes a pre-dispatch hook by name.
func (m *Manager) UnregisterPre(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pre.remove(name)
}

// UnregisterPost removes a post-dispatch hook by name.
func (m *Manager) UnregisterPost(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.post.remove(name)
}

// Unregister removes a hook by name from both tables.
func (m *Manager) Unregister(name string) bool {
	pre := m.UnregisterPre(name)
	post := m.UnregisterPost(name)
	return pre || post
}

// RunPreDispatch runs the pre hooks that apply to cmd. It returns false as
// soon as one of them stops the dispatch.
func (m *Manager) RunPreDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext) bool {
	m.mu.RLock()
	hooks := m.pre.forCommand(cmd.Name, true)
	m.mu.RUnlock()

	for _, h := range hooks {
		if !h.PreDispatch(cmd, ctx) {
			return false
		}
	}
	return true
}

// RunPostDispatch runs the post hooks that apply to cmd.
func (m *Manager) RunPostDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext, result *handler.Result) {
	m.mu.RLock()
	hooks := m.post.forCommand(cmd.Name, false)
	m.mu.RUnlock()

	for _, h := range hooks {
		h.PostDispatch(cmd, ctx, result)
	}
}

// PreHookCount returns the number of pre-dispatch hooks in all scopes.
func (m *Manager) PreHookCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pre.len()
}

// PreHookNames returns the names of the pre hooks command runs, in order.
func (m *Manager) PreHookNames(command string) []string {
	m.mu.RLock()
	hooks := m.pre.forCommand(command, true)
	m.mu.RUnlock()

	names := make([]string, len(hooks))
	for i, h := range hooks {
		names[i] = h.Name()
	}
	return names
}
