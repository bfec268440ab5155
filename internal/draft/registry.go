package draft

import (
	"sync"
)

type entry struct {
	draft   Draft
	claimed bool
}

// Registry stores at most one Draft per guild. It is safe for concurrent use.
//
// Callers receive copies; the only way to change a stored draft is through the
// registry's methods.
type Registry struct {
	mu     sync.Mutex
	drafts map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		drafts: make(map[string]*entry),
	}
}

// Init starts a draft with the given name. If the guild already has one, the
// existing draft is returned unchanged.
func (r *Registry) Init(guildID, name string) Draft {
	d, _ := r.Begin(guildID, name)
	return d
}

// Begin is Init that also reports whether the draft was created by this call.
func (r *Registry) Begin(guildID, name string) (d Draft, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.drafts[guildID]; ok {
		return e.draft, false
	}

	e := &entry{draft: Draft{GuildID: guildID, Name: name}}
	r.drafts[guildID] = e
	return e.draft, true
}

// Get returns a copy of the guild's draft.
func (r *Registry) Get(guildID string) (Draft, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.drafts[guildID]
	if !ok {
		return Draft{}, false
	}
	return e.draft, true
}

// Has reports whether the guild has a draft.
func (r *Registry) Has(guildID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.drafts[guildID]
	return ok
}

// Terminate removes the guild's draft and reports whether anything was removed.
// A draft that is being confirmed, or that holds a created but unsaved
// calendar, is left alone.
func (r *Registry) Terminate(guildID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.drafts[guildID]
	if !ok || e.claimed || e.draft.Created != nil {
		return false
	}
	delete(r.drafts, guildID)
	return true
}

// Update applies fn to a copy of the guild's draft and stores the result if fn
// succeeds. GuildID cannot be changed by fn. Drafts with a created calendar
// are frozen so a resumed confirm saves what Google actually holds.
func (r *Registry) Update(guildID string, fn func(*Draft) error) (Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.drafts[guildID]
	if !ok {
		return Draft{}, ErrNoDraft
	}
	if e.claimed {
		return e.draft, ErrConfirmInProgress
	}
	if e.draft.Created != nil {
		return e.draft, ErrCalendarPending
	}

	updated := e.draft
	if err := fn(&updated); err != nil {
		return e.draft, err
	}
	updated.GuildID = guildID
	e.draft = updated
	return updated, nil
}

// Claim reserves the guild's draft for a single confirm. The returned release
// function must be called exactly once; release(true) deletes the draft and
// release(false) hands it back for later edits or retries.
func (r *Registry) Claim(guildID string) (Draft, func(remove bool), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.drafts[guildID]
	if !ok {
		return Draft{}, nil, ErrNoDraft
	}
	if e.claimed {
		return Draft{}, nil, ErrConfirmInProgress
	}
	e.claimed = true

	var once sync.Once
	release := func(remove bool) {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()

			if remove {
				delete(r.drafts, guildID)
				return
			}
			e.claimed = false
		})
	}
	return e.draft, release, nil
}

// Remember attaches a created calendar to the guild's draft so that a later
// confirm can resume instead of creating a second calendar.
func (r *Registry) Remember(guildID string, res Resource) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.drafts[guildID]; ok {
		created := res
		e.draft.Created = &created
	}
}

// Len returns the number of guilds with a draft.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drafts)
}
