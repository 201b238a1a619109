package draft

import "sync"

// Registry is the process-wide authority on which leagues are currently
// drafting. A league is drafting iff its session is in here.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[int64]*Session),
	}
}

func (r *Registry) Get(leagueID int64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[leagueID]
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.LeagueID()] = s
}

func (r *Registry) Remove(leagueID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, leagueID)
}
