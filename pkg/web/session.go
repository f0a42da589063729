package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const SessionCookieName = "nerdemo_session"

// Session is the state kept for one browser between submissions.
type Session struct {
	Text string
}

// SessionStore keeps sessions in a bounded LRU. Entries expire ttl after
// their last write.
type SessionStore struct {
	cache *expirable.LRU[string, Session]
	ttl   time.Duration
}

func NewSessionStore(size int, ttl time.Duration) *SessionStore {
	return &SessionStore{
		cache: expirable.NewLRU[string, Session](size, nil, ttl),
		ttl:   ttl,
	}
}

// Load returns the session named by the request cookie. Requests without a
// known session get a fresh id and an empty session, and the cookie is set on w.
func (s *SessionStore) Load(w http.ResponseWriter, r *http.Request) (string, Session) {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if sess, ok := s.cache.Get(c.Value); ok {
			return c.Value, sess
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, Session{}
}

func (s *SessionStore) Save(id string, sess Session) {
	s.cache.Add(id, sess)
}

func (s *SessionStore) Len() int {
	return s.cache.Len()
}
