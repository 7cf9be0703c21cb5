package store

import (
	"context"
	"log/slog"
	"sync"

	"loanledger/internal/auth"
	"loanledger/internal/domain/loan"
	"loanledger/internal/domain/uow"
	"loanledger/internal/domain/user"
)

// Manager owns one Session per authenticated uid. Sessions are created on the
// signed-in identity event and dropped on sign-out; nothing here is a
// process-wide singleton, the manager is constructed once in main and
// injected where needed.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	usersRepo  user.Repository
	loansRepo  loan.Repository
	tx         uow.UnitOfWork
	adminEmail string
	log        *slog.Logger
}

func NewManager(users user.Repository, loans loan.Repository, tx uow.UnitOfWork, adminEmail string, log *slog.Logger) *Manager {
	return &Manager{
		sessions:   make(map[string]*Session),
		usersRepo:  users,
		loansRepo:  loans,
		tx:         tx,
		adminEmail: adminEmail,
		log:        log,
	}
}

// SignIn attaches (or creates) the session for the identity and runs the
// first-sign-in provisioning described on Session.SignIn.
func (m *Manager) SignIn(ctx context.Context, ident auth.Identity) (*Session, *user.User, error) {
	m.mu.Lock()
	sess, ok := m.sessions[ident.UID]
	if !ok {
		sess = NewSession(m.usersRepo, m.loansRepo, m.tx, m.adminEmail, m.log)
		m.sessions[ident.UID] = sess
	}
	m.mu.Unlock()

	u, err := sess.SignIn(ctx, ident)
	if err != nil {
		return nil, nil, err
	}
	return sess, u, nil
}

// Session returns the live session for a uid, if one exists.
func (m *Manager) Session(uid string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[uid]
	return sess, ok
}

// SignOut detaches and drops the session for a uid. Unknown uids are a no-op.
func (m *Manager) SignOut(uid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[uid]; ok {
		sess.SignOut()
		delete(m.sessions, uid)
	}
}
