package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// GoogleProvider implements Provider against the Google Identity Toolkit
// (the service behind Firebase Authentication) using the project's web API
// key. Token handling, password storage and account state all live on the
// provider's side; this client only exchanges credentials for a session.
type GoogleProvider struct {
	svc *identitytoolkit.Service

	mu       sync.Mutex
	sessions chan *UserSession
}

// NewGoogleProvider creates a provider for the given API key. The stream
// immediately emits nil: this process starts with no persisted session.
func NewGoogleProvider(ctx context.Context, apiKey string) (*GoogleProvider, error) {
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("identitytoolkit: creating service: %w", err)
	}
	p := &GoogleProvider{
		svc:      svc,
		sessions: make(chan *UserSession, 1),
	}
	p.emit(nil)
	return p, nil
}

// Sessions implements Provider.
func (p *GoogleProvider) Sessions() <-chan *UserSession {
	return p.sessions
}

// SignUp implements Provider. A successful registration also signs the new
// user in, mirroring the hosted SDK behavior.
func (p *GoogleProvider) SignUp(ctx context.Context, email, password string) error {
	resp, err := p.svc.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	p.emit(&UserSession{UID: resp.LocalId, Email: resp.Email})
	return nil
}

// SignIn implements Provider.
func (p *GoogleProvider) SignIn(ctx context.Context, email, password string) error {
	resp, err := p.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             strings.TrimSpace(email),
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	p.emit(&UserSession{UID: resp.LocalId, Email: resp.Email})
	return nil
}

// SignOut implements Provider. The session ends by emitting nil on the
// stream; there is no server-side call for an API-key client.
func (p *GoogleProvider) SignOut() {
	p.emit(nil)
}

// emit publishes the current session, replacing an unread value.
func (p *GoogleProvider) emit(s *UserSession) {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case p.sessions <- s:
	default:
		select {
		case <-p.sessions:
		default:
		}
		p.sessions <- s
	}
}
