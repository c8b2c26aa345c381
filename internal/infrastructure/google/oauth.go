package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/modlrn/go-backend/internal/cfg"
	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/pkg/e"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type userInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// OAuthProvider реализует вход через Google по authorization code flow.
type OAuthProvider struct {
	conf        *oauth2.Config
	userInfoURL string
}

// NewOAuthProvider возвращает провайдера; без client id/secret все методы отдают e.ErrGoogleOAuthNotConfigured.
func NewOAuthProvider(cfg *cfg.AuthCfg) *OAuthProvider {
	if !cfg.GoogleEnabled() {
		return &OAuthProvider{}
	}

	return &OAuthProvider{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleoauth.Endpoint,
		},
		userInfoURL: userInfoURL,
	}
}

func (p *OAuthProvider) AuthCodeURL(state string) (string, error) {
	if p.conf == nil {
		return "", e.ErrGoogleOAuthNotConfigured
	}

	return p.conf.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Exchange меняет code на токен и читает профиль пользователя.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*domain.GoogleProfile, error) {
	const op = "OAuthProvider.Exchange"

	if p.conf == nil {
		return nil, e.Wrap(op, e.ErrGoogleOAuthNotConfigured)
	}

	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %v", e.ErrOAuthExchangeFailed, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	resp, err := p.conf.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %v", e.ErrOAuthExchangeFailed, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, e.Wrap(op, fmt.Errorf("%w: userinfo status %d: %s", e.ErrOAuthExchangeFailed, resp.StatusCode, body))
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %v", e.ErrOAuthExchangeFailed, err))
	}

	return &domain.GoogleProfile{
		GoogleID: info.ID,
		Email:    info.Email,
		Name:     info.Name,
		Picture:  info.Picture,
	}, nil
}
