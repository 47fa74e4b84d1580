package oauth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bitcoin-os/shell/internal/infrastructure/logging"
	"github.com/bitcoin-os/shell/internal/providers/httpclient"
	"github.com/bitcoin-os/shell/internal/providers/wallet"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var (
	ErrUnknownProvider = errors.New("unknown oauth provider")
	ErrNotConfigured   = errors.New("oauth provider not configured")
	ErrExchange        = errors.New("oauth exchange failed")
)

// Credentials are a vendor client id/secret pair
type Credentials struct {
	ClientID     string
	ClientSecret string
}

func (c Credentials) configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Authorization is the start of a login: where to send the browser and
// what to remember in cookies.
type Authorization struct {
	URL      string
	State    string
	Verifier string
}

// Profile is the normalized vendor profile
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Login is a completed sign-in
type Login struct {
	Provider string  `json:"provider"`
	Profile  Profile `json:"profile"`
	Token    string  `json:"token"`
}

// Service runs OAuth logins against the configured vendors
type Service struct {
	endpoints map[string]Endpoint
	creds     map[string]Credentials
	client    *httpclient.Client
	publicURL string
	now       func() time.Time
	logger    *zap.Logger
}

// New creates a login service. publicURL is the shell origin used to build
// callback URLs.
func New(creds map[string]Credentials, client *httpclient.Client, publicURL string, logger *zap.Logger) *Service {
	return &Service{
		endpoints: DefaultEndpoints(),
		creds:     creds,
		client:    client,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		now:       time.Now,
		logger:    logging.OrNop(logger).Named("oauth"),
	}
}

// WithEndpoints replaces vendor endpoints
func (s *Service) WithEndpoints(endpoints map[string]Endpoint) *Service {
	s.endpoints = endpoints
	return s
}

// Providers lists vendors and whether each is configured
func (s *Service) Providers() map[string]bool {
	out := make(map[string]bool, len(s.endpoints))
	for name := range s.endpoints {
		out[name] = s.creds[name].configured()
	}
	return out
}

// Names returns vendor names sorted
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.endpoints))
	for name := range s.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EchoesState reports whether the vendor returns the state parameter
func (s *Service) EchoesState(name string) bool {
	return s.endpoints[name].EchoesState
}

// CallbackURL is the redirect URI registered with the vendor
func (s *Service) CallbackURL(name string) string {
	return s.publicURL + "/api/oauth/" + name + "/callback"
}

func (s *Service) lookup(name string) (Endpoint, Credentials, error) {
	ep, ok := s.endpoints[name]
	if !ok {
		return Endpoint{}, Credentials{}, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	creds := s.creds[name]
	if !creds.configured() {
		return Endpoint{}, Credentials{}, fmt.Errorf("%w: %s", ErrNotConfigured, name)
	}
	return ep, creds, nil
}

// Begin builds the vendor authorization URL with a fresh state
func (s *Service) Begin(name string) (*Authorization, error) {
	ep, creds, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	state, err := randomToken(24)
	if err != nil {
		return nil, err
	}
	auth := &Authorization{State: state}

	if ep.Signed {
		q := url.Values{"appId": {creds.ClientID}, "state": {state}}
		auth.URL = ep.AuthURL + "?" + q.Encode()
		return auth, nil
	}

	q := url.Values{
		"client_id":     {creds.ClientID},
		"redirect_uri":  {s.CallbackURL(name)},
		"response_type": {"code"},
		"scope":         {strings.Join(ep.Scopes, " ")},
		"state":         {state},
	}
	if ep.PKCE {
		verifier, err := randomToken(48)
		if err != nil {
			return nil, err
		}
		sum := sha256.Sum256([]byte(verifier))
		q.Set("code_challenge", base64.RawURLEncoding.EncodeToString(sum[:]))
		q.Set("code_challenge_method", "S256")
		auth.Verifier = verifier
	}
	auth.URL = ep.AuthURL + "?" + q.Encode()
	return auth, nil
}

// Complete exchanges the callback credential for a token and profile.
// For signed vendors code is the HandCash authToken.
func (s *Service) Complete(ctx context.Context, name, code, verifier string) (*Login, error) {
	ep, creds, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, fmt.Errorf("%w: missing code", ErrExchange)
	}

	var token, body string
	if ep.Signed {
		token = code
		body, err = s.signedProfile(ctx, ep, creds, code)
	} else {
		token, err = s.exchange(ctx, name, ep, creds, code, verifier)
		if err == nil {
			body, err = s.profile(ctx, ep, token)
		}
	}
	if err != nil {
		s.logger.Warn("login failed", zap.String("provider", name), zap.Error(err))
		return nil, err
	}

	profile := extractProfile(body, ep.Fields)
	if profile.ID == "" {
		return nil, fmt.Errorf("%w: profile has no id", ErrExchange)
	}
	s.logger.Info("login completed", zap.String("provider", name), zap.String("user", profile.ID))
	return &Login{Provider: name, Profile: profile, Token: token}, nil
}

func (s *Service) exchange(ctx context.Context, name string, ep Endpoint, creds Credentials, code, verifier string) (string, error) {
	form := map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": s.CallbackURL(name),
		"client_id":    creds.ClientID,
	}
	if ep.PKCE {
		if verifier == "" {
			return "", fmt.Errorf("%w: missing PKCE verifier", ErrExchange)
		}
		form["code_verifier"] = verifier
	} else {
		form["client_secret"] = creds.ClientSecret
	}

	resp, err := s.client.Do(ctx, func(req *resty.Request) (*resty.Response, error) {
		req.SetHeader("Accept", "application/json").SetFormData(form)
		if ep.PKCE {
			req.SetBasicAuth(creds.ClientID, creds.ClientSecret)
		}
		return req.Post(ep.TokenURL)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchange, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: token endpoint answered %d", ErrExchange, resp.StatusCode())
	}

	doc := resp.String()
	if msg := gjson.Get(doc, "error_description").String(); msg != "" {
		return "", fmt.Errorf("%w: %s", ErrExchange, msg)
	}
	token := gjson.Get(doc, "access_token").String()
	if token == "" {
		return "", fmt.Errorf("%w: no access_token", ErrExchange)
	}
	return token, nil
}

func (s *Service) profile(ctx context.Context, ep Endpoint, token string) (string, error) {
	resp, err := s.client.Do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.SetAuthToken(token).SetHeader("Accept", "application/json").Get(ep.ProfileURL)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchange, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: profile endpoint answered %d", ErrExchange, resp.StatusCode())
	}
	return resp.String(), nil
}

// signedProfile calls HandCash Connect, which authenticates each request
// with a signature by the authToken key over method, path, timestamp and body.
func (s *Service) signedProfile(ctx context.Context, ep Endpoint, creds Credentials, authToken string) (string, error) {
	raw, err := hex.DecodeString(authToken)
	if err != nil || len(raw) != 32 {
		return "", fmt.Errorf("%w: malformed authToken", ErrExchange)
	}
	key := secp256k1.PrivKeyFromBytes(raw)
	defer key.Zero()

	u, err := url.Parse(ep.ProfileURL)
	if err != nil {
		return "", err
	}
	timestamp := s.now().UTC().Format("2006-01-02T15:04:05.000Z")
	payload := http.MethodGet + "\n" + u.RequestURI() + "\n" + timestamp + "\n"

	resp, err := s.client.Do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetHeader("app-id", creds.ClientID).
			SetHeader("app-secret", creds.ClientSecret).
			SetHeader("oauth-publickey", hex.EncodeToString(key.PubKey().SerializeCompressed())).
			SetHeader("oauth-signature", wallet.SignMessage(key, []byte(payload))).
			SetHeader("oauth-timestamp", timestamp).
			Get(ep.ProfileURL)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchange, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: profile endpoint answered %d", ErrExchange, resp.StatusCode())
	}
	return resp.String(), nil
}

func extractProfile(doc string, f ProfileFields) Profile {
	get := func(path string) string {
		if path == "" {
			return ""
		}
		r := gjson.Get(doc, path)
		if r.Type == gjson.Number {
			return strconv.FormatInt(r.Int(), 10)
		}
		return r.String()
	}
	return Profile{
		ID:       get(f.ID),
		Name:     get(f.Name),
		Username: get(f.Username),
		Email:    get(f.Email),
		Avatar:   get(f.Avatar),
	}
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
