package oauth

// Endpoint describes one identity vendor
type Endpoint struct {
	Name       string
	AuthURL    string
	TokenURL   string
	ProfileURL string
	Scopes     []string
	// PKCE enables S256 code challenges and basic-auth token exchange.
	PKCE bool
	// Signed marks vendors whose callback carries a signing key instead of
	// a code (HandCash Connect).
	Signed bool
	// EchoesState is false for vendors that drop the state parameter.
	EchoesState bool
	Fields      ProfileFields
}

// ProfileFields are gjson paths into the vendor's profile document
type ProfileFields struct {
	ID       string
	Name     string
	Username string
	Email    string
	Avatar   string
}

// DefaultEndpoints returns the production vendor endpoints
func DefaultEndpoints() map[string]Endpoint {
	return map[string]Endpoint{
		"github": {
			Name:        "github",
			AuthURL:     "https://github.com/login/oauth/authorize",
			TokenURL:    "https://github.com/login/oauth/access_token",
			ProfileURL:  "https://api.github.com/user",
			Scopes:      []string{"read:user", "user:email"},
			EchoesState: true,
			Fields: ProfileFields{
				ID: "id", Name: "name", Username: "login", Email: "email", Avatar: "avatar_url",
			},
		},
		"google": {
			Name:        "google",
			AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:    "https://oauth2.googleapis.com/token",
			ProfileURL:  "https://www.googleapis.com/oauth2/v2/userinfo",
			Scopes:      []string{"openid", "email", "profile"},
			EchoesState: true,
			Fields: ProfileFields{
				ID: "id", Name: "name", Email: "email", Avatar: "picture",
			},
		},
		"twitter": {
			Name:        "twitter",
			AuthURL:     "https://twitter.com/i/oauth2/authorize",
			TokenURL:    "https://api.twitter.com/2/oauth2/token",
			ProfileURL:  "https://api.twitter.com/2/users/me?user.fields=profile_image_url",
			Scopes:      []string{"tweet.read", "users.read"},
			PKCE:        true,
			EchoesState: true,
			Fields: ProfileFields{
				ID: "data.id", Name: "data.name", Username: "data.username", Avatar: "data.profile_image_url",
			},
		},
		"handcash": {
			Name:       "handcash",
			AuthURL:    "https://app.handcash.io/#/authorizeApp",
			ProfileURL: "https://cloud.handcash.io/v3/connect/profile/currentUserProfile",
			Signed:     true,
			Fields: ProfileFields{
				ID:       "publicProfile.id",
				Name:     "publicProfile.displayName",
				Username: "publicProfile.handle",
				Email:    "privateProfile.email",
				Avatar:   "publicProfile.avatarUrl",
			},
		},
	}
}
