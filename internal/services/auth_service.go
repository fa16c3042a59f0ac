package services

import (
	"context"
	"sort"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"codefactory/internal/apperrors"
	"codefactory/internal/config"
	"codefactory/internal/models"
)

// AuthService exchanges OAuth codes for tokens and reads the authenticated
// user's profile and repositories from GitHub. It never logs a user in
// silently: every failure is surfaced as an AuthError.
type AuthService interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, token string) (*models.UserProfile, error)
	ListRepositories(ctx context.Context, token string) ([]models.RepositoryInfo, error)
}

type authService struct {
	oauth *oauth2.Config
}

func NewAuthService(cfg *config.Config) AuthService {
	return &authService{
		oauth: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.GitHubCallbackURL,
			Scopes:       []string{"repo", "user"},
			Endpoint:     oauthgithub.Endpoint,
		},
	}
}

func (s *authService) ExchangeCode(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", apperrors.New(apperrors.KindAuth, "no authentication code received")
	}
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindAuth, err, "GitHub token exchange failed")
	}
	if token.AccessToken == "" {
		return "", apperrors.New(apperrors.KindAuth, "GitHub returned an empty access token")
	}
	return token.AccessToken, nil
}

func (s *authService) FetchProfile(ctx context.Context, token string) (*models.UserProfile, error) {
	user, _, err := githubClient(token).Users.Get(ctx, "")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindAuth, err, "failed to fetch GitHub user profile")
	}
	return &models.UserProfile{
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		AvatarURL: user.GetAvatarURL(),
	}, nil
}

// ListRepositories returns everything the token can reach, sorted by full
// name. A provider failure returns an error, never a partial list.
func (s *authService) ListRepositories(ctx context.Context, token string) ([]models.RepositoryInfo, error) {
	client := githubClient(token)

	var repos []models.RepositoryInfo
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		page, resp, err := client.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindAuth, err, "failed to fetch repositories")
		}
		for _, r := range page {
			repos = append(repos, models.RepositoryInfo{
				FullName:    r.GetFullName(),
				URL:         r.GetHTMLURL(),
				Description: r.GetDescription(),
				Private:     r.GetPrivate(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	sort.Slice(repos, func(i, j int) bool {
		return strings.ToLower(repos[i].FullName) < strings.ToLower(repos[j].FullName)
	})
	return repos, nil
}

func githubClient(token string) *github.Client {
	return github.NewClient(nil).WithAuthToken(token)
}
