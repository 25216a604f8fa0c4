package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v66/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// ErrNotFound is returned when a file or revision does not exist.
var ErrNotFound = errors.New("not found")

// Client wraps both the REST API client (go-github) and GraphQL client (githubv4)
type Client struct {
	REST          *github.Client
	GraphQL       *githubv4.Client
	authenticated bool
}

// NewClient creates a new GitHub client with both REST and GraphQL capabilities
func NewClient(token string) *Client {
	var httpClient *http.Client

	if token != "" {
		// Create an OAuth2 token source
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	} else {
		httpClient = http.DefaultClient
	}

	return &Client{
		REST:          github.NewClient(httpClient),
		GraphQL:       githubv4.NewClient(httpClient),
		authenticated: token != "",
	}
}

// NewEnterpriseClient points both APIs at a custom base URL, such as a GitHub
// Enterprise host or a test server. baseURL must end with a slash.
func NewEnterpriseClient(baseURL, token string) (*Client, error) {
	c := NewClient(token)
	rest, err := c.REST.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure enterprise urls: %w", err)
	}
	c.REST = rest
	c.GraphQL = githubv4.NewEnterpriseClient(baseURL+"graphql", rest.Client())
	return c, nil
}

// GetAuthenticatedUser returns information about the authenticated user
func (c *Client) GetAuthenticatedUser(ctx context.Context) (*github.User, error) {
	user, _, err := c.REST.Users.Get(ctx, "")
	return user, err
}

func wrapNotFound(resp *github.Response, err error) error {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
