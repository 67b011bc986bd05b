package github

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	gh "github.com/google/go-github/v39/github"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/nacl/box"
	"golang.org/x/oauth2"
)

// Repo is a created repository, reduced to what the pipeline needs.
type Repo struct {
	FullName string
	HTMLURL  string
	CloneURL string
}

// RepositoryHost creates project repositories, pushes an initial tree
// and stores encrypted Actions secrets.
type RepositoryHost interface {
	CreateRepository(ctx context.Context, name string, private bool, description string) (*Repo, error)
	UploadDirectory(ctx context.Context, repoFullName, localPath, remotePath, message string) (int, error)
	UploadFile(ctx context.Context, repoFullName, repoPath string, content []byte, message string) error
	SetSecrets(ctx context.Context, repoFullName string, secrets map[string]string) error
}

// excludedDirs are build artifacts and dependency trees that never
// belong in a generated project repository.
var excludedDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	"dist":         {},
	"build":        {},
	"__pycache__":  {},
	".next":        {},
	"venv":         {},
	".venv":        {},
}

// Client talks to the GitHub API on behalf of the configured owner.
type Client struct {
	client *gh.Client
	owner  string
	logger zerolog.Logger
}

func NewClient(token, owner string, logger zerolog.Logger) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &Client{
		client: gh.NewClient(tc),
		owner:  owner,
		logger: logger.With().Str("component", "github").Logger(),
	}
}

func (c *Client) CreateRepository(ctx context.Context, name string, private bool, description string) (*Repo, error) {
	repo, _, err := c.client.Repositories.Create(ctx, "", &gh.Repository{
		Name:        gh.String(name),
		Private:     gh.Bool(private),
		Description: gh.String(description),
		AutoInit:    gh.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create repository %s: %w", name, err)
	}

	c.logger.Info().Str("repo", repo.GetFullName()).Msg("created repository")
	return &Repo{
		FullName: repo.GetFullName(),
		HTMLURL:  repo.GetHTMLURL(),
		CloneURL: repo.GetCloneURL(),
	}, nil
}

// splitFullName splits "owner/name" into its parts, falling back to the
// configured owner when only a bare name is given.
func (c *Client) splitFullName(repoFullName string) (string, string) {
	if owner, name, ok := strings.Cut(repoFullName, "/"); ok {
		return owner, name
	}
	return c.owner, repoFullName
}

// Excluded reports whether a slash-separated relative path lives under
// a directory that should never be uploaded.
func Excluded(relPath string) bool {
	for _, part := range strings.Split(relPath, "/") {
		if _, skip := excludedDirs[part]; skip {
			return true
		}
	}
	return false
}

// collectFiles walks localPath and returns uploadable files keyed by
// their slash-separated repository path.
func collectFiles(localPath string) (map[string]string, error) {
	files := make(map[string]string)
	err := filepath.WalkDir(localPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(localPath, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && Excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if Excluded(rel) {
			return nil
		}
		files[rel] = path
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", localPath, err)
	}
	return files, nil
}

// joinRepoPath prefixes a slash-separated relative path with the remote
// directory, if one is given.
func joinRepoPath(remotePath, rel string) string {
	if remotePath == "" {
		return rel
	}
	return path.Join(remotePath, rel)
}

// UploadDirectory pushes every file under localPath to the repository
// via the contents API, rooted at remotePath. Returns the number of
// files uploaded.
func (c *Client) UploadDirectory(ctx context.Context, repoFullName, localPath, remotePath, message string) (int, error) {
	files, err := collectFiles(localPath)
	if err != nil {
		return 0, err
	}

	uploaded := 0
	for rel, diskPath := range files {
		content, err := os.ReadFile(diskPath)
		if err != nil {
			return uploaded, fmt.Errorf("read %s: %w", diskPath, err)
		}
		if err := c.UploadFile(ctx, repoFullName, joinRepoPath(remotePath, rel), content, message); err != nil {
			return uploaded, err
		}
		uploaded++
	}

	c.logger.Info().
		Str("repo", repoFullName).
		Str("remote_path", remotePath).
		Int("files", uploaded).
		Msg("uploaded directory")
	return uploaded, nil
}

// UploadFile creates a single file in the repository.
func (c *Client) UploadFile(ctx context.Context, repoFullName, repoPath string, content []byte, message string) error {
	owner, name := c.splitFullName(repoFullName)

	_, _, err := c.client.Repositories.CreateFile(ctx, owner, name, repoPath, &gh.RepositoryContentFileOptions{
		Message: gh.String(message),
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", repoPath, err)
	}
	return nil
}

// encryptSecret seals value against the repository public key, as the
// Actions secrets API requires.
func encryptSecret(publicKey *gh.PublicKey, value string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(publicKey.GetKey())
	if err != nil {
		return "", fmt.Errorf("decode public key: %w", err)
	}
	if len(decoded) != 32 {
		return "", fmt.Errorf("unexpected public key length %d", len(decoded))
	}

	var key [32]byte
	copy(key[:], decoded)

	sealed, err := box.SealAnonymous(nil, []byte(value), &key, rand.Reader)
	if err != nil {
		return "", fmt.Errorf("seal secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// SetSecrets encrypts and stores each entry as a repository Actions
// secret.
func (c *Client) SetSecrets(ctx context.Context, repoFullName string, secrets map[string]string) error {
	owner, name := c.splitFullName(repoFullName)

	publicKey, _, err := c.client.Actions.GetRepoPublicKey(ctx, owner, name)
	if err != nil {
		return fmt.Errorf("get repo public key: %w", err)
	}

	for secretName, value := range secrets {
		encrypted, err := encryptSecret(publicKey, value)
		if err != nil {
			return fmt.Errorf("encrypt secret %s: %w", secretName, err)
		}

		_, err = c.client.Actions.CreateOrUpdateRepoSecret(ctx, owner, name, &gh.EncryptedSecret{
			Name:           secretName,
			KeyID:          publicKey.GetKeyID(),
			EncryptedValue: encrypted,
		})
		if err != nil {
			return fmt.Errorf("store secret %s: %w", secretName, err)
		}
	}

	c.logger.Info().Str("repo", repoFullName).Int("secrets", len(secrets)).Msg("stored repository secrets")
	return nil
}
