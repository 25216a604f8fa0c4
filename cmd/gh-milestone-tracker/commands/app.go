package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goblinsan/gh-milestone-tracker/pkg/cache"
	"github.com/goblinsan/gh-milestone-tracker/pkg/changelog"
	"github.com/goblinsan/gh-milestone-tracker/pkg/config"
	"github.com/goblinsan/gh-milestone-tracker/pkg/github"
	"github.com/goblinsan/gh-milestone-tracker/pkg/gitlocal"
	"github.com/goblinsan/gh-milestone-tracker/pkg/logging"
	"github.com/goblinsan/gh-milestone-tracker/pkg/source"
	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// app carries the dependencies built from configuration for one command run.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	service *source.Service
	closers []io.Closer
}

func newApp() (*app, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	a.service = source.NewService(github.NewClient(cfg.Token), cfg.Repository, source.Options{
		Cache:  a.cache(cfg.CacheTTL),
		Logger: logger.Named("source"),
		Now:    now,
	})
	return a, nil
}

// cache returns a redis cache when one is configured, otherwise an
// in-process one.
func (a *app) cache(ttl time.Duration) cache.Cache {
	if a.cfg.RedisAddr == "" {
		return cache.NewMemory(ttl)
	}
	r := cache.NewRedis(a.cfg.RedisAddr, "", 0, ttl, a.logger.Named("cache"))
	a.closers = append(a.closers, r)
	return r
}

// assembler builds the changelog from the remote history, or from a local
// clone when localRepo or the local-repo setting is set. The argument wins.
func (a *app) assembler(localRepo, localBranch string) (*changelog.Assembler, error) {
	if localRepo == "" {
		localRepo = a.cfg.LocalRepo
	}
	var src changelog.RevisionSource = a.service
	if localRepo != "" {
		local, err := gitlocal.Open(localRepo, localBranch, a.cfg.Repository.DataPath)
		if err != nil {
			return nil, err
		}
		src = local
	}
	return changelog.NewAssembler(src, changelog.Options{
		Cache:  a.cache(a.cfg.ChangelogTTL),
		Logger: a.logger.Named("changelog"),
		Now:    now,
	}), nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		c.Close()
	}
	a.logger.Sync()
}

// readDocument loads a projects document from a JSON or YAML file.
func readDocument(path string) (*types.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return types.DecodeDocumentYAML(raw)
	default:
		return types.DecodeDocument(raw)
	}
}

// writeOutput encodes v as json or yaml.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
