// Package linkcheck verifies that every download referenced by an instruction
// repository checkout is reachable.
package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Solipath/Solipath/internal/directory"
	"github.com/Solipath/Solipath/internal/instructions"
	"github.com/Solipath/Solipath/internal/models"
	"github.com/Solipath/Solipath/internal/platform"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const instructionsFile = "install_instructions.json"

// DefaultConcurrency bounds the number of simultaneous HEAD requests
const DefaultConcurrency = 8

// HeadChecker reports whether a URL answers successfully
type HeadChecker interface {
	Head(ctx context.Context, url string) error
}

// Link is a URL declared by a dependency
type Link struct {
	Dependency models.Dependency
	URL        string
}

// Checker walks a checkout whose layout matches the local cache, so the
// resolver can read documents straight from it.
type Checker struct {
	root        string
	head        HeadChecker
	resolver    *instructions.Resolver
	filter      *platform.Filter
	concurrency int
}

// NewChecker creates a Checker over the checkout at root
func NewChecker(root string, head HeadChecker) *Checker {
	return &Checker{
		root:        root,
		head:        head,
		resolver:    instructions.NewResolver(instructions.DefaultBaseURL, directory.New(root), checkoutFetcher{}),
		filter:      platform.NewUnfiltered(),
		concurrency: DefaultConcurrency,
	}
}

// checkoutFetcher never touches the network: a document missing from the
// checkout is an error.
type checkoutFetcher struct{}

func (checkoutFetcher) FetchIfMissing(ctx context.Context, url, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s is not in the checkout", models.ErrNotFound, path)
	}
	return nil
}

// Dependencies lists every <name>/<version>/install_instructions.json below the root.
func (c *Checker) Dependencies() ([]models.Dependency, error) {
	var deps []models.Dependency

	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != c.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != instructionsFile {
			return nil
		}

		rel, err := filepath.Rel(c.root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 3 {
			logrus.Debugf("Skipping %s: not at <name>/<version>/%s", rel, instructionsFile)
			return nil
		}
		deps = append(deps, models.Dependency{Name: parts[0], Version: parts[1]})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", c.root, err)
	}

	sort.Slice(deps, func(i, j int) bool { return deps[i].String() < deps[j].String() })
	return deps, nil
}

// Links resolves dep and every template it names for all platforms at once
// and returns the download and signature URLs found.
func (c *Checker) Links(ctx context.Context, dep models.Dependency) ([]Link, error) {
	resolved, err := c.resolver.Resolve(ctx, dep)
	if err != nil {
		return nil, err
	}

	docs := []models.DependencyInstructions{resolved}
	for _, tmpl := range platform.Apply(c.filter, models.Templates(docs)) {
		expanded, err := c.resolver.ResolveTemplate(ctx, dep, tmpl.Item)
		if err != nil {
			return nil, err
		}
		docs = append(docs, expanded)
	}

	var links []Link
	for _, d := range platform.Apply(c.filter, models.Downloads(docs)) {
		links = append(links, Link{Dependency: dep, URL: d.Item.URL})
		if d.Item.SignatureURL != "" {
			links = append(links, Link{Dependency: dep, URL: d.Item.SignatureURL})
		}
	}
	return links, nil
}

// Check resolves every dependency in the checkout and HEADs each distinct URL.
// It returns the number of URLs checked and every failure joined together.
func (c *Checker) Check(ctx context.Context) (int, error) {
	deps, err := c.Dependencies()
	if err != nil {
		return 0, err
	}
	logrus.Infof("Found %d instruction documents in %s", len(deps), c.root)

	var failures []error
	seen := make(map[string]bool)
	var links []Link
	for _, dep := range deps {
		found, err := c.Links(ctx, dep)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		for _, l := range found {
			if seen[l.URL] {
				continue
			}
			seen[l.URL] = true
			links = append(links, l)
		}
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for _, l := range links {
		l := l
		g.Go(func() error {
			logrus.Debugf("Checking %s", l.URL)
			if err := c.head.Head(ctx, l.URL); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Errorf("%s (%s): %w", l.URL, l.Dependency, err))
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	sort.SliceStable(failures, func(i, j int) bool { return failures[i].Error() < failures[j].Error() })
	return len(links), errors.Join(failures...)
}
