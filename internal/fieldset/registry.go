package fieldset

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"firescribe/internal/domain"
)

type profilesFile struct {
	Profiles []domain.FieldProfile `yaml:"profiles"`
}

// Registry resolves profile names to field lists. The builtin NERIS profile
// is always present; a YAML file adds or overrides profiles and can be
// reloaded without a restart. A failed reload keeps the last good set.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]domain.FieldProfile
	order    []string

	path string
}

// NewRegistry seeds the builtin profile and, when path is set, loads the
// profiles file. A missing file is tolerated so deployments can mount one
// later.
func NewRegistry(path string) (*Registry, error) {
	r := &Registry{path: path}
	r.install(nil)

	if path == "" {
		return r, nil
	}
	if err := r.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("fieldset.Registry: profiles file %s not found, using builtin profiles", path)
			return r, nil
		}
		return nil, err
	}
	return r, nil
}

// Load re-reads the profiles file and replaces the file-sourced profiles.
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("reading profiles file: %w", err)
	}

	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing profiles file: %w", err)
	}

	for _, p := range file.Profiles {
		if err := validateProfile(p); err != nil {
			return err
		}
	}

	r.install(file.Profiles)
	return nil
}

func validateProfile(p domain.FieldProfile) error {
	if p.Name == "" {
		return fmt.Errorf("profile with empty name")
	}
	if len(p.Fields) == 0 {
		return fmt.Errorf("profile %q has no fields", p.Name)
	}
	seen := make(map[string]struct{}, len(p.Fields))
	for _, f := range p.Fields {
		if f == "" {
			return fmt.Errorf("profile %q has an empty field name", p.Name)
		}
		if _, ok := seen[f]; ok {
			return fmt.Errorf("profile %q repeats field %q", p.Name, f)
		}
		seen[f] = struct{}{}
	}
	return nil
}

// install rebuilds the profile map: builtin first, then the file profiles in
// file order. A file profile may shadow the builtin name.
func (r *Registry) install(fromFile []domain.FieldProfile) {
	profiles := map[string]domain.FieldProfile{
		DefaultProfileName: {Name: DefaultProfileName, Fields: NERISFields},
	}
	order := []string{DefaultProfileName}

	for _, p := range fromFile {
		if _, exists := profiles[p.Name]; !exists {
			order = append(order, p.Name)
		}
		profiles[p.Name] = p
	}

	r.mu.Lock()
	r.profiles = profiles
	r.order = order
	r.mu.Unlock()
}

// Get resolves a profile name. The empty name resolves to the default
// profile; an unknown name fails with domain.ErrUnknownProfile.
func (r *Registry) Get(name string) (domain.FieldProfile, error) {
	if name == "" {
		name = DefaultProfileName
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[name]
	if !ok {
		return domain.FieldProfile{}, fmt.Errorf("%w: %s", domain.ErrUnknownProfile, name)
	}
	return p, nil
}

// List returns all profiles, builtin first, then file order.
func (r *Registry) List() []domain.FieldProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.FieldProfile, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.profiles[name])
	}
	return out
}

// Watch reloads the profiles file when it changes. Editors typically replace
// the file by rename, so the watch is on the parent directory. Watch returns
// once the watcher is installed; reloads happen in the background until ctx
// is done.
func (r *Registry) Watch(ctx context.Context) error {
	if r.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating profiles watcher: %w", err)
	}

	target := filepath.Clean(r.path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if filepath.Clean(evt.Name) != target {
					continue
				}
				if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if err := r.Load(); err != nil {
					log.Printf("fieldset.Registry: reload failed, keeping previous profiles: %v", err)
					continue
				}
				log.Printf("fieldset.Registry: reloaded profiles from %s", r.path)
			case err := <-watcher.Errors:
				log.Printf("fieldset.Registry: watcher error: %v", err)
			}
		}
	}()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching profiles directory: %w", err)
	}
	return nil
}
