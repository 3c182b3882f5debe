/*
Package roster provides the file-backed user directory.

PURPOSE:
  Registered users and admin IDs live in two small JSON files (users.json
  maps user ID to full name, admins.json holds the admin ID list), loaded
  at startup and rewritten on every change. This mirrors the original
  deployment, where the files are mounted as secrets in production.

DISPLAY NAMES:
  Full names are stored raw; FormatName renders them with an abbreviated
  middle initial ("Juan Miguel Cruz" -> "Juan M. Cruz") for record
  summaries. Names without a recorded middle name get the house-default
  "C." initial.
*/
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/hawks/dtr-engine/dtr"
)

// File is a dtr.RosterStore backed by two JSON files.
type File struct {
	mu         sync.RWMutex
	usersPath  string
	adminsPath string
	users      map[string]string // id -> raw full name
	admins     map[string]bool
}

type adminsFile struct {
	AdminIDs []string `json:"admin_ids"`
}

// Open loads the roster files, creating empty ones on first run.
func Open(usersPath, adminsPath string) (*File, error) {
	f := &File{
		usersPath:  usersPath,
		adminsPath: adminsPath,
		users:      make(map[string]string),
		admins:     make(map[string]bool),
	}

	if err := loadJSON(usersPath, &f.users); err != nil {
		return nil, fmt.Errorf("loading users file %s: %w", usersPath, err)
	}
	var admins adminsFile
	if err := loadJSON(adminsPath, &admins); err != nil {
		return nil, fmt.Errorf("loading admins file %s: %w", adminsPath, err)
	}
	for _, id := range admins.AdminIDs {
		f.admins[id] = true
	}

	// First run: materialize an empty users file so admins can edit it.
	if _, err := os.Stat(usersPath); os.IsNotExist(err) {
		if err := f.saveUsers(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// loadJSON reads path into v; a missing file leaves v untouched.
func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (f *File) saveUsers() error {
	data, err := json.MarshalIndent(f.users, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.usersPath, data, 0o600)
}

// =============================================================================
// dtr.RosterStore
// =============================================================================

// ListUsers returns all users sorted by display name.
func (f *File) ListUsers(_ context.Context) ([]dtr.UserProfile, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	users := make([]dtr.UserProfile, 0, len(f.users))
	for id, name := range f.users {
		users = append(users, dtr.UserProfile{ID: dtr.UserID(id), DisplayName: FormatName(name)})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].DisplayName < users[j].DisplayName })
	return users, nil
}

// Lookup returns the profile for id, or nil when not registered.
func (f *File) Lookup(_ context.Context, id dtr.UserID) (*dtr.UserProfile, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	name, ok := f.users[string(id)]
	if !ok {
		return nil, nil
	}
	return &dtr.UserProfile{ID: id, DisplayName: FormatName(name)}, nil
}

// IsAdmin reports whether id is in the admin list.
func (f *File) IsAdmin(_ context.Context, id dtr.UserID) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.admins[string(id)], nil
}

// AddUser registers a user. Fails if the ID is taken.
func (f *File) AddUser(_ context.Context, p dtr.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[string(p.ID)]; ok {
		return fmt.Errorf("user %s already registered", p.ID)
	}
	f.users[string(p.ID)] = strings.TrimSpace(p.DisplayName)
	return f.saveUsers()
}

// Rename changes a user's stored full name.
func (f *File) Rename(_ context.Context, id dtr.UserID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[string(id)]; !ok {
		return dtr.ErrUnknownUser
	}
	f.users[string(id)] = strings.TrimSpace(name)
	return f.saveUsers()
}

// Remove deregisters a user. The event log keeps their history.
func (f *File) Remove(_ context.Context, id dtr.UserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[string(id)]; !ok {
		return dtr.ErrUnknownUser
	}
	delete(f.users, string(id))
	return f.saveUsers()
}

// =============================================================================
// NAME FORMATTING
// =============================================================================

// FormatName renders a full name with an abbreviated middle initial.
// Two-part names get the house-default "C." initial.
func FormatName(fullName string) string {
	parts := strings.Fields(strings.TrimSpace(fullName))
	if len(parts) < 2 {
		return fullName
	}

	lastName := parts[len(parts)-1]
	if len(parts) == 2 {
		return fmt.Sprintf("%s C. %s", parts[0], lastName)
	}

	firstName := parts[0]
	middle := parts[1 : len(parts)-1]
	lastMiddle := middle[len(middle)-1]
	initial := strings.ToUpper(lastMiddle[:1])

	if len(middle) > 1 {
		remaining := strings.Join(middle[:len(middle)-1], " ")
		return fmt.Sprintf("%s %s %s. %s", firstName, remaining, initial, lastName)
	}
	return fmt.Sprintf("%s %s. %s", firstName, initial, lastName)
}
