package validator

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Well-known column names with fixed policies.
const (
	ColumnUserID      = "User.UserId"
	ColumnChannelType = "ChannelType"
	ColumnAddress     = "Address"
)

// Built-in target projects.
const (
	ProjectProspectos   = "Prospectos"
	ProjectSPVMarketing = "SPV_Marketing"
)

// ChannelTypes is the closed set accepted in the ChannelType column.
var ChannelTypes = []string{"EMAIL", "SMS", "APNS", "APNS_SANDBOX", "GCM", "CUSTOM"}

// DefaultPrefixes are the accepted column namespaces for projects that
// enforce naming.
var DefaultPrefixes = []string{
	"User.UserId",
	"User.UserAttributes.",
	"Metrics.",
	"ChannelType",
	"Address",
}

// Profile describes what a destination project demands of a file.
type Profile struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	RequiredHeaders []string `json:"requiredHeaders"`
	RowRequired     []string `json:"rowRequired"`
	Prefixes        []string `json:"prefixes,omitempty"` // nil disables the prefix rule
	RequireUserID   bool     `json:"requireUserId"`
}

// EnforcesPrefixes reports whether column names must carry a known prefix.
func (p Profile) EnforcesPrefixes() bool {
	return len(p.Prefixes) > 0
}

// rowRequired reports whether the column must be non-empty on every row.
func (p Profile) rowRequired(column string) bool {
	for _, c := range p.RowRequired {
		if c == column {
			return true
		}
	}
	return false
}

var (
	profiles   = make(map[string]Profile)
	profilesMu sync.RWMutex
)

func init() {
	RegisterProfile(Profile{
		Name:            ProjectProspectos,
		Description:     "Exige ChannelType y Address; ChannelType obligatorio por fila.",
		RequiredHeaders: []string{ColumnChannelType, ColumnAddress},
		RowRequired:     []string{ColumnChannelType},
	})
	RegisterProfile(Profile{
		Name:            ProjectSPVMarketing,
		Description:     "Exige User.UserId; nombres de columna con prefijo válido.",
		RequiredHeaders: []string{ColumnUserID},
		Prefixes:        DefaultPrefixes,
		RequireUserID:   true,
	})
}

// RegisterProfile adds a profile. Panics if the name is already taken,
// ignoring case, since LookupProfile falls back to a case-insensitive match.
func RegisterProfile(p Profile) {
	profilesMu.Lock()
	defer profilesMu.Unlock()

	for key := range profiles {
		if strings.EqualFold(key, p.Name) {
			panic(fmt.Sprintf("profile already registered: %s", key))
		}
	}
	profiles[p.Name] = p
}

// LookupProfile finds a profile by exact name, falling back to a
// case-insensitive match.
func LookupProfile(name string) (Profile, bool) {
	profilesMu.RLock()
	defer profilesMu.RUnlock()

	if p, ok := profiles[name]; ok {
		return p, true
	}
	for key, p := range profiles {
		if strings.EqualFold(key, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return Profile{}, false
}

// Profiles returns all registered profiles sorted by name.
func Profiles() []Profile {
	profilesMu.RLock()
	defer profilesMu.RUnlock()

	result := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
