package migrate

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"

	"memberlink/internal/identity/models"
)

// rosterFile is the on-disk layout of the default roster:
//
//	[[members]]
//	name  = "Alice Smith"
//	email = "alice@example.com"
//	role  = "official"
type rosterFile struct {
	Members []models.RosterEntry `toml:"members"`
}

// FileRoster reads the default roster from a TOML file. An empty path or a
// missing file yields an empty roster.
type FileRoster struct {
	Path string
}

func (f FileRoster) Load() ([]models.RosterEntry, error) {
	if f.Path == "" {
		return nil, nil
	}
	var doc rosterFile
	md, err := toml.DecodeFile(f.Path, &doc)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode roster %s: %w", f.Path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode roster %s: unknown keys %v", f.Path, undecoded)
	}
	return doc.Members, nil
}

// StaticRoster is a fixed roster.
type StaticRoster []models.RosterEntry

func (s StaticRoster) Load() ([]models.RosterEntry, error) {
	return s, nil
}
