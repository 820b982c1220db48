package token

import (
	"context"
	"errors"
	"strings"

	logx "github.com/RatTrap1337/Zoho-Attendance-Manager/pkg/logx"
)

// Store persists the single cached token record.
//
// Load returns (nil, nil) when no record exists. Save fully replaces any
// previous record.
type Store interface {
	Load(ctx context.Context) (*Token, error)
	Save(ctx context.Context, t Token) error
	Close() error
}

// StoreConfig configures token persistence.
//
// Driver values:
//   - "file": single JSON object on disk
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", persistence is disabled and every process
// start begins with a cache miss.
type StoreConfig struct {
	Driver string
	Path   string
}

// OpenStore initializes the configured store.
// It returns (nil, nil) if persistence is disabled.
func OpenStore(cfg StoreConfig, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown token store driver: " + driver)
	}
}
