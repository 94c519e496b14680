package settings

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/giraplus/giraplus-go/envutil"
)

// MemoryStore keeps values in a map. The zero value is ready to use.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]

	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.values == nil {
		m.values = make(map[string]string)
	}

	m.values[key] = value

	return nil
}

// EnvStore reads settings from GIRA_SETTINGS_<NAME> variables, where NAME
// is the setting name in upper snake case (settings/distanceLock is
// GIRA_SETTINGS_DISTANCE_LOCK). It cannot be written to.
type EnvStore struct{}

var _ Store = EnvStore{}

func (EnvStore) Get(ctx context.Context, key string) (string, bool, error) {
	rdr := envutil.String(ctx, EnvVar(key))

	return rdr.ValueOrElse(""), rdr.HasValue(), nil
}

func (EnvStore) Set(context.Context, string, string) error {
	return ErrReadOnly
}

// EnvVar returns the environment variable EnvStore reads key from.
func EnvVar(key string) string {
	name := strings.TrimPrefix(key, "settings/")

	var sb strings.Builder

	sb.WriteString("GIRA_SETTINGS_")

	for i, r := range name {
		if unicode.IsUpper(r) && i > 0 {
			sb.WriteByte('_')
		}

		sb.WriteRune(unicode.ToUpper(r))
	}

	return sb.String()
}
