// Package openaitest provides an in-memory openai.Client for agent tests.
package openaitest

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/brandlens-backend/internal/platform/openai"
)

// Call records one GenerateJSON or GenerateText invocation.
type Call struct {
	Schema string
	System string
	User   string
}

// Fake answers GenerateJSON by schema name. Unknown schemas return an error
// unless Default is set.
type Fake struct {
	mu sync.Mutex

	JSON      map[string]map[string]any
	JSONErr   map[string]error
	Default   map[string]any
	Text      string
	TextErr   error
	Vectors   [][]float32
	EmbedErr  error
	Calls     []Call
	EmbedSeen [][]string
}

var _ openai.Client = (*Fake)(nil)

func New() *Fake {
	return &Fake{JSON: map[string]map[string]any{}, JSONErr: map[string]error{}}
}

// On registers the payload returned for schemaName.
func (f *Fake) On(schemaName string, payload map[string]any) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.JSON[schemaName] = payload
	return f
}

// Fail makes schemaName return err.
func (f *Fake) Fail(schemaName string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.JSONErr[schemaName] = err
	return f
}

func (f *Fake) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any, opts ...openai.CallOption) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Schema: schemaName, System: system, User: user})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.JSONErr[schemaName]; ok {
		return nil, err
	}
	if out, ok := f.JSON[schemaName]; ok {
		return out, nil
	}
	if f.Default != nil {
		return f.Default, nil
	}
	return nil, fmt.Errorf("openaitest: no response for schema %q", schemaName)
}

func (f *Fake) GenerateText(ctx context.Context, system, user string, opts ...openai.CallOption) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{System: system, User: user})
	if f.TextErr != nil {
		return "", f.TextErr
	}
	return f.Text, nil
}

func (f *Fake) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.EmbedSeen = append(f.EmbedSeen, inputs)
	if f.EmbedErr != nil {
		return nil, f.EmbedErr
	}
	return f.Vectors, nil
}

// CallCount returns how many GenerateJSON calls used schemaName.
func (f *Fake) CallCount(schemaName string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c.Schema == schemaName {
			n++
		}
	}
	return n
}
