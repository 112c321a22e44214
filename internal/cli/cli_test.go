package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/bootstrap"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/config"
)

func sharedBuilder(t *testing.T) Builder {
	t.Helper()
	a, err := bootstrap.Build(context.Background(), config.Config{
		Env:                    "dev",
		LLMProvider:            config.ProviderNone,
		LLMTimeout:             time.Second,
		ToolTimeout:            time.Second,
		ClarificationThreshold: 0.5,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })
	return func(context.Context, *viper.Viper) (*bootstrap.App, func(), error) {
		return a, func() {}, nil
	}
}

func execute(t *testing.T, build Builder, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(build)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.json")
	doc := `{"contact":{"name":"Dana Levi","email":"dana@example.com"},"summary":"Backend engineer.","skills":{"technical":["Go"]}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestImportRunUndoHistory(t *testing.T) {
	build := sharedBuilder(t)

	_, err := execute(t, build, "import", writeDocument(t), "--user", "cli-user")
	require.NoError(t, err)

	out, err := execute(t, build, "run", "--user", "cli-user", "add", "Kafka", "to", "my", "skills")
	require.NoError(t, err)
	var result struct {
		Committed bool `json:"committed"`
		Document  struct {
			Skills struct {
				Technical []string `json:"technical"`
			} `json:"skills"`
		} `json:"document"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Committed)
	assert.Equal(t, []string{"Go", "Kafka"}, result.Document.Skills.Technical)

	_, err = execute(t, build, "undo", "--user", "cli-user")
	require.NoError(t, err)

	out, err = execute(t, build, "history", "--user", "cli-user")
	require.NoError(t, err)
	var view struct {
		Entries []json.RawMessage `json:"entries"`
		Stack   struct {
			Future []json.RawMessage `json:"future"`
		} `json:"stack"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Len(t, view.Entries, 2)
	assert.Len(t, view.Stack.Future, 1)
}

func TestScoreTextFile(t *testing.T) {
	build := sharedBuilder(t)
	resume := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(resume, []byte("Dana Levi\nSkills\nGo, Kafka\nExperience\nBackend Engineer"), 0o600))

	out, err := execute(t, build, "score", "--resume-file", resume, "--job", "Backend Engineer. Requirements: Go, Kafka.")
	require.NoError(t, err)
	var report struct {
		ScoringVersion string `json:"scoring_version"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.ScoringVersion)
}

func TestScoreWithoutInput(t *testing.T) {
	_, err := execute(t, sharedBuilder(t), "score", "--user", "nobody")
	assert.Error(t, err)
}

func TestExtractSkipsBootstrap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Dana Levi\n"), 0o600))
	failing := func(context.Context, *viper.Viper) (*bootstrap.App, func(), error) {
		t.Fatalf("extract must not build the application")
		return nil, nil, nil
	}
	out, err := execute(t, failing, "extract", path)
	require.NoError(t, err)
	assert.Equal(t, "Dana Levi\n", out)
}
