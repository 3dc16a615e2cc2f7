package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with the given stdin and arguments and
// returns the captured stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTranslate_InlineQuery(t *testing.T) {
	out, _, err := execute(t, "", "translate", "-t", "grew", "-q", `pattern { X [lemma="dog"] }`)

	require.NoError(t, err)
	assert.Equal(t, "[(lemma = \"dog\")]\n", out)
}

func TestTranslate_GuessesTranslator(t *testing.T) {
	out, errOut, err := execute(t, "", "translate", "-v", "-q", `pattern { X [lemma="dog"] }`)

	require.NoError(t, err)
	assert.Equal(t, "[(lemma = \"dog\")]\n", out)
	assert.Contains(t, errOut, "translator: grew")
}

func TestTranslate_Stdin(t *testing.T) {
	out, _, err := execute(t, `pattern { X [lemma="dog"] }`, "translate")

	require.NoError(t, err)
	assert.Equal(t, "[(lemma = \"dog\")]\n", out)
}

func TestTranslate_MultipleQueries(t *testing.T) {
	out, _, err := execute(t, "", "translate", "-t", "grew",
		"-q", `pattern { X [lemma="dog"] }`,
		"-q", `pattern { Y [upos="NOUN"] }`)

	require.NoError(t, err)
	assert.Equal(t, "[(lemma = \"dog\")]\n\n[(upos = \"NOUN\")]\n", out)
}

func TestTranslate_FileInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.grew")
	require.NoError(t, os.WriteFile(path, []byte(`pattern { X [lemma="dog"] }`), 0o644))

	out, _, err := execute(t, "", "translate", "-f", path)

	require.NoError(t, err)
	assert.Equal(t, "[(lemma = \"dog\")]\n", out)
}

func TestTranslate_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.cqp")

	stdout, _, err := execute(t, "", "translate", "-t", "grew",
		"-q", `pattern { X [lemma="dog"] }`, "-o", path)

	require.NoError(t, err)
	assert.Empty(t, stdout)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[(lemma = \"dog\")]\n", string(data))
}

func TestTranslate_JSONFormat(t *testing.T) {
	out, _, err := execute(t, "", "translate", "--format", "json", "-q",
		"pattern { X [lemma=dog] } with { X [upos=NOUN] }")
	require.NoError(t, err)

	var resp struct {
		Status string              `json:"status"`
		Data   []translationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "grew", resp.Data[0].Translator)
	assert.NotEmpty(t, resp.Data[0].Query)
	assert.NotEmpty(t, resp.Data[0].AdditionalSteps)
}

func TestTranslate_ParseFailure(t *testing.T) {
	out, errOut, err := execute(t, "", "translate", "-t", "grew", "-q", "pattern { X [")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Empty(t, out)
	assert.Contains(t, errOut, "E101")
	assert.Contains(t, errOut, "parsing failed")
}

func TestTranslate_NotSupported(t *testing.T) {
	_, errOut, err := execute(t, "", "translate", "-t", "deptreepy",
		"-q", "(TREE (POS NN) (DEPREL det))")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "E102")
}

func TestTranslate_ContinuesPastFailedInput(t *testing.T) {
	out, errOut, err := execute(t, "", "translate", "-t", "grew",
		"-q", "pattern { X [",
		"-q", `pattern { X [lemma="dog"] }`)

	// One input translated, so the command succeeds; the failure is
	// reported on stderr and the good query still comes out.
	require.NoError(t, err)
	assert.Equal(t, "[(lemma = \"dog\")]\n", out)
	assert.Contains(t, errOut, "E101")
}

func TestTranslate_AllInputsFailed(t *testing.T) {
	_, errOut, err := execute(t, "", "translate", "-t", "grew",
		"-q", "pattern { X [",
		"-q", "pattern {} extra {}")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "no input translated")
	assert.Equal(t, 2, strings.Count(errOut, "Error ["))
}

func TestTranslate_JSONReportsPerInputErrors(t *testing.T) {
	out, _, err := execute(t, "", "translate", "--format", "json", "-t", "grew",
		"-q", "pattern { X [",
		"-q", `pattern { X [lemma="dog"] }`)
	require.NoError(t, err)

	var resp struct {
		Status string              `json:"status"`
		Data   []translationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)
	require.NotNil(t, resp.Data[0].Error)
	assert.Equal(t, ErrCodeParse, resp.Data[0].Error.Code)
	assert.Empty(t, resp.Data[0].Query)
	assert.Nil(t, resp.Data[1].Error)
	assert.Equal(t, `[(lemma = "dog")]`, resp.Data[1].Query)
}

func TestTranslate_UnknownTranslator(t *testing.T) {
	out, _, err := execute(t, "", "translate", "-t", "sparql", "-q", "x")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "unknown translator")
}

func TestTranslate_MissingFile(t *testing.T) {
	out, _, err := execute(t, "", "translate", "-f", filepath.Join(t.TempDir(), "absent"))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E002")
}

func TestTranslate_EmptyStdin(t *testing.T) {
	_, _, err := execute(t, "  \n", "translate")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTranslate_ConfigOverridesMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cqptree.cue")
	require.NoError(t, os.WriteFile(path, []byte("conllu: lemma: \"baseform\"\n"), 0o644))

	out, _, err := execute(t, "", "translate", "--config", path, "-t", "conllu",
		"-q", "1\tHunden\thund\tNOUN\t_\t_\t0\troot\t_\t_\n")

	require.NoError(t, err)
	assert.Contains(t, out, `baseform = "hund"`)
	assert.NotContains(t, out, `lemma = "hund"`)
}

func TestTranslate_BadConfig(t *testing.T) {
	out, _, err := execute(t, "", "translate", "--config",
		filepath.Join(t.TempDir(), "absent.cue"), "-q", `pattern { X [lemma="dog"] }`)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E003")
}

func TestTranslators_List(t *testing.T) {
	out, _, err := execute(t, "", "translators")

	require.NoError(t, err)
	assert.Equal(t, "conllu\ndepsearch\ndeptreepy\ngrew\n", out)
}

func TestTranslators_JSON(t *testing.T) {
	out, _, err := execute(t, "", "translators", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string   `json:"status"`
		Data   []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"conllu", "depsearch", "deptreepy", "grew"}, resp.Data)
}
